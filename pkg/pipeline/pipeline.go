// Package pipeline wires the Lexicon, Entity Store, Node Resolver,
// Template Handler, Rule Engine, Section Extractors, and Reduced
// Relation Store into the single-threaded, per-entry extraction loop
// spec.md §5 describes: entries flow in document order, sections within
// an entry are processed in document order, and relation candidates
// drain into one Reduced Relation Store that is finalized once every
// entry has been consumed.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nucleus/etymograph/pkg/extractor"
	"github.com/nucleus/etymograph/pkg/graphstore"
	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/relation"
	"github.com/nucleus/etymograph/pkg/resolver"
	"github.com/nucleus/etymograph/pkg/wikitext"
)

// Entry is one wiktionary-style entry as the external corpus store
// presents it: a title/language pair with its sections in document
// order, each section's header path alongside its wikitext body.
type Entry struct {
	Title     string
	Namespace string
	Language  string
	Sections  [][]string
	Texts     []string
	EtymCount int
	Index     int
}

// EntryIterator yields Entries one at a time. Next returns ok=false once
// exhausted; a non-nil error aborts the run.
type EntryIterator interface {
	Next(ctx context.Context) (*Entry, bool, error)
}

// EntryStore opens an EntryIterator over the external corpus. Consumed,
// not implemented here: a real deployment backs this with whatever
// store the dump tokenizer populated.
type EntryStore interface {
	Entries(ctx context.Context) (EntryIterator, error)
}

// SectionParser is the wikitext parser's entrypoint, consumed as a black
// box per spec.md §1/§6: the pipeline only needs top-level spans for
// baseline/link/etymology sections, and a separate nested-list structure
// for descendants sections.
type SectionParser interface {
	ParseSpans(text string) ([]*wikitext.Span, error)
	ParseList(text string) (*wikitext.List, error)
}

// Pipeline holds every constructor-injected component a single
// extraction run needs. Nothing here is an ambient singleton.
type Pipeline struct {
	lexicon   *lexicon.Lexicon
	resolver  *resolver.Resolver
	extractor *extractor.Extractor
	store     *graphstore.Store
	parser    SectionParser
	logger    *zap.Logger

	enableDescendants bool
}

// New builds a Pipeline from its already-constructed components.
func New(lex *lexicon.Lexicon, res *resolver.Resolver, ext *extractor.Extractor, store *graphstore.Store, parser SectionParser, enableDescendants bool, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		lexicon:           lex,
		resolver:          res,
		extractor:         ext,
		store:             store,
		parser:            parser,
		enableDescendants: enableDescendants,
		logger:            logger,
	}
}

// sectionKind classifies a section by its deepest header name, the only
// thing BaselineExtractor/LinkSectionExtractor/DescendantsSectionExtractor/
// EtymologySectionExtractor need to know to pick themselves.
type sectionKind int

const (
	sectionBaseline sectionKind = iota
	sectionEtymology
	sectionLinks
	sectionDescendants
)

func classifySection(path []string) sectionKind {
	if len(path) == 0 {
		return sectionBaseline
	}
	header := path[len(path)-1]
	switch {
	case strings.HasPrefix(header, "Etymology"):
		return sectionEtymology
	case header == "Descendants":
		return sectionDescendants
	case header == "Related terms" || header == "Derived terms":
		return sectionLinks
	default:
		return sectionBaseline
	}
}

// Process runs every section of one entry through its extractor and
// feeds the resulting Relations into the Reduced Relation Store. Entry
// order across the corpus is not observable (the store's add rule is
// commutative modulo merge text-join order); section order within an
// entry is, and this processes them in the given slice order.
func (p *Pipeline) Process(ctx context.Context, entry *Entry) error {
	language := entry.Language
	candidates := p.lexicon.Get(entry.Title, &language, nil)

	for i, path := range entry.Sections {
		if i >= len(entry.Texts) {
			break
		}
		ctxNode, ok := p.resolver.ResolveSection(path, candidates)
		if !ok {
			p.logger.Debug("no context lexeme for section",
				zap.String("title", entry.Title), zap.Strings("section", path))
			continue
		}

		rels, err := p.extractSection(classifySection(path), entry.Texts[i], ctxNode)
		if err != nil {
			return fmt.Errorf("pipeline: entry %q section %v: %w", entry.Title, path, err)
		}
		for _, rel := range rels {
			if err := p.store.Add(rel); err != nil {
				return fmt.Errorf("pipeline: add relation: %w", err)
			}
		}
	}
	return nil
}

func (p *Pipeline) extractSection(kind sectionKind, text string, ctx lexicon.Node) ([]relation.Relation, error) {
	switch kind {
	case sectionEtymology:
		spans, err := p.parser.ParseSpans(text)
		if err != nil {
			return nil, err
		}
		return p.extractor.EtymologySectionExtractor(text, spans, ctx, false), nil
	case sectionDescendants:
		if !p.enableDescendants {
			return nil, nil
		}
		list, err := p.parser.ParseList(text)
		if err != nil {
			return nil, err
		}
		return p.extractor.DescendantsSectionExtractor(list, ctx), nil
	case sectionLinks:
		spans, err := p.parser.ParseSpans(text)
		if err != nil {
			return nil, err
		}
		return p.extractor.LinkSectionExtractor(templatesIn(spans), linksIn(spans), ctx), nil
	default:
		spans, err := p.parser.ParseSpans(text)
		if err != nil {
			return nil, err
		}
		return p.extractor.BaselineExtractor(templatesIn(spans), ctx, false), nil
	}
}

func templatesIn(spans []*wikitext.Span) []*wikitext.Template {
	var out []*wikitext.Template
	for _, sp := range spans {
		if sp.Kind == wikitext.KindTemplate && sp.Template != nil {
			out = append(out, sp.Template)
		}
	}
	return out
}

func linksIn(spans []*wikitext.Span) []*wikitext.WikiLink {
	var out []*wikitext.WikiLink
	for _, sp := range spans {
		if sp.Kind == wikitext.KindWikiLink && sp.Link != nil {
			out = append(out, sp.Link)
		}
	}
	return out
}

// Run drains every entry the EntryStore offers through Process, then
// finalizes the Reduced Relation Store and hands the result to sink.
func (p *Pipeline) Run(ctx context.Context, entries EntryStore, sink graphstore.GraphSink) (*graphstore.FinalGraph, error) {
	it, err := entries.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: open entry store: %w", err)
	}

	for {
		entry, ok, err := it.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("pipeline: read entry: %w", err)
		}
		if !ok {
			break
		}
		if err := p.Process(ctx, entry); err != nil {
			return nil, err
		}
	}

	graph, err := p.store.Finalize()
	if err != nil {
		return nil, fmt.Errorf("pipeline: finalize: %w", err)
	}
	if sink != nil {
		if err := sink.Emit(ctx, graph); err != nil {
			return nil, fmt.Errorf("pipeline: emit: %w", err)
		}
	}
	return graph, nil
}

// Package resolver maps a LinkNormalization target or inline link to a
// Lexicon node, using id, part-of-speech, gloss, or qualifier evidence to
// disambiguate homonyms — the Node Resolver of the pipeline.
package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nucleus/etymograph/pkg/entitystore"
	"github.com/nucleus/etymograph/pkg/langmap"
	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/relation"
	"github.com/nucleus/etymograph/pkg/template"
)

// GlossMatcher scores a template gloss against candidate definitions and
// returns the index of the best match. Implemented by pkg/glossmatch;
// declared here to avoid a dependency cycle.
type GlossMatcher interface {
	Best(templateGloss string, definitions []string) (index int, ok bool)
}

// Resolver is the Node Resolver: it depends on the Lexicon, Entity Store,
// and Language Mapper, injected via constructor per the teacher's
// NewDefaultEntityMatcher(registry) constructor-injection idiom — never
// resolved through ambient state.
type Resolver struct {
	lex    *lexicon.Lexicon
	ents   *entitystore.Store
	langs  langmap.Mapper
	gloss  GlossMatcher
	logger *zap.Logger
}

// New constructs a Resolver. gloss may be nil; disambiguation by gloss
// similarity is then skipped (falls through to qualifier/first-homonym).
func New(lex *lexicon.Lexicon, ents *entitystore.Store, langs langmap.Mapper, gloss GlossMatcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{lex: lex, ents: ents, langs: langs, gloss: gloss, logger: logger}
}

var etymologyHeader = regexp.MustCompile(`(?i)Etymology\s+(\d+)`)

// ResolveSection picks the lexeme a section path refers to. With exactly
// one candidate, it is returned outright; otherwise the deepest
// "Etymology N" header in the path selects a sense_idx (N indexes from 1,
// stored as N-1).
func (r *Resolver) ResolveSection(sectionPath []string, candidates []lexicon.Node) (lexicon.Node, bool) {
	if len(candidates) == 1 {
		return candidates[0], true
	}
	if len(candidates) == 0 {
		return nil, false
	}

	senseIdx, found := deepestEtymologyIndex(sectionPath)
	if found {
		for _, c := range candidates {
			if base, ok := lexicon.AsLexeme(c); ok && base.SenseIdx == senseIdx {
				return c, true
			}
		}
	}

	term := ""
	if base, ok := lexicon.AsLexeme(candidates[0]); ok {
		term = base.Term
	}
	if len(term) > 1 {
		r.logger.Warn("ambiguous section could not be resolved",
			zap.Strings("sectionPath", sectionPath), zap.String("term", term))
	}
	return nil, false
}

func deepestEtymologyIndex(sectionPath []string) (int, bool) {
	idx := -1
	found := false
	for _, h := range sectionPath {
		if m := etymologyHeader.FindStringSubmatch(h); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				idx = n - 1
				found = true
			}
		}
	}
	return idx, found
}

// ResolveTemplate maps a LinkNormalization target (the spec's
// "template_data") to a Node, falling back to ctxLexeme's term/language
// when the target leaves them unset.
func (r *Resolver) ResolveTemplate(data relation.LinkTarget, ctxLexeme lexicon.Node) (lexicon.Node, bool) {
	if data.EntityName != "" {
		return r.ents.Identify(data.EntityName, nil), true
	}

	term, language := data.Term, data.Language
	if term == "" || language == "" {
		if base, ok := lexicon.AsLexeme(ctxLexeme); ok {
			if term == "" {
				term = base.Term
			}
			if language == "" {
				language = base.Language
			}
		}
	}

	if r.langs != nil && language != "" && r.langs.Contains(language) && !r.langs.IsFamily(language) {
		if parent, ok := r.langs.Code2Parent(language); ok {
			language = parent
		}
	}

	if hasWikipediaPrefix(term) {
		name := strings.TrimPrefix(term, "wikipedia:")
		name = strings.TrimPrefix(name, "w:")
		return r.ents.Identify(name, nil), true
	}

	if r.langs != nil {
		term = r.langs.Normalize(term, language)
	}

	return r.identifyLexeme(term, language, data)
}

func hasWikipediaPrefix(term string) bool {
	lower := strings.ToLower(term)
	return strings.HasPrefix(lower, "wikipedia:") || strings.HasPrefix(lower, "w:")
}

// ParsedLink is the decomposition of an inline wikilink target into its
// prefix (namespace, if any), title, and anchor (the part after '#').
type ParsedLink struct {
	Prefix string
	Title  string
	Anchor string
}

var ignoredLinkPrefixes = map[string]bool{
	"category": true, "file": true, "image": true,
}

// ParseLinkTarget splits a `[[prefix:title#anchor]]` target string into its
// parts, lower-casing the prefix for comparison.
func ParseLinkTarget(target string) ParsedLink {
	title := target
	anchor := ""
	if i := strings.Index(title, "#"); i >= 0 {
		anchor = title[i+1:]
		title = title[:i]
	}
	prefix := ""
	if i := strings.Index(title, ":"); i >= 0 {
		prefix = strings.ToLower(strings.TrimSpace(title[:i]))
		title = title[i+1:]
	}
	return ParsedLink{Prefix: prefix, Title: strings.TrimSpace(title), Anchor: anchor}
}

// ResolveLink maps an inline wikilink to a Node. Category/File/Image
// prefixed links are ignored outright (no relation should be emitted for
// them). A wikipedia-prefixed link delegates to the Entity Store. If the
// anchor is a known language code or names a known language (e.g.
// "#English"), it overrides ctxLexeme's language.
func (r *Resolver) ResolveLink(link string, ctxLexeme lexicon.Node) (lexicon.Node, bool) {
	parsed := ParseLinkTarget(link)
	if ignoredLinkPrefixes[parsed.Prefix] {
		return nil, false
	}
	if parsed.Prefix == "wikipedia" || parsed.Prefix == "w" {
		return r.ents.Identify(parsed.Title, nil), true
	}

	language := ""
	if base, ok := lexicon.AsLexeme(ctxLexeme); ok {
		language = base.Language
	}
	if r.langs != nil && parsed.Anchor != "" {
		if r.langs.Contains(parsed.Anchor) {
			language = parsed.Anchor
		} else if codes, err := r.langs.Name2Code(parsed.Anchor, false); err == nil && len(codes) == 1 {
			language = codes[0]
		}
	}
	if r.langs != nil {
		parsed.Title = r.langs.Normalize(parsed.Title, language)
	}

	return r.identifyLexeme(parsed.Title, language, relation.LinkTarget{})
}

// identifyLexeme implements _identify_lexeme: look up the Lexicon; create
// a NoEntryLexeme if missing; disambiguate homonyms by id, part of
// speech, gloss similarity, qualifier, and finally first-homonym fallback.
func (r *Resolver) identifyLexeme(term, language string, data relation.LinkTarget) (lexicon.Node, bool) {
	lang := language
	homonyms := r.lex.Get(term, &lang, nil)

	if len(homonyms) == 0 {
		return r.lex.AddNoEntry(term, language, nil), true
	}

	if len(homonyms) == 1 {
		switch homonyms[0].(type) {
		case *lexicon.SingleMeaningStub, *lexicon.NoEntryLexeme:
			return homonyms[0], true
		}
	}

	if data.Anchor != "" {
		if resolved, ok := r.ResolveSection([]string{data.Anchor}, homonyms); ok {
			return resolved, true
		}
	}

	if data.ID != "" {
		for _, h := range homonyms {
			if lexicon.EtymID(h) == data.ID {
				return h, true
			}
			for _, g := range lexicon.Glosses(h) {
				if g.SenseID == data.ID {
					return h, true
				}
			}
		}
	}

	pos, hasPOS := template.DeterminePOS(data.POS, data.Gloss)
	candidates := homonyms
	var defs []string
	if hasPOS {
		restricted, restrictedDefs := restrictByPOS(homonyms, pos)
		if len(restricted) == 1 {
			return restricted[0], true
		}
		if len(restricted) > 0 {
			candidates, defs = restricted, restrictedDefs
		}
	}
	if len(defs) == 0 {
		candidates, defs = allDefinitions(homonyms)
	}

	if data.Gloss != "" && r.gloss != nil && len(defs) > 1 {
		if idx, ok := r.gloss.Best(data.Gloss, defs); ok {
			return candidates[idx], true
		}
		r.logger.Warn("gloss matcher failed to disambiguate", zap.String("term", term))
	}

	if data.Qualifier != "" {
		for _, h := range homonyms {
			for _, g := range lexicon.Glosses(h) {
				if strings.Contains(strings.ToLower(g.Text), strings.ToLower(data.Qualifier)) {
					return h, true
				}
			}
		}
	}

	return homonyms[0], true
}

func restrictByPOS(homonyms []lexicon.Node, pos string) ([]lexicon.Node, []string) {
	var nodes []lexicon.Node
	var defs []string
	for _, h := range homonyms {
		for _, g := range lexicon.Glosses(h) {
			if g.POS == pos {
				nodes = append(nodes, h)
				defs = append(defs, g.Text)
				break
			}
		}
	}
	return nodes, defs
}

func allDefinitions(homonyms []lexicon.Node) ([]lexicon.Node, []string) {
	var nodes []lexicon.Node
	var defs []string
	for _, h := range homonyms {
		glosses := lexicon.Glosses(h)
		if len(glosses) == 0 {
			continue
		}
		nodes = append(nodes, h)
		defs = append(defs, glosses[0].Text)
	}
	return nodes, defs
}

// Phantom constructs a stable Phantom node for a target that could not be
// identified (e.g. a LinkNormalization target with NoTarget set).
func Phantom(uniqueID string) *lexicon.Phantom {
	return &lexicon.Phantom{UniqueID: uniqueID}
}

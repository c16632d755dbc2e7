// Command etymograph-extract is a thin wiring entrypoint: load config,
// construct the pipeline, run it over an EntryIterator, hand the
// finished graph to a GraphSink. It ships a JSONL sink for demo purposes
// only -- a real deployment would swap in a Neo4j/RDF/CSV sink behind
// the same graphstore.GraphSink interface.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nucleus/etymograph/internal/config"
	"github.com/nucleus/etymograph/internal/observability"
	"github.com/nucleus/etymograph/pkg/entitystore"
	"github.com/nucleus/etymograph/pkg/extractor"
	"github.com/nucleus/etymograph/pkg/glossmatch"
	"github.com/nucleus/etymograph/pkg/graphstore"
	"github.com/nucleus/etymograph/pkg/langmap"
	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/pipeline"
	"github.com/nucleus/etymograph/pkg/resolver"
	"github.com/nucleus/etymograph/pkg/rules"
	"github.com/nucleus/etymograph/pkg/template"
	"github.com/nucleus/etymograph/pkg/wikitext"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		log.Fatalf("observability: %v", err)
	}
	defer logger.Sync()

	lex, err := buildLexicon(cfg, logger)
	if err != nil {
		logger.Fatal("lexicon init", zap.Error(err))
	}

	ents := entitystore.New(logger)
	langs := demoLanguageMapper()

	var gloss resolver.GlossMatcher
	if cfg.GlossModelFile != "" {
		model, err := glossmatch.LoadModel(cfg.GlossModelFile)
		if err != nil {
			logger.Warn("gloss model init failed, disambiguation disabled", zap.Error(err))
		} else {
			gloss = glossmatch.New(model)
		}
	}

	res := resolver.New(lex, ents, langs, gloss, logger)
	registry := template.NewRegistry(template.DefaultHandlers())
	engine := rules.NewEngine(langs.Names(), nil, registry)
	ext := extractor.New(res, registry, engine)

	var tree graphstore.LanguageTree
	if cfg.LanguageTreeFile != "" {
		t, err := graphstore.LoadStaticTreeFile(cfg.LanguageTreeFile)
		if err != nil {
			logger.Warn("language tree init failed, historical swap disabled", zap.Error(err))
		} else {
			tree = t
		}
	}
	store := graphstore.New(tree, logger)

	p := pipeline.New(lex, res, ext, store, noopParser{}, cfg.EnableDescendants, logger)

	ctx := context.Background()
	graph, err := p.Run(ctx, emptyEntryStore{}, &jsonlSink{w: os.Stdout})
	if err != nil {
		logger.Fatal("pipeline run", zap.Error(err))
	}
	logger.Info("extraction complete", zap.Int("edges", len(graph.Edges)))
}

// buildLexicon warms up the Lexicon from Postgres when INDEX_DATABASE_URL
// is configured; otherwise it starts empty, suitable only for a
// dry-run/demo invocation of the binary.
func buildLexicon(cfg *config.Config, logger *zap.Logger) (*lexicon.Lexicon, error) {
	lex := lexicon.New(logger)
	if cfg.IndexDatabaseURL == "" {
		logger.Warn("INDEX_DATABASE_URL not set, starting with an empty lexicon")
		return lex, nil
	}

	db, err := sql.Open("postgres", cfg.IndexDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	src, err := lexicon.NewPostgresIndexSource(db)
	if err != nil {
		return nil, fmt.Errorf("index source: %w", err)
	}
	entries, err := src.LoadIndex(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	lex.BuildFromIndex(entries)
	return lex, nil
}

// demoLanguageMapper is a small, explicitly non-authoritative language
// table good enough for this binary's own smoke test; a production
// deployment loads the full code/name/parent table spec.md §6 names.
func demoLanguageMapper() *langmap.Static {
	return langmap.NewStatic([]langmap.Lang{
		{Code: "en", Name: "English"},
		{Code: "enm", Name: "Middle English"},
		{Code: "ang", Name: "Old English"},
		{Code: "fr", Name: "French"},
		{Code: "la", Name: "Latin"},
	})
}

// noopParser never finds structure in section text. It lets the binary
// wire and run end-to-end without a real wikitext parser, which
// spec.md §1 places out of scope.
type noopParser struct{}

func (noopParser) ParseSpans(text string) ([]*wikitext.Span, error) { return nil, nil }
func (noopParser) ParseList(text string) (*wikitext.List, error)    { return nil, nil }

// emptyEntryStore yields no entries; it exists so main can demonstrate
// the full Run wiring without a corpus behind it.
type emptyEntryStore struct{}

func (emptyEntryStore) Entries(ctx context.Context) (pipeline.EntryIterator, error) {
	return emptyIterator{}, nil
}

type emptyIterator struct{}

func (emptyIterator) Next(ctx context.Context) (*pipeline.Entry, bool, error) {
	return nil, false, nil
}

// jsonlSink writes one JSON object per relation edge, the pack's
// convention for a demo/debug sink (no schema registry, no streaming
// protocol) standing in for a real Neo4j/RDF/CSV GraphSink.
type jsonlSink struct {
	w *os.File
}

type jsonlEdge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Uncertain bool   `json:"uncertain,omitempty"`
}

func (s *jsonlSink) Emit(ctx context.Context, graph *graphstore.FinalGraph) error {
	enc := json.NewEncoder(s.w)
	for _, rel := range graph.Edges {
		edge := jsonlEdge{
			Source:    rel.SourceKey,
			Target:    rel.TargetKey,
			Type:      rel.Attrs.Type.HumanName(),
			Text:      rel.Attrs.Text,
			Uncertain: rel.Attrs.Uncertain,
		}
		if err := enc.Encode(edge); err != nil {
			return fmt.Errorf("jsonl sink: encode edge: %w", err)
		}
	}
	return nil
}

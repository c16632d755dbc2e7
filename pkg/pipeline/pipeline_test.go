package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleus/etymograph/pkg/entitystore"
	"github.com/nucleus/etymograph/pkg/extractor"
	"github.com/nucleus/etymograph/pkg/graphstore"
	"github.com/nucleus/etymograph/pkg/langmap"
	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/resolver"
	"github.com/nucleus/etymograph/pkg/rules"
	"github.com/nucleus/etymograph/pkg/template"
	"github.com/nucleus/etymograph/pkg/wikitext"
)

// fakeParser serves pre-built spans/lists keyed by the exact section text
// passed in, standing in for the real wikitext parser this package only
// consumes as an interface.
type fakeParser struct {
	spans map[string][]*wikitext.Span
	lists map[string]*wikitext.List
}

func (f *fakeParser) ParseSpans(text string) ([]*wikitext.Span, error) {
	return f.spans[text], nil
}

func (f *fakeParser) ParseList(text string) (*wikitext.List, error) {
	return f.lists[text], nil
}

// sliceEntryStore is an in-memory EntryIterator/EntryStore double.
type sliceEntryStore struct {
	entries []*Entry
}

func (s *sliceEntryStore) Entries(ctx context.Context) (EntryIterator, error) {
	return &sliceIterator{entries: s.entries}, nil
}

type sliceIterator struct {
	entries []*Entry
	i       int
}

func (it *sliceIterator) Next(ctx context.Context) (*Entry, bool, error) {
	if it.i >= len(it.entries) {
		return nil, false, nil
	}
	e := it.entries[it.i]
	it.i++
	return e, true, nil
}

// recordingSink captures the graph Run hands to it.
type recordingSink struct {
	graph *graphstore.FinalGraph
}

func (s *recordingSink) Emit(ctx context.Context, graph *graphstore.FinalGraph) error {
	s.graph = graph
	return nil
}

func newTestPipeline(t *testing.T, parser SectionParser) *Pipeline {
	t.Helper()
	lex := lexicon.New(nil)
	lex.BuildFromIndex([]lexicon.IndexEntry{
		{Term: "cat", Language: "en"},
		{Term: "cat", Language: "enm"},
	})
	ents := entitystore.New(nil)
	langs := langmap.NewStatic([]langmap.Lang{
		{Code: "en", Name: "English"},
		{Code: "enm", Name: "Middle English"},
	})
	registry := template.NewRegistry(template.DefaultHandlers())
	res := resolver.New(lex, ents, langs, nil, nil)
	engine := rules.NewEngine([]string{"English", "Middle English"}, nil, registry)
	ext := extractor.New(res, registry, engine)
	store := graphstore.New(nil, nil)

	return New(lex, res, ext, store, parser, true, nil)
}

func TestProcessEtymologySectionAddsRelationToStore(t *testing.T) {
	src := "From {{inh|en|enm|cat}}."
	tpl := &wikitext.Template{Name: "inh", Params: map[string]string{"1": "en", "2": "enm", "3": "cat"}}
	parser := &fakeParser{
		spans: map[string][]*wikitext.Span{
			src: {{Kind: wikitext.KindTemplate, Start: 5, End: 5 + len("{{inh|en|enm|cat}}"), Template: tpl}},
		},
	}
	p := newTestPipeline(t, parser)

	entry := &Entry{
		Title:    "cat",
		Language: "en",
		Sections: [][]string{{"English", "Etymology"}},
		Texts:    []string{src},
	}
	err := p.Process(context.Background(), entry)
	require.NoError(t, err)

	graph, err := p.store.Finalize()
	require.NoError(t, err)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "cat/en", graph.Edges[0].Source.Key())
	assert.Equal(t, "cat/enm", graph.Edges[0].Target.Key())
	assert.Equal(t, ontology.INHERITANCE, graph.Edges[0].Attrs.Type)
}

func TestProcessSkipsSectionWithNoContextLexeme(t *testing.T) {
	parser := &fakeParser{spans: map[string][]*wikitext.Span{}}
	p := newTestPipeline(t, parser)

	entry := &Entry{
		Title:    "nonexistent-term",
		Language: "en",
		Sections: [][]string{{"English", "Etymology"}},
		Texts:    []string{"whatever"},
	}
	err := p.Process(context.Background(), entry)
	require.NoError(t, err)

	graph, err := p.store.Finalize()
	require.NoError(t, err)
	assert.Empty(t, graph.Edges)
}

func TestRunDrainsEntryStoreAndEmitsToSink(t *testing.T) {
	src := "From {{inh|en|enm|cat}}."
	tpl := &wikitext.Template{Name: "inh", Params: map[string]string{"1": "en", "2": "enm", "3": "cat"}}
	parser := &fakeParser{
		spans: map[string][]*wikitext.Span{
			src: {{Kind: wikitext.KindTemplate, Start: 5, End: 5 + len("{{inh|en|enm|cat}}"), Template: tpl}},
		},
	}
	p := newTestPipeline(t, parser)

	store := &sliceEntryStore{entries: []*Entry{
		{
			Title:    "cat",
			Language: "en",
			Sections: [][]string{{"English", "Etymology"}},
			Texts:    []string{src},
		},
	}}
	sink := &recordingSink{}

	graph, err := p.Run(context.Background(), store, sink)
	require.NoError(t, err)
	require.Len(t, graph.Edges, 1)
	require.NotNil(t, sink.graph)
	assert.Same(t, graph, sink.graph)
}

func TestClassifySection(t *testing.T) {
	assert.Equal(t, sectionEtymology, classifySection([]string{"English", "Etymology 1"}))
	assert.Equal(t, sectionDescendants, classifySection([]string{"English", "Descendants"}))
	assert.Equal(t, sectionLinks, classifySection([]string{"English", "Related terms"}))
	assert.Equal(t, sectionLinks, classifySection([]string{"English", "Derived terms"}))
	assert.Equal(t, sectionBaseline, classifySection([]string{"English", "Noun"}))
}

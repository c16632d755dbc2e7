package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleus/etymograph/pkg/entitystore"
	"github.com/nucleus/etymograph/pkg/langmap"
	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/relation"
)

func newFixture(t *testing.T) (*Resolver, *lexicon.Lexicon) {
	t.Helper()
	lex := lexicon.New(nil)
	ents := entitystore.New(nil)
	langs := langmap.NewStatic([]langmap.Lang{
		{Code: "en", Name: "English"},
		{Code: "enm", Name: "Middle English", Parent: "en"},
		{Code: "gem-pro", Name: "Proto-Germanic", IsFamily: true},
	})
	r := New(lex, ents, langs, nil, nil)
	return r, lex
}

func TestResolveTemplateCreatesNoEntryLexeme(t *testing.T) {
	r, _ := newFixture(t)
	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "cat", Language: "en"}, nil)
	require.True(t, ok)
	n, ok := node.(*lexicon.NoEntryLexeme)
	require.True(t, ok)
	assert.Equal(t, "cat", n.Term)
	assert.Equal(t, "en", n.Language)
}

func TestResolveTemplateFallsBackToContextLexeme(t *testing.T) {
	r, _ := newFixture(t)
	ctx := &lexicon.NoEntryLexeme{LexemeBase: lexicon.LexemeBase{Term: "dog", Language: "en"}}
	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "hound"}, ctx)
	require.True(t, ok)
	n := node.(*lexicon.NoEntryLexeme)
	assert.Equal(t, "hound", n.Term)
	assert.Equal(t, "en", n.Language)
}

func TestResolveTemplateReplacesLanguageWithParent(t *testing.T) {
	r, _ := newFixture(t)
	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "catte", Language: "enm"}, nil)
	require.True(t, ok)
	n := node.(*lexicon.NoEntryLexeme)
	assert.Equal(t, "en", n.Language)
}

func TestResolveTemplateFamilyLanguageUnchanged(t *testing.T) {
	r, _ := newFixture(t)
	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "*kattuz", Language: "gem-pro"}, nil)
	require.True(t, ok)
	n := node.(*lexicon.NoEntryLexeme)
	assert.Equal(t, "gem-pro", n.Language)
}

func TestResolveTemplateEntityNameRoutesToEntityStore(t *testing.T) {
	r, _ := newFixture(t)
	node, ok := r.ResolveTemplate(relation.LinkTarget{EntityName: "Rudolf Diesel"}, nil)
	require.True(t, ok)
	e, ok := node.(*lexicon.Entity)
	require.True(t, ok)
	assert.Equal(t, "Rudolf Diesel", e.Name)
}

func TestResolveTemplateWikipediaPrefixRoutesToEntityStore(t *testing.T) {
	r, _ := newFixture(t)
	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "w:Charles Darwin", Language: "en"}, nil)
	require.True(t, ok)
	e, ok := node.(*lexicon.Entity)
	require.True(t, ok)
	assert.Equal(t, "Charles Darwin", e.Name)
}

func TestResolveLinkIgnoresCategoryPrefix(t *testing.T) {
	r, _ := newFixture(t)
	_, ok := r.ResolveLink("Category:English nouns", nil)
	assert.False(t, ok)
}

func TestResolveLinkWikipediaPrefix(t *testing.T) {
	r, _ := newFixture(t)
	node, ok := r.ResolveLink("wikipedia:Rudolf Diesel", nil)
	require.True(t, ok)
	e := node.(*lexicon.Entity)
	assert.Equal(t, "Rudolf Diesel", e.Name)
}

func TestResolveLinkUsesAnchorAsLanguage(t *testing.T) {
	r, _ := newFixture(t)
	node, ok := r.ResolveLink("cat#English", nil)
	require.True(t, ok)
	n := node.(*lexicon.NoEntryLexeme)
	assert.Equal(t, "cat", n.Term)
	assert.Equal(t, "en", n.Language)
}

func TestIdentifyLexemeSingleHomonymShortcut(t *testing.T) {
	r, lex := newFixture(t)
	lex.BuildFromIndex([]lexicon.IndexEntry{{Term: "cat", Language: "en", EtymCount: 1}})

	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "cat", Language: "en"}, nil)
	require.True(t, ok)
	_, isStub := node.(*lexicon.SingleMeaningStub)
	assert.True(t, isStub)
}

func TestIdentifyLexemeDisambiguatesByID(t *testing.T) {
	r, lex := newFixture(t)
	lex.BuildFromIndex([]lexicon.IndexEntry{{Term: "bank", Language: "en", EtymCount: 2}})
	require.NoError(t, lex.AddFromEntry(lexicon.EntryInput{Term: "bank", Language: "en", SenseIdx: 0, EtymID: "fin"}))
	require.NoError(t, lex.AddFromEntry(lexicon.EntryInput{Term: "bank", Language: "en", SenseIdx: 1, EtymID: "riv"}))

	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "bank", Language: "en", ID: "riv"}, nil)
	require.True(t, ok)
	e := node.(*lexicon.EntryLexeme)
	assert.Equal(t, 1, e.SenseIdx)
}

func TestIdentifyLexemeDisambiguatesByPOS(t *testing.T) {
	r, lex := newFixture(t)
	lex.BuildFromIndex([]lexicon.IndexEntry{{Term: "run", Language: "en", EtymCount: 2}})
	require.NoError(t, lex.AddFromEntry(lexicon.EntryInput{
		Term: "run", Language: "en", SenseIdx: 0,
		Glosses: []lexicon.Gloss{{Text: "to move fast", POS: "verb"}},
	}))
	require.NoError(t, lex.AddFromEntry(lexicon.EntryInput{
		Term: "run", Language: "en", SenseIdx: 1,
		Glosses: []lexicon.Gloss{{Text: "a score in cricket", POS: "noun"}},
	}))

	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "run", Language: "en", POS: "v"}, nil)
	require.True(t, ok)
	e := node.(*lexicon.EntryLexeme)
	assert.Equal(t, 0, e.SenseIdx)
}

func TestIdentifyLexemeFirstHomonymFallback(t *testing.T) {
	r, lex := newFixture(t)
	lex.BuildFromIndex([]lexicon.IndexEntry{{Term: "lead", Language: "en", EtymCount: 2}})
	require.NoError(t, lex.AddFromEntry(lexicon.EntryInput{Term: "lead", Language: "en", SenseIdx: 0}))
	require.NoError(t, lex.AddFromEntry(lexicon.EntryInput{Term: "lead", Language: "en", SenseIdx: 1}))

	node, ok := r.ResolveTemplate(relation.LinkTarget{Term: "lead", Language: "en"}, nil)
	require.True(t, ok)
	_, isEntry := node.(*lexicon.EntryLexeme)
	assert.True(t, isEntry)
}

func TestResolveSectionSingleCandidateShortcut(t *testing.T) {
	r, _ := newFixture(t)
	only := &lexicon.EntryLexeme{LexemeBase: lexicon.LexemeBase{Term: "cat", SenseIdx: 0}}
	node, ok := r.ResolveSection([]string{"Etymology 1"}, []lexicon.Node{only})
	require.True(t, ok)
	assert.Same(t, only, node)
}

func TestResolveSectionPicksByEtymologyHeader(t *testing.T) {
	r, _ := newFixture(t)
	first := &lexicon.EntryLexeme{LexemeBase: lexicon.LexemeBase{Term: "x", SenseIdx: 0}}
	second := &lexicon.EntryLexeme{LexemeBase: lexicon.LexemeBase{Term: "x", SenseIdx: 1}}
	node, ok := r.ResolveSection([]string{"English", "Etymology 2", "Noun"}, []lexicon.Node{first, second})
	require.True(t, ok)
	assert.Same(t, second, node)
}

func TestResolveSectionNoMatchReturnsFalse(t *testing.T) {
	r, _ := newFixture(t)
	a := &lexicon.EntryLexeme{LexemeBase: lexicon.LexemeBase{Term: "ab", SenseIdx: 0}}
	b := &lexicon.EntryLexeme{LexemeBase: lexicon.LexemeBase{Term: "ab", SenseIdx: 1}}
	_, ok := r.ResolveSection([]string{"English"}, []lexicon.Node{a, b})
	assert.False(t, ok)
}

func TestParseLinkTargetSplitsPrefixAndAnchor(t *testing.T) {
	p := ParseLinkTarget("File:example.png#thumb")
	assert.Equal(t, "file", p.Prefix)
	assert.Equal(t, "example.png", p.Title)
	assert.Equal(t, "thumb", p.Anchor)
}

func TestPhantomIsStable(t *testing.T) {
	p1 := Phantom("a")
	p2 := Phantom("a")
	assert.Equal(t, p1.Key(), p2.Key())
}

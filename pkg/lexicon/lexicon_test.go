package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestBuildFromIndexSingleMeaning(t *testing.T) {
	l := New(nil)
	l.BuildFromIndex([]IndexEntry{{Term: "cat", Language: "en", EtymCount: 1}})

	got := l.Get("cat", strp("en"), nil)
	require.Len(t, got, 1)
	_, ok := got[0].(*SingleMeaningStub)
	assert.True(t, ok)
}

func TestBuildFromIndexMultiMeaning(t *testing.T) {
	l := New(nil)
	l.BuildFromIndex([]IndexEntry{{Term: "bank", Language: "en", EtymCount: 2}})

	assert.True(t, l.HasMultiSlot("bank", "en"))
	count, ok := l.SlotSenseCount("bank", "en")
	require.True(t, ok)
	assert.Equal(t, 2, count)
}

func TestAddFromEntryUnknownSlotFails(t *testing.T) {
	l := New(nil)
	err := l.AddFromEntry(EntryInput{Term: "ghost", Language: "en", SenseIdx: 0})
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestAddFromEntryPopulatesSlot(t *testing.T) {
	l := New(nil)
	l.BuildFromIndex([]IndexEntry{{Term: "bank", Language: "en", EtymCount: 2}})

	require.NoError(t, l.AddFromEntry(EntryInput{
		Term: "bank", Language: "en", SenseIdx: 0,
		Glosses: []Gloss{{Text: "a financial institution", POS: "noun"}},
	}))
	require.NoError(t, l.AddFromEntry(EntryInput{
		Term: "bank", Language: "en", SenseIdx: 1,
		Glosses: []Gloss{{Text: "the edge of a river", POS: "noun"}},
	}))

	got := l.Get("bank", strp("en"), intp(0))
	require.Len(t, got, 1)
	entry, ok := got[0].(*EntryLexeme)
	require.True(t, ok)
	assert.Equal(t, "a financial institution", entry.Glosses[0].Text)
}

func TestGetSenseIdxMismatchFallsThroughToScan(t *testing.T) {
	l := New(nil)
	l.BuildFromIndex([]IndexEntry{{Term: "bank", Language: "en", EtymCount: 2}})
	require.NoError(t, l.AddFromEntry(EntryInput{Term: "bank", Language: "en", SenseIdx: 0}))
	require.NoError(t, l.AddFromEntry(EntryInput{Term: "bank", Language: "en", SenseIdx: 1}))

	got := l.Get("bank", strp("en"), intp(5))
	assert.Len(t, got, 2, "unmatched sense_idx should return the whole slot")
}

func TestAddNoEntryNeverUpgradesExisting(t *testing.T) {
	l := New(nil)
	l.BuildFromIndex([]IndexEntry{{Term: "cat", Language: "en", EtymCount: 1}})
	l.AddNoEntry("cat", "fr", nil)

	got := l.Get("cat", nil, nil)
	require.Len(t, got, 2, "single-meaning stub plus the fr no-entry, cross-language")

	var sawStub, sawNoEntry bool
	for _, n := range got {
		switch n.(type) {
		case *SingleMeaningStub:
			sawStub = true
		case *NoEntryLexeme:
			sawNoEntry = true
		}
	}
	assert.True(t, sawStub)
	assert.True(t, sawNoEntry)
}

func TestGetWithoutLanguageSearchesAllHomonyms(t *testing.T) {
	l := New(nil)
	l.BuildFromIndex([]IndexEntry{
		{Term: "gift", Language: "en", EtymCount: 1},
		{Term: "gift", Language: "de", EtymCount: 1},
	})

	got := l.Get("gift", nil, nil)
	assert.Len(t, got, 2)
}

func TestLexiconUniquenessPerSenseIdx(t *testing.T) {
	l := New(nil)
	l.BuildFromIndex([]IndexEntry{{Term: "bank", Language: "en", EtymCount: 2}})
	require.NoError(t, l.AddFromEntry(EntryInput{Term: "bank", Language: "en", SenseIdx: 0}))

	got := l.Get("bank", strp("en"), intp(0))
	assert.Len(t, got, 1, "at most one lexeme per (term, language, sense_idx)")
}

func TestAllYieldsEveryLexemeOnce(t *testing.T) {
	l := New(nil)
	l.BuildFromIndex([]IndexEntry{
		{Term: "cat", Language: "en", EtymCount: 1},
		{Term: "bank", Language: "en", EtymCount: 2},
	})
	require.NoError(t, l.AddFromEntry(EntryInput{Term: "bank", Language: "en", SenseIdx: 0}))
	l.AddNoEntry("banque", "fr", nil)

	all := l.All()
	assert.Len(t, all, 3)
}

func TestStaticIndexSourceLoadIndex(t *testing.T) {
	src := StaticIndexSource{Entries: []IndexEntry{{Term: "cat", Language: "en", EtymCount: 1}}}
	entries, err := src.LoadIndex(nil)
	require.NoError(t, err)
	assert.Equal(t, src.Entries, entries)
}

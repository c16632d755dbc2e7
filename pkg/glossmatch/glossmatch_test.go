package glossmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturizeExactMatch(t *testing.T) {
	feats := Featurize("a domesticated feline", "a domesticated feline", false)
	require.Len(t, feats, len(FeatureNames))
	assert.Equal(t, 1.0, feats[0]) // char_eq
	assert.Equal(t, 0.0, feats[5]) // char_levenshtein
}

func TestFeaturizeDisjointStrings(t *testing.T) {
	feats := Featurize("cat", "zzz qqq", false)
	assert.Equal(t, 0.0, feats[0])                     // char_eq
	assert.Equal(t, 0.0, feats[len(FeatureNames)-1])   // tversky_0.32: no shared tokens
}

func TestFeaturizeWithFuzzyAppendsLastFeature(t *testing.T) {
	feats := Featurize("cat", "cats", true)
	require.Len(t, feats, len(FeatureNamesWithFuzzy))
}

func TestCharLevenshteinCapsAtEight(t *testing.T) {
	feats := Featurize("aaaaaaaaaa", "bbbbbbbbbb", false)
	assert.Equal(t, 8.0, feats[5])
}

func TestWordLevenshteinCapsAtFive(t *testing.T) {
	feats := Featurize("a b c d e f g", "h i j k l m n", false)
	assert.Equal(t, 5.0, feats[11])
}

func TestTverskyPerfectOverlap(t *testing.T) {
	feats := Featurize("small domesticated cat", "small domesticated cat", false)
	assert.InDelta(t, 1.0, feats[len(FeatureNames)-1], 1e-9)
}

func TestMatcherBestPicksHighestScoringDefinition(t *testing.T) {
	model := &Model{
		Mean:      make([]float64, len(FeatureNames)),
		Scale:     onesLike(len(FeatureNames)),
		Weights:   onesLike(len(FeatureNames)),
		Intercept: 0,
	}
	m := New(model)

	idx, ok := m.Best("small domesticated feline", []string{
		"a type of tree",
		"a small domesticated feline",
		"a unit of currency",
	})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestMatcherBestNoDefinitions(t *testing.T) {
	m := New(&Model{})
	_, ok := m.Best("anything", nil)
	assert.False(t, ok)
}

func TestMatcherBestNilModel(t *testing.T) {
	m := New(nil)
	_, ok := m.Best("anything", []string{"x"})
	assert.False(t, ok)
}

func onesLike(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

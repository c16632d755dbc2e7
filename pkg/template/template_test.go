package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/wikitext"
)

func registry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(DefaultHandlers())
}

func TestInheritedTemplate(t *testing.T) {
	r := registry(t)
	tpl := &wikitext.Template{Name: "inh", Params: map[string]string{
		"1": "en", "2": "enm", "3": "cat",
	}}

	n, err := r.ToNormalization(tpl)
	require.NoError(t, err)
	assert.Equal(t, ontology.INHERITANCE, n.Type)
	require.Len(t, n.Targets, 1)
	assert.Equal(t, "cat", n.Targets[0].Term)
	assert.Equal(t, "enm", n.Targets[0].Language)
}

func TestBorrowedAliasResolves(t *testing.T) {
	r := registry(t)
	tpl := &wikitext.Template{Name: "borrowed", Params: map[string]string{
		"1": "en", "2": "fr", "3": "garage",
	}}
	n, err := r.ToNormalization(tpl)
	require.NoError(t, err)
	assert.Equal(t, ontology.BORROWING, n.Type)
	assert.Equal(t, "garage", n.Targets[0].Term)
}

func TestUnknownTemplateNameFails(t *testing.T) {
	r := registry(t)
	_, err := r.ToNormalization(&wikitext.Template{Name: "not-a-real-template"})
	require.Error(t, err)
}

func TestDescendantsSemanticsUpgradesTypeAndUncertain(t *testing.T) {
	r := registry(t)
	tpl := &wikitext.Template{Name: "desc", Params: map[string]string{
		"1": "enm", "2": "word", "bor": "1", "unc": "yes",
	}}
	n, err := r.ToNormalization(tpl)
	require.NoError(t, err)
	assert.Equal(t, ontology.BORROWING, n.Type)
	assert.True(t, n.Uncertain)
}

func TestAffixMultipleTargets(t *testing.T) {
	r := registry(t)
	tpl := &wikitext.Template{Name: "affix", Params: map[string]string{
		"1": "en", "term1": "black", "term2": "bird",
	}}
	n, err := r.ToNormalization(tpl)
	require.NoError(t, err)
	assert.Equal(t, ontology.COMPOUND, n.Type)
	require.Len(t, n.Targets, 2)
	assert.Equal(t, "black", n.Targets[0].Term)
	assert.Equal(t, "en", n.Targets[0].Language)
	assert.Equal(t, "bird", n.Targets[1].Term)
	assert.Equal(t, "en", n.Targets[1].Language)
}

func TestArabicRootConcatenatesWithSpaces(t *testing.T) {
	r := registry(t)
	tpl := &wikitext.Template{Name: "ar-root", Params: map[string]string{
		"root": "k", "term1": "t", "term2": "b",
	}}
	n, err := r.ToNormalization(tpl)
	require.NoError(t, err)
	assert.Equal(t, "k t b", n.Targets[0].Term)
	assert.Equal(t, "ar", n.Targets[0].Language)
}

func TestJapaneseLinkOverridesTerm(t *testing.T) {
	r := registry(t)
	tpl := &wikitext.Template{Name: "ja-l", Params: map[string]string{
		"1": "漢字", "linkto": "漢字2",
	}}
	n, err := r.ToNormalization(tpl)
	require.NoError(t, err)
	assert.Equal(t, "漢字2", n.Targets[0].Term)
	assert.Equal(t, "漢字", n.Targets[0].Anchor)
}

func TestUnknownTargetSentinel(t *testing.T) {
	r := registry(t)
	tpl := &wikitext.Template{Name: "unk", Params: map[string]string{"unc": "1"}}
	n, err := r.ToNormalization(tpl)
	require.NoError(t, err)
	require.Len(t, n.Targets, 1)
	assert.True(t, n.Targets[0].NoTarget)
	assert.True(t, n.Uncertain)
}

func TestDeterminePOSFromEquivalenceTable(t *testing.T) {
	pos, ok := DeterminePOS("v", "anything")
	require.True(t, ok)
	assert.Equal(t, "verb", pos)
}

func TestDeterminePOSFromGlossHeuristic(t *testing.T) {
	pos, ok := DeterminePOS("", "to run quickly")
	require.True(t, ok)
	assert.Equal(t, "verb", pos)

	pos, ok = DeterminePOS("", "a small house")
	require.True(t, ok)
	assert.Equal(t, "noun", pos)

	pos, ok = DeterminePOS("", "quickly")
	require.True(t, ok)
	assert.Equal(t, "adverb", pos)

	_, ok = DeterminePOS("", "house")
	assert.False(t, ok)
}

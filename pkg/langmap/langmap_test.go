package langmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Static {
	return NewStatic([]Lang{
		{Code: "en", Name: "English"},
		{Code: "enm", Name: "Middle English", Parent: "en"},
		{Code: "gem-pro", Name: "Proto-Germanic", IsFamily: true},
		{Code: "de", Name: "German"},
	}).WithSubstitution("de", map[string]string{"ß": "ss"})
}

func TestContainsAndCode2Name(t *testing.T) {
	m := sample()
	assert.True(t, m.Contains("en"))
	assert.False(t, m.Contains("xx"))

	name, err := m.Code2Name("de")
	require.NoError(t, err)
	assert.Equal(t, "German", name)

	_, err = m.Code2Name("xx")
	assert.Error(t, err)
}

func TestCode2ParentAndIsFamily(t *testing.T) {
	m := sample()
	parent, ok := m.Code2Parent("enm")
	require.True(t, ok)
	assert.Equal(t, "en", parent)

	_, ok = m.Code2Parent("en")
	assert.False(t, ok)

	assert.True(t, m.IsFamily("gem-pro"))
	assert.False(t, m.IsFamily("en"))
}

func TestName2Code(t *testing.T) {
	m := sample()
	codes, err := m.Name2Code("German", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"de"}, codes)

	_, err = m.Name2Code("Klingon", false)
	assert.Error(t, err)
}

func TestNormalizeAppliesSubstitution(t *testing.T) {
	m := sample()
	assert.Equal(t, "strasse", m.Normalize("straße", "de"))
	assert.Equal(t, "straße", m.Normalize("straße", "en"), "no substitution table for en")
}

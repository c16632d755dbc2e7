package entitystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifyCreatesNewEntity(t *testing.T) {
	s := New(nil)
	e := s.Identify("Julius Caesar", &TemplateData{Born: "100 BC", Occupation: "general"})
	require.NotNil(t, e)
	assert.Equal(t, "Julius Caesar", e.Name)
	assert.Equal(t, "100 BC", e.Born)
	assert.Equal(t, "general", e.Occupation)
	assert.NotEmpty(t, e.ID)
}

func TestIdentifyMergesCompatibleEntity(t *testing.T) {
	s := New(nil)
	first := s.Identify("Julius Caesar", &TemplateData{Born: "100 BC", Occupation: "general"})
	second := s.Identify("Julius Caesar", &TemplateData{Died: "44 BC", Occupation: "statesman"})

	require.Same(t, first, second, "compatible mentions should merge into the same entity")
	assert.Equal(t, "100 BC", second.Born)
	assert.Equal(t, "44 BC", second.Died)
	assert.Equal(t, "general; statesman", second.Occupation)
}

func TestIdentifySplitsIncompatibleEntity(t *testing.T) {
	s := New(nil)
	first := s.Identify("John Smith", &TemplateData{Born: "1800"})
	second := s.Identify("John Smith", &TemplateData{Born: "1950"})

	assert.NotSame(t, first, second, "conflicting born dates must not merge")
	assert.Equal(t, "1800", first.Born)
	assert.Equal(t, "1950", second.Born)
}

func TestIdentifyWithoutTemplateData(t *testing.T) {
	s := New(nil)
	e := s.Identify("Anonymous", nil)
	require.NotNil(t, e)
	assert.Equal(t, "Anonymous", e.Name)
	assert.Empty(t, e.Born)
}

func TestIdentifyOccupationConcatDeterministicOrder(t *testing.T) {
	s := New(nil)
	first := s.Identify("Ada Lovelace", &TemplateData{Occupation: "mathematician"})
	second := s.Identify("Ada Lovelace", &TemplateData{Occupation: "writer"})
	third := s.Identify("Ada Lovelace", &TemplateData{Occupation: "mathematician"})

	assert.Equal(t, "mathematician; writer", second.Occupation)
	assert.Equal(t, "mathematician; writer", third.Occupation, "repeated occupation should not duplicate")
}

func TestIdentifyDifferentNamesDoNotMerge(t *testing.T) {
	s := New(nil)
	a := s.Identify("Alexander", &TemplateData{Born: "356 BC"})
	b := s.Identify("Alexandra", &TemplateData{Born: "356 BC"})
	assert.NotSame(t, a, b)
}

package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/ontology"
)

func TestNewDerivesKeysFromEndpoints(t *testing.T) {
	src := &lexicon.SingleMeaningStub{LexemeBase: lexicon.LexemeBase{Term: "bank", Language: "en"}}
	tgt := &lexicon.SingleMeaningStub{LexemeBase: lexicon.LexemeBase{Term: "banque", Language: "fr"}}

	r := New(src, tgt, Attributes{Type: ontology.LEARNED_BORROWING})
	assert.Equal(t, src.Key(), r.SourceKey)
	assert.Equal(t, tgt.Key(), r.TargetKey)
	assert.Equal(t, ontology.LEARNED_BORROWING, r.Attrs.Type)
}

func TestLinkNormalizationWithHelpersAreImmutable(t *testing.T) {
	n := LinkNormalization{Type: ontology.RELATED}
	upgraded := n.WithType(ontology.ORIGIN).WithUncertain(true)

	assert.Equal(t, ontology.RELATED, n.Type, "original must be untouched")
	assert.False(t, n.Uncertain)
	assert.Equal(t, ontology.ORIGIN, upgraded.Type)
	assert.True(t, upgraded.Uncertain)
}

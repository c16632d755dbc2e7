// Package relation holds the shared intermediate and final relation data
// model: the LinkNormalization produced by the Template Handler and Rule
// Engine, and the Relation edges consumed by the Reduced Relation Store.
package relation

import (
	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/ontology"
)

// LinkTarget is an unresolved reference to a relation endpoint, as carried
// by a LinkNormalization before the Node Resolver turns it into a
// lexicon.Node. A target with NoTarget set resolves to a Phantom.
type LinkTarget struct {
	Term      string
	Language  string
	Qualifier string
	Anchor    string
	NoTarget  bool

	// EntityName, when non-empty, routes resolution to the Entity Store
	// instead of the Lexicon (named-after / wikipedia-link targets).
	EntityName string

	// ID cross-references a lexeme's etymid or a gloss's sense id.
	ID string
	// POS is the template's stated part of speech, if any.
	POS string
	// Gloss is the template's own gloss text ("t" parameter), used by the
	// Gloss Matcher to disambiguate homonyms.
	Gloss string
}

// LinkNormalization is the structured {relation, source_ref, target_refs}
// produced by translating a template invocation (or a Rule Engine
// rewrite) into relation-shaped data. SourceRef is nil when the source is
// the surrounding context lexeme.
type LinkNormalization struct {
	Type      ontology.Type
	SourceRef *LinkTarget
	Targets   []LinkTarget
	Text      string
	Uncertain bool
}

// WithUncertain returns a copy of n with Uncertain set, leaving n
// untouched (Rule Engine rewrites are modeled as producing new
// immutable values rather than mutating in place).
func (n LinkNormalization) WithUncertain(uncertain bool) LinkNormalization {
	n.Uncertain = uncertain
	return n
}

// WithType returns a copy of n with its Type replaced.
func (n LinkNormalization) WithType(t ontology.Type) LinkNormalization {
	n.Type = t
	return n
}

// Attributes is the edge payload stored alongside (source, target, type).
type Attributes struct {
	Type      ontology.Type
	Text      string
	Uncertain bool
	Sub       string
}

// Relation is one candidate or finalized edge: (source, target,
// attributes). Source and Target carry their own identity via
// lexicon.Node.Key(); Relation itself stores opaque keys plus the node
// values needed by a GraphSink.
type Relation struct {
	SourceKey string
	TargetKey string
	Source    lexicon.Node
	Target    lexicon.Node
	Attrs     Attributes
}

// New constructs a Relation from resolved endpoint values, deriving edge
// keys from each endpoint's Key().
func New(source lexicon.Node, target lexicon.Node, attrs Attributes) Relation {
	return Relation{
		SourceKey: source.Key(),
		Source:    source,
		TargetKey: target.Key(),
		Target:    target,
		Attrs:     attrs,
	}
}

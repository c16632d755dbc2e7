// Package ontology defines the closed relation-type lattice used to classify
// edges in the etymology graph: a fixed is_a hierarchy rooted at RELATED,
// with directedness inherited from membership under ORIGIN.
package ontology

import (
	"errors"
	"fmt"
)

// Type is one of the closed set of relation types enumerated in the
// hierarchy literal below. Values are comparable and usable as map keys.
type Type string

// Leaves and internal nodes of the lattice. Names match the canonical
// hierarchy in spec §6.
const (
	RELATED Type = "RELATED"

	SIBLING    Type = "SIBLING"
	COGNATE    Type = "COGNATE"
	NONCOGNATE Type = "NONCOGNATE"
	DOUBLET    Type = "DOUBLET"
	ALTFORM    Type = "ALTFORM"

	ORIGIN Type = "ORIGIN"

	HISTORICAL  Type = "HISTORICAL"
	INHERITANCE Type = "INHERITANCE"
	DERIVATION  Type = "DERIVATION"
	ROOT        Type = "ROOT"

	BORROWING               Type = "BORROWING"
	LEARNED_BORROWING       Type = "LEARNED_BORROWING"
	SEMI_LEARNED_BORROWING  Type = "SEMI_LEARNED_BORROWING"
	ORTHOGRAPHIC_BORROWING  Type = "ORTHOGRAPHIC_BORROWING"
	UNADAPTED_BORROWING     Type = "UNADAPTED_BORROWING"
	CALQUE                  Type = "CALQUE"
	PARTIAL_CALQUE          Type = "PARTIAL_CALQUE"
	SEMANTIC_LOAN           Type = "SEMANTIC_LOAN"
	PSM                     Type = "PSM"

	MORPHOLOGICAL Type = "MORPHOLOGICAL"
	AFFIX         Type = "AFFIX"
	PREFIX        Type = "PREFIX"
	INFIX         Type = "INFIX"
	SUFFIX        Type = "SUFFIX"
	CONFIX        Type = "CONFIX"
	CIRCUMFIX     Type = "CIRCUMFIX"
	COMPOUND      Type = "COMPOUND"
	UNIVERBATION  Type = "UNIVERBATION"
	BLENDING      Type = "BLENDING"
	CLIPPING      Type = "CLIPPING"
	BACKFORM      Type = "BACKFORM"
	ABBREV        Type = "ABBREV"
	SHORTENING    Type = "SHORTENING"

	OTHER   Type = "OTHER"
	UNKNOWN Type = "UNKNOWN"
	EPONYM  Type = "EPONYM"
	ONOM    Type = "ONOM"
)

// parent maps each non-root type to its direct parent in the lattice.
var parent = map[Type]Type{
	SIBLING: RELATED,
	ORIGIN:  RELATED,

	COGNATE:    SIBLING,
	NONCOGNATE: SIBLING,
	DOUBLET:    SIBLING,
	ALTFORM:    SIBLING,

	HISTORICAL:    ORIGIN,
	BORROWING:     ORIGIN,
	MORPHOLOGICAL: ORIGIN,
	OTHER:         ORIGIN,

	INHERITANCE: HISTORICAL,
	DERIVATION:  HISTORICAL,
	ROOT:        HISTORICAL,

	LEARNED_BORROWING:      BORROWING,
	SEMI_LEARNED_BORROWING: BORROWING,
	ORTHOGRAPHIC_BORROWING: BORROWING,
	UNADAPTED_BORROWING:    BORROWING,
	CALQUE:                 BORROWING,
	PARTIAL_CALQUE:         BORROWING,
	SEMANTIC_LOAN:          BORROWING,
	PSM:                    BORROWING,

	AFFIX:        MORPHOLOGICAL,
	COMPOUND:     MORPHOLOGICAL,
	UNIVERBATION: MORPHOLOGICAL,
	BLENDING:     MORPHOLOGICAL,
	CLIPPING:     MORPHOLOGICAL,
	BACKFORM:     MORPHOLOGICAL,
	ABBREV:       MORPHOLOGICAL,
	SHORTENING:   MORPHOLOGICAL,

	PREFIX:    AFFIX,
	INFIX:     AFFIX,
	SUFFIX:    AFFIX,
	CONFIX:    AFFIX,
	CIRCUMFIX: AFFIX,

	UNKNOWN: OTHER,
	EPONYM:  OTHER,
	ONOM:    OTHER,
}

// humanNames gives a display label for each type; types without an entry
// fall back to their Type string.
var humanNames = map[Type]string{
	RELATED:                "Related",
	SIBLING:                "Sibling",
	COGNATE:                "Cognate",
	NONCOGNATE:             "Non-cognate",
	DOUBLET:                "Doublet",
	ALTFORM:                "Alternative form",
	ORIGIN:                 "Origin",
	HISTORICAL:             "Historical",
	INHERITANCE:            "Inherited",
	DERIVATION:             "Derived",
	ROOT:                   "Root",
	BORROWING:              "Borrowing",
	LEARNED_BORROWING:      "Learned borrowing",
	SEMI_LEARNED_BORROWING: "Semi-learned borrowing",
	ORTHOGRAPHIC_BORROWING: "Orthographic borrowing",
	UNADAPTED_BORROWING:    "Unadapted borrowing",
	CALQUE:                 "Calque",
	PARTIAL_CALQUE:         "Partial calque",
	SEMANTIC_LOAN:          "Semantic loan",
	PSM:                    "Phono-semantic matching",
	MORPHOLOGICAL:          "Morphological",
	AFFIX:                  "Affix",
	PREFIX:                 "Prefix",
	INFIX:                  "Infix",
	SUFFIX:                 "Suffix",
	CONFIX:                 "Confix",
	CIRCUMFIX:              "Circumfix",
	COMPOUND:               "Compound",
	UNIVERBATION:           "Univerbation",
	BLENDING:               "Blend",
	CLIPPING:               "Clipping",
	BACKFORM:               "Back-formation",
	ABBREV:                 "Abbreviation",
	SHORTENING:             "Shortening",
	OTHER:                  "Other",
	UNKNOWN:                "Unknown origin",
	EPONYM:                 "Eponym",
	ONOM:                   "Onomatopoeia",
}

// ancestors[t] holds t and every type above it in the lattice, inclusive.
// Computed once at package init so IsA is O(1).
var ancestors map[Type]map[Type]struct{}

func init() {
	ancestors = make(map[Type]map[Type]struct{}, len(allTypes))
	for _, t := range allTypes {
		ancestors[t] = ancestorsOf(t)
	}
}

func ancestorsOf(t Type) map[Type]struct{} {
	set := map[Type]struct{}{t: {}}
	cur := t
	for {
		p, ok := parent[cur]
		if !ok {
			break
		}
		set[p] = struct{}{}
		cur = p
	}
	return set
}

// allTypes enumerates every member of the lattice, root included. Order
// matches the canonical hierarchy in spec §6.
var allTypes = []Type{
	RELATED,
	SIBLING, COGNATE, NONCOGNATE, DOUBLET, ALTFORM,
	ORIGIN,
	HISTORICAL, INHERITANCE, DERIVATION, ROOT,
	BORROWING, LEARNED_BORROWING, SEMI_LEARNED_BORROWING, ORTHOGRAPHIC_BORROWING,
	UNADAPTED_BORROWING, CALQUE, PARTIAL_CALQUE, SEMANTIC_LOAN, PSM,
	MORPHOLOGICAL, AFFIX, PREFIX, INFIX, SUFFIX, CONFIX, CIRCUMFIX,
	COMPOUND, UNIVERBATION, BLENDING, CLIPPING, BACKFORM, ABBREV, SHORTENING,
	OTHER, UNKNOWN, EPONYM, ONOM,
}

// ErrUnknownRelationType is returned (wrapped) by Parse for a name outside
// the lattice.
var ErrUnknownRelationType = errors.New("ontology: unknown relation type")

// Parse resolves a relation type by its canonical name. Fails, wrapping
// ErrUnknownRelationType, if name isn't in the lattice.
func Parse(name string) (Type, error) {
	t := Type(name)
	if _, ok := ancestors[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelationType, name)
	}
	return t, nil
}

// IsA reports whether u is an ancestor of t (inclusive): t.IsA(t) and
// t.IsA(RELATED) always hold for any valid t.
func (t Type) IsA(u Type) bool {
	_, ok := ancestors[t][u]
	return ok
}

// Directed reports whether edges of this type carry directional meaning.
// A type is directed iff it lies under ORIGIN.
func (t Type) Directed() bool {
	return t.IsA(ORIGIN)
}

// HumanName returns the display label for t, falling back to the bare Type
// string if none is registered (should not happen for lattice members).
func (t Type) HumanName() string {
	if n, ok := humanNames[t]; ok {
		return n
	}
	return string(t)
}

// Valid reports whether t is a recognized member of the lattice.
func (t Type) Valid() bool {
	_, ok := ancestors[t]
	return ok
}

// Ancestors returns a defensive copy of t's ancestor set, t inclusive.
func (t Type) Ancestors() []Type {
	set := ancestors[t]
	out := make([]Type, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	return out
}

// MoreSpecificThan reports whether t is a strict descendant of u in the
// lattice (t.IsA(u) but t != u).
func (t Type) MoreSpecificThan(u Type) bool {
	return t != u && t.IsA(u)
}

// AllTypes returns every member of the lattice, in hierarchy order.
func AllTypes() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

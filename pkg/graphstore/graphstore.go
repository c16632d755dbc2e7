// Package graphstore implements the Reduced Relation Store: an
// incremental reducer that deduplicates, type-upgrades, and accumulates
// Relation edges across four internal stores as they're added, then
// collapses them into one finalized multi-typed directed graph.
package graphstore

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/nucleus/etymograph/pkg/lexicon"
	"github.com/nucleus/etymograph/pkg/ontology"
	"github.com/nucleus/etymograph/pkg/relation"
)

// ErrAlreadyFinalized is returned by Add once Finalize has run: the store
// is write-only during extraction and read-only after.
var ErrAlreadyFinalized = errors.New("graphstore: store already finalized")

type pairKey struct{ a, b string }

func canonicalPair(x, y string) pairKey {
	if x <= y {
		return pairKey{x, y}
	}
	return pairKey{y, x}
}

type directedKey struct{ src, tgt string }

// FinalGraph is the merged, reduced graph Finalize produces: one Relation
// per (source, target, type) key across all four internal stores.
type FinalGraph struct {
	Edges []relation.Relation
}

// GraphSink is the narrow interface a graph serializer implements (Neo4j
// CSV, JSONL, RDF -- all out of scope beyond the interface itself).
type GraphSink interface {
	Emit(ctx context.Context, graph *FinalGraph) error
}

// Store is the Reduced Relation Store. Construct with New, feed it every
// candidate Relation an extractor produces via Add, then call Finalize
// once extraction is complete.
type Store struct {
	mu     sync.Mutex
	tree   LanguageTree
	logger *zap.Logger

	related  map[pairKey]relation.Relation
	sibling  map[pairKey]map[ontology.Type]relation.Relation
	origin   map[directedKey]relation.Relation
	overflow map[directedKey][]relation.Relation

	finalized bool
	final     *FinalGraph
}

// New builds an empty Store. tree may be nil, in which case the
// historical-language-swap add rule never fires. logger may be nil.
func New(tree LanguageTree, logger *zap.Logger) *Store {
	return &Store{
		tree:     tree,
		logger:   logger,
		related:  make(map[pairKey]relation.Relation),
		sibling:  make(map[pairKey]map[ontology.Type]relation.Relation),
		origin:   make(map[directedKey]relation.Relation),
		overflow: make(map[directedKey][]relation.Relation),
	}
}

// Add incrementally folds rel into the store.
func (s *Store) Add(rel relation.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrAlreadyFinalized
	}
	s.add(rel)
	return nil
}

func (s *Store) add(rel relation.Relation) {
	if rel.SourceKey == rel.TargetKey {
		return // rule 1: drop self-loops
	}

	rel = s.swapHistorical(rel)

	typ := rel.Attrs.Type
	switch {
	case typ.Directed():
		s.addDirected(rel)
	case typ.IsA(ontology.SIBLING):
		s.addSibling(rel)
	default:
		s.addRelated(rel)
	}
}

// swapHistorical implements add rule 2: if the configured language tree
// says tgt's language is older than src's, the edge is reversed so older
// languages always appear as sources.
func (s *Store) swapHistorical(rel relation.Relation) relation.Relation {
	if s.tree == nil || !rel.Attrs.Type.IsA(ontology.HISTORICAL) {
		return rel
	}
	srcBase, srcOK := lexicon.AsLexeme(rel.Source)
	tgtBase, tgtOK := lexicon.AsLexeme(rel.Target)
	if !srcOK || !tgtOK || srcBase.Language == "" || tgtBase.Language == "" {
		return rel
	}
	if s.tree.IsOlder(tgtBase.Language, srcBase.Language) {
		rel.SourceKey, rel.TargetKey = rel.TargetKey, rel.SourceKey
		rel.Source, rel.Target = rel.Target, rel.Source
	}
	return rel
}

// addDirected implements add rule 3.
func (s *Store) addDirected(rel relation.Relation) {
	pk := canonicalPair(rel.SourceKey, rel.TargetKey)
	delete(s.related, pk) // more specific wins

	dk := directedKey{rel.SourceKey, rel.TargetKey}
	existing, inOrigin := s.origin[dk]
	if inOrigin {
		if merged, ok := mergeAttrs(existing.Attrs, rel.Attrs); ok {
			existing.Attrs = merged
			s.origin[dk] = existing
			return
		}
	}

	reverse := directedKey{rel.TargetKey, rel.SourceKey}
	_, twoCycle := s.origin[reverse]

	// Incompatible parallels, 2-cycles, and edges whose pair already has
	// overflow entries all go to overflow, merging with a compatible entry
	// there when one exists.
	entries := s.overflow[dk]
	for i, shelved := range entries {
		if merged, ok := mergeAttrs(shelved.Attrs, rel.Attrs); ok {
			shelved.Attrs = merged
			entries[i] = shelved
			return
		}
	}
	if inOrigin || twoCycle || len(entries) > 0 {
		s.overflow[dk] = append(entries, rel)
		return
	}

	s.origin[dk] = rel
}

// addSibling implements add rule 4.
func (s *Store) addSibling(rel relation.Relation) {
	pk := canonicalPair(rel.SourceKey, rel.TargetKey)
	delete(s.related, pk)

	byType := s.sibling[pk]
	if byType == nil {
		byType = make(map[ontology.Type]relation.Relation)
		s.sibling[pk] = byType
	}
	typ := rel.Attrs.Type
	if existing, ok := byType[typ]; ok {
		merged, _ := mergeAttrs(existing.Attrs, rel.Attrs) // same type: always merges
		existing.Attrs = merged
		byType[typ] = existing
	} else {
		byType[typ] = rel
	}
}

// addRelated implements add rule 5.
func (s *Store) addRelated(rel relation.Relation) {
	pk := canonicalPair(rel.SourceKey, rel.TargetKey)

	fwd, rev := directedKey{rel.SourceKey, rel.TargetKey}, directedKey{rel.TargetKey, rel.SourceKey}
	if existing, ok := s.origin[fwd]; ok {
		s.mergeIntoOrigin(fwd, existing, rel)
		return
	}
	if existing, ok := s.origin[rev]; ok {
		s.mergeIntoOrigin(rev, existing, rel)
		return
	}
	if byType, ok := s.sibling[pk]; ok && len(byType) > 0 {
		for typ, existing := range byType {
			merged, _ := mergeAttrs(existing.Attrs, rel.Attrs)
			existing.Attrs = merged
			byType[typ] = existing
			break
		}
		s.logMoreSpecific(rel)
		return
	}

	if existing, ok := s.related[pk]; ok {
		merged, _ := mergeAttrs(existing.Attrs, rel.Attrs)
		existing.Attrs = merged
		s.related[pk] = existing
		return
	}
	s.related[pk] = rel
}

func (s *Store) mergeIntoOrigin(dk directedKey, existing, incoming relation.Relation) {
	merged, _ := mergeAttrs(existing.Attrs, incoming.Attrs)
	existing.Attrs = merged
	s.origin[dk] = existing
	s.logMoreSpecific(incoming)
}

func (s *Store) logMoreSpecific(rel relation.Relation) {
	if s.logger == nil {
		return
	}
	s.logger.Debug("merge more specific",
		zap.String("source", rel.SourceKey),
		zap.String("target", rel.TargetKey),
		zap.String("type", string(rel.Attrs.Type)))
}

// mergeAttrs applies the merge rule: the more specific type wins, text is
// joined with "; " in insertion order, uncertain is the logical OR. ok is
// false when neither type is an ancestor of the other, signalling the
// caller to shelve the incoming edge instead of merging it.
func mergeAttrs(existing, incoming relation.Attributes) (relation.Attributes, bool) {
	switch {
	case existing.Type.IsA(incoming.Type):
		// existing already carries the more (or equally) specific type
	case incoming.Type.IsA(existing.Type):
		existing.Type = incoming.Type
	default:
		return existing, false
	}
	existing.Text = joinText(existing.Text, incoming.Text)
	existing.Uncertain = existing.Uncertain || incoming.Uncertain
	return existing, true
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "; " + b
	}
}

// Finalize runs the reduction passes and returns the merged graph. Once
// called, the store stops accepting Add calls; calling Finalize again
// returns the same graph without recomputing it.
func (s *Store) Finalize() (*FinalGraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return s.final, nil
	}

	s.removeCycles()
	s.transitiveReduce()
	s.reduceUnspecific()

	s.final = s.mergeStores()
	s.finalized = true
	return s.final, nil
}

func (s *Store) mergeStores() *FinalGraph {
	var edges []relation.Relation
	for _, r := range s.related {
		edges = append(edges, r)
	}
	for _, byType := range s.sibling {
		for _, r := range byType {
			edges = append(edges, r)
		}
	}
	for _, r := range s.origin {
		edges = append(edges, r)
	}
	for _, rs := range s.overflow {
		edges = append(edges, rs...)
	}
	return &FinalGraph{Edges: edges}
}

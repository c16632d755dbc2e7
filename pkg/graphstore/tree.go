package graphstore

import (
	"encoding/json"
	"fmt"
	"os"
)

// LanguageTree reports diachronic ancestry between language codes for the
// historical-swap add rule: an older language is always the source, a
// newer one the target. This is deliberately a different abstraction from
// langmap.Mapper.Code2Parent, which substitutes an etymology-only dialect
// code for its family parent during template resolution -- conflating the
// two would make the Node Resolver rewrite every target language to its
// nearest tree ancestor instead of resolving it as written.
type LanguageTree interface {
	// IsOlder reports whether to is reachable from from by one or more
	// older-to-newer edges (from is an ancestor of to).
	IsOlder(from, to string) bool
}

// StaticTree is a literal older->newer edge list with its reachability
// closed once at construction time. NewStaticTree takes a literal slice;
// LoadStaticTreeFile builds one from a JSON file of the same pairs.
type StaticTree struct {
	reachable map[string]map[string]bool
}

// NewStaticTree builds a StaticTree from (older, newer) edge pairs.
func NewStaticTree(edges [][2]string) *StaticTree {
	adj := make(map[string]map[string]bool)
	for _, e := range edges {
		older, newer := e[0], e[1]
		if adj[older] == nil {
			adj[older] = make(map[string]bool)
		}
		adj[older][newer] = true
	}

	reach := make(map[string]map[string]bool, len(adj))
	for start := range adj {
		seen := map[string]bool{start: true}
		stack := []string{start}
		for len(stack) > 0 {
			n := len(stack) - 1
			node := stack[n]
			stack = stack[:n]
			for next := range adj[node] {
				if seen[next] {
					continue
				}
				seen[next] = true
				if reach[start] == nil {
					reach[start] = make(map[string]bool)
				}
				reach[start][next] = true
				stack = append(stack, next)
			}
		}
	}
	return &StaticTree{reachable: reach}
}

// IsOlder implements LanguageTree.
func (t *StaticTree) IsOlder(from, to string) bool {
	return t.reachable[from][to]
}

// LoadStaticTreeFile reads a JSON array of [older, newer] language code
// pairs -- the phylogenetic data file spec.md §6 names -- and builds a
// StaticTree from it.
func LoadStaticTreeFile(path string) (*StaticTree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graphstore: read language tree file: %w", err)
	}
	var edges [][2]string
	if err := json.Unmarshal(raw, &edges); err != nil {
		return nil, fmt.Errorf("graphstore: parse language tree file: %w", err)
	}
	return NewStaticTree(edges), nil
}

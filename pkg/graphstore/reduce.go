package graphstore

import "sort"

// removeCycles finds strongly connected components of origin and shelves
// every edge lying entirely within a nontrivial one into overflow: once a
// cycle's own edges are all removed, the SCC has nothing left connecting
// it, so one pass is always enough (2-cycles are already routed to
// overflow at add time; this handles longer cycles only visible once
// every edge is in place).
func (s *Store) removeCycles() {
	for _, scc := range s.stronglyConnectedComponents() {
		if len(scc) < 2 {
			continue
		}
		for dk := range s.origin {
			if scc[dk.src] && scc[dk.tgt] {
				rel := s.origin[dk]
				delete(s.origin, dk)
				s.overflow[dk] = append(s.overflow[dk], rel)
			}
		}
	}
}

// stronglyConnectedComponents runs Tarjan's algorithm over origin's
// adjacency, generalizing the undirected BFS-over-adjacency idiom used
// elsewhere in the pack (community detection's weakly connected
// components) to the directed case the cycle-removal rule actually needs.
func (s *Store) stronglyConnectedComponents() []map[string]bool {
	adj := make(map[string][]string)
	nodes := make(map[string]bool)
	for dk := range s.origin {
		adj[dk.src] = append(adj[dk.src], dk.tgt)
		nodes[dk.src] = true
		nodes[dk.tgt] = true
	}

	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var result []map[string]bool

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && indices[w] < lowlink[v] {
				lowlink[v] = indices[w]
			}
		}

		if lowlink[v] == indices[v] {
			comp := make(map[string]bool)
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp[w] = true
				if w == v {
					break
				}
			}
			result = append(result, comp)
		}
	}

	order := make([]string, 0, len(nodes))
	for n := range nodes {
		order = append(order, n)
	}
	sort.Strings(order) // deterministic traversal order

	for _, v := range order {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}
	return result
}

// transitiveReduce removes u->w from origin whenever a path of length >=
// 2 still connects u to w through the remaining edges. origin is acyclic
// by this point, so the check always terminates.
func (s *Store) transitiveReduce() {
	var redundant []directedKey
	for dk := range s.origin {
		if s.reachableWithout(dk) {
			redundant = append(redundant, dk)
		}
	}
	for _, dk := range redundant {
		delete(s.origin, dk)
	}
}

// reachableWithout reports whether skip.tgt is reachable from skip.src
// using every origin edge except skip itself.
func (s *Store) reachableWithout(skip directedKey) bool {
	visited := map[string]bool{skip.src: true}
	queue := []string{skip.src}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for other := range s.origin {
			if other == skip || other.src != n || visited[other.tgt] {
				continue
			}
			if other.tgt == skip.tgt {
				return true
			}
			visited[other.tgt] = true
			queue = append(queue, other.tgt)
		}
	}
	return false
}

// reduceUnspecific drops every related edge whose endpoints both lie in
// the same weakly connected component of origin union sibling: the more
// specific subgraph already expresses the relation between them.
func (s *Store) reduceUnspecific() {
	adj := make(map[string]map[string]bool)
	addEdge := func(a, b string) {
		if adj[a] == nil {
			adj[a] = make(map[string]bool)
		}
		if adj[b] == nil {
			adj[b] = make(map[string]bool)
		}
		adj[a][b] = true
		adj[b][a] = true
	}
	for dk := range s.origin {
		addEdge(dk.src, dk.tgt)
	}
	for pk := range s.sibling {
		addEdge(pk.a, pk.b)
	}

	for _, comp := range weaklyConnectedComponents(adj) {
		for pk := range s.related {
			if comp[pk.a] && comp[pk.b] {
				delete(s.related, pk)
			}
		}
	}
}

// weaklyConnectedComponents is the same BFS-over-adjacency-map shape as
// community detection's own connected-components pass, reused here for
// an unrelated graph (relation endpoints rather than entity similarity).
func weaklyConnectedComponents(adj map[string]map[string]bool) []map[string]bool {
	visited := make(map[string]bool)
	var components []map[string]bool

	nodes := make([]string, 0, len(adj))
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	for _, start := range nodes {
		if visited[start] {
			continue
		}
		comp := make(map[string]bool)
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			n := len(queue) - 1
			node := queue[n]
			queue = queue[:n]
			comp[node] = true
			for neighbor := range adj[node] {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

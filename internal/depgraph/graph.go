package depgraph

import "sort"

// Graph is a directed graph over card identities. An edge A → B means
// "A depends on B": B must be learned no later than A. The graph does not
// reject cycles; FindCycle exposes them as a diagnostic for the caller.
//
// Graph is not safe for concurrent use. It is built once, before any
// ordering or queue operation, and read-only afterwards.
type Graph struct {
	nodes map[string]struct{}
	edges map[string]map[string]struct{}
}

// New creates an empty dependency graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[string]map[string]struct{}),
	}
}

// AddNode registers an identity. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = struct{}{}
}

// AddDependency records that from depends on to, registering both nodes.
func (g *Graph) AddDependency(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if g.edges[from] == nil {
		g.edges[from] = make(map[string]struct{})
	}
	g.edges[from][to] = struct{}{}
}

// HasNode reports whether the identity is known to the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns every known identity in lexical order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Descendants returns every identity transitively reachable by following
// dependency edges outward from id. The start node itself is excluded unless
// it sits on a cycle. The result populates a card's dependency closure at
// construction time.
func (g *Graph) Descendants(id string) map[string]struct{} {
	result := make(map[string]struct{})
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for next := range g.edges[current] {
			if _, seen := result[next]; seen {
				continue
			}
			result[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	delete(result, id)
	return result
}

// FindCycle returns one dependency cycle as a node path (first node repeated
// at the end), or nil if the graph is acyclic. The ordering comparator is
// only a true total order on acyclic graphs, so callers surface the cycle as
// a diagnostic; the graph itself stays usable.
func (g *Graph) FindCycle() []string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[string]int, len(g.nodes))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = inStack
		stack = append(stack, id)

		// Deterministic order keeps the reported cycle stable across runs.
		targets := make([]string, 0, len(g.edges[id]))
		for next := range g.edges[id] {
			targets = append(targets, next)
		}
		sort.Strings(targets)

		for _, next := range targets {
			switch state[next] {
			case inStack:
				for i, on := range stack {
					if on == next {
						cycle = append(append(cycle, stack[i:]...), next)
						return true
					}
				}
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
		return false
	}

	for _, id := range g.Nodes() {
		if state[id] == unvisited && visit(id) {
			return cycle
		}
	}
	return nil
}

// Package graph implements the cortex's typed, weighted, bidirectional
// adjacency structure: forward and reverse edge maps, BFS/DFS/shortest
// path, and a binary persisted form (spec.md §4.2).
package graph

import (
	"sort"

	"github.com/hashicorp/golang-lru/v2"
)

// Edge is a directed, weighted edge to Target.
type Edge struct {
	Target string
	Weight int
}

// Graph holds forward and reverse adjacency maps keyed by Neurona id. Both
// directions are maintained so getIncoming is O(1) rather than a reverse
// scan over every node's forward edges.
type Graph struct {
	forward map[string][]Edge
	reverse map[string][]Edge
	nodes   map[string]bool

	// pathCache memoizes ShortestPath results for the Graph's lifetime, so
	// repeated ShortestPath calls over the same pair skip re-running BFS.
	// AddEdge purges it. The trace and impact traversals do not use it.
	pathCache *lru.Cache[pathKey, []string]
}

type pathKey struct {
	from, to string
}

// New constructs an empty Graph with a bounded shortest-path cache.
func New() *Graph {
	cache, _ := lru.New[pathKey, []string](256)
	return &Graph{
		forward:   make(map[string][]Edge),
		reverse:   make(map[string][]Edge),
		nodes:     make(map[string]bool),
		pathCache: cache,
	}
}

// AddNode registers id as present even if it has no edges yet, so
// orphan detection and nodeCount see it.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = true
}

// AddEdge installs both directions for from->to with weight w. Duplicate
// edges are appended, not deduplicated — spec.md §4.2 permits multi-edges.
func (g *Graph) AddEdge(from, to string, w int) {
	g.nodes[from] = true
	g.nodes[to] = true
	g.forward[from] = append(g.forward[from], Edge{Target: to, Weight: w})
	g.reverse[to] = append(g.reverse[to], Edge{Target: from, Weight: w})
	if g.pathCache != nil {
		g.pathCache.Purge()
	}
}

// GetAdjacent returns the outgoing edges from id, in insertion order.
func (g *Graph) GetAdjacent(id string) []Edge {
	return g.forward[id]
}

// GetIncoming returns the incoming edges to id, in insertion order.
func (g *Graph) GetIncoming(id string) []Edge {
	return g.reverse[id]
}

// HasEdge reports whether any forward edge a->b exists.
func (g *Graph) HasEdge(a, b string) bool {
	for _, e := range g.forward[a] {
		if e.Target == b {
			return true
		}
	}
	return false
}

// Degree returns the out-degree of id.
func (g *Graph) Degree(id string) int { return len(g.forward[id]) }

// InDegree returns the in-degree of id.
func (g *Graph) InDegree(id string) int { return len(g.reverse[id]) }

// NodeCount returns the number of distinct nodes registered (via AddNode
// or as an endpoint of AddEdge).
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of forward (single-direction) edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.forward {
		n += len(edges)
	}
	return n
}

// Nodes returns every registered node id, sorted for deterministic
// iteration (sync output and graph.idx persistence must not depend on
// map iteration order).
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// BFSResult is one entry in a bfs() traversal: the discovered node, its
// BFS level (0 = start), and the shortest discovery path to it.
type BFSResult struct {
	ID    string
	Level int
	Path  []string
}

// BFS visits the forward graph from start in level order. Each node
// appears once, at the level (and via the path) of its first discovery.
func (g *Graph) BFS(start string) []BFSResult {
	return g.BFSDirected(start, true)
}

// BFSDirected visits from start in level order over the forward graph
// (forward=true) or the reverse graph (forward=false), used by trace/impact
// to walk "downstream" (what this depends on) or "upstream" (what depends
// on this) without duplicating BFS's bookkeeping per direction.
func (g *Graph) BFSDirected(start string, forward bool) []BFSResult {
	if !g.nodes[start] {
		return nil
	}
	adj := g.forward
	if !forward {
		adj = g.reverse
	}

	visited := map[string]bool{start: true}
	queue := []BFSResult{{ID: start, Level: 0, Path: []string{start}}}
	var results []BFSResult

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		results = append(results, cur)

		for _, e := range adj[cur.ID] {
			if visited[e.Target] {
				continue
			}
			visited[e.Target] = true
			path := append(append([]string{}, cur.Path...), e.Target)
			queue = append(queue, BFSResult{ID: e.Target, Level: cur.Level + 1, Path: path})
		}
	}
	return results
}

// DFS visits the forward graph from start pre-order. Each node appears
// once.
func (g *Graph) DFS(start string) []string {
	if !g.nodes[start] {
		return nil
	}
	visited := map[string]bool{}
	var order []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		order = append(order, id)
		for _, e := range g.forward[id] {
			visit(e.Target)
		}
	}
	visit(start)
	return order
}

// ShortestPath returns the shortest forward path from a to b (inclusive
// of both endpoints), or an empty slice if b is unreachable from a.
func (g *Graph) ShortestPath(a, b string) []string {
	if a == b {
		return []string{a}
	}
	key := pathKey{a, b}
	if g.pathCache != nil {
		if cached, ok := g.pathCache.Get(key); ok {
			return cached
		}
	}

	for _, r := range g.BFS(a) {
		if r.ID == b {
			if g.pathCache != nil {
				g.pathCache.Add(key, r.Path)
			}
			return r.Path
		}
	}
	if g.pathCache != nil {
		g.pathCache.Add(key, []string{})
	}
	return []string{}
}

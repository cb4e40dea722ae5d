package validator

import "github.com/engram-cortex/engram/internal/graph"

type color int

const (
	white color = iota // unvisited
	gray               // on the current DFS stack
	black              // fully explored
)

// DetectCycles runs three-color DFS over g's forward edges and returns the
// witness list: the closing node of each back edge found (possibly empty).
// A back edge a->b where b is gray means a cycle closes at b.
func DetectCycles(g *graph.Graph) []string {
	colors := make(map[string]color)
	var witnesses []string

	var visit func(id string)
	visit = func(id string) {
		colors[id] = gray
		for _, e := range g.GetAdjacent(id) {
			switch colors[e.Target] {
			case white:
				visit(e.Target)
			case gray:
				witnesses = append(witnesses, e.Target)
			case black:
				// cross/forward edge, not a cycle
			}
		}
		colors[id] = black
	}

	for _, id := range g.Nodes() {
		if colors[id] == white {
			visit(id)
		}
	}
	return witnesses
}

// DetectOrphans returns every node with zero in- and out-degree (spec.md
// §4.3: warnings only, never fatal).
func DetectOrphans(g *graph.Graph) []string {
	var orphans []string
	for _, id := range g.Nodes() {
		if g.Degree(id) == 0 && g.InDegree(id) == 0 {
			orphans = append(orphans, id)
		}
	}
	return orphans
}

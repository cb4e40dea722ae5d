package activation

import (
	"context"
	"sort"

	"github.com/engram-cortex/engram/internal/graph"
	"github.com/engram-cortex/engram/internal/logging"
)

// DefaultDecay, DefaultMaxDepth, DefaultEpsilon are the propagation
// parameters of spec.md §4.6.
const (
	DefaultDecay    = 0.5
	DefaultMaxDepth = 4
	DefaultEpsilon  = 1e-4
)

var log = logging.Get(logging.CategoryActivation)

// Result is one ranked output of Activate: the final activation value
// and the BFS depth at which it was reached from the nearest seed.
type Result struct {
	ID         string
	Activation float64
	Depth      int
}

type frontierItem struct {
	id         string
	activation float64
	depth      int
}

// Activate runs the full engine: seeds propagate outward through g with
// exponential decay weighted by edge strength, stopping at maxDepth or
// when a proposal falls below epsilon. ctx is checked between BFS levels,
// not between individual edges, matching spec.md §5's cancellation grain.
func Activate(ctx context.Context, g *graph.Graph, seeds map[string]float64, decay, epsilon float64, maxDepth int) ([]Result, error) {
	best := make(map[string]float64, len(seeds))
	depthOf := make(map[string]int, len(seeds))

	var frontier []frontierItem
	for id, a := range seeds {
		if a <= 0 {
			continue
		}
		best[id] = a
		depthOf[id] = 0
		frontier = append(frontier, frontierItem{id: id, activation: a, depth: 0})
	}
	sortFrontier(frontier)

	for len(frontier) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		proposals := make(map[string]float64)
		for _, item := range frontier {
			if item.depth >= maxDepth {
				continue
			}
			for _, e := range g.GetAdjacent(item.id) {
				proposed := item.activation * decay * (float64(e.Weight) / 100.0)
				if proposed < epsilon {
					continue
				}
				if cur, ok := best[e.Target]; ok && cur >= proposed {
					continue
				}
				if existing, ok := proposals[e.Target]; !ok || proposed > existing {
					proposals[e.Target] = proposed
				}
			}
		}

		if len(proposals) == 0 {
			break
		}

		nextDepth := frontier[0].depth + 1
		var next []frontierItem
		for id, a := range proposals {
			best[id] = a
			depthOf[id] = nextDepth
			next = append(next, frontierItem{id: id, activation: a, depth: nextDepth})
		}
		sortFrontier(next)
		frontier = next
	}

	results := make([]Result, 0, len(best))
	for id, a := range best {
		results = append(results, Result{ID: id, Activation: a, Depth: depthOf[id]})
	}
	rank(results)
	log.Debug("activation propagated to %d nodes from %d seeds", len(results), len(seeds))
	return results, nil
}

func sortFrontier(f []frontierItem) {
	sort.Slice(f, func(i, j int) bool { return f[i].id < f[j].id })
}

// rank sorts results by activation descending, then depth ascending, then
// id lexicographic (spec.md §4.6 step 4).
func rank(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Activation != results[j].Activation {
			return results[i].Activation > results[j].Activation
		}
		if results[i].Depth != results[j].Depth {
			return results[i].Depth < results[j].Depth
		}
		return results[i].ID < results[j].ID
	})
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/graph"
	"github.com/engram-cortex/engram/internal/model"
)

var (
	traceUp    bool
	traceDown  bool
	traceBoth  bool
	traceDepth int
)

var traceCmd = &cobra.Command{
	Use:   "trace <id>",
	Short: "Walk the graph from a Neurona, upstream and/or downstream",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrace,
}

var impactCmd = &cobra.Command{
	Use:   "impact <id>",
	Short: "Show what breaks if this Neurona changes (blocks/tests/validates/implements, upstream)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImpact,
}

func init() {
	traceCmd.Flags().BoolVar(&traceUp, "up", false, "follow incoming edges")
	traceCmd.Flags().BoolVar(&traceDown, "down", false, "follow outgoing edges")
	traceCmd.Flags().BoolVar(&traceBoth, "both", false, "follow both directions")
	traceCmd.Flags().IntVar(&traceDepth, "depth", 4, "maximum traversal depth")
}

func runTrace(cmd *cobra.Command, args []string) error {
	id := args[0]

	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.ReadNeurona(id); err != nil {
		return err
	}

	g, err := loadOrBuildGraph(cc, store)
	if err != nil {
		return err
	}

	var results []graph.BFSResult
	switch {
	case traceBoth || (!traceUp && !traceDown):
		results = mergeBFS(g.BFSDirected(id, true), g.BFSDirected(id, false))
	case traceUp:
		results = g.BFSDirected(id, false)
	case traceDown:
		results = g.BFSDirected(id, true)
	}

	for _, r := range results {
		if r.Level > traceDepth {
			continue
		}
		fmt.Printf("%-4d %s\n", r.Level, r.ID)
	}
	return nil
}

// mergeBFS combines an up and a down traversal, keeping each node's
// smallest discovered level when it appears in both.
func mergeBFS(down, up []graph.BFSResult) []graph.BFSResult {
	best := make(map[string]graph.BFSResult, len(down)+len(up))
	for _, r := range down {
		best[r.ID] = r
	}
	for _, r := range up {
		if existing, ok := best[r.ID]; !ok || r.Level < existing.Level {
			best[r.ID] = r
		}
	}
	out := make([]graph.BFSResult, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sortBFSByLevel(out)
	return out
}

func sortBFSByLevel(rs []graph.BFSResult) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].Level < rs[j-1].Level; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}

// impactEdgeTypes are the "what breaks if this changes" edges (SPEC_FULL.md
// supplemented feature grounding §4.2/§4.3).
var impactEdgeTypes = map[model.ConnectionType]bool{
	model.ConnBlocks:     true,
	model.ConnTests:      true,
	model.ConnValidates:  true,
	model.ConnImplements: true,
}

func runImpact(cmd *cobra.Command, args []string) error {
	id := args[0]

	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.ReadNeurona(id); err != nil {
		return err
	}

	neuronas, _ := store.ScanNeuronas()
	byID := make(map[string]*model.Neurona, len(neuronas))
	for _, n := range neuronas {
		byID[n.ID] = n
	}

	// typedIncoming[target] = sources with an impact-relevant edge into it.
	typedIncoming := make(map[string][]string)
	for _, n := range neuronas {
		for _, gc := range n.AllConnections() {
			if impactEdgeTypes[gc.Type] {
				typedIncoming[gc.TargetID] = append(typedIncoming[gc.TargetID], n.ID)
			}
		}
	}

	visited := map[string]bool{id: true}
	queue := []string{id}
	level := map[string]int{id: 0}
	var impacted []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if n, ok := byID[cur]; ok && cur != id && n.Type == model.TypeStateMachine {
			continue // state machines gate, not propagate, impact
		}

		for _, src := range typedIncoming[cur] {
			if visited[src] {
				continue
			}
			visited[src] = true
			level[src] = level[cur] + 1
			impacted = append(impacted, src)
			queue = append(queue, src)
		}
	}

	if len(impacted) == 0 {
		fmt.Printf("no impacted neuronas\n")
		return nil
	}
	for _, i := range impacted {
		fmt.Printf("%-4d %s\n", level[i], i)
	}
	return nil
}

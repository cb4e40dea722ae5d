package main

import (
	"path/filepath"

	"github.com/engram-cortex/engram/internal/filestore"
	"github.com/engram-cortex/engram/internal/graph"
	"github.com/engram-cortex/engram/internal/model"
)

// loadOrBuildGraph loads the persisted graph.idx if present, falling back
// to building one from the Neurona files directly (the same dangling-skip
// behavior as the sync orchestrator's graph stage) when no index exists
// yet or it fails to load.
func loadOrBuildGraph(cc *cortexContext, store *filestore.Store) (*graph.Graph, error) {
	idxPath := filepath.Join(cc.Dir, ".activations", "graph.idx")
	if g, err := graph.Load(idxPath); err == nil {
		return g, nil
	}

	neuronas, _ := store.ScanNeuronas()
	byID := make(map[string]*model.Neurona, len(neuronas))
	for _, n := range neuronas {
		byID[n.ID] = n
	}

	g := graph.New()
	for _, n := range neuronas {
		g.AddNode(n.ID)
		for _, gc := range n.AllConnections() {
			if _, ok := byID[gc.TargetID]; !ok {
				continue
			}
			g.AddEdge(n.ID, gc.TargetID, gc.Weight)
		}
	}
	return g, nil
}

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/engram-cortex/engram/internal/graph"
)

func TestDetectCycles_NoCycle(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", 50)
	g.AddEdge("b", "c", 50)
	assert.Empty(t, DetectCycles(g))
}

func TestDetectCycles_SimpleCycle(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", 50)
	g.AddEdge("b", "c", 50)
	g.AddEdge("c", "a", 50)
	assert.NotEmpty(t, DetectCycles(g))
}

func TestDetectOrphans(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", 50)
	g.AddNode("isolated")
	orphans := DetectOrphans(g)
	assert.Contains(t, orphans, "isolated")
	assert.NotContains(t, orphans, "a")
}

package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	g := New()
	g.AddEdge("req.a", "test.b", 90)
	g.AddEdge("req.a", "artifact.c", 40)
	g.AddNode("concept.orphan")

	dir := t.TempDir()
	path := filepath.Join(dir, "graph.idx")
	require.NoError(t, g.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, g.NodeCount(), loaded.NodeCount())
	assert.Equal(t, g.EdgeCount(), loaded.EdgeCount())
	assert.True(t, loaded.HasEdge("req.a", "test.b"))

	var weight int
	for _, e := range loaded.GetAdjacent("req.a") {
		if e.Target == "test.b" {
			weight = e.Weight
		}
	}
	assert.Equal(t, 90, weight)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.idx"))
	assert.Error(t, err)
}

func TestLoad_BadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.idx")
	require.NoError(t, os.WriteFile(path, []byte("NOTRIGHTMAGIC...."), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_AtomicNoTmpLeftover(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 10)

	dir := t.TempDir()
	path := filepath.Join(dir, "graph.idx")
	require.NoError(t, g.Save(path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/engram-cortex/engram/internal/embedtext"
	"github.com/engram-cortex/engram/internal/vectorindex"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeNeuronaFile(t *testing.T, dir, id, title string, connections string) {
	t.Helper()
	body := "---\nid: " + id + "\ntitle: " + title + "\ntype: concept\n"
	if connections != "" {
		body += "connections:\n" + connections
	}
	body += "---\n\nbody text\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".md"), []byte(body), 0o644))
}

func setupCortex(t *testing.T) string {
	t.Helper()
	cortexDir := t.TempDir()
	neuronasDirPath := filepath.Join(cortexDir, "neuronas")
	require.NoError(t, os.MkdirAll(neuronasDirPath, 0o755))

	writeNeuronaFile(t, neuronasDirPath, "concept.a", "Concept A",
		"  relates_to:\n    - id: concept.b\n      weight: 80\n")
	writeNeuronaFile(t, neuronasDirPath, "concept.b", "Concept B", "")
	return cortexDir
}

func TestSyncAt_ProducesAllStages(t *testing.T) {
	cortexDir := setupCortex(t)

	report, err := SyncAt(context.Background(), cortexDir, nil, false)
	require.NoError(t, err)

	var names []string
	for _, s := range report.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"scan", "graph", "persist-graph", "llm-cache", "vectors"}, names)
}

func TestSyncAt_PersistsGraphIndex(t *testing.T) {
	cortexDir := setupCortex(t)

	_, err := SyncAt(context.Background(), cortexDir, nil, false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(cortexDir, ".activations", "graph.idx"))
	assert.NoError(t, err)
}

func TestSyncAt_DanglingConnectionIsWarning(t *testing.T) {
	cortexDir := t.TempDir()
	neuronasDirPath := filepath.Join(cortexDir, "neuronas")
	require.NoError(t, os.MkdirAll(neuronasDirPath, 0o755))
	writeNeuronaFile(t, neuronasDirPath, "concept.a", "Concept A",
		"  relates_to:\n    - id: concept.missing\n      weight: 50\n")

	report, err := SyncAt(context.Background(), cortexDir, nil, false)
	require.NoError(t, err)

	graphStage := findStage(report, "graph")
	require.NotNil(t, graphStage)
	assert.NotEmpty(t, graphStage.Warnings)
}

func TestSyncAt_VectorStageSkipsWithoutGloveCache(t *testing.T) {
	cortexDir := setupCortex(t)

	report, err := SyncAt(context.Background(), cortexDir, nil, false)
	require.NoError(t, err)

	vecStage := findStage(report, "vectors")
	require.NotNil(t, vecStage)
	assert.True(t, vecStage.Skipped)
}

func TestSyncAt_VectorStageBuildsWhenGloveCachePresent(t *testing.T) {
	cortexDir := setupCortex(t)
	cacheDirPath := filepath.Join(cortexDir, ".activations", "cache")
	require.NoError(t, os.MkdirAll(cacheDirPath, 0o755))
	writeGloveCache(t, filepath.Join(cacheDirPath, gloveCacheFile))

	report, err := SyncAt(context.Background(), cortexDir, nil, false)
	require.NoError(t, err)

	vecStage := findStage(report, "vectors")
	require.NotNil(t, vecStage)
	assert.False(t, vecStage.Skipped)

	_, _, err = vectorindex.Load(filepath.Join(cortexDir, ".activations", "vectors.bin"))
	assert.NoError(t, err)
}

func TestSyncAt_VectorStageNotRebuiltWhenFresh(t *testing.T) {
	cortexDir := setupCortex(t)
	cacheDirPath := filepath.Join(cortexDir, ".activations", "cache")
	require.NoError(t, os.MkdirAll(cacheDirPath, 0o755))
	writeGloveCache(t, filepath.Join(cacheDirPath, gloveCacheFile))

	_, err := SyncAt(context.Background(), cortexDir, nil, false)
	require.NoError(t, err)
	vecPath := filepath.Join(cortexDir, ".activations", "vectors.bin")
	before, err := os.Stat(vecPath)
	require.NoError(t, err)

	report2, err := SyncAt(context.Background(), cortexDir, nil, false)
	require.NoError(t, err)
	vecStage := findStage(report2, "vectors")
	require.NotNil(t, vecStage)
	assert.False(t, vecStage.Skipped)
	assert.Empty(t, vecStage.Warnings)
	after, err := os.Stat(vecPath)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "a fresh vectors.bin must not be rewritten")
}

func TestSyncAt_CortexNotFoundViaDiscovery(t *testing.T) {
	dir := t.TempDir()
	_, err := Sync(context.Background(), dir, nil, false)
	assert.Error(t, err)
}

func findStage(r *Report, name string) *StageReport {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}

func writeGloveCache(t *testing.T, path string) {
	t.Helper()
	dir := t.TempDir()
	txtPath := filepath.Join(dir, "glove.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("concept 1.0 0.0\na 0.0 1.0\nb 1.0 1.0\n"), 0o644))
	gv, err := embedtext.LoadText(txtPath)
	require.NoError(t, err)
	require.NoError(t, gv.SaveCache(path))
}

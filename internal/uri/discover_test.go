package uri

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchManifest(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cortexManifestFile), []byte(`{}`), 0o644))
}

func TestDiscoverCortex_CurrentDir(t *testing.T) {
	dir := t.TempDir()
	touchManifest(t, dir)

	found, err := DiscoverCortex(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, found)
}

func TestDiscoverCortex_WalksUp(t *testing.T) {
	root := t.TempDir()
	touchManifest(t, root)
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	found, err := DiscoverCortex(sub)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestDiscoverCortex_WalkUpBeyondLimitFails(t *testing.T) {
	root := t.TempDir()
	touchManifest(t, root)
	sub := filepath.Join(root, "a", "b", "c", "d")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	_, err := DiscoverCortex(sub)
	assert.Error(t, err)
}

func TestDiscoverCortex_BFSDown(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "projects", "widgets")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	touchManifest(t, nested)

	found, err := DiscoverCortex(root)
	require.NoError(t, err)
	assert.Equal(t, nested, found)
}

func TestDiscoverCortex_BFSDownBeyondLimitFails(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c", "d")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	touchManifest(t, nested)

	_, err := DiscoverCortex(root)
	assert.Error(t, err)
}

func TestDiscoverCortex_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := DiscoverCortex(dir)
	assert.Error(t, err)
}

func TestResolveCortex_ReturnsNeuronasDir(t *testing.T) {
	dir := t.TempDir()
	touchManifest(t, dir)

	cortexDir, neuronasDir, err := ResolveCortex(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cortexDir)
	assert.Equal(t, filepath.Join(dir, "neuronas"), neuronasDir)
}

package embedtext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGloveFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glove.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadText_BasicParse(t *testing.T) {
	path := writeGloveFile(t, "login 0.1 0.2 0.3\nauth 0.4 0.5 0.6\n")
	g, err := LoadText(path)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Dim())

	vec, ok := g.Lookup("login")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, toFloat64(vec), 1e-6)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func TestLoadText_SkipsMalformedLines(t *testing.T) {
	path := writeGloveFile(t, "good 0.1 0.2\nbad 0.1 notanumber\nalsogood 0.3 0.4\n")
	g, err := LoadText(path)
	require.NoError(t, err)
	_, ok := g.Lookup("bad")
	assert.False(t, ok)
	_, ok = g.Lookup("good")
	assert.True(t, ok)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	path := writeGloveFile(t, "hello 0.1 0.2\n")
	g, err := LoadText(path)
	require.NoError(t, err)
	_, ok := g.Lookup("HELLO")
	assert.True(t, ok)
}

func TestEmbed_MeanPooling(t *testing.T) {
	path := writeGloveFile(t, "a 1.0 0.0\nb 0.0 1.0\n")
	g, err := LoadText(path)
	require.NoError(t, err)

	vec := g.Embed([]string{"a", "b"})
	assert.InDelta(t, 0.5, vec[0], 1e-6)
	assert.InDelta(t, 0.5, vec[1], 1e-6)
}

func TestEmbed_AllOOVReturnsZeroVector(t *testing.T) {
	path := writeGloveFile(t, "a 1.0 0.0\n")
	g, err := LoadText(path)
	require.NoError(t, err)

	vec := g.Embed([]string{"nonexistent"})
	assert.Equal(t, []float32{0, 0}, vec)
}

func TestSaveLoadCache_RoundTrip(t *testing.T) {
	path := writeGloveFile(t, "a 1.0 0.0\nb 0.0 1.0\n")
	g, err := LoadText(path)
	require.NoError(t, err)

	cachePath := filepath.Join(t.TempDir(), "glove_cache.bin")
	require.NoError(t, g.SaveCache(cachePath))

	loaded, err := LoadCache(cachePath)
	require.NoError(t, err)
	assert.Equal(t, g.Dim(), loaded.Dim())
	vec, ok := loaded.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, []float32{1.0, 0.0}, vec)
}

func TestLoadCache_MissingFile(t *testing.T) {
	_, err := LoadCache("/nonexistent/glove_cache.bin")
	assert.Error(t, err)
}

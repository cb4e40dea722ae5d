package llmcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	c, err := Load[string](filepath.Join(t.TempDir(), "summaries.cache"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Dirty())
}

func TestLoad_CorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.cache")
	require.NoError(t, os.WriteFile(path, []byte("not msgpack"), 0o644))

	c, err := Load[string](path)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.cache")
	c := New[string]()
	c.Set("req.a", "a short summary")
	c.Set("req.b", "another summary")
	require.NoError(t, Save(c, path))
	assert.False(t, c.Dirty())

	loaded, err := Load[string](path)
	require.NoError(t, err)
	v, ok := loaded.Get("req.a")
	require.True(t, ok)
	assert.Equal(t, "a short summary", v)
	assert.Equal(t, 2, loaded.Len())
}

func TestSave_NoTmpFileLeftBehind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.cache")
	c := New[int]()
	c.Set("req.a", 128)
	require.NoError(t, Save(c, path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSet_ReSettingSameValueIsNoOp(t *testing.T) {
	c := New[int]()
	c.Set("req.a", 10)
	require.True(t, c.Dirty())

	// Simulate a reload from disk (clean state) then re-set the same value.
	path := t.TempDir() + "/tokens.cache"
	require.NoError(t, Save(c, path))
	loaded, err := Load[int](path)
	require.NoError(t, err)
	assert.False(t, loaded.Dirty())

	loaded.Set("req.a", 10)
	assert.False(t, loaded.Dirty())

	loaded.Set("req.a", 11)
	assert.True(t, loaded.Dirty())
}

func TestDelete(t *testing.T) {
	c := New[string]()
	c.Set("req.a", "x")
	c.dirty = false
	c.Delete("req.a")
	assert.True(t, c.Dirty())
	_, ok := c.Get("req.a")
	assert.False(t, ok)
}

func TestCortexCache_LoadAndSave(t *testing.T) {
	dir := t.TempDir()
	cc, err := LoadCortexCache(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, cc.Summaries.Len())
	assert.Equal(t, 0, cc.Tokens.Len())

	cc.Summaries.Set("req.a", "summary text")
	cc.Tokens.Set("req.a", 42)
	require.NoError(t, cc.Save(dir))

	reloaded, err := LoadCortexCache(dir)
	require.NoError(t, err)
	summary, ok := reloaded.Summaries.Get("req.a")
	require.True(t, ok)
	assert.Equal(t, "summary text", summary)
	tokens, ok := reloaded.Tokens.Get("req.a")
	require.True(t, ok)
	assert.Equal(t, 42, tokens)
}

func TestCortexCache_SaveIsIdempotentNoOpWhenClean(t *testing.T) {
	dir := t.TempDir()
	cc, err := LoadCortexCache(dir)
	require.NoError(t, err)
	require.NoError(t, cc.Save(dir))

	_, err = os.Stat(filepath.Join(dir, SummariesFile))
	assert.True(t, os.IsNotExist(err), "clean cache must not write a file")
}

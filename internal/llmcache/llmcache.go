// Package llmcache persists the per-cortex LLM-derived annotations
// (summaries and token counts) that the sync orchestrator loads and
// writes back on every run (spec.md §4.8 step 5).
package llmcache

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/logging"
)

var log = logging.Get(logging.CategorySync)

// Cache is the in-memory form of one of the two cache files: a flat
// id-keyed map of value type V (string for summaries.cache, int for
// tokens.cache). Summaries and token counts are loaded/saved as two
// independent instances pointed at their own files.
type Cache[V comparable] struct {
	values map[string]V
	dirty  bool
}

// New returns an empty Cache, the value a missing file loads as.
func New[V comparable]() *Cache[V] {
	return &Cache[V]{values: make(map[string]V)}
}

// Get returns the cached value for id, if any.
func (c *Cache[V]) Get(id string) (V, bool) {
	v, ok := c.values[id]
	return v, ok
}

// Set stores or updates the cached value for id. A Set that would not
// change the stored value leaves the cache clean, so a sync run that
// touches every Neurona without actually changing any value does not
// force an unnecessary file write.
func (c *Cache[V]) Set(id string, value V) {
	if existing, ok := c.values[id]; ok && existing == value {
		return
	}
	c.values[id] = value
	c.dirty = true
}

// Delete removes id from the cache, e.g. when its source Neurona is gone.
func (c *Cache[V]) Delete(id string) {
	if _, ok := c.values[id]; ok {
		delete(c.values, id)
		c.dirty = true
	}
}

// Len reports how many entries the cache holds.
func (c *Cache[V]) Len() int { return len(c.values) }

// Dirty reports whether any Set/Delete has changed the cache's contents
// since it was loaded (or created empty).
func (c *Cache[V]) Dirty() bool { return c.dirty }

// Load reads a cache file, msgpack-encoded. A missing file is not an
// error: it loads as an empty Cache, per spec.md §4.8 step 5. A
// corrupt file is reported as a warning and also degrades to empty,
// since the cache is a derived artifact the next sync rebuilds.
func Load[V comparable](path string) (*Cache[V], error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New[V](), nil
	}
	if err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path,
			"check file permissions", err)
	}

	var values map[string]V
	if err := msgpack.Unmarshal(raw, &values); err != nil {
		log.Warn("cache file %s is corrupt, treating as empty: %v", path, err)
		return New[V](), nil
	}
	if values == nil {
		values = make(map[string]V)
	}
	return &Cache[V]{values: values}, nil
}

// Save msgpack-encodes the cache and writes it atomically. Saving an
// unmodified, freshly-loaded Cache writes back the same entries; the map
// is encoded in Go map iteration order, so the bytes are not guaranteed
// to match the previous file.
func Save[V comparable](c *Cache[V], path string) error {
	raw, err := msgpack.Marshal(c.values)
	if err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path,
			"internal encoding error", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path,
			"check directory permissions", err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		os.Remove(tmp)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path,
			"check disk space", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path,
			"check disk space", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path,
			"check disk space", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path,
			"check directory permissions", err)
	}
	c.dirty = false
	return nil
}

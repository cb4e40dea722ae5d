// Package embedtext loads GloVe word vectors and computes mean-pooled
// Neurona/query embeddings (spec.md §4.5). OOV tokens are ignored; an
// embedding with zero matched tokens is the documented zero-vector
// degenerate case. There are no network calls — vectors are read from a
// local text file or a binary cache.
package embedtext

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/logging"
)

var log = logging.Get(logging.CategoryEmbedding)

// GloVe holds a word -> vector lookup table plus its inferred dimension.
type GloVe struct {
	dim     int
	vectors map[string][]float32
}

// Dim returns the embedding dimension inferred from the loaded vectors.
func (g *GloVe) Dim() int { return g.dim }

// Lookup returns the vector for word and whether it was found. OOV
// returns (nil, false) — callers must never treat this as an error.
func (g *GloVe) Lookup(word string) ([]float32, bool) {
	v, ok := g.vectors[strings.ToLower(word)]
	return v, ok
}

// LoadText parses a GloVe text file: lines of "<word> <f1> <f2> ...".
// Dimension is inferred from the first line and malformed lines are
// skipped with a warning rather than aborting the whole load.
func LoadText(path string) (*GloVe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDFileNotFound, path, "set ENGRAM_GLOVE_PATH to a valid GloVe file", err)
	}
	defer f.Close()

	g := &GloVe{vectors: make(map[string][]float32)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		word := fields[0]
		vals := fields[1:]
		if g.dim == 0 {
			g.dim = len(vals)
		}
		if len(vals) != g.dim {
			log.Warn("skipping %q: expected %d dims, got %d", word, g.dim, len(vals))
			continue
		}
		vec := make([]float32, len(vals))
		ok := true
		for i, s := range vals {
			f64, err := strconv.ParseFloat(s, 32)
			if err != nil {
				ok = false
				break
			}
			vec[i] = float32(f64)
		}
		if !ok {
			log.Warn("skipping %q: non-numeric vector component", word)
			continue
		}
		g.vectors[strings.ToLower(word)] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check the file is readable", err)
	}
	return g, nil
}

// Embed computes the mean-pooled embedding of tokens: average the vectors
// of every token found in the table, ignoring OOV tokens. If no token is
// found, the zero vector of the table's dimension is returned (spec.md
// §4.5's documented degenerate case) — never an error.
func (g *GloVe) Embed(tokens []string) []float32 {
	sum := make([]float32, g.dim)
	count := 0
	for _, tok := range tokens {
		vec, ok := g.Lookup(tok)
		if !ok {
			continue
		}
		for i, v := range vec {
			sum[i] += v
		}
		count++
	}
	if count == 0 {
		return sum // zero vector
	}
	for i := range sum {
		sum[i] /= float32(count)
	}
	return sum
}

// cacheEntry is the msgpack-serialized shape of one cached GloVe cache
// record.
type cacheEntry struct {
	Dim     int                  `msgpack:"dim"`
	Vectors map[string][]float32 `msgpack:"vectors"`
}

// SaveCache writes g to a binary cache file (glove_cache.bin) via
// msgpack, for fast startup on subsequent runs instead of re-parsing the
// (much larger) GloVe text format every time.
func (g *GloVe) SaveCache(path string) error {
	data, err := msgpack.Marshal(cacheEntry{Dim: g.dim, Vectors: g.vectors})
	if err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "could not encode GloVe cache", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check directory permissions", err)
	}
	return nil
}

// LoadCache reads a binary GloVe cache previously written by SaveCache.
func LoadCache(path string) (*GloVe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDFileNotFound, path, "run `engram sync` to build the cache, or set ENGRAM_GLOVE_PATH", err)
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDCacheCorrupt, path, "delete the cache file and re-run `engram sync`", err)
	}
	return &GloVe{dim: entry.Dim, vectors: entry.Vectors}, nil
}

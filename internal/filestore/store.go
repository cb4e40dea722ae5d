// Package filestore reads and writes Neurona Markdown+frontmatter files
// and enumerates a cortex's neuronas/ directory (spec.md §4.1). Files are
// the source of truth; nothing here keeps state beyond a read-through
// cache scoped to one process lifetime.
package filestore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/logging"
	"github.com/engram-cortex/engram/internal/model"
)

var log = logging.Get(logging.CategoryStore)

// Store wraps a neuronas/ directory with a read-through cache so a single
// CLI invocation that touches the same id multiple times (graph build,
// then query, then show) doesn't re-read and re-parse the file each time.
type Store struct {
	dir   string
	cache *ristretto.Cache[string, *model.Neurona]
}

// New constructs a Store rooted at dir (a cortex's neuronas/ directory).
func New(dir string) (*Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *model.Neurona]{
		NumCounters: 1000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, dir, "failed to initialize the store cache", err)
	}
	return &Store{dir: dir, cache: cache}, nil
}

// Close releases cache resources. Safe to call multiple times.
func (s *Store) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

func (s *Store) invalidate(id string) {
	if s.cache != nil {
		s.cache.Del(id)
	}
}

// isNeuronaFile reports whether name looks like a Neurona file.
func isNeuronaFile(name string) bool {
	return strings.HasSuffix(name, ".md")
}

// readNeurona reads and parses one Neurona file, without its body.
func readNeurona(path string) (*model.Neurona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, engramerr.New(engramerr.KindNotFound, engramerr.IDFileNotFound, path, "check the path")
		}
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check file permissions", err)
	}

	fm, _, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, err
	}
	return parseNeurona(fm)
}

// ReadNeurona is readNeurona's exported, cache-aware entry point.
func (s *Store) ReadNeurona(id string) (*model.Neurona, error) {
	if s.cache != nil {
		if n, ok := s.cache.Get(id); ok {
			return n, nil
		}
	}
	path, err := s.findNeuronaPath(id)
	if err != nil {
		return nil, err
	}
	n, err := readNeurona(path)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(id, n, 1)
	}
	return n, nil
}

// readNeuronaWithBody locates a Neurona by id (exact or unique prefix) and
// returns both the parsed record and its raw Markdown body.
func (s *Store) readNeuronaWithBody(id string) (*model.Neurona, string, error) {
	path, err := s.findNeuronaPath(id)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check file permissions", err)
	}
	fm, body, err := splitFrontmatter(string(data))
	if err != nil {
		return nil, "", err
	}
	n, err := parseNeurona(fm)
	if err != nil {
		return nil, "", err
	}
	return n, body, nil
}

// ReadNeuronaWithBody is the exported form of readNeuronaWithBody.
func (s *Store) ReadNeuronaWithBody(id string) (*model.Neurona, string, error) {
	return s.readNeuronaWithBody(id)
}

// writeNeurona serializes n to path atomically: write to path+".tmp",
// fsync, rename over path (spec.md §4.1).
func writeNeurona(n *model.Neurona, path string, body string) error {
	content := renderNeurona(n, body)

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check directory permissions", err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check disk space", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check disk space", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check disk space", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check directory permissions", err)
	}
	return nil
}

// WriteNeurona writes n to its conventional path (<dir>/<id>.md),
// preserving body when preserveBody is true and the file already exists.
func (s *Store) WriteNeurona(n *model.Neurona, preserveBody bool) error {
	path := filepath.Join(s.dir, n.ID+".md")

	body := ""
	if preserveBody {
		if _, existingBody, err := s.readNeuronaWithBody(n.ID); err == nil {
			body = existingBody
		}
	}

	if err := writeNeurona(n, path, body); err != nil {
		return err
	}
	s.invalidate(n.ID)
	return nil
}

// DeleteNeurona removes id's file from disk and evicts it from the cache.
// Callers are responsible for stripping any dangling connections that
// pointed at it (the sync orchestrator reports those as warnings, per
// spec.md §4.1 invariant 2, rather than failing the delete).
func (s *Store) DeleteNeurona(id string) error {
	path, err := s.findNeuronaPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check file permissions", err)
	}
	s.invalidate(id)
	return nil
}

// scanNeuronas enumerates every .md file in dir, parsing each. Per-file
// failures are logged and skipped rather than aborting the scan (spec.md
// §4.1 "skip and warn").
func scanNeuronas(dir string) ([]*model.Neurona, []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("scan %s: %v", dir, err)
		return nil, []string{err.Error()}
	}

	var neuronas []*model.Neurona
	var warnings []string
	for _, entry := range entries {
		if entry.IsDir() || !isNeuronaFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		n, err := readNeurona(path)
		if err != nil {
			w := entry.Name() + ": " + err.Error()
			warnings = append(warnings, w)
			log.Warn("skipping %s: %v", entry.Name(), err)
			continue
		}
		neuronas = append(neuronas, n)
	}

	sort.Slice(neuronas, func(i, j int) bool { return neuronas[i].ID < neuronas[j].ID })
	return neuronas, warnings
}

// ScanNeuronas is the exported form of scanNeuronas; it also populates the
// store's cache with every successfully parsed Neurona.
func (s *Store) ScanNeuronas() ([]*model.Neurona, []string) {
	neuronas, warnings := scanNeuronas(s.dir)
	if s.cache != nil {
		for _, n := range neuronas {
			s.cache.Set(n.ID, n, 1)
		}
	}
	return neuronas, warnings
}

// listNeuronaFiles enumerates every .md file path under dir.
func listNeuronaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, dir, "check the directory exists", err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && isNeuronaFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ListNeuronaFiles is the exported form of listNeuronaFiles.
func (s *Store) ListNeuronaFiles() ([]string, error) {
	return listNeuronaFiles(s.dir)
}

// getLatestModificationTime returns the most recent mtime among dir's
// Neurona files, used to decide vector-index staleness.
func getLatestModificationTime(dir string) (time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, dir, "check the directory exists", err)
	}
	var latest time.Time
	for _, entry := range entries {
		if entry.IsDir() || !isNeuronaFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest, nil
}

// GetLatestModificationTime is the exported form of
// getLatestModificationTime.
func (s *Store) GetLatestModificationTime() (time.Time, error) {
	return getLatestModificationTime(s.dir)
}

// findNeuronaPath locates a file for id: the exact "<dir>/<id>.md" path
// first, falling back to a substring match on filenames (spec.md §4.1).
// An ambiguous substring match (more than one candidate) is reported as
// NeuronaNotFound with a hint listing the candidates, rather than
// silently picking one.
func (s *Store) findNeuronaPath(id string) (string, error) {
	exact := filepath.Join(s.dir, id+".md")
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, s.dir, "check the directory exists", err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !isNeuronaFile(entry.Name()) {
			continue
		}
		if strings.Contains(entry.Name(), id) {
			candidates = append(candidates, entry.Name())
		}
	}

	switch len(candidates) {
	case 0:
		return "", engramerr.NeuronaNotFound(id)
	case 1:
		return filepath.Join(s.dir, candidates[0]), nil
	default:
		return "", engramerr.New(engramerr.KindNotFound, engramerr.IDNeuronaNotFound, id,
			"ambiguous id, matches: "+strings.Join(candidates, ", "))
	}
}

// FindNeuronaPath is the exported form of findNeuronaPath.
func (s *Store) FindNeuronaPath(id string) (string, error) {
	return s.findNeuronaPath(id)
}

// MigrateLegacyConnections rewrites a Neurona's in-memory connections out
// of the reserved legacy group into per-type groups matching the
// canonical block form. Returns true if anything was migrated.
func MigrateLegacyConnections(n *model.Neurona) bool {
	legacy, ok := n.Connections[legacyGroup]
	if !ok || len(legacy) == 0 {
		return false
	}
	delete(n.Connections, legacyGroup)
	for _, c := range legacy {
		group := string(c.Type)
		if group == "" {
			group = "relates_to"
		}
		n.Connections[group] = append(n.Connections[group], c)
	}
	return true
}

package uri

import (
	"os"
	"path/filepath"

	"github.com/engram-cortex/engram/internal/engramerr"
)

const cortexManifestFile = "cortex.json"

// maxUpLevels and maxDownLevels bound the ancestor walk and descendant
// BFS steps of DiscoverCortex (spec.md §4.9).
const (
	maxUpLevels   = 3
	maxDownLevels = 3
)

// DiscoverCortex finds a cortex root starting from startDir when no
// explicit --cortex path is given: check startDir itself, then walk up
// to maxUpLevels ancestors, then BFS down into subdirectories up to
// maxDownLevels, returning the first directory containing cortex.json.
func DiscoverCortex(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, startDir,
			"check the path exists", err)
	}

	if hasManifest(abs) {
		return abs, nil
	}

	dir := abs
	for i := 0; i < maxUpLevels; i++ {
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		if hasManifest(parent) {
			return parent, nil
		}
		dir = parent
	}

	if found, ok := bfsDown(abs, maxDownLevels); ok {
		return found, nil
	}

	return "", engramerr.New(engramerr.KindNotFound, engramerr.IDCortexNotFound, startDir,
		"navigate to a cortex directory, pass --cortex, or run `engram init`")
}

func hasManifest(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, cortexManifestFile))
	return err == nil
}

// bfsDown explores dir's subdirectory tree breadth-first, up to
// maxDepth levels, returning the first directory containing cortex.json.
// Unreadable directories are skipped rather than aborting the search.
func bfsDown(root string, maxDepth int) (string, bool) {
	type leveled struct {
		path  string
		depth int
	}
	queue := []leveled{{path: root, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth > 0 && hasManifest(cur.path) {
			return cur.path, true
		}
		if cur.depth >= maxDepth {
			continue
		}

		entries, err := os.ReadDir(cur.path)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			queue = append(queue, leveled{path: filepath.Join(cur.path, e.Name()), depth: cur.depth + 1})
		}
	}
	return "", false
}

package uri

import "path/filepath"

const neuronasSubdir = "neuronas"

// NeuronaFinder is any store that exposes FindNeuronaPath against a fixed
// neuronas/ directory, such as a *filestore.Store constructed over the
// directory ResolveCortex returns (spec.md §4.9).
type NeuronaFinder interface {
	FindNeuronaPath(id string) (string, error)
}

// ResolveCortex is DiscoverCortex plus the neuronas/ directory it owns,
// the pair most resolution callers need together.
func ResolveCortex(startDir string) (cortexDir, neuronasDir string, err error) {
	cortexDir, err = DiscoverCortex(startDir)
	if err != nil {
		return "", "", err
	}
	return cortexDir, filepath.Join(cortexDir, neuronasSubdir), nil
}

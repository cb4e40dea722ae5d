package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/model"
)

// CortexManifestFile is the conventional name of a cortex's manifest file,
// always at the cortex root (spec.md §6 layout).
const CortexManifestFile = "cortex.json"

// ReadCortexManifest loads and decodes cortex.json from cortexDir.
func ReadCortexManifest(cortexDir string) (*model.Cortex, error) {
	path := filepath.Join(cortexDir, CortexManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, engramerr.CortexNotFound(cortexDir)
		}
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check file permissions", err)
	}
	var c model.Cortex
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDInvalidYaml, path,
			"cortex.json is not valid JSON", err)
	}
	return &c, nil
}

// WriteCortexManifest writes c to <cortexDir>/cortex.json atomically,
// following the same tmp+fsync+rename discipline as writeNeurona.
func WriteCortexManifest(cortexDir string, c *model.Cortex) error {
	path := filepath.Join(cortexDir, CortexManifestFile)
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "internal encode failure", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, path, "check directory permissions", err)
	}
	if _, err := f.Write(data); err != nil {
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

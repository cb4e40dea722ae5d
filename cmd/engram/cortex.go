package main

import (
	"github.com/engram-cortex/engram/internal/config"
	"github.com/engram-cortex/engram/internal/filestore"
	"github.com/engram-cortex/engram/internal/logging"
	"github.com/engram-cortex/engram/internal/model"
	"github.com/engram-cortex/engram/internal/uri"
)

var log = logging.Get(logging.CategoryCLI)

// cortexContext bundles everything a command needs once a cortex has been
// located: its root directory, the parsed manifest, and the effective
// configuration (engram.yaml + env overrides, spec.md §6).
type cortexContext struct {
	Dir        string
	NeuronasDir string
	Manifest   *model.Cortex
	Config     *config.Config
}

// resolveCortexContext discovers a cortex from the current --workspace
// (or cwd), per spec.md §4.9, and loads its manifest and configuration.
// Configures the categorized file logger for the discovered cortex as a
// side effect.
func resolveCortexContext() (*cortexContext, error) {
	dir, err := startDir()
	if err != nil {
		return nil, err
	}

	cortexDir, neuronasDir, err := uri.ResolveCortex(dir)
	if err != nil {
		return nil, err
	}

	manifest, err := filestore.ReadCortexManifest(cortexDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cortexDir)
	if err != nil {
		return nil, err
	}

	_ = logging.Configure(cortexDir, cfg.Logging.ToSettings())

	return &cortexContext{
		Dir:         cortexDir,
		NeuronasDir: neuronasDir,
		Manifest:    manifest,
		Config:      cfg,
	}, nil
}

// newStore opens a filestore.Store rooted at the cortex's neuronas/
// directory. Callers are responsible for calling Close().
func (cc *cortexContext) newStore() (*filestore.Store, error) {
	return filestore.New(cc.NeuronasDir)
}

// Package sync implements the deterministic, single-writer sync
// pipeline that rebuilds every derived index from the Markdown source
// of truth (spec.md §4.8): scan → graph → LLM cache → vectors.
package sync

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/engram-cortex/engram/internal/bm25"
	"github.com/engram-cortex/engram/internal/config"
	"github.com/engram-cortex/engram/internal/embedtext"
	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/filestore"
	"github.com/engram-cortex/engram/internal/graph"
	"github.com/engram-cortex/engram/internal/llmcache"
	"github.com/engram-cortex/engram/internal/logging"
	"github.com/engram-cortex/engram/internal/model"
	"github.com/engram-cortex/engram/internal/uri"
	"github.com/engram-cortex/engram/internal/validator"
	"github.com/engram-cortex/engram/internal/vectorindex"
)

var log = logging.Get(logging.CategorySync)

const (
	activationsDir = ".activations"
	cacheDir       = "cache"
	neuronasDir    = "neuronas"
	graphIdxFile   = "graph.idx"
	vectorsFile    = "vectors.bin"
	gloveCacheFile = "glove_cache.bin"
)

// StageReport is the timing and outcome of one pipeline stage.
type StageReport struct {
	Name     string
	Duration time.Duration
	Warnings []string
	Skipped  bool
	SkipWhy  string
}

// Report is the full outcome of one sync run.
type Report struct {
	CortexDir string
	Stages    []StageReport
}

// Sync resolves a cortex from startDir (spec.md §4.9) and runs the full
// pipeline against it.
func Sync(ctx context.Context, startDir string, cfg *config.Config, force bool) (*Report, error) {
	cortexDir, err := uri.DiscoverCortex(startDir)
	if err != nil {
		return nil, err
	}
	return SyncAt(ctx, cortexDir, cfg, force)
}

// SyncAt runs the pipeline against an already-resolved cortex directory.
func SyncAt(ctx context.Context, cortexDir string, cfg *config.Config, force bool) (*Report, error) {
	report := &Report{CortexDir: cortexDir}

	paths := newPaths(cortexDir)
	if err := os.MkdirAll(paths.activations, 0o755); err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, paths.activations,
			"check directory permissions", err)
	}
	if err := os.MkdirAll(paths.cache, 0o755); err != nil {
		return nil, engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, paths.cache,
			"check directory permissions", err)
	}

	store, err := filestore.New(paths.neuronas)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	neuronas, scanReport := runScan(ctx, store)
	report.Stages = append(report.Stages, scanReport)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	neuronasByID := make(map[string]*model.Neurona, len(neuronas))
	for _, n := range neuronas {
		neuronasByID[n.ID] = n
	}

	g, graphReport := runGraphBuild(neuronas, neuronasByID)
	report.Stages = append(report.Stages, graphReport)

	report.Stages = append(report.Stages, runGraphPersist(g, paths.graphIdx))

	report.Stages = append(report.Stages, runLLMCache(paths.cache))

	report.Stages = append(report.Stages, runVectorStage(store, neuronas, paths, cfg, force))

	return report, nil
}

type paths struct {
	cortex      string
	activations string
	cache       string
	neuronas    string
	graphIdx    string
	vectors     string
}

func newPaths(cortexDir string) paths {
	activations := filepath.Join(cortexDir, activationsDir)
	return paths{
		cortex:      cortexDir,
		activations: activations,
		cache:       filepath.Join(activations, cacheDir),
		neuronas:    filepath.Join(cortexDir, neuronasDir),
		graphIdx:    filepath.Join(activations, graphIdxFile),
		vectors:     filepath.Join(activations, vectorsFile),
	}
}

func runScan(ctx context.Context, store *filestore.Store) ([]*model.Neurona, StageReport) {
	start := time.Now()
	neuronas, warnings := store.ScanNeuronas()
	if err := ctx.Err(); err != nil {
		warnings = append(warnings, err.Error())
	}
	return neuronas, StageReport{Name: "scan", Duration: time.Since(start), Warnings: warnings}
}

func runGraphBuild(neuronas []*model.Neurona, byID map[string]*model.Neurona) (*graph.Graph, StageReport) {
	start := time.Now()
	g := graph.New()
	var warnings []string

	for _, n := range neuronas {
		g.AddNode(n.ID)
		for _, gc := range n.AllConnections() {
			if _, ok := byID[gc.TargetID]; !ok {
				warnings = append(warnings, "dangling connection: "+n.ID+" -> "+gc.TargetID)
				continue
			}
			g.AddEdge(n.ID, gc.TargetID, gc.Weight)
		}
	}

	if cycles := validator.DetectCycles(g); len(cycles) > 0 {
		for _, c := range cycles {
			warnings = append(warnings, "cycle detected involving: "+c)
		}
	}
	if orphans := validator.DetectOrphans(g); len(orphans) > 0 {
		for _, o := range orphans {
			warnings = append(warnings, "orphan neurona: "+o)
		}
	}

	return g, StageReport{Name: "graph", Duration: time.Since(start), Warnings: warnings}
}

func runGraphPersist(g *graph.Graph, path string) StageReport {
	start := time.Now()
	if err := g.Save(path); err != nil {
		log.Warn("graph persist failed, deleting stale index at %s: %v", path, err)
		_ = os.Remove(path)
		return StageReport{Name: "persist-graph", Duration: time.Since(start), Warnings: []string{err.Error()}}
	}
	return StageReport{Name: "persist-graph", Duration: time.Since(start)}
}

func runLLMCache(cacheDirPath string) StageReport {
	start := time.Now()
	cc, err := llmcache.LoadCortexCache(cacheDirPath)
	if err != nil {
		return StageReport{Name: "llm-cache", Duration: time.Since(start), Warnings: []string{err.Error()}}
	}
	if err := cc.Save(cacheDirPath); err != nil {
		return StageReport{Name: "llm-cache", Duration: time.Since(start), Warnings: []string{err.Error()}}
	}
	return StageReport{Name: "llm-cache", Duration: time.Since(start)}
}

func runVectorStage(store *filestore.Store, neuronas []*model.Neurona, p paths, cfg *config.Config, force bool) StageReport {
	start := time.Now()
	name := "vectors"

	latest, err := store.GetLatestModificationTime()
	if err != nil {
		return StageReport{Name: name, Duration: time.Since(start), Warnings: []string{err.Error()}}
	}

	if !force {
		if _, sourceTS, err := vectorindex.Load(p.vectors); err == nil && !sourceTS.Before(latest) {
			return StageReport{Name: name, Duration: time.Since(start)}
		}
	}

	glovePath := resolveGlovePath(p.cache, cfg)
	gv, err := embedtext.LoadCache(glovePath)
	if err != nil {
		return StageReport{
			Name: name, Duration: time.Since(start), Skipped: true,
			SkipWhy: "no GloVe cache available at " + glovePath + "; vector/hybrid/activation modes degrade to filter/text",
		}
	}

	vi := vectorindex.New(gv.Dim())
	var warnings []string
	for _, n := range neuronas {
		text := bm25.IndexedText(n.Title, n.Tags)
		vec := gv.Embed(bm25.Tokenize(text))
		if err := vi.AddVector(n.ID, vec); err != nil {
			warnings = append(warnings, "vector add failed for "+n.ID+": "+err.Error())
		}
	}

	if err := vi.Save(p.vectors, latest); err != nil {
		log.Warn("vector persist failed, deleting stale index at %s: %v", p.vectors, err)
		_ = os.Remove(p.vectors)
		warnings = append(warnings, err.Error())
	}

	return StageReport{Name: name, Duration: time.Since(start), Warnings: warnings}
}

// resolveGlovePath prefers an explicit config/$ENGRAM_GLOVE_PATH
// override (already resolved into cfg.Embedding.GlovePath by
// config.Load's applyEnvOverrides) over the cortex-local shared cache,
// per spec.md §6.
func resolveGlovePath(cacheDirPath string, cfg *config.Config) string {
	if cfg != nil && cfg.Embedding.GlovePath != "" {
		return cfg.Embedding.GlovePath
	}
	return filepath.Join(cacheDirPath, gloveCacheFile)
}

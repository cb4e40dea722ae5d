package query

import (
	"context"
	"sort"

	"github.com/engram-cortex/engram/internal/activation"
	"github.com/engram-cortex/engram/internal/bm25"
	"github.com/engram-cortex/engram/internal/embedtext"
	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/graph"
	"github.com/engram-cortex/engram/internal/logging"
	"github.com/engram-cortex/engram/internal/model"
	"github.com/engram-cortex/engram/internal/vectorindex"
)

var log = logging.Get(logging.CategoryQuery)

// Mode selects the query planner's execution path (spec.md §4.7).
type Mode string

const (
	ModeFilter     Mode = "filter"
	ModeText       Mode = "text"
	ModeVector     Mode = "vector"
	ModeHybrid     Mode = "hybrid"
	ModeActivation Mode = "activation"
)

// hybridBM25Weight is the fixed BM25 fusion weight for ModeHybrid; the
// complementary vector weight is 1-hybridBM25Weight, distinct from
// activation's tunable seed-fusion alpha.
const hybridBM25Weight = 0.6

// Engine bundles the indices a Config is planned against. Any of BM25,
// Vectors, or Embedder may be nil: vector/hybrid/activation modes then
// degrade to filter/text per spec.md §4.9's GloVe-absence warning.
type Engine struct {
	Neuronas  []*model.Neurona
	Graph     *graph.Graph
	BM25      *bm25.Index
	Vectors   *vectorindex.VectorIndex
	Embedder  *embedtext.GloVe
}

// Config is one query request.
type Config struct {
	Mode  Mode
	Query string // EQL for filter mode, free text for text/vector/hybrid/activation
	Limit int
}

// RankedResult is one output row: the Neurona id and its score under the
// active mode (filter mode reports 1.0 for every match, preserving a
// uniform shape across modes).
type RankedResult struct {
	ID    string
	Score float64
}

// Execute dispatches a Config against an Engine per spec.md §4.7.
func Execute(ctx context.Context, eng *Engine, cfg Config) ([]RankedResult, error) {
	switch cfg.Mode {
	case ModeFilter:
		return executeFilter(eng, cfg)
	case ModeText:
		return executeText(eng, cfg)
	case ModeVector:
		return executeVector(eng, cfg)
	case ModeHybrid:
		return executeHybrid(eng, cfg)
	case ModeActivation:
		return executeActivation(ctx, eng, cfg)
	default:
		return nil, engramerr.New(engramerr.KindUser, engramerr.IDUnknownFlag, string(cfg.Mode),
			"mode must be one of filter, text, vector, hybrid, activation")
	}
}

func executeFilter(eng *Engine, cfg Config) ([]RankedResult, error) {
	ast, err := Parse(cfg.Query)
	if err != nil {
		return nil, err
	}
	var out []RankedResult
	for _, n := range eng.Neuronas {
		if Evaluate(ast, BuildView(n)) {
			out = append(out, RankedResult{ID: n.ID, Score: 1.0})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return truncate(out, cfg.Limit), nil
}

func executeText(eng *Engine, cfg Config) ([]RankedResult, error) {
	if eng.BM25 == nil {
		log.Warn("text mode requested with no BM25 index; returning no results")
		return nil, nil
	}
	return fromBM25(eng.BM25.Search(cfg.Query, effectiveLimit(cfg.Limit))), nil
}

func executeVector(eng *Engine, cfg Config) ([]RankedResult, error) {
	if eng.Vectors == nil || eng.Embedder == nil {
		log.Warn("vector mode requested with no vector index/embedder available; degrading to text")
		return executeText(eng, cfg)
	}
	q := eng.Embedder.Embed(bm25.Tokenize(cfg.Query))
	return fromVector(eng.Vectors.Search(q, effectiveLimit(cfg.Limit))), nil
}

func executeHybrid(eng *Engine, cfg Config) ([]RankedResult, error) {
	if eng.BM25 == nil {
		log.Warn("hybrid mode requested with no BM25 index; falling back to vector only")
		return executeVector(eng, cfg)
	}
	if eng.Vectors == nil || eng.Embedder == nil {
		log.Warn("hybrid mode requested with no vector index/embedder; falling back to text only")
		return executeText(eng, cfg)
	}

	bmResults := eng.BM25.Search(cfg.Query, 0)
	q := eng.Embedder.Embed(bm25.Tokenize(cfg.Query))
	vecResults := eng.Vectors.Search(q, 0)

	fused := activation.ComputeSeeds(bmResults, vecResults, hybridBM25Weight)
	out := make([]RankedResult, 0, len(fused))
	for id, score := range fused {
		out = append(out, RankedResult{ID: id, Score: score})
	}
	sortRanked(out)
	return truncate(out, cfg.Limit), nil
}

func executeActivation(ctx context.Context, eng *Engine, cfg Config) ([]RankedResult, error) {
	if eng.BM25 == nil {
		log.Warn("activation mode requested with no BM25 index; returning no results")
		return nil, nil
	}
	bmResults := eng.BM25.Search(cfg.Query, 0)
	var vecResults []vectorindex.Result
	if eng.Vectors != nil && eng.Embedder != nil {
		q := eng.Embedder.Embed(bm25.Tokenize(cfg.Query))
		vecResults = eng.Vectors.Search(q, 0)
	}

	seeds := activation.ComputeSeeds(bmResults, vecResults, activation.DefaultAlpha)
	results, err := activation.Activate(ctx, eng.Graph, seeds, activation.DefaultDecay, activation.DefaultEpsilon, activation.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}

	out := make([]RankedResult, 0, len(results))
	for _, r := range results {
		out = append(out, RankedResult{ID: r.ID, Score: r.Activation})
	}
	return truncate(out, cfg.Limit), nil
}

func fromBM25(results []bm25.Result) []RankedResult {
	out := make([]RankedResult, len(results))
	for i, r := range results {
		out[i] = RankedResult{ID: r.ID, Score: r.Score}
	}
	return out
}

func fromVector(results []vectorindex.Result) []RankedResult {
	out := make([]RankedResult, len(results))
	for i, r := range results {
		out[i] = RankedResult{ID: r.ID, Score: r.Score}
	}
	return out
}

func sortRanked(rs []RankedResult) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Score != rs[j].Score {
			return rs[i].Score > rs[j].Score
		}
		return rs[i].ID < rs[j].ID
	})
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	return limit
}

func truncate(rs []RankedResult, limit int) []RankedResult {
	if limit <= 0 || limit >= len(rs) {
		return rs
	}
	return rs[:limit]
}

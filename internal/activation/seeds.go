// Package activation implements the neural activation engine: seed fusion
// from BM25+vector scores, weighted BFS propagation with decay, and
// ranking (spec.md §4.6).
package activation

import (
	"github.com/engram-cortex/engram/internal/bm25"
	"github.com/engram-cortex/engram/internal/vectorindex"
)

// DefaultAlpha is the seed fusion weight applied to the BM25 component
// (spec.md §4.6).
const DefaultAlpha = 0.5

// minMaxNormalize rescales scores into [0, 1]. When every score is equal
// (including the degenerate all-zero case), every present id is given 1.0
// if its score is positive, else 0 — this keeps "matched at all" distinct
// from "did not match" without dividing by zero.
func minMaxNormalize(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return scores
	}
	min, max := minMax(scores)
	out := make(map[string]float64, len(scores))
	if max == min {
		for id, s := range scores {
			if s > 0 {
				out[id] = 1.0
			} else {
				out[id] = 0.0
			}
		}
		return out
	}
	for id, s := range scores {
		out[id] = (s - min) / (max - min)
	}
	return out
}

func minMax(scores map[string]float64) (float64, float64) {
	first := true
	var min, max float64
	for _, s := range scores {
		if first {
			min, max = s, s
			first = false
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return min, max
}

// ComputeSeeds fuses BM25 and vector candidate scores into a single seed
// activation map: s[id] = alpha*bm25norm(id) + (1-alpha)*vecnorm(id), each
// component independently min-max normalized over its own result set. An
// id present in only one result set is treated as 0 in the other.
func ComputeSeeds(bm25Results []bm25.Result, vectorResults []vectorindex.Result, alpha float64) map[string]float64 {
	bmRaw := make(map[string]float64, len(bm25Results))
	for _, r := range bm25Results {
		bmRaw[r.ID] = r.Score
	}
	vecRaw := make(map[string]float64, len(vectorResults))
	for _, r := range vectorResults {
		vecRaw[r.ID] = r.Score
	}

	ids := make(map[string]bool, len(bmRaw)+len(vecRaw))
	for id := range bmRaw {
		ids[id] = true
	}
	for id := range vecRaw {
		ids[id] = true
	}

	bmNorm := minMaxNormalize(bmRaw)
	vecNorm := minMaxNormalize(vecRaw)

	seeds := make(map[string]float64, len(ids))
	for id := range ids {
		seeds[id] = alpha*bmNorm[id] + (1-alpha)*vecNorm[id]
	}
	return seeds
}

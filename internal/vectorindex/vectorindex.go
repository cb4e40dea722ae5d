// Package vectorindex implements the dense vector index: cosine search
// over Neurona embeddings, with a binary persisted form (spec.md §4.5).
package vectorindex

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/engram-cortex/engram/internal/engramerr"
)

// VectorIndex holds fixed-dimension vectors keyed by Neurona id.
type VectorIndex struct {
	dim     int
	ids     []string // insertion order, for deterministic iteration
	vectors map[string][]float32
}

// New constructs an empty VectorIndex for vectors of the given dimension.
func New(dim int) *VectorIndex {
	return &VectorIndex{dim: dim, vectors: make(map[string][]float32)}
}

// Dim returns the index's fixed vector dimension.
func (v *VectorIndex) Dim() int { return v.dim }

// Len returns the number of vectors held.
func (v *VectorIndex) Len() int { return len(v.ids) }

// AddVector stores vec under id, rejecting a dimension mismatch.
func (v *VectorIndex) AddVector(id string, vec []float32) error {
	if len(vec) != v.dim {
		return engramerr.New(engramerr.KindValidation, engramerr.IDDimensionMismatch, id,
			fmt.Sprintf("vector has dimension %d, index expects %d", len(vec), v.dim))
	}
	if _, exists := v.vectors[id]; !exists {
		v.ids = append(v.ids, id)
	}
	v.vectors[id] = vec
	return nil
}

// Result is one scored document from Search.
type Result struct {
	ID    string
	Score float64
}

// cosine computes cosine similarity between two equal-length vectors.
// A zero-norm vector (e.g. an all-OOV embedding) yields 0 similarity
// rather than dividing by zero.
func cosine(a, b []float32) float64 {
	af := make([]float64, len(a))
	bf := make([]float64, len(b))
	for i := range a {
		af[i] = float64(a[i])
		bf[i] = float64(b[i])
	}
	normA := floats.Norm(af, 2)
	normB := floats.Norm(bf, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(af, bf) / (normA * normB)
}

// Search returns the top-limit documents by cosine similarity to query,
// descending.
func (v *VectorIndex) Search(query []float32, limit int) []Result {
	results := make([]Result, 0, len(v.ids))
	for _, id := range v.ids {
		sim := cosine(query, v.vectors[id])
		results = append(results, Result{ID: id, Score: sim})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

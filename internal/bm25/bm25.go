// Package bm25 implements lexical search over a Neurona's title+tags
// (spec.md §4.4). The body is never indexed.
package bm25

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lower-cases s, splits on runs of non-alphanumeric characters,
// and drops tokens shorter than 2 characters. Digits are kept.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	parts := tokenSplitPattern.Split(lower, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// IndexedText is the default indexed text for a Neurona: its title
// followed by its space-joined tags. Body is intentionally excluded
// (spec.md §4.4).
func IndexedText(title string, tags []string) string {
	return title + " " + strings.Join(tags, " ")
}

// Index is a BM25 lexical index. K1 and B default to 1.2/0.75 but are
// configurable per spec.md's config knobs.
type Index struct {
	K1 float64
	B  float64

	docLengths   map[string]int
	termDocs     map[string]int            // term -> document frequency
	termFreqs    map[string]map[string]int // term -> doc id -> count
	avgDocLength float64
	docCount     int
	built        bool
}

// NewIndex constructs an empty Index with the given k1/b parameters.
func NewIndex(k1, b float64) *Index {
	return &Index{
		K1:         k1,
		B:          b,
		docLengths: make(map[string]int),
		termDocs:   make(map[string]int),
		termFreqs:  make(map[string]map[string]int),
	}
}

// Add indexes one document's text under id. Must be called before Build.
func (idx *Index) Add(id, text string) {
	tokens := Tokenize(text)
	idx.docLengths[id] = len(tokens)
	idx.docCount++

	counts := map[string]int{}
	for _, t := range tokens {
		counts[t]++
	}
	for term, count := range counts {
		if idx.termFreqs[term] == nil {
			idx.termFreqs[term] = make(map[string]int)
		}
		idx.termFreqs[term][id] = count
		idx.termDocs[term]++
	}
	idx.built = false
}

// Build finalizes avg_doc_length after all documents are added.
func (idx *Index) Build() {
	if idx.docCount == 0 {
		idx.avgDocLength = 0
	} else {
		total := 0
		for _, l := range idx.docLengths {
			total += l
		}
		idx.avgDocLength = float64(total) / float64(idx.docCount)
	}
	idx.built = true
}

// Result is one scored document from Search.
type Result struct {
	ID    string
	Score float64
}

// idf computes the smoothed IDF for a term with document frequency n
// against a corpus of N documents (spec.md §4.4).
func (idx *Index) idf(n int) float64 {
	N := float64(idx.docCount)
	return math.Log((N-float64(n)+0.5)/(float64(n)+0.5) + 1)
}

func (idx *Index) score(id string, queryTokens []string) float64 {
	var score float64
	docLen := float64(idx.docLengths[id])
	for _, term := range queryTokens {
		freqs, ok := idx.termFreqs[term]
		if !ok {
			continue
		}
		f := float64(freqs[id])
		if f == 0 {
			continue
		}
		n := idx.termDocs[term]
		idf := idx.idf(n)
		numerator := f * (idx.K1 + 1)
		denominator := f + idx.K1*(1-idx.B+idx.B*docLen/idx.avgDocLength)
		score += idf * (numerator / denominator)
	}
	return score
}

// Search returns the top-limit documents with positive score, descending.
// An empty query returns an empty result.
func (idx *Index) Search(query string, limit int) []Result {
	if !idx.built {
		idx.Build()
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var results []Result
	for id := range idx.docLengths {
		s := idx.score(id, tokens)
		if s > 0 {
			results = append(results, Result{ID: id, Score: s})
		}
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

// Score exposes the raw BM25 score of a single document against a query,
// normalized to [0, 1] isn't done here — callers needing hybrid fusion
// (internal/activation, internal/query) do their own min-max
// normalization across the candidate set, since BM25's raw scale has no
// fixed upper bound.
func (idx *Index) Score(id, query string) float64 {
	if !idx.built {
		idx.Build()
	}
	return idx.score(id, Tokenize(query))
}

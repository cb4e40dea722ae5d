package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"oauth2", "login", "flow"}, Tokenize("OAuth2: Login-Flow!"))
	assert.Empty(t, Tokenize("a b")) // both dropped, len<2
}

func TestTokenize_KeepsDigits(t *testing.T) {
	assert.Contains(t, Tokenize("http2 protocol"), "http2")
}

func buildSampleIndex() *Index {
	idx := NewIndex(1.2, 0.75)
	idx.Add("req.auth", "OAuth2 Login Flow auth security")
	idx.Add("req.billing", "Billing Invoice Payment")
	idx.Add("concept.auth", "Authentication Concepts security tokens")
	idx.Build()
	return idx
}

func TestSearch_RanksRelevantDocsHigher(t *testing.T) {
	idx := buildSampleIndex()
	results := idx.Search("auth security", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "req.auth", results[0].ID)
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := buildSampleIndex()
	assert.Empty(t, idx.Search("", 10))
}

func TestSearch_RespectsLimit(t *testing.T) {
	idx := buildSampleIndex()
	results := idx.Search("auth security billing", 1)
	assert.Len(t, results, 1)
}

func TestSearch_NoMatchingTermsIsEmpty(t *testing.T) {
	idx := buildSampleIndex()
	assert.Empty(t, idx.Search("xyzzy", 10))
}

func TestIndexedText(t *testing.T) {
	assert.Equal(t, "Login Flow auth login", IndexedText("Login Flow", []string{"auth", "login"}))
}

package model

// Capabilities describes what a cortex supports, read from cortex.json's
// capabilities block (spec.md §3).
type Capabilities struct {
	Type            string `yaml:"type" json:"type"`
	SemanticSearch  bool   `yaml:"semantic_search" json:"semantic_search"`
	LLMIntegration  bool   `yaml:"llm_integration" json:"llm_integration"`
	DefaultLanguage string `yaml:"default_language" json:"default_language"`
}

// Indices describes the search strategy advertised by a cortex.
type Indices struct {
	Strategy       string `yaml:"strategy" json:"strategy"`
	EmbeddingModel string `yaml:"embedding_model" json:"embedding_model"`
}

// Cortex is the top-level manifest stored at cortex.json, one per cortex
// directory (spec.md §3).
type Cortex struct {
	ID           string       `yaml:"id" json:"id"`
	Name         string       `yaml:"name" json:"name"`
	Version      string       `yaml:"version" json:"version"`
	SpecVersion  string       `yaml:"spec_version" json:"spec_version"`
	Capabilities Capabilities `yaml:"capabilities" json:"capabilities"`
	Indices      Indices      `yaml:"indices" json:"indices"`
}

// NewCortex builds a Cortex manifest with Engram's defaults: hybrid search
// strategy, GloVe embeddings, no LLM integration (spec.md §5 non-goal),
// English as the default language.
func NewCortex(id, name string) *Cortex {
	return &Cortex{
		ID:          id,
		Name:        name,
		Version:     "1.0.0",
		SpecVersion: "1.0",
		Capabilities: Capabilities{
			Type:            "engram",
			SemanticSearch:  true,
			LLMIntegration:  false,
			DefaultLanguage: "en",
		},
		Indices: Indices{
			Strategy:       "hybrid",
			EmbeddingModel: "glove",
		},
	}
}

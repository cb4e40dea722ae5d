// Package config loads and defaults Engram's runtime configuration.
//
// Configuration lives at <cortex>/engram.yaml (optional — every field has a
// default) plus a handful of environment variable overrides. This mirrors
// the teacher's config.DefaultConfig()+applyEnvOverrides() split: defaults
// live in code, not in a shipped file, so a fresh cortex works with zero
// configuration.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all Engram runtime configuration.
type Config struct {
	BM25       BM25Config       `yaml:"bm25"`
	Activation ActivationConfig `yaml:"activation"`
	Hybrid     HybridConfig     `yaml:"hybrid"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BM25Config tunes the lexical index (spec.md §4.4).
type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// ActivationConfig holds the neural activation traversal parameters read
// from engram.yaml (spec.md §4.6). The query planner does not read these
// fields; activation mode runs with the activation package's defaults.
type ActivationConfig struct {
	Alpha    float64 `yaml:"alpha"`     // seed fusion weight: bm25 vs. vector
	Decay    float64 `yaml:"decay"`     // per-hop decay factor
	MaxDepth int     `yaml:"max_depth"` // BFS depth cutoff
	Epsilon  float64 `yaml:"epsilon"`   // propagation floor
}

// HybridConfig holds the hybrid query mode fusion weights read from
// engram.yaml (spec.md §4.7). The query planner does not read these
// fields; hybrid mode fuses with its own fixed 0.6 BM25 / 0.4 vector split.
type HybridConfig struct {
	BM25Weight   float64 `yaml:"bm25_weight"`
	VectorWeight float64 `yaml:"vector_weight"`
}

// EmbeddingConfig locates the GloVe source and its binary cache (spec.md §4.5).
type EmbeddingConfig struct {
	GlovePath string `yaml:"glove_path"` // overridden by $ENGRAM_GLOVE_PATH
}

// DefaultConfig returns the configuration a brand-new cortex runs with.
func DefaultConfig() *Config {
	return &Config{
		BM25: BM25Config{
			K1: 1.2,
			B:  0.75,
		},
		Activation: ActivationConfig{
			Alpha:    0.5,
			Decay:    0.5,
			MaxDepth: 4,
			Epsilon:  1e-4,
		},
		Hybrid: HybridConfig{
			BM25Weight:   0.6,
			VectorWeight: 0.4,
		},
		Logging: LoggingConfig{
			DebugMode: false,
		},
	}
}

// Load reads engram.yaml from the cortex directory, falling back to
// defaults for any field it doesn't set, and applies environment overrides.
// A missing file is not an error: it is treated as an empty override set.
func Load(cortexDir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(cortexDir, "engram.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides layers environment variables on top of file/default
// configuration. Mirrors the teacher's precedence-chain style: an env var
// only takes effect when set and non-empty.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ENGRAM_GLOVE_PATH"); v != "" {
		c.Embedding.GlovePath = v
	}
	if v := os.Getenv("ENGRAM_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}

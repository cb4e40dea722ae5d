package llmcache

import "path/filepath"

// SummariesFile and TokensFile are the fixed filenames spec.md §6
// pins under a cortex's .activations/cache/ directory.
const (
	SummariesFile = "summaries.cache"
	TokensFile    = "tokens.cache"
)

// CortexCache bundles the two caches the sync orchestrator loads and
// writes back together on every run.
type CortexCache struct {
	Summaries *Cache[string]
	Tokens    *Cache[int]
}

// LoadCortexCache loads both cache files from cacheDir (typically
// <cortex>/.activations/cache). Either or both files may be absent.
func LoadCortexCache(cacheDir string) (*CortexCache, error) {
	summaries, err := Load[string](filepath.Join(cacheDir, SummariesFile))
	if err != nil {
		return nil, err
	}
	tokens, err := Load[int](filepath.Join(cacheDir, TokensFile))
	if err != nil {
		return nil, err
	}
	return &CortexCache{Summaries: summaries, Tokens: tokens}, nil
}

// Save writes back whichever of the two caches is dirty. Per spec.md
// §4.8 step 5 the write-back is idempotent: an unmodified CortexCache
// triggers no writes at all.
func (cc *CortexCache) Save(cacheDir string) error {
	if cc.Summaries.Dirty() {
		if err := Save(cc.Summaries, filepath.Join(cacheDir, SummariesFile)); err != nil {
			return err
		}
	}
	if cc.Tokens.Dirty() {
		if err := Save(cc.Tokens, filepath.Join(cacheDir, TokensFile)); err != nil {
			return err
		}
	}
	return nil
}

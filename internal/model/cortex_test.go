package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCortex(t *testing.T) {
	c := NewCortex("my-project", "My Project")
	assert.Equal(t, "my-project", c.ID)
	assert.Equal(t, "hybrid", c.Indices.Strategy)
	assert.Equal(t, "glove", c.Indices.EmbeddingModel)
	assert.False(t, c.Capabilities.LLMIntegration)
	assert.Equal(t, "en", c.Capabilities.DefaultLanguage)
}

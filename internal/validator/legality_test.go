package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/engram-cortex/engram/internal/model"
)

func TestIsAllowed_KnownRule(t *testing.T) {
	assert.True(t, IsAllowed(model.TypeTestCase, model.TypeRequirement, model.ConnValidates))
	assert.False(t, IsAllowed(model.TypeTestCase, model.TypeRequirement, model.ConnBlocks))
}

func TestIsAllowed_RelatesToUniversal(t *testing.T) {
	assert.True(t, IsAllowed(model.TypeLesson, model.TypeArtifact, model.ConnRelatesTo))
}

func TestCardinalityLimit(t *testing.T) {
	limit, ok := CardinalityLimit(model.TypeArtifact, model.TypeArtifact, model.ConnParent)
	assert.True(t, ok)
	assert.Equal(t, 1, limit)

	_, ok = CardinalityLimit(model.TypeIssue, model.TypeIssue, model.ConnBlocks)
	assert.False(t, ok)
}

func TestValidateConnection_NotAllowed(t *testing.T) {
	err := ValidateConnection(model.TypeConcept, model.TypeIssue, model.ConnBlocks, 0)
	assert.Error(t, err)
}

func TestValidateConnection_CardinalityExceeded(t *testing.T) {
	err := ValidateConnection(model.TypeArtifact, model.TypeArtifact, model.ConnParent, 1)
	assert.Error(t, err)
}

func TestValidateConnection_Ok(t *testing.T) {
	err := ValidateConnection(model.TypeTestCase, model.TypeRequirement, model.ConnValidates, 0)
	assert.NoError(t, err)
}

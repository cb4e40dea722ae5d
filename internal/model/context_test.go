package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultContextForType(t *testing.T) {
	c := DefaultContextForType(TypeIssue)
	assert.Equal(t, ContextIssue, c.Kind)
	require := c.Issue
	assert.NotNil(t, require)
	assert.Equal(t, "open", require.Status)

	c = DefaultContextForType(TypeFeature)
	assert.Equal(t, ContextNone, c.Kind)
}

func TestContextStatusRoundTrip(t *testing.T) {
	c := DefaultContextForType(TypeTestCase)
	status, ok := c.Status()
	assert.True(t, ok)
	assert.Equal(t, "not_run", status)

	ok = c.SetStatus("passing")
	assert.True(t, ok)
	status, _ = c.Status()
	assert.Equal(t, "passing", status)
}

func TestContextStatus_NotApplicable(t *testing.T) {
	c := DefaultContextForType(TypeConcept)
	_, ok := c.Status()
	assert.False(t, ok)
	assert.False(t, c.SetStatus("whatever"))
}

func TestContextPriorityAndAssignee(t *testing.T) {
	c := DefaultContextForType(TypeRequirement)
	c.Requirement.Priority = "high"
	c.Requirement.Assignee = "alice"

	p, ok := c.Priority()
	assert.True(t, ok)
	assert.Equal(t, "high", p)

	a, ok := c.Assignee()
	assert.True(t, ok)
	assert.Equal(t, "alice", a)
}

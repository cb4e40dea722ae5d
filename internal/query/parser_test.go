package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleCondition(t *testing.T) {
	n, err := Parse("type:requirement")
	require.NoError(t, err)
	cond, ok := n.(Condition)
	require.True(t, ok)
	assert.Equal(t, FieldType, cond.Field)
	assert.Equal(t, OpEq, cond.Op)
	assert.Equal(t, "requirement", cond.Value)
}

func TestParse_ExplicitOperator(t *testing.T) {
	n, err := Parse("context.priority:gte:2")
	require.NoError(t, err)
	cond, ok := n.(Condition)
	require.True(t, ok)
	assert.Equal(t, OpGte, cond.Op)
	assert.Equal(t, "2", cond.Value)
}

func TestParse_AndOrPrecedence(t *testing.T) {
	// AND binds tighter than OR: a OR b AND c == a OR (b AND c)
	n, err := Parse("type:concept OR type:lesson AND tag:golang")
	require.NoError(t, err)
	or, ok := n.(Or)
	require.True(t, ok)
	require.Len(t, or.Terms, 2)
	assert.IsType(t, Condition{}, or.Terms[0])
	assert.IsType(t, And{}, or.Terms[1])
}

func TestParse_Not(t *testing.T) {
	n, err := Parse("NOT type:concept")
	require.NoError(t, err)
	not, ok := n.(Not)
	require.True(t, ok)
	assert.IsType(t, Condition{}, not.Inner)
}

func TestParse_Parens(t *testing.T) {
	n, err := Parse("(type:concept OR type:lesson) AND tag:golang")
	require.NoError(t, err)
	and, ok := n.(And)
	require.True(t, ok)
	require.Len(t, and.Factors, 2)
	assert.IsType(t, Or{}, and.Factors[0])
}

func TestParse_Link(t *testing.T) {
	n, err := Parse("link(validates,req.auth.oauth2)")
	require.NoError(t, err)
	link, ok := n.(Link)
	require.True(t, ok)
	assert.Equal(t, "validates", link.ConnType)
	assert.Equal(t, "req.auth.oauth2", link.TargetID)
}

func TestParse_UnclosedParen(t *testing.T) {
	_, err := Parse("(type:concept")
	assert.Error(t, err)
}

func TestParse_TrailingGarbage(t *testing.T) {
	_, err := Parse("type:concept )")
	assert.Error(t, err)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)
}

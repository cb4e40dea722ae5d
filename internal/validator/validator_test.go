package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/engram-cortex/engram/internal/graph"
	"github.com/engram-cortex/engram/internal/model"
)

func TestCheckBodyNoConnections_Clean(t *testing.T) {
	assert.NoError(t, CheckBodyNoConnections("concept.x", "This is just prose about validates and such."))
}

func TestCheckBodyNoConnections_Violation(t *testing.T) {
	err := CheckBodyNoConnections("concept.x", "See also validates:test.login for details.")
	assert.Error(t, err)
}

func TestValidateAll(t *testing.T) {
	req := model.NewNeurona("req.a", "A")
	req.Type = model.TypeRequirement
	req.AddConnection("blocks", model.Connection{TargetID: "issue.c", Type: model.ConnBlocks, Weight: 50})

	test := model.NewNeurona("test.b", "B")
	test.Type = model.TypeTestCase
	test.AddConnection("validates", model.Connection{TargetID: "req.a", Type: model.ConnValidates, Weight: 90})

	issue := model.NewNeurona("issue.c", "C")
	issue.Type = model.TypeIssue

	neuronas := []*model.Neurona{req, test, issue}
	byID := map[string]*model.Neurona{"req.a": req, "test.b": test, "issue.c": issue}

	g := graph.New()
	g.AddEdge("test.b", "req.a", 90)
	g.AddEdge("req.a", "issue.c", 50)

	report := ValidateAll(neuronas, byID, g)
	assert.Len(t, report.ConnectionErrors, 1, "requirement->issue blocks is not in the legality table")
	assert.Empty(t, report.CycleWitnesses)
}

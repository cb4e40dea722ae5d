// Package validator enforces connection legality, cardinality limits, the
// connections-never-in-body invariant, cycle/orphan detection, and the
// per-type state machines of spec.md §4.3.
package validator

import (
	"fmt"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/model"
)

type pair struct {
	from, to model.Type
}

// legalityTable maps (from_type, to_type) to the set of connection types
// allowed between them. relates_to is allowed everywhere (see IsAllowed),
// whether or not a pair lists it.
var legalityTable = map[pair]map[model.ConnectionType]bool{
	{model.TypeTestCase, model.TypeRequirement}: {
		model.ConnValidates: true,
		model.ConnProves:    true,
	},
	{model.TypeRequirement, model.TypeTestCase}: {
		model.ConnValidatedBy: true,
	},
	{model.TypeArtifact, model.TypeRequirement}: {
		model.ConnImplements: true,
	},
	{model.TypeRequirement, model.TypeArtifact}: {
		model.ConnImplementedBy: true,
	},
	{model.TypeIssue, model.TypeRequirement}: {
		model.ConnBlocks: true,
	},
	{model.TypeIssue, model.TypeIssue}: {
		model.ConnBlocks:     true,
		model.ConnBlockedBy:  true,
		model.ConnRelatesTo:  true,
	},
	{model.TypeTestCase, model.TypeArtifact}: {
		model.ConnTests:    true,
		model.ConnTestedBy: true,
	},
	{model.TypeArtifact, model.TypeTestCase}: {
		model.ConnTestedBy: true,
		model.ConnTests:    true,
	},
	{model.TypeFeature, model.TypeRequirement}: {
		model.ConnParent: true,
		model.ConnChild:  true,
	},
	{model.TypeRequirement, model.TypeFeature}: {
		model.ConnParent: true,
		model.ConnChild:  true,
	},
	{model.TypeLesson, model.TypeLesson}: {
		model.ConnPrerequisite: true,
		model.ConnNext:         true,
	},
	{model.TypeArtifact, model.TypeArtifact}: {
		model.ConnParent: true,
		model.ConnChild:  true,
	},
	{model.TypeConcept, model.TypeConcept}: {
		model.ConnBuildsOn:    true,
		model.ConnContradicts: true,
		model.ConnOpposes:     true,
	},
	{model.TypeReference, model.TypeConcept}: {
		model.ConnCites: true,
	},
	{model.TypeConcept, model.TypeReference}: {
		model.ConnCites: true,
	},
	{model.TypeConcept, model.TypeLesson}: {
		model.ConnExampleOf: true,
	},
	{model.TypeLesson, model.TypeConcept}: {
		model.ConnExampleOf: true,
	},
}

// cardinalityLimits caps how many edges of a given type may exist from one
// Neurona of fromType to Neuronas of toType. Absent entries are unlimited.
// spec.md §4.3 example: "artifact<->artifact parent/child limited to 1".
var cardinalityLimits = map[pair]map[model.ConnectionType]int{
	{model.TypeArtifact, model.TypeArtifact}: {
		model.ConnParent: 1,
		model.ConnChild:  1,
	},
}

// IsAllowed reports whether a connType edge from fromType to toType is
// legal. relates_to is a universal fallback (spec.md §4.3).
func IsAllowed(fromType, toType model.Type, connType model.ConnectionType) bool {
	if connType == model.ConnRelatesTo {
		return true
	}
	allowed, ok := legalityTable[pair{fromType, toType}]
	if !ok {
		return false
	}
	return allowed[connType]
}

// CardinalityLimit returns the max allowed count of connType edges from
// fromType to toType, and whether a limit applies at all.
func CardinalityLimit(fromType, toType model.Type, connType model.ConnectionType) (int, bool) {
	limits, ok := cardinalityLimits[pair{fromType, toType}]
	if !ok {
		return 0, false
	}
	limit, ok := limits[connType]
	return limit, ok
}

// ValidateConnection checks one proposed edge against the legality table
// and, given the Neurona-level type lookup and current edge count, the
// cardinality limit.
func ValidateConnection(fromType, toType model.Type, connType model.ConnectionType, currentCount int) error {
	if !IsAllowed(fromType, toType, connType) {
		return engramerr.New(engramerr.KindValidation, engramerr.IDConnectionTypeNotAllowed,
			fmt.Sprintf("%s -[%s]-> %s", fromType, connType, toType),
			"use relates_to, or check the connection legality table")
	}
	if limit, ok := CardinalityLimit(fromType, toType, connType); ok && currentCount >= limit {
		return engramerr.New(engramerr.KindValidation, engramerr.IDCardinalityExceeded,
			fmt.Sprintf("%s -[%s]-> %s", fromType, connType, toType),
			fmt.Sprintf("at most %d %s edge(s) allowed", limit, connType))
	}
	return nil
}

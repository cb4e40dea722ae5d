// Package model defines Engram's core data types: Neurona, Connection, the
// tagged-union Context, and Cortex — the typed records spec.md §3
// describes. These are plain structs; a Graph or index copies the strings
// it needs into its own storage rather than holding a live Neurona
// reference (spec.md §5 "Memory discipline").
package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Type enumerates the nine Neurona kinds spec.md §3 defines.
type Type string

const (
	TypeConcept      Type = "concept"
	TypeReference    Type = "reference"
	TypeArtifact     Type = "artifact"
	TypeStateMachine Type = "state_machine"
	TypeLesson       Type = "lesson"
	TypeRequirement  Type = "requirement"
	TypeTestCase     Type = "test_case"
	TypeIssue        Type = "issue"
	TypeFeature      Type = "feature"
)

// ValidTypes lists every Type value, used by readers/validators to reject
// unknown type strings.
var ValidTypes = []Type{
	TypeConcept, TypeReference, TypeArtifact, TypeStateMachine, TypeLesson,
	TypeRequirement, TypeTestCase, TypeIssue, TypeFeature,
}

// IsValid reports whether t is one of the nine known types.
func (t Type) IsValid() bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ConnectionType enumerates the 20 directed edge types spec.md §3 defines.
type ConnectionType string

const (
	ConnParent       ConnectionType = "parent"
	ConnChild        ConnectionType = "child"
	ConnValidates    ConnectionType = "validates"
	ConnValidatedBy  ConnectionType = "validated_by"
	ConnBlocks       ConnectionType = "blocks"
	ConnBlockedBy    ConnectionType = "blocked_by"
	ConnImplements   ConnectionType = "implements"
	ConnImplementedBy ConnectionType = "implemented_by"
	ConnTestedBy     ConnectionType = "tested_by"
	ConnTests        ConnectionType = "tests"
	ConnRelatesTo    ConnectionType = "relates_to"
	ConnPrerequisite ConnectionType = "prerequisite"
	ConnNext         ConnectionType = "next"
	ConnRelated      ConnectionType = "related"
	ConnOpposes      ConnectionType = "opposes"
	ConnBuildsOn     ConnectionType = "builds_on"
	ConnContradicts  ConnectionType = "contradicts"
	ConnCites        ConnectionType = "cites"
	ConnExampleOf    ConnectionType = "example_of"
	ConnProves       ConnectionType = "proves"
)

// DefaultWeight is installed for a Connection whose weight was omitted.
const DefaultWeight = 50

// ClampWeight clamps w into [0, 100] (spec.md §3 invariant 4).
func ClampWeight(w int) int {
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return w
}

// Connection is a directed, weighted edge from the owning Neurona to
// TargetID.
type Connection struct {
	TargetID string         `yaml:"id"`
	Type     ConnectionType `yaml:"type,omitempty"`
	Weight   int            `yaml:"weight"`
}

// Neurona is one node in the cortex graph — one Markdown file with YAML
// frontmatter.
type Neurona struct {
	ID          string
	Title       string
	Type        Type
	Tags        []string
	Updated     string // ISO 8601
	Language    string
	Hash        string
	Connections map[string][]Connection // group name -> ordered edges
	Context     Context
}

// NewNeurona constructs a Neurona with the defaults readNeurona would apply
// to a minimal frontmatter block (spec.md §4.1): type=concept,
// language="en", empty tags/connections.
func NewNeurona(id, title string) *Neurona {
	return &Neurona{
		ID:          id,
		Title:       title,
		Type:        TypeConcept,
		Language:    "en",
		Connections: make(map[string][]Connection),
	}
}

// AddConnection appends a Connection to the named group, clamping its
// weight. A negative weight is a sentinel for "unspecified" and becomes
// DefaultWeight; a weight of 0 is kept as given (spec.md treats 0 as a
// legitimate, if unusual, edge weight).
func (n *Neurona) AddConnection(group string, c Connection) {
	if c.Weight < 0 {
		c.Weight = DefaultWeight
	}
	c.Weight = ClampWeight(c.Weight)
	n.Connections[group] = append(n.Connections[group], c)
}

// AllConnections flattens every connection group into one slice, each
// tagged with the group it came from. Edges within a group keep their
// order; the groups themselves come in map iteration order.
type GroupedConnection struct {
	Group string
	Connection
}

func (n *Neurona) AllConnections() []GroupedConnection {
	out := make([]GroupedConnection, 0)
	for group, conns := range n.Connections {
		for _, c := range conns {
			out = append(out, GroupedConnection{Group: group, Connection: c})
		}
	}
	return out
}

// GenerateID derives a stable kebab-case id from a type prefix and a
// title, following the `req.auth.oauth2`-style dotted id convention of
// spec.md §3. existing is consulted to guarantee uniqueness within a
// cortex; on collision a short uuid suffix is appended rather than
// silently overwriting an existing Neurona.
func GenerateID(prefix, title string, existing map[string]bool) string {
	slug.Lowercase = true
	base := slug.Make(title)
	id := fmt.Sprintf("%s.%s", prefix, base)
	if existing == nil || !existing[id] {
		return id
	}
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s.%s", id, suffix)
}

// TypePrefix returns the conventional id prefix for a Neurona Type (used
// by the `new <type> <title>` factory family).
func TypePrefix(t Type) string {
	switch t {
	case TypeRequirement:
		return "req"
	case TypeTestCase:
		return "test"
	case TypeIssue:
		return "issue"
	case TypeArtifact:
		return "artifact"
	case TypeFeature:
		return "feature"
	case TypeStateMachine:
		return "sm"
	case TypeLesson:
		return "lesson"
	case TypeReference:
		return "ref"
	default:
		return "concept"
	}
}

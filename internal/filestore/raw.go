package filestore

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/engram-cortex/engram/internal/model"
)

// legacyGroup is the reserved connection group under which flat legacy
// entries ("validates:<target>:<weight>") are collected, since the legacy
// form carries no group name of its own — only a connection type per
// entry. MigrateLegacyConnections regroups these by type to match the
// block form's convention of group name == connection type.
const legacyGroup = "legacy"

// rawContext is a loosely-typed mirror of the YAML `context` block, decoded
// into model.Context based on the sibling `type` field since the context
// shape is a tagged union keyed by the Neurona's type (spec.md §3/§4.1).
type rawContext map[string]interface{}

// rawNeurona mirrors the on-disk frontmatter shape. Connections uses a
// custom unmarshaler so both the canonical block form and the flat legacy
// form parse into the same in-memory representation.
type rawNeurona struct {
	ID          string              `yaml:"id"`
	Title       string              `yaml:"title"`
	Tags        []string            `yaml:"tags,omitempty"`
	Type        string              `yaml:"type,omitempty"`
	Updated     string              `yaml:"updated,omitempty"`
	Language    string              `yaml:"language,omitempty"`
	Hash        string              `yaml:"hash,omitempty"`
	Context     rawContext          `yaml:"context,omitempty"`
	Connections rawConnectionsField `yaml:"connections,omitempty"`
}

// rawConnectionsField accepts either the canonical
// `{group: [{id, type, weight}, ...]}` mapping or the legacy
// `["type:target:weight", ...]` flat sequence.
type rawConnectionsField struct {
	Groups map[string][]model.Connection
}

func (r *rawConnectionsField) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var groups map[string][]model.Connection
		if err := value.Decode(&groups); err != nil {
			return err
		}
		r.Groups = groups
		return nil
	case yaml.SequenceNode:
		var flat []string
		if err := value.Decode(&flat); err != nil {
			return err
		}
		r.Groups = map[string][]model.Connection{}
		for _, entry := range flat {
			conn, ok := parseLegacyConnection(entry)
			if !ok {
				continue
			}
			r.Groups[legacyGroup] = append(r.Groups[legacyGroup], conn)
		}
		return nil
	case 0:
		return nil
	default:
		return fmt.Errorf("connections: unsupported YAML node kind %v", value.Kind)
	}
}

// parseLegacyConnection parses one "type:target:weight" entry. Missing or
// non-numeric weight falls back to model.DefaultWeight rather than
// rejecting the whole file — the file store is permissive by design
// (spec.md §4.1).
func parseLegacyConnection(entry string) (model.Connection, bool) {
	parts := strings.SplitN(entry, ":", 3)
	if len(parts) < 2 {
		return model.Connection{}, false
	}
	conn := model.Connection{
		Type:     model.ConnectionType(parts[0]),
		TargetID: parts[1],
		Weight:   model.DefaultWeight,
	}
	if len(parts) == 3 {
		if w, err := strconv.Atoi(parts[2]); err == nil {
			conn.Weight = model.ClampWeight(w)
		}
	}
	return conn, true
}

// toContext converts the raw context map into model.Context, keyed by the
// Neurona's own type (the context shape is determined by type, not by a
// discriminant field in the YAML itself).
func toContext(t model.Type, raw rawContext) model.Context {
	ctx := model.DefaultContextForType(t)
	if len(raw) == 0 {
		return ctx
	}

	str := func(k string) string {
		v, _ := raw[k].(string)
		return v
	}
	strList := func(k string) []string {
		items, _ := raw[k].([]interface{})
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	boolean := func(k string) bool {
		v, _ := raw[k].(bool)
		return v
	}
	intVal := func(k string) int {
		switch v := raw[k].(type) {
		case int:
			return v
		case int64:
			return int(v)
		}
		return 0
	}

	switch ctx.Kind {
	case model.ContextStateMachine:
		ctx.StateMachine = &model.StateMachineContext{
			Triggers:     strList("triggers"),
			EntryAction:  str("entry_action"),
			ExitAction:   str("exit_action"),
			AllowedRoles: strList("allowed_roles"),
		}
	case model.ContextArtifact:
		ctx.Artifact = &model.ArtifactContext{
			Runtime:         str("runtime"),
			FilePath:        str("file_path"),
			SafeToExec:      boolean("safe_to_exec"),
			LanguageVersion: str("language_version"),
			LastModified:    str("last_modified"),
		}
	case model.ContextTestCase:
		ctx.TestCase = &model.TestCaseContext{
			Framework: str("framework"),
			TestFile:  str("test_file"),
			Status:    orDefault(str("status"), "not_run"),
			Priority:  str("priority"),
			Assignee:  str("assignee"),
			Duration:  str("duration"),
			LastRun:   str("last_run"),
		}
	case model.ContextIssue:
		ctx.Issue = &model.IssueContext{
			Status:    orDefault(str("status"), "open"),
			Priority:  str("priority"),
			Assignee:  str("assignee"),
			Created:   str("created"),
			Resolved:  str("resolved"),
			Closed:    str("closed"),
			BlockedBy: strList("blocked_by"),
			RelatedTo: strList("related_to"),
		}
	case model.ContextRequirement:
		ctx.Requirement = &model.RequirementContext{
			Status:             orDefault(str("status"), "draft"),
			VerificationMethod: str("verification_method"),
			Priority:           str("priority"),
			Assignee:           str("assignee"),
			EffortPoints:       intVal("effort_points"),
			Sprint:             str("sprint"),
		}
	case model.ContextConcept:
		ctx.Concept = &model.ConceptContext{
			Definition: str("definition"),
			Examples:   strList("examples"),
			Difficulty: str("difficulty"),
		}
	case model.ContextReference:
		ctx.Reference = &model.ReferenceContext{
			Source:   str("source"),
			URL:      str("url"),
			Author:   str("author"),
			Citation: str("citation"),
		}
	case model.ContextLesson:
		ctx.Lesson = &model.LessonContext{
			Objectives:    strList("objectives"),
			Prerequisites: strList("prerequisites"),
			KeyTakeaways:  strList("key_takeaways"),
			Difficulty:    str("difficulty"),
			EstimatedTime: str("estimated_time"),
		}
	case model.ContextCustom:
		custom := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				custom[k] = s
			}
		}
		ctx.Custom = custom
	}
	return ctx
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// fromContext renders a model.Context back into the YAML-serializable map
// form writeNeurona emits under the `context` key.
func fromContext(ctx model.Context) map[string]interface{} {
	out := map[string]interface{}{}
	switch ctx.Kind {
	case model.ContextStateMachine:
		if c := ctx.StateMachine; c != nil {
			putNonEmpty(out, "triggers", c.Triggers)
			putNonEmpty(out, "entry_action", c.EntryAction)
			putNonEmpty(out, "exit_action", c.ExitAction)
			putNonEmpty(out, "allowed_roles", c.AllowedRoles)
		}
	case model.ContextArtifact:
		if c := ctx.Artifact; c != nil {
			putNonEmpty(out, "runtime", c.Runtime)
			putNonEmpty(out, "file_path", c.FilePath)
			out["safe_to_exec"] = c.SafeToExec
			putNonEmpty(out, "language_version", c.LanguageVersion)
			putNonEmpty(out, "last_modified", c.LastModified)
		}
	case model.ContextTestCase:
		if c := ctx.TestCase; c != nil {
			putNonEmpty(out, "framework", c.Framework)
			putNonEmpty(out, "test_file", c.TestFile)
			putNonEmpty(out, "status", c.Status)
			putNonEmpty(out, "priority", c.Priority)
			putNonEmpty(out, "assignee", c.Assignee)
			putNonEmpty(out, "duration", c.Duration)
			putNonEmpty(out, "last_run", c.LastRun)
		}
	case model.ContextIssue:
		if c := ctx.Issue; c != nil {
			putNonEmpty(out, "status", c.Status)
			putNonEmpty(out, "priority", c.Priority)
			putNonEmpty(out, "assignee", c.Assignee)
			putNonEmpty(out, "created", c.Created)
			putNonEmpty(out, "resolved", c.Resolved)
			putNonEmpty(out, "closed", c.Closed)
			putNonEmpty(out, "blocked_by", c.BlockedBy)
			putNonEmpty(out, "related_to", c.RelatedTo)
		}
	case model.ContextRequirement:
		if c := ctx.Requirement; c != nil {
			putNonEmpty(out, "status", c.Status)
			putNonEmpty(out, "verification_method", c.VerificationMethod)
			putNonEmpty(out, "priority", c.Priority)
			putNonEmpty(out, "assignee", c.Assignee)
			if c.EffortPoints != 0 {
				out["effort_points"] = c.EffortPoints
			}
			putNonEmpty(out, "sprint", c.Sprint)
		}
	case model.ContextConcept:
		if c := ctx.Concept; c != nil {
			putNonEmpty(out, "definition", c.Definition)
			putNonEmpty(out, "examples", c.Examples)
			putNonEmpty(out, "difficulty", c.Difficulty)
		}
	case model.ContextReference:
		if c := ctx.Reference; c != nil {
			putNonEmpty(out, "source", c.Source)
			putNonEmpty(out, "url", c.URL)
			putNonEmpty(out, "author", c.Author)
			putNonEmpty(out, "citation", c.Citation)
		}
	case model.ContextLesson:
		if c := ctx.Lesson; c != nil {
			putNonEmpty(out, "objectives", c.Objectives)
			putNonEmpty(out, "prerequisites", c.Prerequisites)
			putNonEmpty(out, "key_takeaways", c.KeyTakeaways)
			putNonEmpty(out, "difficulty", c.Difficulty)
			putNonEmpty(out, "estimated_time", c.EstimatedTime)
		}
	case model.ContextCustom:
		for k, v := range ctx.Custom {
			out[k] = v
		}
	}
	return out
}

func putNonEmpty(m map[string]interface{}, key string, v interface{}) {
	switch val := v.(type) {
	case string:
		if val != "" {
			m[key] = val
		}
	case []string:
		if len(val) > 0 {
			m[key] = val
		}
	default:
		m[key] = v
	}
}

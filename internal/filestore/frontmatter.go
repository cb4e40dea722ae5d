package filestore

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/model"
)

const frontmatterDelim = "---"

// splitFrontmatter separates a Neurona file's YAML frontmatter from its
// Markdown body. The file must start with a "---" line; the frontmatter
// ends at the next "---" line on its own.
func splitFrontmatter(raw string) (frontmatter, body string, err error) {
	lines := strings.Split(raw, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterDelim {
		return "", "", engramerr.New(engramerr.KindFormat, engramerr.IDInvalidNeuronaFormat, "",
			"file must begin with a '---' frontmatter delimiter")
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelim {
			fm := strings.Join(lines[1:i], "\n")
			b := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimPrefix(b, "\n"), nil
		}
	}
	return "", "", engramerr.New(engramerr.KindFormat, engramerr.IDInvalidNeuronaFormat, "",
		"frontmatter is not terminated by a closing '---'")
}

// parseNeurona decodes frontmatter YAML into a model.Neurona (the body is
// not part of its input).
// It is permissive about unknown keys (yaml.v3 ignores them by default)
// and enforces only the two required fields spec.md §4.1 names: id, title.
func parseNeurona(frontmatter string) (*model.Neurona, error) {
	var raw rawNeurona
	if err := yaml.Unmarshal([]byte(frontmatter), &raw); err != nil {
		return nil, engramerr.Wrap(engramerr.KindFormat, engramerr.IDInvalidYaml, "", "fix the YAML frontmatter syntax", err)
	}

	if raw.ID == "" {
		return nil, engramerr.New(engramerr.KindValidation, engramerr.IDMissingRequiredField, "id", "every Neurona requires an id field")
	}
	if raw.Title == "" {
		return nil, engramerr.New(engramerr.KindValidation, engramerr.IDMissingRequiredField, "title", "every Neurona requires a title field")
	}

	typ := model.Type(raw.Type)
	if typ == "" {
		typ = model.TypeConcept
	}
	if !typ.IsValid() {
		return nil, engramerr.New(engramerr.KindValidation, engramerr.IDInvalidNeuronaType, string(typ), "use one of the nine known Neurona types")
	}

	lang := raw.Language
	if lang == "" {
		lang = "en"
	}

	connections := raw.Connections.Groups
	if connections == nil {
		connections = map[string][]model.Connection{}
	}

	n := &model.Neurona{
		ID:          raw.ID,
		Title:       raw.Title,
		Type:        typ,
		Tags:        raw.Tags,
		Updated:     raw.Updated,
		Language:    lang,
		Hash:        raw.Hash,
		Connections: connections,
		Context:     toContext(typ, raw.Context),
	}
	// Every read migrates legacy flat connections into their per-type
	// groups immediately, so the in-memory Neurona (and whatever
	// writeNeurona later renders from it) never carries the reserved
	// legacy group canonicalConnections drops.
	MigrateLegacyConnections(n)
	return n, nil
}

// renderNeurona serializes n back into canonical frontmatter + body form.
// Canonical key order (spec.md §4.1): Tier 1 (id, title, tags), Tier 2
// (type, updated, language), Tier 3 (hash, context, connections). Empty
// defaults are omitted; connections are always emitted in block form,
// never the legacy flat form, even if read from one.
func renderNeurona(n *model.Neurona, body string) string {
	var sb strings.Builder
	sb.WriteString(frontmatterDelim)
	sb.WriteString("\n")

	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)

	doc := canonicalDoc(n)
	_ = enc.Encode(doc)
	_ = enc.Close()

	sb.WriteString(frontmatterDelim)
	sb.WriteString("\n")
	if body != "" {
		sb.WriteString("\n")
		sb.WriteString(body)
	}
	return sb.String()
}

// canonicalDoc builds an ordered yaml.Node document so field order matches
// spec.md's tiering regardless of map iteration order.
func canonicalDoc(n *model.Neurona) *yaml.Node {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value interface{}) {
		k := &yaml.Node{}
		_ = k.Encode(key)
		v := &yaml.Node{}
		_ = v.Encode(value)
		doc.Content = append(doc.Content, k, v)
	}

	add("id", n.ID)
	add("title", n.Title)
	if len(n.Tags) > 0 {
		add("tags", n.Tags)
	}

	add("type", n.Type)
	if n.Updated != "" {
		add("updated", n.Updated)
	}
	add("language", n.Language)

	if n.Hash != "" {
		add("hash", n.Hash)
	}
	if ctx := fromContext(n.Context); len(ctx) > 0 {
		add("context", ctx)
	}
	if conns := canonicalConnections(n.Connections); len(conns) > 0 {
		add("connections", conns)
	}

	return doc
}

// canonicalConnections drops the reserved legacy group (migrated entries
// belong under their real type group by the time this is called) and
// omits empty groups.
func canonicalConnections(groups map[string][]model.Connection) map[string][]model.Connection {
	out := map[string][]model.Connection{}
	for group, conns := range groups {
		if group == legacyGroup || len(conns) == 0 {
			continue
		}
		out[group] = conns
	}
	return out
}

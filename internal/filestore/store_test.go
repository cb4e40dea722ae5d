package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engram-cortex/engram/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIsNeuronaFile(t *testing.T) {
	assert.True(t, isNeuronaFile("req.auth.md"))
	assert.False(t, isNeuronaFile("cortex.json"))
}

func TestReadNeurona_Canonical(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "req.login.md", `---
id: req.login
title: Login Requirement
tags: [auth, login]
type: requirement
updated: "2026-01-01T00:00:00Z"
language: en
context:
  status: approved
  priority: high
connections:
  validates:
    - id: test.login
      weight: 90
---

Body text.
`)

	n, err := readNeurona(filepath.Join(dir, "req.login.md"))
	require.NoError(t, err)
	assert.Equal(t, "req.login", n.ID)
	assert.Equal(t, model.TypeRequirement, n.Type)
	assert.Equal(t, []string{"auth", "login"}, n.Tags)
	require.Len(t, n.Connections["validates"], 1)
	assert.Equal(t, "test.login", n.Connections["validates"][0].TargetID)
	status, ok := n.Context.Status()
	require.True(t, ok)
	assert.Equal(t, "approved", status)
}

func TestReadNeurona_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "concept.x.md", "---\nid: concept.x\ntitle: X\n---\n")

	n, err := readNeurona(filepath.Join(dir, "concept.x.md"))
	require.NoError(t, err)
	assert.Equal(t, model.TypeConcept, n.Type)
	assert.Equal(t, "en", n.Language)
	assert.Empty(t, n.Tags)
}

func TestReadNeurona_MissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.md", "---\ntitle: No Id\n---\n")

	_, err := readNeurona(filepath.Join(dir, "bad.md"))
	require.Error(t, err)
}

func TestReadNeurona_LegacyFlatConnections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "req.x.md", `---
id: req.x
title: X
connections: ["validates:test.x:80", "relates_to:concept.y"]
---
`)

	// parseNeurona migrates legacy flat connections into their per-type
	// groups immediately, so a freshly read Neurona never carries the
	// reserved legacy group itself.
	n, err := readNeurona(filepath.Join(dir, "req.x.md"))
	require.NoError(t, err)
	assert.Empty(t, n.Connections[legacyGroup])
	require.Len(t, n.Connections["validates"], 1)
	assert.Equal(t, 80, n.Connections["validates"][0].Weight)
	require.Len(t, n.Connections["relates_to"], 1)
	assert.Equal(t, model.DefaultWeight, n.Connections["relates_to"][0].Weight)
}

func TestReadNeurona_LegacyFlatConnectionsSurviveRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "req.x.md")
	writeFile(t, dir, "req.x.md", `---
id: req.x
title: X
connections: ["validates:test.x:80"]
---
`)

	n, body, err := (&Store{dir: dir}).readNeuronaWithBody("req.x")
	require.NoError(t, err)
	require.NoError(t, writeNeurona(n, path, body))

	reread, err := readNeurona(path)
	require.NoError(t, err)
	require.Len(t, reread.Connections["validates"], 1)
	assert.Equal(t, "test.x", reread.Connections["validates"][0].TargetID)
}

func TestMigrateLegacyConnections_NoOpWhenCanonical(t *testing.T) {
	n := model.NewNeurona("concept.x", "X")
	n.AddConnection("related", model.Connection{TargetID: "concept.y", Type: model.ConnRelatesTo, Weight: 50})
	assert.False(t, MigrateLegacyConnections(n))
}

func TestMigrateLegacyConnections_RegroupsByType(t *testing.T) {
	n := model.NewNeurona("req.x", "X")
	n.Connections[legacyGroup] = []model.Connection{
		{TargetID: "test.x", Type: model.ConnValidates, Weight: 80},
		{TargetID: "concept.y", Type: "", Weight: model.DefaultWeight},
	}

	migrated := MigrateLegacyConnections(n)
	assert.True(t, migrated)
	assert.Empty(t, n.Connections[legacyGroup])
	assert.Len(t, n.Connections["validates"], 1)
	assert.Len(t, n.Connections["relates_to"], 1)
}

func TestWriteNeurona_AtomicAndCanonicalOrder(t *testing.T) {
	dir := t.TempDir()
	n := model.NewNeurona("concept.x", "X Title")
	n.Type = model.TypeRequirement
	n.Context = model.DefaultContextForType(model.TypeRequirement)
	n.AddConnection("validates", model.Connection{TargetID: "test.x", Type: model.ConnValidates, Weight: 90})

	path := filepath.Join(dir, "concept.x.md")
	require.NoError(t, writeNeurona(n, path, "body here"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "id: concept.x")
	assert.Contains(t, content, "body here")

	keys := []string{"id", "title", "type", "language", "context", "connections"}
	prev := -1
	for _, key := range keys {
		pos := strings.Index(content, "\n"+key+":")
		require.GreaterOrEqual(t, pos, 0, "missing top-level key %s", key)
		assert.Greater(t, pos, prev, "key %s out of canonical order", key)
		prev = pos
	}

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestScanNeuronas_SkipAndWarn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.md", "---\nid: concept.good\ntitle: Good\n---\n")
	writeFile(t, dir, "bad.md", "not even frontmatter")
	writeFile(t, dir, "readme.txt", "ignored, not .md")

	neuronas, warnings := scanNeuronas(dir)
	require.Len(t, neuronas, 1)
	assert.Equal(t, "concept.good", neuronas[0].ID)
	assert.Len(t, warnings, 1)
}

func TestStore_FindNeuronaPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "req.auth.login.md", "---\nid: req.auth.login\ntitle: Login\n---\n")

	s, err := New(dir)
	require.NoError(t, err)
	defer s.Close()

	path, err := s.findNeuronaPath("req.auth.login")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "req.auth.login.md"), path)

	path, err = s.findNeuronaPath("auth.login")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "req.auth.login.md"), path)

	_, err = s.findNeuronaPath("nonexistent")
	assert.Error(t, err)
}

func TestStore_ReadNeuronaCaches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "concept.x.md", "---\nid: concept.x\ntitle: X\n---\n")

	s, err := New(dir)
	require.NoError(t, err)
	defer s.Close()

	n1, err := s.ReadNeurona("concept.x")
	require.NoError(t, err)
	s.cache.Wait()

	n2, err := s.ReadNeurona("concept.x")
	require.NoError(t, err)
	assert.Same(t, n1, n2)
}

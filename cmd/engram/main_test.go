package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engram-cortex/engram/internal/engramerr"
)

// run executes rootCmd with args against a fresh workspace flag value and
// returns any error, mirroring how main() drives the same command.
func run(t *testing.T, cortexDir string, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append([]string{"-w", cortexDir}, args...))
	return rootCmd.Execute()
}

func newTestCortex(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "init", "test-cortex"))
	return dir
}

func TestCLI_InitCreatesManifestAndNeuronasDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "init", "my-cortex"))

	_, err := os.Stat(filepath.Join(dir, "cortex.json"))
	assert.NoError(t, err)
	info, err := os.Stat(filepath.Join(dir, "neuronas"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCLI_InitRefusesToOverwriteWithoutForce(t *testing.T) {
	dir := newTestCortex(t)
	err := run(t, dir, "init", "my-cortex")
	assert.Error(t, err)

	require.NoError(t, run(t, dir, "init", "my-cortex", "--force"))
}

func TestCLI_NewShowLinkRoundTrip(t *testing.T) {
	dir := newTestCortex(t)

	require.NoError(t, run(t, dir, "new", "concept", "Dependency Injection"))
	require.NoError(t, run(t, dir, "new", "concept", "Constructor Injection"))

	neuronas, err := os.ReadDir(filepath.Join(dir, "neuronas"))
	require.NoError(t, err)
	require.Len(t, neuronas, 2)

	srcID := idFromFilename(neuronas[0].Name())
	tgtID := idFromFilename(neuronas[1].Name())

	require.NoError(t, run(t, dir, "link", srcID, tgtID, "relates_to"))
	require.NoError(t, run(t, dir, "show", srcID, "--json"))
}

func TestCLI_RequirementTestCaseValidatesDirection(t *testing.T) {
	dir := newTestCortex(t)

	require.NoError(t, run(t, dir, "new", "requirement", "User login"))
	require.NoError(t, run(t, dir, "new", "test_case", "Login happy path"))

	neuronas, err := os.ReadDir(filepath.Join(dir, "neuronas"))
	require.NoError(t, err)
	var reqID, testID string
	for _, f := range neuronas {
		id := idFromFilename(f.Name())
		switch {
		case strings.HasPrefix(id, "req."):
			reqID = id
		case strings.HasPrefix(id, "test."):
			testID = id
		}
	}
	require.NotEmpty(t, reqID)
	require.NotEmpty(t, testID)

	// spec.md §8 scenario 2: test_case -[validates]-> requirement is legal.
	require.NoError(t, run(t, dir, "link", testID, reqID, "validates"))
	// The reverse direction is not in the legality table.
	assert.Error(t, run(t, dir, "link", reqID, testID, "validates"))
}

func TestCLI_UpdateStatusGoesThroughStateMachine(t *testing.T) {
	dir := newTestCortex(t)
	require.NoError(t, run(t, dir, "new", "issue", "Flaky test"))

	neuronas, err := os.ReadDir(filepath.Join(dir, "neuronas"))
	require.NoError(t, err)
	id := idFromFilename(neuronas[0].Name())

	require.NoError(t, run(t, dir, "update", id, "--set", "context.status=in_progress"))
	assert.Error(t, run(t, dir, "update", id, "--set", "context.status=not-a-real-status"))
}

func TestCLI_DeleteRemovesFile(t *testing.T) {
	dir := newTestCortex(t)
	require.NoError(t, run(t, dir, "new", "concept", "Ephemeral"))

	neuronas, err := os.ReadDir(filepath.Join(dir, "neuronas"))
	require.NoError(t, err)
	id := idFromFilename(neuronas[0].Name())

	require.NoError(t, run(t, dir, "delete", id))
	_, err = os.Stat(filepath.Join(dir, "neuronas", neuronas[0].Name()))
	assert.True(t, os.IsNotExist(err))
}

func TestCLI_SyncProducesGraphIndex(t *testing.T) {
	dir := newTestCortex(t)
	require.NoError(t, run(t, dir, "new", "concept", "Idempotency"))
	require.NoError(t, run(t, dir, "sync"))

	_, err := os.Stat(filepath.Join(dir, ".activations", "graph.idx"))
	assert.NoError(t, err)
}

func TestCLI_LinkArtifactAndReleaseStatus(t *testing.T) {
	dir := newTestCortex(t)
	require.NoError(t, run(t, dir, "new", "requirement", "Checkout flow"))

	neuronas, err := os.ReadDir(filepath.Join(dir, "neuronas"))
	require.NoError(t, err)
	reqID := idFromFilename(neuronas[0].Name())

	require.NoError(t, run(t, dir, "link-artifact", "pkg/checkout/handler.go", reqID, "--runtime", "go"))
	require.NoError(t, run(t, dir, "release-status"))
}

func TestCLI_TraceAndImpact(t *testing.T) {
	dir := newTestCortex(t)
	require.NoError(t, run(t, dir, "new", "requirement", "Parent requirement"))
	require.NoError(t, run(t, dir, "new", "issue", "Blocking issue"))

	neuronas, err := os.ReadDir(filepath.Join(dir, "neuronas"))
	require.NoError(t, err)
	var reqID, issueID string
	for _, f := range neuronas {
		id := idFromFilename(f.Name())
		switch {
		case strings.HasPrefix(id, "req."):
			reqID = id
		case strings.HasPrefix(id, "issue."):
			issueID = id
		}
	}
	require.NotEmpty(t, reqID)
	require.NotEmpty(t, issueID)

	require.NoError(t, run(t, dir, "link", issueID, reqID, "blocks"))
	require.NoError(t, run(t, dir, "trace", reqID, "--up"))
	require.NoError(t, run(t, dir, "impact", reqID))
}

func TestCLI_QueryFilterMode(t *testing.T) {
	dir := newTestCortex(t)
	require.NoError(t, run(t, dir, "new", "concept", "Query target"))
	require.NoError(t, run(t, dir, "query", "type:concept", "--mode", "filter", "--json"))
}

func TestCLI_StatusListsByType(t *testing.T) {
	dir := newTestCortex(t)
	require.NoError(t, run(t, dir, "new", "issue", "Tracked issue"))
	require.NoError(t, run(t, dir, "status", "--type", "issue"))
}

func TestExitCode_MapsEngramErrorKind(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(engramerr.NeuronaNotFound("req.x")))
	assert.Equal(t, 1, exitCode(errors.New("plain error")))
}

// idFromFilename strips the .md extension the same way the rest of the
// CLI's commands take ids from filestore.ListNeuronaFiles entries.
func idFromFilename(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func TestPrintJSON_RoundTrips(t *testing.T) {
	type payload struct {
		A int `json:"a"`
	}
	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	err = printJSON(payload{A: 1})
	os.Stdout = stdout
	require.NoError(t, w.Close())
	require.NoError(t, err)
	printed, err := io.ReadAll(r)
	require.NoError(t, err)

	var got payload
	require.NoError(t, json.Unmarshal(printed, &got))
	assert.Equal(t, 1, got.A)
}

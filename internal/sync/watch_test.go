package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchAt_RunsInitialSyncAndResyncsOnWrite(t *testing.T) {
	cortexDir := setupCortex(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := make(chan WatchReport, 8)
	done := make(chan error, 1)
	go func() {
		done <- WatchAt(ctx, cortexDir, nil, 50*time.Millisecond, func(wr WatchReport) {
			reports <- wr
		})
	}()

	select {
	case wr := <-reports:
		require.NoError(t, wr.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial sync")
	}

	writeNeuronaFile(t, filepath.Join(cortexDir, "neuronas"), "concept.c", "Concept C", "")

	select {
	case wr := <-reports:
		assert.NoError(t, wr.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for resync after write")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchAt did not return after cancel")
	}
}

func TestWatchAt_MissingNeuronasDirFails(t *testing.T) {
	cortexDir := t.TempDir()
	err := WatchAt(context.Background(), cortexDir, nil, 0, func(WatchReport) {})
	assert.Error(t, err)
}

func TestWatch_CortexNotFoundViaDiscovery(t *testing.T) {
	dir := t.TempDir()
	err := Watch(context.Background(), dir, nil, 0, func(WatchReport) {})
	assert.Error(t, err)
}

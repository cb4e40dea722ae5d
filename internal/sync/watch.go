package sync

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/engram-cortex/engram/internal/config"
	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/uri"
)

// defaultWatchDebounce coalesces bursts of saves (an editor's
// write-then-rename, a git checkout touching many files at once) into a
// single resync instead of one per file event.
const defaultWatchDebounce = 1500 * time.Millisecond

// WatchReport is emitted to onSync after every debounced resync triggered
// by Watch.
type WatchReport struct {
	Report *Report
	Err    error
}

// Watch resolves a cortex from startDir and runs SyncAt once up front,
// then keeps watching neuronas/ for writes/creates/removes, debouncing
// bursts into a single resync, until ctx is cancelled. Every resync
// (including the initial one) is delivered to onSync; onSync must not
// block long, since it runs on the watch goroutine.
func Watch(ctx context.Context, startDir string, cfg *config.Config, debounce time.Duration, onSync func(WatchReport)) error {
	cortexDir, err := uri.DiscoverCortex(startDir)
	if err != nil {
		return err
	}
	return WatchAt(ctx, cortexDir, cfg, debounce, onSync)
}

// WatchAt is Watch against an already-resolved cortex directory.
func WatchAt(ctx context.Context, cortexDir string, cfg *config.Config, debounce time.Duration, onSync func(WatchReport)) error {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	paths := newPaths(cortexDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, paths.neuronas,
			"check inotify/kqueue limits for this platform", err)
	}
	defer watcher.Close()

	if err := watcher.Add(paths.neuronas); err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, paths.neuronas,
			"ensure the cortex has been initialized", err)
	}

	runSync := func() {
		report, err := SyncAt(ctx, cortexDir, cfg, false)
		onSync(WatchReport{Report: report, Err: err})
	}
	runSync()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error on %s: %v", paths.neuronas, err)
		case <-timer.C:
			runSync()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Package watcher reloads the store when the data file is changed by
// something other than this process.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/quire/internal/checksum"
)

// Debounce is how long the watcher waits for writes to settle.
const Debounce = 200 * time.Millisecond

// Source is the data file being watched.
type Source interface {
	// Path is the absolute path of the data file.
	Path() string
	// Known reports whether content with this digest was written or read by us.
	Known(sum string) bool
}

// ReloadFunc re-reads persisted state.
type ReloadFunc func(ctx context.Context) error

// Watch watches the directory holding src and calls reload after foreign
// edits to the file, until ctx is cancelled. The directory is watched rather
// than the file because atomic saves replace the file.
func Watch(ctx context.Context, src Source, reload ReloadFunc, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	path := src.Path()
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("file", path))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(Debounce)
			timerCh = timer.C
		} else {
			timer.Reset(Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			check(ctx, src, reload, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func check(ctx context.Context, src Source, reload ReloadFunc, logger *slog.Logger) {
	data, err := os.ReadFile(src.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("error", err.Error()))
		return
	}
	if src.Known(checksum.Sum(data)) {
		return
	}
	logger.Info("watcher: data file changed externally, reloading")
	if err := reload(ctx); err != nil {
		logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
	}
}

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// watchFile calls rebuild after every change to path until ctx is done.
// The parent directory is watched as well so atomic saves (write to a
// temporary file, then rename) are seen.
func watchFile(ctx context.Context, path string, logger *zap.Logger, rebuild func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err = w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info("Watching for changes", zap.String("path", path))

	base := filepath.Base(path)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("Watch mode stopped")
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(watchDebounce)
			}
		case <-timer.C:
			logger.Info("Input changed, rebuilding", zap.String("path", path))
			rebuild()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error", zap.Error(err))
		}
	}
}

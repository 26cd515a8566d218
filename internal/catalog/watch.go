package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjoart/kenshicollection/pkg/logger"
)

const reloadDebounce = 250 * time.Millisecond

// Watch reloads the store from path whenever the file is written or replaced.
// The parent directory is watched so editors that save via rename are seen.
// A reload that fails to parse keeps the previous contents.
func Watch(ctx context.Context, path string, store *Store) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve catalog path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watch: catalog file", logger.Fields{"path": abs})

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: file watcher error", logger.WithError(werr))
		case <-fire:
			fire = nil
			items, lerr := LoadFile(abs)
			if lerr != nil {
				logger.Warn("watch: reload failed, keeping previous catalog", logger.WithError(lerr))
				continue
			}
			store.Replace(items)
			logger.Info("watch: catalog reloaded", logger.Fields{"items": len(items)})
		}
	}
}

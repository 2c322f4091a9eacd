package prefs

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mholloway/medley/internal/logging"
)

// debounce absorbs editor write bursts before reloading.
const debounce = 100 * time.Millisecond

// Watch reloads the preferences file on change and invokes onChange with
// each successfully loaded document. It blocks until ctx is cancelled.
//
// The parent directory is watched, not the file itself: atomic saves
// replace the inode and a file watch would go stale after the first write.
func Watch(ctx context.Context, path string, onChange func(*Preferences)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			p, err := LoadFrom(path)
			if err != nil {
				logging.Warn("Failed to reload preferences", "path", path, "error", err)
				continue
			}
			logging.Info("Preferences reloaded", "path", path)
			onChange(p)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Preferences watcher error", "error", err)
		}
	}
}

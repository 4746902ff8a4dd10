package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDir watches dir recursively for CSV changes and signals the returned
// channel. Signals are debounced so a burst of writes triggers one poll.
func watchDir(ctx context.Context, dir string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := addDirs(watcher, dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	wake := make(chan struct{}, 1)

	go func() {
		defer func() { _ = watcher.Close() }()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !relevantEvent(ev) {
					continue
				}
				// New subdirectories need to be watched too.
				if ev.Op.Has(fsnotify.Create) {
					_ = addDirs(watcher, ev.Name)
				}
				if debounce == nil {
					debounce = time.AfterFunc(500*time.Millisecond, func() {
						select {
						case wake <- struct{}{}:
						default:
						}
					})
				} else {
					debounce.Reset(500 * time.Millisecond)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return wake, nil
}

func addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}

func relevantEvent(ev fsnotify.Event) bool {
	if ev.Op.Has(fsnotify.Chmod) {
		return false
	}
	// Directory events matter for picking up new watch targets; otherwise
	// only CSV files are interesting.
	if strings.EqualFold(filepath.Ext(ev.Name), ".csv") {
		return true
	}
	return ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove)
}

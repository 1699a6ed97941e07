// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of writes to settle.
const DefaultDebounce = 150 * time.Millisecond

// ReloadFunc receives the freshly loaded config, or the error that kept it
// from loading.
type ReloadFunc func(cfg *Config, err error)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload ReloadFunc
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
}

// Watch starts watching path and calls onReload after every change. The
// parent directory is watched because editors usually replace files
// rather than write them in place. Watching stops when ctx is cancelled or
// Close is called.
func Watch(ctx context.Context, path string, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onReload: onReload,
		watcher:  fw,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				w.stopTimer()
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.stopTimer()
				return
			}
			w.onReload(nil, err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadFromPath(w.path)
	w.onReload(cfg, err)
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

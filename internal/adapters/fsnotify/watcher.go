// Package fsnotify watches the mirrored source files using
// github.com/fsnotify/fsnotify and triggers a refresh when they change.
// Events are debounced per quiet period — a mirror sync touches many files
// in a burst and should produce one refresh, not one per file.
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// Directories to ignore when walking the mirror tree.
var ignoreDirs = map[string]bool{
	".git":  true,
	".idea": true,
	".tmp":  true,
}

// Transient files editors and office tools leave behind.
var ignoreFiles = map[string]bool{
	".DS_Store": true,
	".swp":      true,
	".tmp":      true,
}

const defaultQuietPeriod = 500 * time.Millisecond

// Watcher triggers a callback after source files change and settle.
type Watcher struct {
	fw      *fsnotify.Watcher
	quiet   time.Duration
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a watcher with the default quiet period.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:    fw,
		quiet: defaultQuietPeriod,
		done:  make(chan struct{}),
	}, nil
}

// SetQuietPeriod overrides the debounce window. Call before Watch.
func (w *Watcher) SetQuietPeriod(d time.Duration) {
	w.quiet = d
}

// Watch starts monitoring every configured source path. onChange fires once
// per settled burst of events; refresh coalescing beyond that is the app
// layer's job.
func (w *Watcher) Watch(sources ports.Sources, onChange func()) error {
	for _, path := range sources.Paths() {
		if err := w.add(path); err != nil {
			return err
		}
	}

	var (
		tmu   sync.Mutex
		timer *time.Timer
	)

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if shouldIgnoreFile(filepath.Base(event.Name)) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				tmu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(w.quiet, onChange)
				tmu.Unlock()
			case <-w.fw.Errors:
				// Watch errors are not fatal; the next scheduled refresh
				// still picks changes up.
			case <-w.done:
				tmu.Lock()
				if timer != nil {
					timer.Stop()
				}
				tmu.Unlock()
				return
			}
		}
	}()
	return nil
}

// add registers a file or directory (recursively) with the watcher.
// Nonexistent paths are skipped: a missing optional source directory should
// not prevent watching the rest.
func (w *Watcher) add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		// Watch the parent so atomic replace-by-rename is observed.
		return w.fw.Add(filepath.Dir(path))
	}
	return filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if fi.IsDir() {
			if ignoreDirs[fi.Name()] && p != path {
				return filepath.SkipDir
			}
			return w.fw.Add(p)
		}
		return nil
	})
}

// Stop ends watching. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

func shouldIgnoreFile(name string) bool {
	if ignoreFiles[name] {
		return true
	}
	for suffix := range ignoreFiles {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	// Office lock files ("~$FedRAMP_....xlsx").
	return strings.HasPrefix(name, "~$")
}

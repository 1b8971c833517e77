package poems

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned by Next after Close.
var ErrWatcherClosed = errors.New("catalog watcher closed")

// Watcher reloads an external catalog file whenever it is written.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// Watch starts watching the directory that holds path.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve catalog path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", dir, err)
	}
	log.Debug("fsnotify watching catalog", "dir", dir, "file", abs)

	return &Watcher{path: abs, watcher: fw}, nil
}

// Path is the watched catalog file.
func (w *Watcher) Path() string { return w.path }

// Next blocks until the catalog file changes and returns the reloaded
// catalog. Parse errors are returned without stopping the watcher.
func (w *Watcher) Next() (*Catalog, error) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil, ErrWatcherClosed
			}
			if event.Name != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return Load(w.path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil, ErrWatcherClosed
			}
			log.Debug("fsnotify error", "file", w.path, "error", err)
		}
	}
}

// Close stops the watcher; a blocked Next returns ErrWatcherClosed.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

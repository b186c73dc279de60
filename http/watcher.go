package http

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates the model cache when the local artifact file changes.
// It is the filesystem counterpart of the /api/model-updated notification,
// used when the service runs against a local store.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	models  ModelProvider
	done    chan struct{}
}

func NewWatcher(path string, models ModelProvider) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// watch the directory: editors and atomic writers replace the file
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{watcher: fw, path: path, models: models, done: make(chan struct{})}, nil
}

// Start runs the watch loop; call it in its own goroutine.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				zap.L().Info("model artifact changed", zap.String("path", event.Name))
				w.models.Invalidate()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			zap.L().Warn("watcher error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

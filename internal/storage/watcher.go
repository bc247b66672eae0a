package storage

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/opendesk/deskshell/internal/logging"
)

// Watcher observes the file backing a single key and invokes a
// callback when the file is written from outside the process, so a
// running shell picks up external settings edits.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()
	logger   *logging.Logger
	done     chan struct{}
}

// NewWatcher starts watching the file backing key in the given file
// store. onChange runs on the watcher goroutine; keep it short and
// hand real work to the event bus.
func NewWatcher(fs *FileStore, key string, onChange func(), logger *logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory rather than the file: atomic rename saves
	// replace the inode, which would silently detach a file watch.
	if err := fsw.Add(fs.Dir()); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", fs.Dir(), err)
	}

	w := &Watcher{
		watcher:  fsw,
		path:     fs.PathForKey(key),
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Settings file changed on disk")
				w.onChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Settings file watcher error")
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

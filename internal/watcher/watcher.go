// Package watcher re-triggers analysis when source files change. Events
// are debounced so a save-all in an editor causes one re-run, not thirty.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period before the callback fires.
const DefaultDebounce = 500 * time.Millisecond

// watchedExtensions mirrors the analyzable source types.
var watchedExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
}

// Watcher watches one project root recursively and invokes a callback
// with the batch of changed files after each quiet period.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	callback func(files []string)

	cancel context.CancelFunc
	doneCh chan struct{}

	mu          sync.Mutex
	accumulated map[string]bool
	timer       *time.Timer

	stopOnce sync.Once
}

// New sets up the recursive watch on root. node_modules and dot
// directories are never watched.
func New(root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsw:         fsw,
		root:        root,
		debounce:    debounce,
		accumulated: make(map[string]bool),
		doneCh:      make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start launches the event loop. The callback runs on the watch
// goroutine, so a long re-run naturally batches the events arriving
// meanwhile.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) {
	w.callback = callback
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.WithError(err).Warnf("cannot watch new directory %s", event.Name)
					}
				}
			}
			if !relevant(event) {
				continue
			}

			w.mu.Lock()
			w.accumulated[event.Name] = true
			w.resetTimerLocked(fire)
			w.mu.Unlock()

		case <-fire:
			w.flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.accumulated) == 0 {
		w.mu.Unlock()
		return
	}
	files := make([]string, 0, len(w.accumulated))
	for file := range w.accumulated {
		files = append(files, file)
	}
	w.accumulated = make(map[string]bool)
	w.mu.Unlock()

	if w.callback != nil {
		w.callback(files)
	}
}

// resetTimerLocked restarts the debounce countdown. Caller holds w.mu.
func (w *Watcher) resetTimerLocked(fire chan struct{}) {
	if w.timer != nil {
		if !w.timer.Stop() {
			select {
			case <-fire:
			default:
			}
		}
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return watchedExtensions[filepath.Ext(event.Name)]
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.WithError(err).Debugf("skipping %s", path)
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if path != root && (name == "node_modules" || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.WithError(err).Warnf("cannot watch %s", path)
		}
		return nil
	})
}

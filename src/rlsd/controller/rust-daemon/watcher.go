package rustdaemon

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const _debounceTimeout = 200 * time.Millisecond

// watcher reports changes of files directly inside the watched directories, debounced per file.
type watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(path string)
	logger   *zap.SugaredLogger

	mu     sync.Mutex
	dirs   map[string]int
	timers map[string]*time.Timer
	closer chan struct{}
	done   chan struct{}
	// running counts notifications being delivered.
	running sync.WaitGroup
}

func newWatcher(logger *zap.SugaredLogger, onChange func(path string)) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}
	w := &watcher{
		fsw:      fsw,
		onChange: onChange,
		logger:   logger,
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		closer:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.handleChanges()
	return w, nil
}

// Add watches dir. Directories are reference counted, so every Add needs a matching Remove.
func (w *watcher) Add(dir string) {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.dirs[dir]++
	if w.dirs[dir] > 1 {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		w.logger.Warnw("unable to watch folder", "folder", dir, "error", err)
	}
}

// Remove drops one reference to dir and stops watching it with the last one.
func (w *watcher) Remove(dir string) {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dirs[dir] == 0 {
		return
	}
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return
	}
	delete(w.dirs, dir)
	if err := w.fsw.Remove(dir); err != nil {
		w.logger.Debugw("unable to stop watching folder", "folder", dir, "error", err)
	}
}

// Close stops watching and cancels pending notifications.
func (w *watcher) Close() error {
	w.mu.Lock()
	select {
	case <-w.closer:
		w.mu.Unlock()
		return nil
	default:
		close(w.closer)
	}
	w.mu.Unlock()

	<-w.done
	w.running.Wait()
	return w.fsw.Close()
}

func (w *watcher) handleChanges() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			w.debounce(event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("failure in manifest watcher", "error", err)

		case <-w.closer:
			w.mu.Lock()
			for _, timer := range w.timers {
				timer.Stop()
			}
			w.timers = make(map[string]*time.Timer)
			w.mu.Unlock()
			return
		}
	}
}

// debounce reports path once no further event arrived for it within _debounceTimeout.
func (w *watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.timers[path]; exists {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(_debounceTimeout, func() {
		w.mu.Lock()
		delete(w.timers, path)
		select {
		case <-w.closer:
			w.mu.Unlock()
			return
		default:
		}
		w.running.Add(1)
		w.mu.Unlock()

		defer w.running.Done()
		w.onChange(path)
	})
}

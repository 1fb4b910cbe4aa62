// Package signals lets an operator halt running sessions from outside the
// process by dropping stop files into a signals directory.
//
// A file named "stop" halts every session; "<session-id>.stop" halts one.
package signals

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"goa.design/clue/log"
)

const (
	stopAll    = "stop"
	stopSuffix = ".stop"
)

// StopFunc is called with the session id named by a stop file, or "" for
// the stop-all file.
type StopFunc func(sessionID string)

// Watcher watches a signals directory for stop files.
type Watcher struct {
	dir    string
	onStop StopFunc

	mu      sync.RWMutex
	stopped map[string]bool

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// DefaultDir returns the signals directory next to the session journal.
func DefaultDir() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "scriptroom", "signals")
}

// Watch starts watching dir, creating it if needed. onStop may be nil.
// When the filesystem watcher cannot be created the Watcher still answers
// ShouldStop by checking the files directly.
func Watch(ctx context.Context, dir string, onStop StopFunc) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:     dir,
		onStop:  onStop,
		stopped: make(map[string]bool),
		done:    make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn(ctx, log.KV{K: "msg", V: "signal watcher unavailable, polling only"}, log.KV{K: "err", V: err.Error()})
		return w, nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		log.Warn(ctx, log.KV{K: "msg", V: "signal watcher unavailable, polling only"}, log.KV{K: "err", V: err.Error()})
		return w, nil
	}
	w.watcher = watcher

	w.wg.Add(1)
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if id, ok := parseName(name); ok {
				w.trigger(ctx, name, id)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn(ctx, log.KV{K: "msg", V: "signal watcher error"}, log.KV{K: "err", V: err.Error()})
		}
	}
}

func (w *Watcher) trigger(ctx context.Context, name, id string) {
	w.mu.Lock()
	// Late events for a file removed by Clear are ignored.
	if _, err := os.Stat(filepath.Join(w.dir, name)); err != nil {
		w.mu.Unlock()
		return
	}
	already := w.stopped[id]
	w.stopped[id] = true
	w.mu.Unlock()
	if already {
		return
	}

	log.Info(ctx, log.KV{K: "msg", V: "stop signal received"}, log.KV{K: "session", V: id})
	if w.onStop != nil {
		w.onStop(id)
	}
}

// parseName maps a signal file name to the session it addresses.
func parseName(name string) (string, bool) {
	if name == stopAll {
		return "", true
	}
	if id, ok := strings.CutSuffix(name, stopSuffix); ok && id != "" {
		return id, true
	}
	return "", false
}

// ShouldStop reports whether a stop signal addresses sessionID. The files
// are checked directly in case the watcher missed an event.
func (w *Watcher) ShouldStop(sessionID string) bool {
	for _, name := range []string{stopAll, sessionID + stopSuffix} {
		if _, err := os.Stat(filepath.Join(w.dir, name)); err == nil {
			id, _ := parseName(name)
			w.mu.Lock()
			w.stopped[id] = true
			w.mu.Unlock()
		}
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stopped[""] || w.stopped[sessionID]
}

// Clear removes the stop file of sessionID and forgets its signal.
func (w *Watcher) Clear(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.stopped, sessionID)
	os.Remove(filepath.Join(w.dir, sessionID+stopSuffix))
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Close stops watching.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
	w.wg.Wait()
}

// SendStop writes a stop file for sessionID into dir. An empty sessionID
// stops every session.
func SendStop(dir, sessionID string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	name := stopAll
	if sessionID != "" {
		name = sessionID + stopSuffix
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Package watchmode implements `torrentgen watch`: it watches an input
// path for changes and debounces them into rebuild requests. Adapted from
// the teacher's internal/watcher (fsnotify events coalesced into a
// pending-set, flushed on a ticker) with the DCP-file filtering and
// database-package semantics replaced by "anything under the input path
// changed."
package watchmode

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher debounces filesystem changes under a watched root into rebuild
// signals delivered on Rebuilds.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration

	Rebuilds chan struct{}

	mu      sync.Mutex
	pending bool
	lastHit time.Time

	stop chan struct{}
}

// New creates a Watcher over root with the given debounce window.
func New(root string, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		root:      root,
		debounce:  debounce,
		Rebuilds:  make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}, nil
}

// Start begins watching root and every directory in dirs (the caller
// lists the directories beneath root present at call time — directories
// created later are not auto-added, matching fsnotify's non-recursive
// watch contract).
func (w *Watcher) Start(dirs []string) error {
	if err := w.fsWatcher.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	for _, d := range dirs {
		if err := w.fsWatcher.Add(d); err != nil {
			log.Printf("watchmode: could not watch %s: %v", d, err)
		}
	}

	log.Printf("watchmode: watching %s (debounce %s)", w.root, w.debounce)
	go w.processEvents()
	go w.flushLoop()
	return nil
}

// Stop stops the watcher. It does not close Rebuilds.
func (w *Watcher) Stop() {
	close(w.stop)
	w.fsWatcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			log.Printf("watchmode: change detected: %s (%s)", event.Name, event.Op)
			w.mu.Lock()
			w.pending = true
			w.lastHit = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("watchmode: watcher error: %v", err)

		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) flushLoop() {
	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.maybeFlush()
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) maybeFlush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.lastHit) < w.debounce {
		return
	}
	w.pending = false
	select {
	case w.Rebuilds <- struct{}{}:
	default:
	}
}

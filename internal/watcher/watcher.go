// Package watcher notices external rewrites of a project's issue log (a git
// pull, a checkout, another tool) and reports them debounced, so a watch
// loop can re-sync once per burst instead of once per write.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tracehq/trace/internal/debug"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before emitting. Git rewrites files in several steps.
const DefaultDebounce = 250 * time.Millisecond

// LogWatcher watches one project's log file for external changes.
//
// The state directory is watched rather than the file itself: atomic
// replaces (rename over the old file) drop inode-based watches.
type LogWatcher struct {
	watcher  *fsnotify.Watcher
	logPath  string
	debounce time.Duration

	changes chan struct{}
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// New creates a watcher for the log at logPath. Start must be called before
// any events arrive.
func New(logPath string) (*LogWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &LogWatcher{
		watcher:  fsw,
		logPath:  logPath,
		debounce: DefaultDebounce,
		changes:  make(chan struct{}, 1),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}, nil
}

// SetDebounce overrides the settle window. Tests only.
func (w *LogWatcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins watching the log's directory.
func (w *LogWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}

	dir := filepath.Dir(w.logPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.running = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop ends the watch and blocks until the event loop exits. Safe to call
// more than once.
func (w *LogWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	close(w.changes)
	close(w.errors)
	return err
}

// Changes emits one value per settled burst of log writes. The channel is
// closed by Stop.
func (w *LogWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Errors emits watch errors. The channel is closed by Stop.
func (w *LogWatcher) Errors() <-chan error {
	return w.errors
}

func (w *LogWatcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			debug.Logf("watch: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default: // a change is already pending; one signal is enough
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// relevant keeps only events touching the log file itself.
func (w *LogWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.logPath) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

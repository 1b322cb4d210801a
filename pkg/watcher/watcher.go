// Package watcher reloads the dataset when its file changes on disk.
//
// It prefers fsnotify on the file's directory (editors and exporters often
// replace a file by rename) and falls back to polling stat results on
// filesystems where change notifications are unreliable.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/tremorview/pkg/debug"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

// ForcePollEnvVar forces polling mode when set to a true value.
const ForcePollEnvVar = "TV_FORCE_POLLING"

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval for polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets a callback run after each debounced change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets a callback for watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll selects polling mode regardless of filesystem.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// fileState is what polling compares between ticks.
type fileState struct {
	mtime time.Time
	size  int64
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{mtime: info.ModTime(), size: info.Size()}, nil
}

func (s fileState) exists() bool {
	return !s.mtime.IsZero()
}

func (s fileState) differs(o fileState) bool {
	return o.mtime.After(s.mtime) || o.size != s.size
}

// Watcher reports changes to one file.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool

	mu        sync.RWMutex
	started   bool
	polling   bool
	fsType    FilesystemType
	last      fileState
	cancel    context.CancelFunc
	notifier  *fsnotify.Watcher
	debouncer *Debouncer

	changed chan struct{}
}

// NewWatcher creates a watcher for path. Nothing happens until Start.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
		changed:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	state, err := statFile(w.path)
	if err != nil && os.IsPermission(err) {
		return ErrPermission
	}
	// A missing file is fine: it is reported as a change once it appears.
	w.last = state

	w.fsType = DetectFilesystemType(w.path)
	w.polling = w.forcePoll || envBool(ForcePollEnvVar) || w.fsType.Remote()

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	if !w.polling {
		if n, err := w.openNotifier(); err == nil {
			w.notifier = n
			go w.runNotify(ctx, n)
		} else {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		}
	}
	if w.polling {
		go w.runPoll(ctx)
	}

	debug.Log("watcher: watching %s (fs=%s polling=%v)", w.path, w.fsType, w.polling)
	w.started = true
	return nil
}

func (w *Watcher) openNotifier() (*fsnotify.Watcher, error) {
	n, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := n.Add(filepath.Dir(w.path)); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

// Stop ends watching. The Changed channel stays open so a receiver blocked
// on it is not woken spuriously.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.notifier != nil {
		w.notifier.Close()
		w.notifier = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the watcher polls instead of using fsnotify.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed receives once per debounced change burst.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// FilesystemType returns the classification made at Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the polling interval.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func (w *Watcher) runNotify(ctx context.Context, n *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-n.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.onError(ErrFileRemoved)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.debouncer.Trigger(w.fire)
			}
		case err, ok := <-n.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

func (w *Watcher) pollOnce() {
	state, err := statFile(w.path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			w.mu.RLock()
			had := w.last.exists()
			w.mu.RUnlock()
			if had {
				w.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
		default:
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	changed := w.last.differs(state)
	if changed {
		w.last = state
	}
	w.mu.Unlock()

	if changed {
		w.debouncer.Trigger(w.fire)
	}
}

func (w *Watcher) fire() {
	if !w.IsStarted() {
		return
	}
	w.onChange()
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

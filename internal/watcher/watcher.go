// Package watcher re-runs a handler when asset files change on disk.
//
// Parent directories are watched instead of the files themselves so that
// editors which save by rename-and-replace keep producing events. Events are
// debounced and delivered to a single handler from the watch loop, so the
// handler never runs concurrently with itself.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/frozen/internal/logging"
)

// DefaultDelay is the quiet period used by the CLI.
const DefaultDelay = 300 * time.Millisecond

// Op is the kind of change observed for a path.
type Op int

const (
	OpCreated Op = iota
	OpModified
	OpRemoved
	OpRenamed
)

// String returns the string representation of the Op.
func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpRemoved:
		return "removed"
	case OpRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is one debounced change.
type Event struct {
	Op   Op
	Path string
}

// Filter decides whether a path is of interest.
type Filter func(path string) bool

// Handler is called with each debounced batch of events.
type Handler func(ctx context.Context, events []Event) error

// Watcher watches a set of files.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	filters   []Filter
	dirs      map[string]struct{}
	logger    logging.Logger
}

// New creates a Watcher with the given quiet period.
func New(delay time.Duration, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Watcher{
		fsw:       fsw,
		debouncer: NewDebouncer(delay),
		dirs:      make(map[string]struct{}),
		logger:    logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a filter. An event is kept only if every filter accepts it.
func (w *Watcher) AddFilter(filter Filter) {
	w.filters = append(w.filters, filter)
}

// WatchFiles watches the directories holding files and restricts events to
// exactly those files. The files do not need to exist yet.
func (w *Watcher) WatchFiles(files []string) error {
	for _, f := range files {
		dir := filepath.Dir(filepath.Clean(f))
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.AddFilter(FilesFilter(files))
	return nil
}

// Run blocks until ctx is cancelled, passing each debounced batch to
// handler. Handler errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	defer w.debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.accept(event.Name) {
				w.debouncer.Add(Event{Op: convertOp(event.Op), Path: filepath.Clean(event.Name)})
				w.logger.Debug(ctx, "Change queued", "path", event.Name, "op", event.Op.String(), "pending", w.debouncer.Pending())
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, err, "File watcher error")
		case <-w.debouncer.C():
			events := w.debouncer.Flush()
			if len(events) == 0 {
				continue
			}
			w.logger.Debug(ctx, "Change batch ready", "events", len(events))
			if err := handler(ctx, events); err != nil {
				w.logger.Warn(ctx, err, "Change handler failed")
			}
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) accept(path string) bool {
	for _, filter := range w.filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreated
	case op.Has(fsnotify.Write):
		return OpModified
	case op.Has(fsnotify.Remove):
		return OpRemoved
	case op.Has(fsnotify.Rename):
		return OpRenamed
	default:
		return OpModified
	}
}

// FilesFilter accepts exactly the given files, compared after cleaning.
func FilesFilter(files []string) Filter {
	set := make(map[string]struct{}, len(files))
	for _, f := range files {
		set[filepath.Clean(f)] = struct{}{}
	}
	return func(path string) bool {
		_, ok := set[filepath.Clean(path)]
		return ok
	}
}

// Debouncer collapses bursts of events into one batch per path. It is not
// safe for concurrent use; Watcher drives it from a single goroutine.
type Debouncer struct {
	delay   time.Duration
	timer   *time.Timer
	armed   bool
	order   []string
	pending map[string]Event
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]Event),
	}
}

// Add records e and restarts the quiet period. A later event for the same
// path replaces the earlier one but keeps its position.
func (d *Debouncer) Add(e Event) {
	if _, seen := d.pending[e.Path]; !seen {
		d.order = append(d.order, e.Path)
	}
	d.pending[e.Path] = e

	if d.timer == nil {
		d.timer = time.NewTimer(d.delay)
	} else {
		d.timer.Reset(d.delay)
	}
	d.armed = true
}

// C fires once the quiet period after the last Add has passed. It is nil
// while nothing is pending.
func (d *Debouncer) C() <-chan time.Time {
	if !d.armed {
		return nil
	}
	return d.timer.C
}

// Pending reports how many distinct paths are waiting.
func (d *Debouncer) Pending() int {
	return len(d.order)
}

// Flush returns the pending events in first-seen order and clears them.
func (d *Debouncer) Flush() []Event {
	events := make([]Event, 0, len(d.order))
	for _, path := range d.order {
		events = append(events, d.pending[path])
	}
	d.order = d.order[:0]
	clear(d.pending)
	d.armed = false
	return events
}

// Stop cancels the quiet period timer.
func (d *Debouncer) Stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed = false
}

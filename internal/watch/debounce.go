// Package watch turns raw file-change notifications into a debounced stream
// of YAML edits and drives automatic re-renders from it.
package watch

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultWindow is the minimum spacing between accepted events.
	DefaultWindow = time.Second
	// DefaultSuffix is the only file suffix that passes the filter.
	DefaultSuffix = ".yaml"
)

// Event is a single file-system change.
type Event struct {
	Path  string
	IsDir bool
	At    time.Time
}

// Debouncer decides which events pass. The window is anchored to the last
// accepted event, not the last observed one, so a steady stream of edits still
// produces one event per window. Use one Debouncer per watched root.
type Debouncer struct {
	window time.Duration
	suffix string

	mu       sync.Mutex
	last     time.Time
	accepted bool
}

// NewDebouncer creates a debouncer. Zero values fall back to the defaults.
func NewDebouncer(window time.Duration, suffix string) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &Debouncer{window: window, suffix: suffix}
}

// Accept reports whether ev should be delivered.
func (d *Debouncer) Accept(ev Event) bool {
	if ev.IsDir || !strings.HasSuffix(ev.Path, d.suffix) {
		return false
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.accepted && at.Sub(d.last) < d.window {
		return false
	}
	d.last = at
	d.accepted = true
	return true
}

// Filter delivers the events of in that d accepts. The returned channel is
// closed when in is closed or ctx is done.
func Filter(ctx context.Context, in <-chan Event, d *Debouncer) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				if !d.Accept(ev) {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

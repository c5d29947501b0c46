package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures a Watcher.
type Options struct {
	// Recursive also watches subdirectories, including ones created later.
	Recursive bool
	// Buffer is the capacity of the event channel.
	Buffer int
}

// Watcher streams file-system changes under a root directory.
type Watcher struct {
	root   string
	opts   Options
	fs     *fsnotify.Watcher
	events chan Event
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// New starts watching root.
func New(root string, opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root is not a directory: %s", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:   root,
		opts:   opts,
		fs:     fw,
		events: make(chan Event, max(opts.Buffer, 16)),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		logger: slog.With("component", "watcher", "root", root),
	}

	if err := w.add(root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Events returns the raw change stream. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching and closes the event stream.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fs.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) add(dir string) error {
	if !w.opts.Recursive {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case <-w.stop:
			return
		case fe, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !fe.Has(fsnotify.Write) && !fe.Has(fsnotify.Create) {
				continue
			}
			ev := Event{Path: fe.Name, At: time.Now()}
			if info, err := os.Stat(fe.Name); err == nil && info.IsDir() {
				ev.IsDir = true
				if fe.Has(fsnotify.Create) && w.opts.Recursive {
					if err := w.add(fe.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", fe.Name, "error", err)
					}
				}
			}
			select {
			case w.events <- ev:
			case <-w.stop:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("event queue overflowed", "error", err)
				continue
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

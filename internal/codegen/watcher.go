package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a manifest change is acted on.
const DefaultDebounce = 100 * time.Millisecond

// Result describes one regeneration attempt.
type Result struct {
	Changed bool
	Err     error
}

// Watcher regenerates code whenever the manifest file changes.
type Watcher struct {
	manifestPath string
	outPath      string
	opts         Options
	delay        time.Duration
	logger       *slog.Logger
	onResult     func(Result)

	runs atomic.Int64
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values use DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithWatchLogger sets the logger.
func WithWatchLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithResultHandler registers fn to observe every regeneration.
func WithResultHandler(fn func(Result)) WatcherOption {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// NewWatcher creates a watcher for manifestPath writing to outPath.
func NewWatcher(manifestPath, outPath string, opts Options, wopts ...WatcherOption) *Watcher {
	w := &Watcher{
		manifestPath: manifestPath,
		outPath:      outPath,
		opts:         opts,
		delay:        DefaultDebounce,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range wopts {
		opt(w)
	}
	w.logger = w.logger.With("component", "codegen.watcher", "manifest", manifestPath)
	return w
}

// Runs returns the number of regenerations performed so far.
func (w *Watcher) Runs() int64 {
	return w.runs.Load()
}

// Run generates once, then watches until ctx is cancelled.
// Generation failures are logged and reported to the result handler; they
// do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	absManifest, err := filepath.Abs(w.manifestPath)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace files by rename, which drops a watch on the file
	// itself. Watching the directory survives that.
	if err := fsw.Add(filepath.Dir(absManifest)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(absManifest), err)
	}

	w.regenerate()

	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != absManifest {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.delay)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("watch queue overflowed, regenerating")
				timer.Reset(w.delay)
				continue
			}
			w.logger.Error("watch error", "error", err)

		case <-timer.C:
			w.regenerate()
		}
	}
}

func (w *Watcher) regenerate() {
	changed, err := GenerateFile(w.manifestPath, w.outPath, w.opts)
	w.runs.Add(1)

	switch {
	case err != nil:
		w.logger.Error("regeneration failed", "error", err)
	case changed:
		w.logger.Info("generated", "output", w.outPath)
	default:
		w.logger.Debug("output up to date", "output", w.outPath)
	}

	if w.onResult != nil {
		w.onResult(Result{Changed: changed, Err: err})
	}
}

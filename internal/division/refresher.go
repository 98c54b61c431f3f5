package division

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

// ReloadHook is notified after every reload attempt.
type ReloadHook func(count int, err error)

// Refresher keeps a Registry in sync with a Provider. It reloads once on
// start, then on a fixed interval and, when a watch path is set, whenever
// that file changes.
type Refresher struct {
	registry  *Registry
	provider  Provider
	interval  time.Duration
	watchPath string
	hook      ReloadHook
	logger    *slog.Logger
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithWatch reloads as soon as path is written, created or renamed.
func WithWatch(path string) RefresherOption {
	return func(r *Refresher) { r.watchPath = path }
}

// WithReloadHook registers fn to observe reload outcomes.
func WithReloadHook(fn ReloadHook) RefresherOption {
	return func(r *Refresher) { r.hook = fn }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) RefresherOption {
	return func(r *Refresher) { r.logger = l }
}

// NewRefresher creates a refresher. The registry is not touched until Reload
// or Run is called.
func NewRefresher(reg *Registry, p Provider, interval time.Duration, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		registry: reg,
		provider: p,
		interval: interval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reload loads the list once. On failure the previous snapshot stays in place.
func (r *Refresher) Reload(ctx context.Context) error {
	names, err := r.provider.Load(ctx)
	if err != nil {
		r.logger.Error("division reload failed, keeping previous list",
			"error", err,
			"divisions", r.registry.Snapshot().Len(),
		)
		r.notify(0, err)
		return err
	}

	r.registry.Replace(names)
	n := r.registry.Snapshot().Len()
	r.logger.Debug("divisions reloaded", "divisions", n)
	r.notify(n, nil)
	return nil
}

func (r *Refresher) notify(n int, err error) {
	if r.hook != nil {
		r.hook(n, err)
	}
}

// Run reloads immediately, then keeps reloading until ctx is cancelled.
// Failed loads and an unusable watch path are logged, not returned.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("division refresher started",
		"interval", r.interval.String(),
		"watch", r.watchPath,
	)

	_ = r.Reload(ctx)

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", r.interval), func() { _ = r.Reload(ctx) }); err != nil {
		return fmt.Errorf("schedule division reload: %w", err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	events, errs, closeWatch := r.watch()
	defer closeWatch()
	target := filepath.Clean(r.watchPath)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("division refresher stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				_ = r.Reload(ctx)
			}
		case werr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.logger.Warn("division watcher error", "error", werr)
		}
	}
}

// watch subscribes to changes of the settings file. Without a watch path, or
// when the watcher cannot be set up, both channels are nil and only the
// interval reload runs.
func (r *Refresher) watch() (<-chan fsnotify.Event, <-chan error, func()) {
	nop := func() {}
	if r.watchPath == "" {
		return nil, nil, nop
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Warn("division watcher unavailable, reloading on interval only", "error", err)
		return nil, nil, nop
	}

	// Editors replace files on save, so watch the directory.
	dir := filepath.Dir(filepath.Clean(r.watchPath))
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		r.logger.Warn("cannot watch division settings, reloading on interval only",
			"dir", dir,
			"error", err,
		)
		return nil, nil, nop
	}
	return watcher.Events, watcher.Errors, func() { watcher.Close() }
}

package modules

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fuzeworks/fuzeworks/pkg/log"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits after the last change before rescanning.
const DefaultDebounce = 250 * time.Millisecond

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a rescan.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOverrides merges per-module config overrides into every rescanned manifest set.
func WithOverrides(overrides map[string]map[string]any) WatcherOption {
	return func(w *Watcher) { w.overrides = overrides }
}

// WithPrepare transforms every rescanned manifest set before overrides are
// applied. It is used to add manifests that have no file, such as built-ins.
func WithPrepare(fn func([]types.Module) []types.Module) WatcherOption {
	return func(w *Watcher) { w.prepare = fn }
}

// WithOnSync registers a callback invoked after each rescan with its result.
func WithOnSync(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onSync = fn }
}

// Watcher rescans the modules directory when manifests change and syncs the
// result into a Manager.
type Watcher struct {
	dir       string
	manager   *Manager
	fsw       *fsnotify.Watcher
	debounce  time.Duration
	overrides map[string]map[string]any
	prepare   func([]types.Module) []types.Module
	onSync    func(error)
	logger    zerolog.Logger

	closeOnce sync.Once
}

// NewWatcher starts watching dir. Nothing is synced until Run is called.
func NewWatcher(dir string, manager *Manager, opts ...WatcherOption) (*Watcher, error) {
	base, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(abs); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	w := &Watcher{
		dir:      abs,
		manager:  manager,
		fsw:      fsw,
		debounce: DefaultDebounce,
		logger:   log.WithComponent("watcher"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the absolute directory being watched.
func (w *Watcher) Dir() string { return w.dir }

// Rescan reads the directory and syncs it into the manager.
func (w *Watcher) Rescan() error {
	manifests, err := LoadDir(w.dir)
	if err != nil {
		return err
	}
	if w.prepare != nil {
		manifests = w.prepare(manifests)
	}
	return w.manager.Sync(ApplyConfig(manifests, w.overrides))
}

// Run processes change notifications until ctx is done or the watcher is
// closed. A rescan failure is logged and the previous manifest set stays in
// effect.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !IsManifestFile(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug().Str("file", filepath.Base(ev.Name)).Str("op", ev.Op.String()).Msg("Manifest changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			err := w.Rescan()
			if err != nil {
				w.logger.Error().Err(err).Str("dir", w.dir).Msg("Module rescan failed")
			}
			if w.onSync != nil {
				w.onSync(err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fsw.Close() })
	return err
}

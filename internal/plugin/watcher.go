package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounceDelay is how long the watcher waits after the last change
// before rediscovering plugins.
const DefaultDebounceDelay = 200 * time.Millisecond

// Watcher rediscovers plugins when the plugin directory changes.
type Watcher struct {
	manager *Manager
	delay   time.Duration
	logger  zerolog.Logger

	// OnReload, when set, is called after every rediscovery.
	OnReload func(plugins []*Plugin)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a Watcher for the manager's plugin directory.
// A non-positive delay selects DefaultDebounceDelay.
func NewWatcher(m *Manager, delay time.Duration, logger zerolog.Logger) *Watcher {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Watcher{
		manager: m,
		delay:   delay,
		logger:  logger.With().Str("component", "plugin-watcher").Logger(),
	}
}

// Run watches the plugin directory and its immediate subdirectories until
// ctx is done. The directory must exist.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := w.manager.PluginDir()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.add(fw, filepath.Join(dir, entry.Name()))
		}
	}

	w.logger.Info().Str("dir", dir).Msg("watching plugin directory")

	defer w.stopDebounce()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == dir {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.add(fw, event.Name)
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			w.scheduleReload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) add(fw *fsnotify.Watcher, path string) {
	if err := fw.Add(path); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("failed to watch plugin")
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) reload() {
	if err := w.manager.Discover(); err != nil {
		w.logger.Error().Err(err).Msg("plugin rediscovery failed")
		return
	}
	plugins := w.manager.List()
	w.logger.Info().Int("count", len(plugins)).Msg("plugins reloaded")
	if w.OnReload != nil {
		w.OnReload(plugins)
	}
}

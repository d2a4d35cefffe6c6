package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	rclog "github.com/ManuGH/roadcam/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder holds configuration with atomic reloading capability. It provides
// thread-safe access and supports hot reloading from file changes or a manual
// trigger.
type Holder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger

	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewHolder creates a configuration holder with the initial config.
func NewHolder(initial AppConfig, loader *Loader, configPath string) *Holder {
	return &Holder{
		current:         initial,
		loader:          loader,
		configPath:      configPath,
		logger:          rclog.WithComponent("config"),
		reloadListeners: make([]chan<- AppConfig, 0),
	}
}

// Get returns the current configuration (thread-safe read).
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration from file and validates it. If loading or
// validation fails the old configuration is kept, so updates are atomic.
// Fields that require a restart (listen address, data dir, upstream bases)
// are pinned to their running values; a file change to them is rejected.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str("event", "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	if err := checkImmutable(oldCfg, newCfg); err != nil {
		h.mu.Unlock()
		h.logger.Error().
			Err(err).
			Str("event", "config.reload_rejected").
			Msg("reload changes immutable fields, restart required")
		return err
	}
	h.current = newCfg
	h.mu.Unlock()

	h.notifyListeners(newCfg)
	h.logChanges(oldCfg, newCfg)

	h.logger.Info().
		Str("event", "config.reload_success").
		Msg("configuration reloaded successfully")

	return nil
}

func checkImmutable(old, newCfg AppConfig) error {
	switch {
	case old.Listen != newCfg.Listen:
		return fmt.Errorf("listen address cannot change at runtime")
	case old.DataDir != newCfg.DataDir:
		return fmt.Errorf("data dir cannot change at runtime")
	case old.Feed.BaseURL != newCfg.Feed.BaseURL,
		old.Images.BaseURL != newCfg.Images.BaseURL,
		old.Live.BaseURL != newCfg.Live.BaseURL:
		return fmt.Errorf("upstream base URLs cannot change at runtime")
	}
	return nil
}

// StartWatcher starts watching the config file for changes. With no config
// file the holder is ENV-only and watching is a no-op.
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str("event", "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	h.watcher = watcher

	if err := watcher.Add(h.configPath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}

	h.logger.Info().
		Str("event", "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)

	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	// Debounce so editors that write in bursts trigger one reload, not five.
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			if h.watcher != nil {
				_ = h.watcher.Close()
			}
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			// Write and Create cover vim, nano and plain redirection.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				h.logger.Debug().
					Str("event", "config.file_changed").
					Str("op", event.Op.String()).
					Msg("config file changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().
							Err(err).
							Str("event", "config.auto_reload_failed").
							Msg("automatic config reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str("event", "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the config watcher (if running).
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener registers a channel to receive config reload notifications.
// The caller is responsible for draining and closing the channel.
func (h *Holder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

func (h *Holder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str("event", "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *Holder) logChanges(old, newCfg AppConfig) {
	if old.Playback.SnapshotInterval != newCfg.Playback.SnapshotInterval {
		h.logger.Info().
			Dur("old", old.Playback.SnapshotInterval).
			Dur("new", newCfg.Playback.SnapshotInterval).
			Msg("config changed: snapshot interval")
	}
	if old.Playback.LiveEdgeInterval != newCfg.Playback.LiveEdgeInterval {
		h.logger.Info().
			Dur("old", old.Playback.LiveEdgeInterval).
			Dur("new", newCfg.Playback.LiveEdgeInterval).
			Msg("config changed: live edge interval")
	}
	if old.Playback.Dwell != newCfg.Playback.Dwell {
		h.logger.Info().
			Dur("old", old.Playback.Dwell).
			Dur("new", newCfg.Playback.Dwell).
			Msg("config changed: dwell")
	}
	if old.Refresh.Interval != newCfg.Refresh.Interval {
		h.logger.Info().
			Dur("old", old.Refresh.Interval).
			Dur("new", newCfg.Refresh.Interval).
			Msg("config changed: refresh interval")
	}
	if old.LogLevel != newCfg.LogLevel {
		h.logger.Info().
			Str("old", old.LogLevel).
			Str("new", newCfg.LogLevel).
			Msg("config changed: log level")
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/roadcam/internal/config"
	"github.com/ManuGH/roadcam/internal/jobs"
	"github.com/ManuGH/roadcam/internal/playback"
)

// janitorInterval is how often idle sessions are swept.
const janitorInterval = time.Minute

// App owns the long-lived runtime lifecycle (config watcher, reload wiring,
// refresh loop, session janitor) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	holder       *config.Holder
	runner       *jobs.Runner
	sessions     *playback.Manager
	reloadSignal os.Signal

	refreshInterval time.Duration
}

// NewApp creates the runtime orchestrator. Holder, runner and sessions are
// each optional; a zero refresh interval disables the periodic reload.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.Holder, runner *jobs.Runner, sessions *playback.Manager, refreshInterval time.Duration) *App {
	return &App{
		logger:          logger,
		manager:         manager,
		holder:          holder,
		runner:          runner,
		sessions:        sessions,
		reloadSignal:    syscall.SIGHUP,
		refreshInterval: refreshInterval,
	}
}

// Run starts all owned background loops and blocks until ctx is cancelled or
// a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup should not fail on a watch error.
	if a.holder != nil {
		if err := a.holder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}

		// The only reload effect applied centrally is the log level; handlers
		// read everything else from the holder per request.
		applyCh := make(chan config.AppConfig, 1)
		a.holder.RegisterListener(applyCh)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
						zerolog.SetGlobalLevel(lvl)
					}
				}
			}
		})

		// SIGHUP triggers a manual reload.
		if a.reloadSignal != nil {
			g.Go(func() error {
				hupChan := make(chan os.Signal, 1)
				signal.Notify(hupChan, a.reloadSignal)
				defer signal.Stop(hupChan)

				for {
					select {
					case <-ctx.Done():
						return nil
					case <-hupChan:
						a.logger.Info().
							Str("event", "config.reload_signal").
							Str("signal", a.reloadSignal.String()).
							Msg("received reload signal, reloading config")

						if err := a.holder.Reload(context.Background()); err != nil {
							a.logger.Warn().
								Err(err).
								Str("event", "config.reload_failed").
								Msg("config reload failed")
						}
					}
				}
			})
		}
	}

	// Periodic catalog refresh (owned by the daemon; stops via ctx).
	if a.runner != nil && a.refreshInterval > 0 {
		g.Go(func() error {
			a.runner.RunPeriodic(ctx, a.refreshInterval)
			return nil
		})
	}

	// Idle-session sweep.
	if a.sessions != nil {
		g.Go(func() error {
			a.sessions.Janitor(ctx, janitorInterval)
			return nil
		})
	}

	// Main server lifecycle.
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// Package jobs runs the catalog refresh cycle: fetch the feed, commit the
// result into the store, persist an artifact for warm starts.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/roadcam/internal/catalog"
	"github.com/ManuGH/roadcam/internal/feed"
	rclog "github.com/ManuGH/roadcam/internal/log"
	"github.com/ManuGH/roadcam/internal/metrics"
	"github.com/ManuGH/roadcam/internal/resilience"
)

// Loader produces one normalized catalog load. *feed.Client is the live
// implementation; tests substitute their own.
type Loader interface {
	Load(ctx context.Context) (*feed.Result, error)
}

// GuardedLoader wraps a Loader with a circuit breaker. While the breaker is
// open the upstream is not contacted at all, and callers see the same
// feed-unavailable failure as during a real outage.
type GuardedLoader struct {
	Breaker *resilience.CircuitBreaker
	Loader  Loader
}

func (g *GuardedLoader) Load(ctx context.Context) (*feed.Result, error) {
	var res *feed.Result
	err := g.Breaker.Execute(func() error {
		r, lerr := g.Loader.Load(ctx)
		if lerr != nil {
			return lerr
		}
		res = r
		return nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, fmt.Errorf("%w: %v", feed.ErrUnavailable, err)
		}
		return nil, err
	}
	return res, nil
}

// Runner executes refresh cycles against one store. Concurrent Refresh calls
// collapse into a single upstream fetch.
type Runner struct {
	loader  Loader
	store   *catalog.Store
	dataDir string

	group singleflight.Group

	mu     sync.RWMutex
	status Status
}

// NewRunner creates a Runner. An empty dataDir disables artifact
// persistence and warm starts.
func NewRunner(loader Loader, store *catalog.Store, dataDir string) *Runner {
	return &Runner{loader: loader, store: store, dataDir: dataDir}
}

// Refresh runs one cycle. Calls arriving while a cycle is in flight share
// its result instead of stacking upstream fetches; the in-flight call's
// context governs the shared fetch.
func (r *Runner) Refresh(ctx context.Context) (*Status, error) {
	v, err, _ := r.group.Do("refresh", func() (interface{}, error) {
		return r.run(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Status), nil
}

func (r *Runner) run(ctx context.Context) (*Status, error) {
	logger := rclog.WithComponentFromContext(ctx, "jobs")
	started := time.Now()

	gen := r.store.BeginLoad()
	logger.Info().
		Str(rclog.FieldEvent, "refresh.start").
		Uint64(rclog.FieldGeneration, gen).
		Msg("starting catalog refresh")

	r.mu.Lock()
	r.status.LastAttempt = started
	r.mu.Unlock()

	res, err := r.loader.Load(ctx)
	if err != nil {
		return nil, r.fail(logger, started, "fetch", err)
	}

	if err := r.store.Commit(gen, res.Cameras, res.Regions, time.Now()); err != nil {
		return nil, r.fail(logger, started, "commit", err)
	}

	if r.dataDir != "" {
		snap := snapshotFile{
			SavedAt: time.Now().UTC(),
			Source:  string(res.Source),
			Regions: res.Regions,
			Cameras: res.Cameras,
		}
		if werr := writeCatalogFile(catalogPath(r.dataDir), snap); werr != nil {
			// The commit stands; only the warm-start artifact is stale.
			metrics.RefreshFailuresTotal.WithLabelValues("persist").Inc()
			logger.Error().
				Err(werr).
				Str(rclog.FieldEvent, "refresh.persist_failed").
				Str(rclog.FieldPath, catalogPath(r.dataDir)).
				Msg("failed to persist catalog artifact")
		}
	}

	status := Status{
		LastAttempt: started,
		LastSuccess: time.Now(),
		Generation:  gen,
		Cameras:     len(res.Cameras),
		Playable:    countPlayable(res.Cameras),
		Regions:     len(res.Regions),
		Source:      string(res.Source),
	}

	r.mu.Lock()
	r.status = status
	r.mu.Unlock()

	metrics.SetCatalog(status.Cameras, status.Playable, status.Regions, gen)
	metrics.RecordRefreshSuccess(time.Since(started), status.Source)

	logger.Info().
		Str(rclog.FieldEvent, "refresh.complete").
		Uint64(rclog.FieldGeneration, gen).
		Str(rclog.FieldFeedSource, status.Source).
		Int(rclog.FieldCameras, status.Cameras).
		Int("playable", status.Playable).
		Int("regions", status.Regions).
		Dur("duration", time.Since(started)).
		Msg("catalog refresh completed")

	return &status, nil
}

func (r *Runner) fail(logger zerolog.Logger, started time.Time, stage string, err error) error {
	metrics.RecordRefreshFailure(time.Since(started), stage)

	r.mu.Lock()
	r.status.Error = err.Error()
	r.mu.Unlock()

	logger.Error().
		Err(err).
		Str(rclog.FieldEvent, "refresh.failed").
		Str("stage", stage).
		Msg("catalog refresh failed")
	return fmt.Errorf("%s: %w", stage, err)
}

// WarmStart seeds the store from the persisted artifact so the service can
// serve the last known catalog before the first live load lands. A missing
// artifact is not an error.
func (r *Runner) WarmStart(ctx context.Context) (bool, error) {
	if r.dataDir == "" {
		return false, nil
	}
	path := catalogPath(r.dataDir)
	snap, err := readCatalogFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read catalog artifact: %w", err)
	}
	if !r.store.Restore(snap.Cameras, snap.Regions, snap.SavedAt) {
		return false, nil
	}

	playable := countPlayable(snap.Cameras)
	r.mu.Lock()
	r.status.Cameras = len(snap.Cameras)
	r.status.Playable = playable
	r.status.Regions = len(snap.Regions)
	r.status.Source = snap.Source
	r.status.Restored = true
	r.mu.Unlock()

	metrics.SetCatalog(len(snap.Cameras), playable, len(snap.Regions), 0)

	logger := rclog.WithComponentFromContext(ctx, "jobs")
	logger.Info().
		Str(rclog.FieldEvent, "refresh.restore").
		Str(rclog.FieldPath, path).
		Int(rclog.FieldCameras, len(snap.Cameras)).
		Time("saved_at", snap.SavedAt).
		Msg("catalog restored from disk")
	return true, nil
}

// RunPeriodic triggers a refresh every interval until ctx is cancelled.
// Failures are logged and counted inside the cycle; the loop keeps going.
func (r *Runner) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = r.Refresh(ctx)
		}
	}
}

// Status returns a copy of the latest refresh status.
func (r *Runner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func countPlayable(cams []catalog.Camera) int {
	n := 0
	for _, c := range cams {
		if c.Playable() {
			n++
		}
	}
	return n
}

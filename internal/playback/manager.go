// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/roadcam/internal/catalog"
	rclog "github.com/ManuGH/roadcam/internal/log"
	"github.com/ManuGH/roadcam/internal/media"
	"github.com/ManuGH/roadcam/internal/metrics"
	"github.com/ManuGH/roadcam/internal/slideshow"
)

// ErrNotFound means no session exists under the given id.
var ErrNotFound = errors.New("session not found")

// minSnapshotInterval is the floor for per-session refresh overrides. The
// config loader applies the same floor to the configured default.
const minSnapshotInterval = 500 * time.Millisecond

// Config wires a Manager.
type Config struct {
	Builder          media.Builder
	TTL              time.Duration
	Dwell            time.Duration
	SnapshotInterval time.Duration
	LiveEdgeInterval time.Duration
	LiveEnabled      bool
}

// CreateOptions are the client-supplied session parameters. Zero durations
// fall back to the configured defaults.
type CreateOptions struct {
	Live             bool
	Shuffle          bool
	Dwell            time.Duration
	SnapshotInterval time.Duration
}

// Manager owns all live sessions: creation, lookup, closing, and idle expiry.
type Manager struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:      cfg,
		logger:   rclog.WithComponent("playback"),
		sessions: make(map[string]*Session),
	}
}

// Create opens a session over the given pre-filtered camera list. The list
// is copied and optionally shuffled once; catalog reloads never touch a
// running session. An empty list returns slideshow.ErrEmptyRing.
func (m *Manager) Create(cams []catalog.Camera, opts CreateOptions) (*Session, error) {
	list := make([]catalog.Camera, len(cams))
	copy(list, cams)
	if opts.Shuffle {
		slideshow.Shuffle(list, nil)
	}
	ring, err := slideshow.NewRing(list)
	if err != nil {
		return nil, err
	}

	live := opts.Live
	if live && !m.cfg.LiveEnabled {
		live = false
		m.logger.Info().Msg("live playback disabled by config, session starts on snapshots")
	}

	dwell := opts.Dwell
	if dwell <= 0 {
		dwell = m.cfg.Dwell
	}
	snapshot := opts.SnapshotInterval
	if snapshot <= 0 {
		snapshot = m.cfg.SnapshotInterval
	}
	if snapshot < minSnapshotInterval {
		m.logger.Warn().
			Dur("requested", snapshot).
			Dur("clamped", minSnapshotInterval).
			Msg("snapshot interval below floor, clamping")
		snapshot = minSnapshotInterval
	}

	id := uuid.New().String()
	s := newSession(id, ring, m.cfg.Builder, Options{
		Live:             live,
		Dwell:            dwell,
		SnapshotInterval: snapshot,
		LiveEdgeInterval: m.cfg.LiveEdgeInterval,
	})

	m.mu.Lock()
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	metrics.SetActiveSessions(count)
	metrics.RecordSessionCreated(string(InitialMode(live)))
	m.logger.Info().
		Str(rclog.FieldEvent, "session.create").
		Str(rclog.FieldSessionID, id).
		Str(rclog.FieldMode, string(InitialMode(live))).
		Int(rclog.FieldCameras, ring.Len()).
		Msg("session created")
	return s, nil
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete closes a session and releases its id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Close()
	metrics.SetActiveSessions(count)
	m.logger.Info().
		Str(rclog.FieldEvent, "session.close").
		Str(rclog.FieldSessionID, id).
		Msg("session closed")
	return nil
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Janitor reaps sessions idle past the TTL until the context ends. Intended
// as a daemon goroutine.
func (m *Manager) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.reap(now)
		}
	}
}

func (m *Manager) reap(now time.Time) {
	if m.cfg.TTL <= 0 {
		return
	}

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.IdleFor(now) > m.cfg.TTL {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		m.logger.Info().
			Str(rclog.FieldEvent, "session.expire").
			Str(rclog.FieldSessionID, s.ID).
			Msg("idle session expired")
	}
	if len(expired) > 0 {
		metrics.SetActiveSessions(count)
	}
}

// Close shuts down every session. Called from the daemon shutdown hook.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	metrics.SetActiveSessions(0)
}

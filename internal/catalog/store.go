// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package catalog

import (
	"errors"
	"sync"
	"time"

	rclog "github.com/ManuGH/roadcam/internal/log"
)

// ErrStaleGeneration marks a load result that was superseded by a newer load
// before it could commit. The caller drops the result on the floor.
var ErrStaleGeneration = errors.New("catalog: stale load generation")

// Snapshot is an immutable view of the catalog at one committed generation.
// Slice contents must not be mutated by readers.
type Snapshot struct {
	Cameras    []Camera
	Regions    []string
	Generation uint64
	LoadedAt   time.Time
	Restored   bool // populated from the persisted artifact, not a live feed
}

// Store owns the camera list. Loads are bracketed by BeginLoad/Commit with a
// monotonic generation so a slow response that resolves after a newer load
// started can never overwrite fresher data.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
	issued  uint64
}

// NewStore returns an empty store at generation zero.
func NewStore() *Store {
	return &Store{}
}

// BeginLoad reserves and returns the generation for a starting load attempt.
func (s *Store) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit installs the load result for the given generation. Results for any
// generation other than the newest issued one are rejected with
// ErrStaleGeneration; the store keeps whatever it had.
func (s *Store) Commit(gen uint64, cams []Camera, regions []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.issued {
		logger := rclog.WithComponent("catalog")
		logger.Warn().
			Uint64(rclog.FieldGeneration, gen).
			Uint64("newest", s.issued).
			Msg("discarding stale load result")
		return ErrStaleGeneration
	}

	s.current = Snapshot{
		Cameras:    cams,
		Regions:    regions,
		Generation: gen,
		LoadedAt:   at,
	}
	return nil
}

// Restore seeds the store from the persisted catalog artifact. It only
// applies while no live load has ever committed; afterwards it is a no-op.
func (s *Store) Restore(cams []Camera, regions []string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Generation != 0 {
		return false
	}
	s.current = Snapshot{
		Cameras:  cams,
		Regions:  regions,
		LoadedAt: at,
		Restored: true,
	}
	return true
}

// Current returns the committed snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Empty reports whether neither a load nor a restore has populated the store.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Cameras == nil
}

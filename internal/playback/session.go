// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/roadcam/internal/catalog"
	rclog "github.com/ManuGH/roadcam/internal/log"
	"github.com/ManuGH/roadcam/internal/media"
	"github.com/ManuGH/roadcam/internal/metrics"
	"github.com/ManuGH/roadcam/internal/slideshow"
)

// Options are the per-session knobs resolved at creation time.
type Options struct {
	Live             bool
	Dwell            time.Duration
	SnapshotInterval time.Duration
	LiveEdgeInterval time.Duration
}

// View is one consistent read of a session, assembled under the session
// lock. Reading a view consumes the pending live-edge flag.
type View struct {
	ID             string         `json:"id"`
	Camera         catalog.Camera `json:"camera"`
	Mode           Mode           `json:"mode"`
	Salt           int            `json:"salt"`
	Media          media.Variants `json:"media"`
	Playing        bool           `json:"playing"`
	ElapsedSeconds int64          `json:"elapsedSeconds"`
	LiveEdgeSeek   bool           `json:"liveEdgeSeek"`
	Position       int            `json:"position"`
	Count          int            `json:"count"`
}

// Session drives one client's slideshow. Every public method serializes
// behind the session mutex, so timer firings and API calls interleave but
// never run two mutations concurrently. Timer callbacks capture a generation
// and abandon themselves when a stop or camera change superseded them.
type Session struct {
	ID        string
	CreatedAt time.Time

	builder media.Builder
	logger  zerolog.Logger

	mu              sync.Mutex
	ring            *slideshow.Ring
	mode            Mode
	salt            int
	playing         bool
	closed          bool
	liveInit        bool
	pendingLiveEdge bool
	lastAccess      time.Time

	dwell       time.Duration
	snapshotIvl time.Duration
	liveEdgeIvl time.Duration

	dwellGen   uint64
	mediaGen   uint64
	dwellTimer *time.Timer
	mediaTimer *time.Timer

	lastLoadedUnix atomic.Int64 // 0 while nothing loaded for the current camera
	elapsedSecs    atomic.Int64 // -1 until the first load report
	clockStop      chan struct{}
	clockDone      chan struct{}
}

func newSession(id string, ring *slideshow.Ring, builder media.Builder, opts Options) *Session {
	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		builder:     builder,
		ring:        ring,
		mode:        InitialMode(opts.Live),
		playing:     true,
		liveInit:    opts.Live,
		lastAccess:  time.Now(),
		dwell:       opts.Dwell,
		snapshotIvl: opts.SnapshotInterval,
		liveEdgeIvl: opts.LiveEdgeInterval,
		clockStop:   make(chan struct{}),
		clockDone:   make(chan struct{}),
	}
	s.logger = rclog.Derive(func(c *zerolog.Context) {
		*c = c.Str(rclog.FieldComponent, "playback").Str(rclog.FieldSessionID, id)
	})
	s.elapsedSecs.Store(-1)

	s.mu.Lock()
	s.armMediaLocked()
	s.armDwellLocked()
	s.mu.Unlock()

	go s.runClock()
	return s
}

// View returns the current state. The pending live-edge seek flag is
// consumed by this read.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.viewLocked()
}

// Next advances to the following camera and resets the dwell timer.
func (s *Session) Next() View {
	return s.step(func() catalog.Camera { return s.ring.Advance() })
}

// Previous steps back to the preceding camera and resets the dwell timer.
func (s *Session) Previous() View {
	return s.step(func() catalog.Camera { return s.ring.Previous() })
}

func (s *Session) step(move func() catalog.Camera) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	cam := move()
	s.cameraChangedLocked(cam)
	s.stopDwellLocked()
	s.armDwellLocked()
	return s.viewLocked()
}

// Select jumps to the camera with the given id within the session list.
func (s *Session) Select(cameraID string) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	cam, err := s.ring.Select(cameraID)
	if err != nil {
		return View{}, err
	}
	s.cameraChangedLocked(cam)
	s.stopDwellLocked()
	s.armDwellLocked()
	return s.viewLocked(), nil
}

// Pause stops the dwell advance without losing position.
func (s *Session) Pause() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.playing {
		s.playing = false
		s.stopDwellLocked()
	}
	return s.viewLocked()
}

// Resume restarts the dwell advance.
func (s *Session) Resume() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if !s.playing {
		s.playing = true
		s.armDwellLocked()
	}
	return s.viewLocked()
}

// ReportMediaResult feeds one client-reported media outcome through the
// state machine. Events illegal for the current mode return
// ErrInvalidTransition and change nothing.
func (s *Session) ReportMediaResult(ev Event) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	next, err := Transition(s.mode, ev)
	if err != nil {
		return View{}, err
	}
	metrics.RecordMediaResult(string(ev))

	if ev == EventLoaded {
		s.lastLoadedUnix.Store(time.Now().Unix())
		s.elapsedSecs.Store(0)
		return s.viewLocked(), nil
	}

	prev := s.mode
	s.mode = next
	metrics.RecordTransition(string(ev))
	s.logger.Info().
		Str(rclog.FieldEvent, "playback.transition").
		Str(rclog.FieldCameraID, s.ring.Current().ID).
		Str(rclog.FieldOldState, string(prev)).
		Str(rclog.FieldNewState, string(next)).
		Msg("playback state changed")

	if timerKind(prev) != timerKind(next) {
		s.stopMediaLocked()
		s.armMediaLocked()
	}
	return s.viewLocked(), nil
}

// Close stops every timer and the clock goroutine. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopDwellLocked()
	s.stopMediaLocked()
	s.mu.Unlock()

	close(s.clockStop)
	<-s.clockDone
}

// IdleFor reports how long the session has gone without an API touch.
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastAccess)
}

func (s *Session) touchLocked() {
	s.lastAccess = time.Now()
}

// cameraChangedLocked re-initializes playback for a new camera: initial mode
// per the live toggle, salt zeroed, unavailable state cleared, media timer
// for the new mode armed. Runs inside the critical section of the action
// that moved the cursor, so a timer armed for the previous camera can never
// touch the new one.
func (s *Session) cameraChangedLocked(cam catalog.Camera) {
	s.mode = InitialMode(s.liveInit)
	s.salt = 0
	s.pendingLiveEdge = false
	s.lastLoadedUnix.Store(0)
	s.elapsedSecs.Store(-1)
	s.stopMediaLocked()
	s.armMediaLocked()

	s.logger.Debug().
		Str(rclog.FieldEvent, "playback.camera_change").
		Str(rclog.FieldCameraID, cam.ID).
		Str(rclog.FieldMode, string(s.mode)).
		Msg("camera changed")
}

func (s *Session) viewLocked() View {
	cam := s.ring.Current()
	variants, err := s.builder.Variants(cam, s.salt)
	if err != nil {
		// Session lists exclude non-playable cameras, so this only fires on
		// a catalog bug.
		s.logger.Error().
			Err(err).
			Str(rclog.FieldCameraID, cam.ID).
			Msg("no media variants for session camera")
	}

	seek := s.pendingLiveEdge
	s.pendingLiveEdge = false

	return View{
		ID:             s.ID,
		Camera:         cam,
		Mode:           s.mode,
		Salt:           s.salt,
		Media:          variants,
		Playing:        s.playing,
		ElapsedSeconds: s.elapsedSecs.Load(),
		LiveEdgeSeek:   seek,
		Position:       s.ring.Position(),
		Count:          s.ring.Len(),
	}
}

// Dwell timer: advances the slideshow while playing. Not armed for
// single-camera sessions.

func (s *Session) armDwellLocked() {
	if s.closed || !s.playing || s.ring.Len() < 2 {
		return
	}
	s.dwellGen++
	gen := s.dwellGen
	s.dwellTimer = time.AfterFunc(s.dwell, func() { s.dwellTick(gen) })
}

func (s *Session) stopDwellLocked() {
	s.dwellGen++
	if s.dwellTimer != nil {
		s.dwellTimer.Stop()
		s.dwellTimer = nil
	}
}

func (s *Session) dwellTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.dwellGen || !s.playing {
		return
	}
	cam := s.ring.Advance()
	s.cameraChangedLocked(cam)
	s.armDwellLocked()
}

// Media timer: snapshot refresh in the snapshot modes, live-edge nudge in
// live, nothing in unavailable.

func timerKind(m Mode) int {
	switch m {
	case ModeSnapshotPrimary, ModeSnapshotAlt:
		return 1
	case ModeLive:
		return 2
	}
	return 0
}

func (s *Session) armMediaLocked() {
	if s.closed {
		return
	}
	var interval time.Duration
	switch timerKind(s.mode) {
	case 1:
		interval = s.snapshotIvl
	case 2:
		interval = s.liveEdgeIvl
	default:
		return
	}
	s.mediaGen++
	gen := s.mediaGen
	s.mediaTimer = time.AfterFunc(interval, func() { s.mediaTick(gen) })
}

func (s *Session) stopMediaLocked() {
	s.mediaGen++
	if s.mediaTimer != nil {
		s.mediaTimer.Stop()
		s.mediaTimer = nil
	}
}

func (s *Session) mediaTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.mediaGen {
		return
	}

	s.salt++
	var interval time.Duration
	switch timerKind(s.mode) {
	case 1:
		interval = s.snapshotIvl
	case 2:
		interval = s.liveEdgeIvl
		s.pendingLiveEdge = true
	default:
		return
	}
	s.mediaTimer = time.AfterFunc(interval, func() { s.mediaTick(gen) })
}

// Clock tick: recomputes elapsed-since-load once a second for display.
// Purely presentational; never touches the state machine.
func (s *Session) runClock() {
	defer close(s.clockDone)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.clockStop:
			return
		case now := <-ticker.C:
			last := s.lastLoadedUnix.Load()
			if last == 0 {
				s.elapsedSecs.Store(-1)
				continue
			}
			elapsed := now.Unix() - last
			if elapsed < 0 {
				elapsed = 0
			}
			s.elapsedSecs.Store(elapsed)
		}
	}
}

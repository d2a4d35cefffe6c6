package playback

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/roadcam/internal/catalog"
	"github.com/ManuGH/roadcam/internal/media"
)

func testCameras(n int) []catalog.Camera {
	cams := make([]catalog.Camera, n)
	for i := range cams {
		cams[i] = catalog.Camera{
			ID:     fmt.Sprintf("%d", i+1),
			NameFr: fmt.Sprintf("Caméra %d", i+1),
			Region: "Montréal",
			URL:    fmt.Sprintf("https://www.quebec511.info/fr/Camera.ashx?id=%d", 100+i),
		}
	}
	return cams
}

func testManager(cfg Config) *Manager {
	if cfg.Builder == (media.Builder{}) {
		cfg.Builder = media.Builder{ImagePrefix: "/cam-images", LivePrefix: "/cam-live"}
	}
	if cfg.Dwell == 0 {
		cfg.Dwell = time.Hour
	}
	if cfg.SnapshotInterval == 0 {
		cfg.SnapshotInterval = time.Hour
	}
	if cfg.LiveEdgeInterval == 0 {
		cfg.LiveEdgeInterval = time.Hour
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	return NewManager(cfg)
}

func mustCreate(t *testing.T, m *Manager, cams []catalog.Camera, opts CreateOptions) *Session {
	t.Helper()
	s, err := m.Create(cams, opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSessionInitialModeFollowsLiveToggle(t *testing.T) {
	m := testManager(Config{LiveEnabled: true})

	snap := mustCreate(t, m, testCameras(2), CreateOptions{})
	assert.Equal(t, ModeSnapshotPrimary, snap.View().Mode)

	live := mustCreate(t, m, testCameras(2), CreateOptions{Live: true})
	assert.Equal(t, ModeLive, live.View().Mode)
}

func TestSessionSnapshotFailurePath(t *testing.T) {
	m := testManager(Config{})
	s := mustCreate(t, m, testCameras(2), CreateOptions{})

	v, err := s.ReportMediaResult(EventImageError)
	require.NoError(t, err)
	assert.Equal(t, ModeSnapshotAlt, v.Mode)

	v, err = s.ReportMediaResult(EventImageError)
	require.NoError(t, err)
	assert.Equal(t, ModeUnavailable, v.Mode)

	// Terminal: every further report is rejected until the camera changes.
	for _, ev := range []Event{EventLoaded, EventImageError, EventStreamError} {
		if _, err := s.ReportMediaResult(ev); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("event %s in unavailable: err = %v, want ErrInvalidTransition", ev, err)
		}
	}
}

func TestSessionLiveErrorDegradesSilently(t *testing.T) {
	m := testManager(Config{LiveEnabled: true})
	s := mustCreate(t, m, testCameras(2), CreateOptions{Live: true})

	v, err := s.ReportMediaResult(EventStreamError)
	require.NoError(t, err)
	assert.Equal(t, ModeSnapshotPrimary, v.Mode)
}

func TestSessionIllegalEvents(t *testing.T) {
	m := testManager(Config{})
	s := mustCreate(t, m, testCameras(2), CreateOptions{})

	if _, err := s.ReportMediaResult(EventStreamError); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("stream-error in snapshot mode: err = %v, want ErrInvalidTransition", err)
	}
	// The failed report must not have moved the mode.
	assert.Equal(t, ModeSnapshotPrimary, s.View().Mode)
}

func TestSessionCameraSwitchResetsState(t *testing.T) {
	m := testManager(Config{LiveEnabled: true})
	s := mustCreate(t, m, testCameras(3), CreateOptions{Live: true})

	// Degrade all the way down, then switch cameras.
	_, err := s.ReportMediaResult(EventStreamError)
	require.NoError(t, err)
	_, err = s.ReportMediaResult(EventImageError)
	require.NoError(t, err)
	v, err := s.ReportMediaResult(EventImageError)
	require.NoError(t, err)
	require.Equal(t, ModeUnavailable, v.Mode)

	v = s.Next()
	assert.Equal(t, ModeLive, v.Mode, "camera switch re-initializes to the session's live toggle")
	assert.Equal(t, 0, v.Salt, "camera switch zeroes the salt")
	assert.Equal(t, 1, v.Position)
	assert.Equal(t, int64(-1), v.ElapsedSeconds)
}

func TestSessionSaltTicksAndTrailingParam(t *testing.T) {
	m := testManager(Config{})
	s := mustCreate(t, m, testCameras(1), CreateOptions{SnapshotInterval: minSnapshotInterval})

	first := s.View()
	assert.Equal(t, 0, first.Salt)
	assert.True(t, strings.HasSuffix(first.Media.SnapshotPrimary, "_rs=0"), "got %q", first.Media.SnapshotPrimary)

	require.Eventually(t, func() bool {
		return s.View().Salt >= 2
	}, 5*time.Second, 50*time.Millisecond, "snapshot refresh ticks must increment the salt")

	v := s.View()
	assert.True(t, strings.HasSuffix(v.Media.SnapshotPrimary, fmt.Sprintf("_rs=%d", v.Salt)),
		"salt must appear verbatim as the trailing _rs parameter: %q", v.Media.SnapshotPrimary)
	assert.True(t, strings.HasSuffix(v.Media.SnapshotAlt, fmt.Sprintf("_rs=%d", v.Salt)))
	assert.True(t, strings.HasSuffix(v.Media.Live, fmt.Sprintf("_rs=%d", v.Salt)))
	assert.False(t, strings.Contains(v.Media.Viewer, "_rs="), "viewer URL is never salted")
}

func TestSessionLiveEdgeNudge(t *testing.T) {
	m := testManager(Config{LiveEnabled: true, LiveEdgeInterval: 250 * time.Millisecond})
	s := mustCreate(t, m, testCameras(1), CreateOptions{Live: true})

	require.Eventually(t, func() bool {
		return s.View().LiveEdgeSeek
	}, 5*time.Second, 10*time.Millisecond, "live-edge nudge must mark a pending seek")

	// The flag is consumed by the read that observed it.
	assert.False(t, s.View().LiveEdgeSeek)
}

func TestSessionDwellAdvancesPastUnavailable(t *testing.T) {
	m := testManager(Config{Dwell: 150 * time.Millisecond})
	s := mustCreate(t, m, testCameras(3), CreateOptions{})

	_, err := s.ReportMediaResult(EventImageError)
	require.NoError(t, err)
	v, err := s.ReportMediaResult(EventImageError)
	require.NoError(t, err)
	require.Equal(t, ModeUnavailable, v.Mode)

	require.Eventually(t, func() bool {
		v := s.View()
		return v.Position != 0 && v.Mode == ModeSnapshotPrimary
	}, 5*time.Second, 25*time.Millisecond, "dwell advance must continue past an unavailable camera")
}

func TestSessionPauseStopsDwell(t *testing.T) {
	m := testManager(Config{Dwell: 100 * time.Millisecond})
	s := mustCreate(t, m, testCameras(3), CreateOptions{})

	v := s.Pause()
	require.False(t, v.Playing)
	pos := v.Position

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, pos, s.View().Position, "paused session must hold its position")

	s.Resume()
	require.Eventually(t, func() bool {
		return s.View().Position != pos
	}, 5*time.Second, 25*time.Millisecond, "resumed session must advance again")
}

func TestSessionManualStepping(t *testing.T) {
	m := testManager(Config{})
	s := mustCreate(t, m, testCameras(3), CreateOptions{})

	assert.Equal(t, 1, s.Next().Position)
	assert.Equal(t, 2, s.Next().Position)
	assert.Equal(t, 0, s.Next().Position, "next wraps")
	assert.Equal(t, 2, s.Previous().Position, "previous wraps")

	v, err := s.Select("2")
	require.NoError(t, err)
	assert.Equal(t, "2", v.Camera.ID)
	assert.Equal(t, 1, v.Position)

	_, err = s.Select("missing")
	require.Error(t, err)
}

func TestSessionLoadedTracksElapsed(t *testing.T) {
	m := testManager(Config{})
	s := mustCreate(t, m, testCameras(1), CreateOptions{})

	assert.Equal(t, int64(-1), s.View().ElapsedSeconds, "nothing loaded yet")

	v, err := s.ReportMediaResult(EventLoaded)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.ElapsedSeconds)

	require.Eventually(t, func() bool {
		return s.View().ElapsedSeconds >= 1
	}, 5*time.Second, 100*time.Millisecond, "clock tick must grow the elapsed display")
}

func TestSessionCloseStopsEverything(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := testManager(Config{
		Dwell:            50 * time.Millisecond,
		LiveEdgeInterval: 50 * time.Millisecond,
		LiveEnabled:      true,
	})
	s, err := m.Create(testCameras(3), CreateOptions{Live: true})
	require.NoError(t, err)

	time.Sleep(120 * time.Millisecond)
	s.Close()
	s.Close() // idempotent
}

package playback

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/roadcam/internal/slideshow"
)

func TestManagerCreateRejectsEmptySelection(t *testing.T) {
	m := testManager(Config{})
	_, err := m.Create(nil, CreateOptions{})
	if !errors.Is(err, slideshow.ErrEmptyRing) {
		t.Fatalf("Create(nil) err = %v, want ErrEmptyRing", err)
	}
}

func TestManagerGetAndDelete(t *testing.T) {
	m := testManager(Config{})
	s := mustCreate(t, m, testCameras(2), CreateOptions{})

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Count())

	require.NoError(t, m.Delete(s.ID))
	assert.Equal(t, 0, m.Count())

	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := m.Delete(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestManagerLiveGate(t *testing.T) {
	m := testManager(Config{LiveEnabled: false})
	s := mustCreate(t, m, testCameras(2), CreateOptions{Live: true})
	assert.Equal(t, ModeSnapshotPrimary, s.View().Mode,
		"live request with live disabled must start on snapshots")
}

func TestManagerSnapshotIntervalClamp(t *testing.T) {
	m := testManager(Config{})
	s := mustCreate(t, m, testCameras(1), CreateOptions{SnapshotInterval: 10 * time.Millisecond})
	assert.Equal(t, minSnapshotInterval, s.snapshotIvl)
}

func TestManagerShuffleIsPermutation(t *testing.T) {
	cams := testCameras(30)
	m := testManager(Config{})
	s := mustCreate(t, m, cams, CreateOptions{Shuffle: true})

	seen := make([]string, 0, 30)
	seen = append(seen, s.View().Camera.ID)
	for i := 0; i < 29; i++ {
		seen = append(seen, s.Next().Camera.ID)
	}
	sort.Strings(seen)

	want := make([]string, 0, 30)
	for _, c := range cams {
		want = append(want, c.ID)
	}
	sort.Strings(want)

	assert.Equal(t, want, seen, "shuffled session must hold the same id multiset")
}

func TestManagerShuffleDoesNotMutateInput(t *testing.T) {
	cams := testCameras(10)
	first := cams[0].ID
	m := testManager(Config{})
	mustCreate(t, m, cams, CreateOptions{Shuffle: true})
	assert.Equal(t, first, cams[0].ID, "caller slice must stay untouched")
}

func TestManagerJanitorExpiresIdleSessions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := testManager(Config{TTL: 100 * time.Millisecond})
	_, err := m.Create(testCameras(2), CreateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Janitor(ctx, 25*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return m.Count() == 0
	}, 5*time.Second, 25*time.Millisecond, "janitor must reap idle sessions")

	cancel()
	<-done
}

func TestManagerCloseShutsDownAllSessions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := testManager(Config{Dwell: 50 * time.Millisecond})
	for i := 0; i < 3; i++ {
		_, err := m.Create(testCameras(3), CreateOptions{})
		require.NoError(t, err)
	}
	require.Equal(t, 3, m.Count())

	m.Close()
	assert.Equal(t, 0, m.Count())
}

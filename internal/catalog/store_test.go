package catalog

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStoreCommitAndRead(t *testing.T) {
	s := NewStore()
	if !s.Empty() {
		t.Fatal("new store should be empty")
	}

	gen := s.BeginLoad()
	cams := []Camera{{ID: "1"}}
	now := time.Now()
	if err := s.Commit(gen, cams, []string{"Montréal"}, now); err != nil {
		t.Fatalf("commit: %v", err)
	}

	snap := s.Current()
	if snap.Generation != gen {
		t.Errorf("generation = %d, want %d", snap.Generation, gen)
	}
	if len(snap.Cameras) != 1 || snap.Cameras[0].ID != "1" {
		t.Errorf("cameras = %+v", snap.Cameras)
	}
	if !snap.LoadedAt.Equal(now) {
		t.Errorf("loadedAt = %v, want %v", snap.LoadedAt, now)
	}
	if snap.Restored {
		t.Error("live commit must not be marked restored")
	}
}

func TestStoreDiscardsStaleCommit(t *testing.T) {
	s := NewStore()

	slow := s.BeginLoad()
	fast := s.BeginLoad()

	// The newer load commits first.
	if err := s.Commit(fast, []Camera{{ID: "new"}}, nil, time.Now()); err != nil {
		t.Fatalf("fast commit: %v", err)
	}

	// The older in-flight result must be discarded.
	err := s.Commit(slow, []Camera{{ID: "old"}}, nil, time.Now())
	if !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("stale commit error = %v, want ErrStaleGeneration", err)
	}

	if got := s.Current().Cameras[0].ID; got != "new" {
		t.Errorf("store kept %q, want new", got)
	}
}

func TestStoreDiscardsWhenNewerStartedButNotCommitted(t *testing.T) {
	s := NewStore()

	old := s.BeginLoad()
	_ = s.BeginLoad() // newer load started, still in flight

	err := s.Commit(old, []Camera{{ID: "old"}}, nil, time.Now())
	if !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("commit after newer start = %v, want ErrStaleGeneration", err)
	}
	if !s.Empty() {
		t.Error("discarded commit must not populate the store")
	}
}

func TestStoreRestoreOnlyBeforeFirstCommit(t *testing.T) {
	s := NewStore()

	if ok := s.Restore([]Camera{{ID: "r"}}, []string{"Estrie"}, time.Now()); !ok {
		t.Fatal("restore into empty store should apply")
	}
	snap := s.Current()
	if !snap.Restored {
		t.Error("snapshot should be marked restored")
	}
	if snap.Generation != 0 {
		t.Errorf("restored generation = %d, want 0", snap.Generation)
	}

	// A live load replaces the restored data.
	gen := s.BeginLoad()
	if err := s.Commit(gen, []Camera{{ID: "live"}}, nil, time.Now()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Restore after a live commit is refused.
	if ok := s.Restore([]Camera{{ID: "again"}}, nil, time.Now()); ok {
		t.Error("restore after live commit should be refused")
	}
	if got := s.Current().Cameras[0].ID; got != "live" {
		t.Errorf("store holds %q, want live", got)
	}
}

func TestStoreConcurrentLoads(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gen := s.BeginLoad()
			_ = s.Commit(gen, []Camera{{ID: "x"}}, nil, time.Now())
		}()
	}
	wg.Wait()

	// Exactly the newest issued generation may have won; the store must hold
	// a committed generation no greater than the number of loads.
	snap := s.Current()
	if snap.Generation == 0 || snap.Generation > 32 {
		t.Errorf("final generation = %d, want within [1,32]", snap.Generation)
	}
}

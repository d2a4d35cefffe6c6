// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, path, dwell string) {
	t.Helper()
	content := "playback:\n  dwell: " + dwell + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func newTestHolder(t *testing.T) (*Holder, string) {
	t.Helper()
	setRequiredEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "roadcam.yaml")
	writeConfigFile(t, path, "10s")

	loader := NewLoader(path, "v-test")
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("initial load: %v", err)
	}
	return NewHolder(cfg, loader, path), path
}

func TestHolderReloadAppliesChanges(t *testing.T) {
	holder, path := newTestHolder(t)

	if got := holder.Get().Playback.Dwell; got != 10*time.Second {
		t.Fatalf("initial dwell = %v, want 10s", got)
	}

	writeConfigFile(t, path, "30s")
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got := holder.Get().Playback.Dwell; got != 30*time.Second {
		t.Errorf("dwell after reload = %v, want 30s", got)
	}
}

func TestHolderReloadKeepsOldConfigOnError(t *testing.T) {
	holder, path := newTestHolder(t)

	// Unknown field must fail the strict parse and leave config untouched.
	if err := os.WriteFile(path, []byte("nonsense: true\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := holder.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error for unknown field")
	}

	if got := holder.Get().Playback.Dwell; got != 10*time.Second {
		t.Errorf("dwell after failed reload = %v, want unchanged 10s", got)
	}
}

func TestHolderReloadRejectsImmutableChange(t *testing.T) {
	holder, path := newTestHolder(t)

	content := "listen: \":9999\"\nplayback:\n  dwell: 10s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	err := holder.Reload(context.Background())
	if err == nil {
		t.Fatal("expected reload rejection for listen change")
	}

	if got := holder.Get().Listen; got != ":8080" {
		t.Errorf("listen after rejected reload = %q, want :8080", got)
	}
}

func TestHolderNotifiesListeners(t *testing.T) {
	holder, path := newTestHolder(t)

	ch := make(chan AppConfig, 1)
	holder.RegisterListener(ch)

	writeConfigFile(t, path, "25s")
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	select {
	case cfg := <-ch:
		if cfg.Playback.Dwell != 25*time.Second {
			t.Errorf("notified dwell = %v, want 25s", cfg.Playback.Dwell)
		}
	case <-time.After(time.Second):
		t.Fatal("listener was not notified")
	}
}

func TestWatcherReloadsOnFileChange(t *testing.T) {
	holder, path := newTestHolder(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := holder.StartWatcher(ctx); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	defer holder.Stop()

	writeConfigFile(t, path, "40s")

	// Debounce is 500ms; allow generous slack for slow CI filesystems.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if holder.Get().Playback.Dwell == 40*time.Second {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("watcher never applied change, dwell = %v", holder.Get().Playback.Dwell)
}

// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/roadcam/internal/config"
)

func configForStartup(dir string) config.AppConfig {
	cfg := config.Defaults()
	cfg.DataDir = dir
	cfg.Feed.BaseURL = "https://www.quebec511.info"
	return cfg
}

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Health_NoCheckers(t *testing.T) {
	m := NewManager("v1.2.0")

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.2.0", resp.Version)
	assert.Nil(t, resp.Checks)
}

func TestManager_Health_Verbose(t *testing.T) {
	m := NewManager("v1.2.0")
	m.RegisterChecker(&mockChecker{name: "good", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "limping", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, StatusHealthy, resp.Checks["good"].Status)
	assert.Equal(t, StatusDegraded, resp.Checks["limping"].Status)
}

func TestManager_Ready_UnhealthyWithdraws(t *testing.T) {
	m := NewManager("v1.2.0")
	m.RegisterChecker(&mockChecker{name: "catalog", status: StatusUnhealthy})

	resp := m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestManager_Ready_DegradedStillReady(t *testing.T) {
	m := NewManager("v1.2.0")
	m.RegisterChecker(&mockChecker{name: "catalog", status: StatusDegraded})

	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestServeHealth_Always200(t *testing.T) {
	m := NewManager("v1.2.0")
	m.RegisterChecker(&mockChecker{name: "catalog", status: StatusUnhealthy})

	req := httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil)
	rec := httptest.NewRecorder()
	m.ServeHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady_503WhenNotReady(t *testing.T) {
	m := NewManager("v1.2.0")
	m.RegisterChecker(&mockChecker{name: "catalog", status: StatusUnhealthy})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	m.ServeReady(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Ready)
}

func TestCatalogChecker(t *testing.T) {
	tests := []struct {
		name  string
		state CatalogState
		want  Status
	}{
		{
			name:  "never loaded",
			state: CatalogState{},
			want:  StatusUnhealthy,
		},
		{
			name:  "never loaded with error",
			state: CatalogState{LastError: "feed unavailable"},
			want:  StatusUnhealthy,
		},
		{
			name:  "restored only",
			state: CatalogState{LoadedAt: time.Now(), Restored: true},
			want:  StatusDegraded,
		},
		{
			name:  "stale",
			state: CatalogState{LoadedAt: time.Now().Add(-2 * time.Hour)},
			want:  StatusDegraded,
		},
		{
			name:  "fresh",
			state: CatalogState{LoadedAt: time.Now().Add(-time.Minute)},
			want:  StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalogChecker(time.Hour, func() CatalogState { return tt.state })
			result := c.Check(context.Background())
			assert.Equal(t, tt.want, result.Status)
		})
	}
}

func TestCatalogChecker_NoMaxAgeNeverStale(t *testing.T) {
	state := CatalogState{LoadedAt: time.Now().Add(-48 * time.Hour)}
	c := NewCatalogChecker(0, func() CatalogState { return state })
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("cache", func(context.Context) error { return nil })
	result := ok.Check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)

	down := NewPingChecker("cache", func(context.Context) error { return errors.New("connection refused") })
	result = down.Check(context.Background())
	assert.Equal(t, StatusDegraded, result.Status)
	assert.Contains(t, result.Error, "connection refused")
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()

	full := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(full, []byte(`{"cameras":[]}`), 0o644))

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	tests := []struct {
		name string
		path string
		want Status
	}{
		{"not configured", "", StatusHealthy},
		{"missing", filepath.Join(dir, "absent.json"), StatusDegraded},
		{"directory", dir, StatusUnhealthy},
		{"empty file", empty, StatusDegraded},
		{"present", full, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFileChecker("artifact", tt.path)
			assert.Equal(t, tt.want, c.Check(context.Background()).Status)
		})
	}
}

func TestPerformStartupChecks(t *testing.T) {
	cfg := configForStartup(t.TempDir())
	require.NoError(t, PerformStartupChecks(context.Background(), cfg))
}

func TestPerformStartupChecks_BadListen(t *testing.T) {
	cfg := configForStartup(t.TempDir())
	cfg.Listen = "no-port"
	assert.Error(t, PerformStartupChecks(context.Background(), cfg))
}

func TestPerformStartupChecks_BadUpstream(t *testing.T) {
	cfg := configForStartup(t.TempDir())
	cfg.Feed.BaseURL = "ftp://example.com"
	assert.Error(t, PerformStartupChecks(context.Background(), cfg))
}

// SPDX-License-Identifier: MIT

// Package health provides liveness and readiness checks for container
// deployments. Liveness always answers 200 while the process runs; readiness
// flips to 503 until the catalog can serve a slideshow.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	rclog "github.com/ManuGH/roadcam/internal/log"
)

// Status grades a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is one component's verdict.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse is the readiness payload.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker is one registered component check.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs the registered checks.
type Manager struct {
	version  string
	checkers []Checker
}

// NewManager creates an empty manager.
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a component check. Not safe to call after the server
// starts serving.
func (m *Manager) RegisterChecker(c Checker) {
	m.checkers = append(m.checkers, c)
}

// Health performs the liveness check. The process being able to answer is
// the check; component results are attached only in verbose mode.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
	}

	if verbose && len(m.checkers) > 0 {
		resp.Checks = make(map[string]CheckResult)
		resp.Status = m.runChecks(ctx, resp.Checks)
	}
	return resp
}

// Ready performs the readiness check. Only unhealthy components withdraw
// readiness; a degraded catalog still serves.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	resp := ReadinessResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}

	if len(m.checkers) == 0 {
		return resp
	}

	resp.Checks = make(map[string]CheckResult)
	resp.Status = m.runChecks(ctx, resp.Checks)
	resp.Ready = resp.Status != StatusUnhealthy
	return resp
}

func (m *Manager) runChecks(ctx context.Context, out map[string]CheckResult) Status {
	overall := StatusHealthy
	for _, checker := range m.checkers {
		result := checker.Check(ctx)
		out[checker.Name()] = result

		switch result.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}
	return overall
}

// ServeHealth handles the liveness endpoint.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	logger := rclog.WithComponentFromContext(r.Context(), "health")
	verbose := r.URL.Query().Get("verbose") == "true"

	resp := m.Health(r.Context(), verbose)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(rclog.FieldEvent, "health.encode_error").Msg("failed to encode health response")
	}
}

// ServeReady handles the readiness endpoint.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := rclog.WithComponentFromContext(r.Context(), "readiness")

	resp := m.Ready(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(rclog.FieldEvent, "readiness.encode_error").Msg("failed to encode readiness response")
	}
}

// CatalogState is what the catalog checker inspects, decoupled from the
// store and job types.
type CatalogState struct {
	LoadedAt  time.Time
	Restored  bool
	LastError string
}

// CatalogChecker grades catalog freshness. Never loaded is unhealthy, a
// restored-only or stale catalog is degraded, anything within the freshness
// window is healthy.
type CatalogChecker struct {
	maxAge time.Duration
	state  func() CatalogState
}

// NewCatalogChecker creates the catalog freshness check.
func NewCatalogChecker(maxAge time.Duration, state func() CatalogState) *CatalogChecker {
	return &CatalogChecker{maxAge: maxAge, state: state}
}

func (c *CatalogChecker) Name() string { return "catalog" }

func (c *CatalogChecker) Check(_ context.Context) CheckResult {
	st := c.state()

	if st.LoadedAt.IsZero() {
		result := CheckResult{
			Status:  StatusUnhealthy,
			Message: "catalog never loaded",
		}
		result.Error = st.LastError
		return result
	}

	if st.Restored {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "serving restored catalog, no live load yet",
		}
	}

	if c.maxAge > 0 {
		if age := time.Since(st.LoadedAt); age > c.maxAge {
			return CheckResult{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("catalog stale, last load %s ago", age.Round(time.Minute)),
				Error:   st.LastError,
			}
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: "catalog fresh",
	}
}

// PingChecker wraps a backend ping, for optional dependencies like the
// Redis cache. A failing ping degrades instead of withdrawing readiness.
type PingChecker struct {
	name string
	ping func(ctx context.Context) error
}

// NewPingChecker creates a ping-based check.
func NewPingChecker(name string, ping func(ctx context.Context) error) *PingChecker {
	return &PingChecker{name: name, ping: ping}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		return CheckResult{
			Status: StatusDegraded,
			Error:  err.Error(),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "reachable",
	}
}

// FileChecker verifies that a file exists and is non-empty. Wired to the
// persisted catalog artifact so operators can see warm-start coverage.
type FileChecker struct {
	name string
	path string
}

// NewFileChecker creates a file existence check. An empty path reports
// healthy, the check is simply not configured.
func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{name: name, path: path}
}

func (c *FileChecker) Name() string { return c.name }

func (c *FileChecker) Check(_ context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "not configured (optional)",
		}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusDegraded,
				Message: c.path,
				Error:   "file not found",
			}
		}
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  err.Error(),
		}
	}

	if info.IsDir() {
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  "expected file, got directory",
		}
	}

	if info.Size() == 0 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "file is empty",
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: "file exists and readable",
	}
}

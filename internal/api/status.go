// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ManuGH/roadcam/internal/feed"
	"github.com/ManuGH/roadcam/internal/jobs"
	rclog "github.com/ManuGH/roadcam/internal/log"
)

// statusResponse is the refresh Status plus build info.
type statusResponse struct {
	Version string `json:"version"`
	jobs.Status
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Version: s.cfg.Version,
		Status:  s.runner.Status(),
	})
}

// refreshTimeout bounds one triggered cycle independently of the client
// connection; a disconnect must not abort a running reload.
const refreshTimeout = 2 * time.Minute

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := rclog.WithComponentFromContext(r.Context(), "api")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), refreshTimeout)
	defer cancel()

	st, err := s.runner.Refresh(ctx)
	if err != nil {
		logger.Warn().
			Err(err).
			Str(rclog.FieldEvent, "refresh.rejected").
			Msg("triggered refresh failed")
		if errors.Is(err, feed.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, errors.New("feed unavailable"))
			return
		}
		// Internal failure details stay in the log and in /status.
		writeError(w, http.StatusInternalServerError, errors.New("refresh failed"))
		return
	}

	writeJSON(w, http.StatusAccepted, statusResponse{Version: s.cfg.Version, Status: *st})
}

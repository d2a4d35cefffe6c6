// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/roadcam/internal/api/middleware"
	"github.com/ManuGH/roadcam/internal/catalog"
	"github.com/ManuGH/roadcam/internal/playback"
	"github.com/ManuGH/roadcam/internal/telemetry"
)

// createSessionRequest selects and orders the cameras for one slideshow run.
// Zero durations fall back to the configured defaults.
type createSessionRequest struct {
	Query                   string  `json:"query"`
	Region                  string  `json:"region"`
	Shuffle                 bool    `json:"shuffle"`
	Live                    bool    `json:"live"`
	DwellSeconds            float64 `json:"dwell_seconds"`
	SnapshotIntervalSeconds float64 `json:"snapshot_interval_seconds"`
}

type selectRequest struct {
	CameraID string `json:"camera_id"`
}

type mediaResultRequest struct {
	Result string `json:"result"`
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap := s.store.Current()
	matched := catalog.Filter(snap.Cameras, req.Query, req.Region)

	sess, err := s.sessions.Create(matched, playback.CreateOptions{
		Live:             req.Live,
		Shuffle:          req.Shuffle,
		Dwell:            secondsToDuration(req.DwellSeconds),
		SnapshotInterval: secondsToDuration(req.SnapshotIntervalSeconds),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess.View())
}

// withSession resolves {id} for the session control endpoints.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request) (*playback.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Next())
}

func (s *Server) handleSessionPrevious(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Previous())
}

func (s *Server) handleSessionPause(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Pause())
}

func (s *Server) handleSessionResume(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Resume())
}

func (s *Server) handleSessionSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := sess.Select(req.CameraID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMediaResult(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req mediaResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ev, err := playback.ParseEvent(req.Result)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := sess.ReportMediaResult(ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.AddSpanAttributes(r, telemetry.PlaybackAttributes(string(view.Mode), string(ev))...)
	writeJSON(w, http.StatusOK, view)
}

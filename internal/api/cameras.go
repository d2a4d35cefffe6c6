// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/roadcam/internal/api/middleware"
	"github.com/ManuGH/roadcam/internal/catalog"
	"github.com/ManuGH/roadcam/internal/media"
	"github.com/ManuGH/roadcam/internal/telemetry"
)

// camerasResponse is the list envelope. It is cached pre-marshaled per
// (generation, region, query) key, so both cache backends return exactly the
// bytes a cold render produced.
type camerasResponse struct {
	Cameras []catalog.Camera `json:"cameras"`
	Count   int              `json:"count"`
}

type cameraResponse struct {
	Camera catalog.Camera `json:"camera"`
	Media  media.Variants `json:"media"`
	Salt   int            `json:"salt"`
}

type regionsResponse struct {
	Regions []string `json:"regions"`
	Count   int      `json:"count"`
}

func (s *Server) handleListCameras(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	region := r.URL.Query().Get("region")
	snap := s.store.Current()

	// A new generation changes the key, so stale entries are never served;
	// they just expire.
	key := fmt.Sprintf("cameras:%d:%s:%s", snap.Generation, region, q)
	if data, ok := s.cache.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}

	matched := catalog.Filter(snap.Cameras, q, region)
	data, err := json.Marshal(camerasResponse{Cameras: matched, Count: len(matched)})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.cache.Set(r.Context(), key, data, s.cfg.Cache.TTL)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	salt := 0
	if raw := r.URL.Query().Get("salt"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid salt %q", raw))
			return
		}
		salt = n
	}

	snap := s.store.Current()
	var cam *catalog.Camera
	for i := range snap.Cameras {
		if snap.Cameras[i].ID == id {
			cam = &snap.Cameras[i]
			break
		}
	}
	if cam == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("camera %q not found", id))
		return
	}

	variants, err := s.builder.Variants(*cam, salt)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	middleware.AddSpanAttributes(r, telemetry.CameraAttributes(cam.ID, cam.Region)...)
	writeJSON(w, http.StatusOK, cameraResponse{Camera: *cam, Media: variants, Salt: salt})
}

func (s *Server) handleListRegions(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Current()
	regions := snap.Regions
	if regions == nil {
		regions = []string{}
	}
	writeJSON(w, http.StatusOK, regionsResponse{Regions: regions, Count: len(regions)})
}

// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/roadcam/internal/catalog"
	"github.com/ManuGH/roadcam/internal/feed"
	"github.com/ManuGH/roadcam/internal/media"
	"github.com/ManuGH/roadcam/internal/playback"
	"github.com/ManuGH/roadcam/internal/slideshow"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the uniform error envelope.
func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeDomainError maps a sentinel error onto its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, errorStatus(err), err)
}

// errorStatus maps the package sentinels callers branch on to status codes.
// Anything unrecognized is a 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, playback.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, slideshow.ErrNotInRing):
		return http.StatusNotFound
	case errors.Is(err, slideshow.ErrEmptyRing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, media.ErrNotPlayable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, playback.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrStaleGeneration):
		return http.StatusConflict
	case errors.Is(err, feed.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// maxBodyBytes caps request bodies; session control payloads are tiny.
const maxBodyBytes = 1 << 16

// decodeJSON reads a request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

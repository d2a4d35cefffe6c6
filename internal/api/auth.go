// SPDX-License-Identifier: MIT

package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	rclog "github.com/ManuGH/roadcam/internal/log"
)

var errUnauthorized = errors.New("unauthorized")

// bearerToken extracts a Bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// authorizeToken returns true if got matches expected using constant-time
// comparison. Empty tokens never authorize.
func authorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// requireToken guards the refresh trigger. With no token configured the
// endpoint stays open; configuring one demands a matching Bearer header.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.APIToken
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !authorizeToken(bearerToken(r), token) {
			rclog.WithComponentFromContext(r.Context(), "auth").Warn().
				Str(rclog.FieldEvent, "auth.invalid_token").
				Str(rclog.FieldPath, r.URL.Path).
				Msg("refresh trigger rejected")
			writeError(w, http.StatusUnauthorized, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

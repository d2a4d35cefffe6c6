// SPDX-License-Identifier: MIT

package daemon

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ServerConfig carries the HTTP server tuning the daemon applies.
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
}

// DefaultServerConfig returns the production timeouts for the given listen
// address. WriteTimeout stays zero: proxied snapshots and live playlists
// stream on the client's clock, and a write deadline would cut them off.
func DefaultServerConfig(listen string) ServerConfig {
	return ServerConfig{
		ListenAddr:      listen,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    0,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxHeaderBytes:  1 << 20,
	}
}

// Deps contains the dependencies required by the daemon Manager.
type Deps struct {
	// Logger is the structured logger for the daemon.
	Logger zerolog.Logger

	// Handler serves every inbound request: API, health, metrics and the
	// same-origin proxy prefixes all hang off one router.
	Handler http.Handler
}

// Validate checks if the dependencies are usable.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Handler == nil {
		return ErrMissingHandler
	}
	return nil
}

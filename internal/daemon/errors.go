// SPDX-License-Identifier: MIT

package daemon

import "errors"

var (
	// ErrManagerNotStarted is returned by Shutdown before Start.
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrMissingManager is returned by App.Run without a Manager.
	ErrMissingManager = errors.New("manager is required")

	// ErrMissingLogger is returned when dependencies carry a disabled logger.
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingHandler is returned when no HTTP handler is provided.
	ErrMissingHandler = errors.New("http handler is required")
)

// Package playback owns the per-camera viewing state machine and the
// sessions that drive it: mode transitions reported by the client, the
// cache-busting salt, and the timers for dwell advance, snapshot refresh,
// live-edge nudging, and the display clock.
package playback

import (
	"errors"
	"fmt"
)

// Mode is the viewing state for the camera currently on screen.
type Mode string

const (
	// ModeSnapshotPrimary shows the camera's primary still image.
	ModeSnapshotPrimary Mode = "snapshot-primary"
	// ModeSnapshotAlt shows the alternate-format still after the primary failed.
	ModeSnapshotAlt Mode = "snapshot-alternate"
	// ModeLive plays the camera's live stream.
	ModeLive Mode = "live"
	// ModeUnavailable means both snapshot formats failed. Terminal until the
	// camera changes.
	ModeUnavailable Mode = "unavailable"
)

// Event is a media outcome reported by the presentation client.
type Event string

const (
	// EventLoaded reports the current media rendered successfully.
	EventLoaded Event = "loaded"
	// EventImageError reports the current snapshot failed to load.
	EventImageError Event = "image-error"
	// EventStreamError reports the live stream failed to attach or parse.
	EventStreamError Event = "stream-error"
)

// ErrInvalidTransition rejects an event that is not legal in the current mode.
var ErrInvalidTransition = errors.New("invalid transition")

// InitialMode returns the mode a fresh camera starts in.
func InitialMode(live bool) Mode {
	if live {
		return ModeLive
	}
	return ModeSnapshotPrimary
}

// Transition is the pure state core: given the current mode and a reported
// event it returns the next mode. Camera changes are not events; they
// re-initialize via InitialMode. A live stream error degrades silently to the
// primary snapshot. Unavailable accepts nothing.
func Transition(mode Mode, ev Event) (Mode, error) {
	switch mode {
	case ModeSnapshotPrimary:
		switch ev {
		case EventLoaded:
			return ModeSnapshotPrimary, nil
		case EventImageError:
			return ModeSnapshotAlt, nil
		}
	case ModeSnapshotAlt:
		switch ev {
		case EventLoaded:
			return ModeSnapshotAlt, nil
		case EventImageError:
			return ModeUnavailable, nil
		}
	case ModeLive:
		switch ev {
		case EventLoaded:
			return ModeLive, nil
		case EventStreamError:
			return ModeSnapshotPrimary, nil
		}
	}
	return mode, fmt.Errorf("%w: %q in %q", ErrInvalidTransition, ev, mode)
}

// ParseEvent maps a client-reported result string onto an Event.
func ParseEvent(s string) (Event, error) {
	switch Event(s) {
	case EventLoaded, EventImageError, EventStreamError:
		return Event(s), nil
	}
	return "", fmt.Errorf("unknown media result %q", s)
}

// Package slideshow provides the per-session camera list mechanics: a frozen
// circular ring with a cursor, and the one-time shuffle applied at session
// creation. The ring is not safe for concurrent use; the owning session
// serializes access.
package slideshow

import (
	"errors"
	"fmt"

	"github.com/ManuGH/roadcam/internal/catalog"
)

var (
	// ErrEmptyRing means the filter matched no playable cameras.
	ErrEmptyRing = errors.New("no cameras selected")
	// ErrNotInRing means a selected camera id is not part of this session's list.
	ErrNotInRing = errors.New("camera not in session list")
)

// Ring is a circular cursor over a frozen camera list.
type Ring struct {
	cameras []catalog.Camera
	index   int
}

// NewRing copies the given list so later catalog reloads cannot mutate a
// running session.
func NewRing(cams []catalog.Camera) (*Ring, error) {
	if len(cams) == 0 {
		return nil, ErrEmptyRing
	}
	owned := make([]catalog.Camera, len(cams))
	copy(owned, cams)
	return &Ring{cameras: owned}, nil
}

// Current returns the camera under the cursor.
func (r *Ring) Current() catalog.Camera {
	return r.cameras[r.index]
}

// Advance moves the cursor forward one position, wrapping at the end.
func (r *Ring) Advance() catalog.Camera {
	r.index = (r.index + 1) % len(r.cameras)
	return r.cameras[r.index]
}

// Previous moves the cursor back one position, wrapping at the start.
func (r *Ring) Previous() catalog.Camera {
	r.index = (r.index - 1 + len(r.cameras)) % len(r.cameras)
	return r.cameras[r.index]
}

// Select jumps the cursor to the camera with the given id.
func (r *Ring) Select(cameraID string) (catalog.Camera, error) {
	for i, c := range r.cameras {
		if c.ID == cameraID {
			r.index = i
			return c, nil
		}
	}
	return catalog.Camera{}, fmt.Errorf("%w: %s", ErrNotInRing, cameraID)
}

// Len returns the list length.
func (r *Ring) Len() int {
	return len(r.cameras)
}

// Position returns the zero-based cursor position.
func (r *Ring) Position() int {
	return r.index
}

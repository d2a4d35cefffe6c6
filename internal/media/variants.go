// Package media derives the candidate media URLs for a camera. Derivation is
// a pure function of the record, the configured same-origin prefixes and the
// cache-bust salt; nothing here holds state.
package media

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/roadcam/internal/catalog"
)

// ErrNotPlayable is returned for records without a derivable numeric id.
var ErrNotPlayable = errors.New("media: camera has no derivable numeric id")

// SaltParam is the query parameter carrying the cache-bust counter. It is
// appended last so intermediaries treat each increment as a distinct URL.
const SaltParam = "_rs"

// Variants is the candidate URL set for one camera at one salt value.
type Variants struct {
	SnapshotPrimary string `json:"snapshotPrimary"`
	SnapshotAlt     string `json:"snapshotAlt"`
	Live            string `json:"live"`
	Viewer          string `json:"viewer,omitempty"`
}

// Builder constructs variant sets against the same-origin proxy prefixes, so
// every URL it produces resolves through this service.
type Builder struct {
	ImagePrefix string // e.g. "/cam-images"
	LivePrefix  string // e.g. "/cam-live"
}

// Variants derives the URL set for cam at the given salt. The viewer URL is
// passed through untouched; all constructed URLs and the direct snapshot get
// the salt appended.
func (b Builder) Variants(cam catalog.Camera, salt int) (Variants, error) {
	id, ok := catalog.NumericID(cam.URL)
	if !ok {
		return Variants{}, ErrNotPlayable
	}

	primary := cam.ImgDirect
	if primary == "" {
		primary = fmt.Sprintf("%s/Cameras/%s.jpg", strings.TrimRight(b.ImagePrefix, "/"), id)
	}

	return Variants{
		SnapshotPrimary: WithSalt(primary, salt),
		SnapshotAlt:     WithSalt(fmt.Sprintf("%s/Cameras/%s.png", strings.TrimRight(b.ImagePrefix, "/"), id), salt),
		Live:            WithSalt(fmt.Sprintf("%s/Cameras/%s.m3u8", strings.TrimRight(b.LivePrefix, "/"), id), salt),
		Viewer:          cam.URL,
	}, nil
}

// WithSalt appends the cache-bust counter as the trailing query parameter,
// preserving any query string already present. The raw URL is not re-encoded;
// upstream URLs arrive already escaped and must round-trip byte for byte.
func WithSalt(raw string, salt int) string {
	if raw == "" {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%d", raw, sep, SaltParam, salt)
}

// Package catalog holds the normalized camera records produced from the
// upstream feed, the pure filtering logic over them, and the generation
// guarded store that owns the record list at runtime.
package catalog

import (
	"net/url"
	"sort"
	"strings"

	rclog "github.com/ManuGH/roadcam/internal/log"
	platformnet "github.com/ManuGH/roadcam/internal/platform/net"
)

// Camera is one traffic camera as published by the agency feed. Records are
// created once per load cycle, immutable afterwards, and replaced wholesale
// on reload.
type Camera struct {
	ID        string   `json:"id"`
	Number    string   `json:"number,omitempty"`
	NameFr    string   `json:"nameFr,omitempty"`
	NameEn    string   `json:"nameEn,omitempty"`
	Route     string   `json:"route,omitempty"`
	Region    string   `json:"region,omitempty"`
	Border    string   `json:"border,omitempty"`
	Bridge    string   `json:"bridge,omitempty"`
	URL       string   `json:"url,omitempty"`
	ImgDirect string   `json:"imgDirect,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
}

// NumericID extracts the camera's internal numeric id from the viewer URL's
// "id" query parameter. All media URL construction is keyed by it; a camera
// without one is not playable.
func NumericID(viewerURL string) (string, bool) {
	if viewerURL == "" {
		return "", false
	}
	u, err := url.Parse(viewerURL)
	if err != nil {
		return "", false
	}
	id := u.Query().Get("id")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}

// Playable reports whether the camera can produce media URLs.
func (c Camera) Playable() bool {
	_, ok := NumericID(c.URL)
	return ok
}

// Sanitize drops records without an id, drops later duplicates of an already
// seen id, clears direct image URLs that are not plain http(s), and returns
// the surviving records together with the region vocabulary (distinct
// non-empty regions, lexicographically sorted).
func Sanitize(cams []Camera) ([]Camera, []string) {
	logger := rclog.WithComponent("catalog")

	seen := make(map[string]struct{}, len(cams))
	regionSet := make(map[string]struct{})
	out := make([]Camera, 0, len(cams))

	for _, c := range cams {
		if c.ID == "" {
			logger.Debug().
				Str("name", displayName(c)).
				Msg("dropping record without id")
			continue
		}
		if _, dup := seen[c.ID]; dup {
			logger.Warn().
				Str(rclog.FieldCameraID, c.ID).
				Msg("dropping duplicate camera id, first occurrence wins")
			continue
		}
		if c.ImgDirect != "" {
			if _, ok := platformnet.ParseDirectHTTPURL(c.ImgDirect); !ok {
				logger.Debug().
					Str(rclog.FieldCameraID, c.ID).
					Msg("clearing non-http direct image url")
				c.ImgDirect = ""
			}
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
		if c.Region != "" {
			regionSet[c.Region] = struct{}{}
		}
	}

	regions := make([]string, 0, len(regionSet))
	for r := range regionSet {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	return out, regions
}

func displayName(c Camera) string {
	if c.NameFr != "" {
		return c.NameFr
	}
	return c.NameEn
}

// haystack is the concatenation the free-text filter searches, lowercased.
func haystack(c Camera) string {
	return strings.ToLower(strings.Join([]string{
		c.NameFr, c.NameEn, c.Route, c.Region, c.Bridge, c.Border,
	}, " "))
}

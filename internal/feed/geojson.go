package feed

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ManuGH/roadcam/internal/catalog"
	unorm "golang.org/x/text/unicode/norm"
)

// featureCollection is the subset of the upstream GeoJSON this service reads.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties featureProperties `json:"properties"`
	Geometry   struct {
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geometry"`
}

type featureProperties struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	NameFr string `json:"name-fr"`
	NameEn string `json:"name-en"`
	Route  string `json:"route"`
	Region string `json:"region"`
	Border string `json:"border-crossing"`
	Bridge string `json:"bridge"`
	URL    string `json:"url"`
	ImgURL string `json:"img-url"`
}

// ParseGeoJSON decodes a feature collection into camera records. A body that
// is not a feature collection is an error, which sends the caller to the
// delimited fallback. Individual features with unusable geometry are kept
// without coordinates rather than dropped.
func ParseGeoJSON(r io.Reader) ([]catalog.Camera, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("unexpected geojson type %q", fc.Type)
	}

	cams := make([]catalog.Camera, 0, len(fc.Features))
	for _, f := range fc.Features {
		cam := catalog.Camera{
			ID:        nfc(f.Properties.ID),
			Number:    nfc(f.Properties.Number),
			NameFr:    nfc(f.Properties.NameFr),
			NameEn:    nfc(f.Properties.NameEn),
			Route:     nfc(f.Properties.Route),
			Region:    nfc(f.Properties.Region),
			Border:    nfc(f.Properties.Border),
			Bridge:    nfc(f.Properties.Bridge),
			URL:       f.Properties.URL,
			ImgDirect: f.Properties.ImgURL,
		}
		if lon, lat, ok := pointCoords(f.Geometry.Coordinates); ok {
			cam.Lon, cam.Lat = &lon, &lat
		}
		cams = append(cams, cam)
	}
	return cams, nil
}

// pointCoords reads the first two coordinate components: longitude, latitude.
func pointCoords(raw json.RawMessage) (lon, lat float64, ok bool) {
	if len(raw) == 0 {
		return 0, 0, false
	}
	var coords []float64
	if err := json.Unmarshal(raw, &coords); err != nil || len(coords) < 2 {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}

// nfc normalizes upstream text to NFC; the agency mixes composed and
// decomposed accents across its exports.
func nfc(s string) string {
	return unorm.NFC.String(s)
}

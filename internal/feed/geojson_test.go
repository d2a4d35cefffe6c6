package feed

import (
	"strings"
	"testing"
)

func TestParseGeoJSONCoordinates(t *testing.T) {
	cams, err := ParseGeoJSON(strings.NewReader(sampleGeoJSON))
	if err != nil {
		t.Fatalf("ParseGeoJSON: %v", err)
	}
	if len(cams) != 2 {
		t.Fatalf("cameras = %d, want 2", len(cams))
	}

	c := cams[0]
	if c.Lon == nil || c.Lat == nil {
		t.Fatal("expected coordinates on first camera")
	}
	if *c.Lon != -75.77 || *c.Lat != 45.49 {
		t.Errorf("coords = (%v, %v), want (-75.77, 45.49)", *c.Lon, *c.Lat)
	}
}

func TestParseGeoJSONBadGeometryKeepsCamera(t *testing.T) {
	const body = `{
      "type": "FeatureCollection",
      "features": [
        {"properties": {"id": "7", "name-fr": "Cam", "url": "https://example.test/Camera.ashx?id=7"},
         "geometry": {"type": "Point", "coordinates": "oops"}}
      ]
    }`

	cams, err := ParseGeoJSON(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseGeoJSON: %v", err)
	}
	if len(cams) != 1 {
		t.Fatalf("cameras = %d, want 1", len(cams))
	}
	if cams[0].Lat != nil || cams[0].Lon != nil {
		t.Error("expected no coordinates for malformed geometry")
	}
}

func TestParseGeoJSONNormalizesToNFC(t *testing.T) {
	// "Montre" + combining acute accent: decomposed form of Montréal.
	const body = `{
      "type": "FeatureCollection",
      "features": [
        {"properties": {"id": "3", "name-fr": "Cam", "region": "Montréal"}}
      ]
    }`

	cams, err := ParseGeoJSON(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseGeoJSON: %v", err)
	}
	if got, want := cams[0].Region, "Montréal"; got != want {
		t.Errorf("region = %q, want composed %q", got, want)
	}
}

func TestParseGeoJSONRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "<html></html>"},
		{"wrong type", `{"type": "Feature", "features": []}`},
		{"empty body", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseGeoJSON(strings.NewReader(tc.body)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"net/http"
	"strings"
	"testing"
)

func TestListCameras_ExcludesNonPlayable(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/cameras", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp camerasResponse
	decodeInto(t, rec, &resp)
	if resp.Count != 2 || len(resp.Cameras) != 2 {
		t.Fatalf("count = %d, cameras = %d, want 2 playable", resp.Count, len(resp.Cameras))
	}
	for _, c := range resp.Cameras {
		if c.ID == "cam-static" {
			t.Error("record without a numeric id leaked into the list")
		}
	}
}

func TestListCameras_RegionFilter(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/cameras?region=Outaouais", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp camerasResponse
	decodeInto(t, rec, &resp)
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Cameras[0].ID != "cam-42" {
		t.Errorf("camera = %q", resp.Cameras[0].ID)
	}
}

func TestListCameras_QueryFilter(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	// Case-insensitive free text over names, route and region.
	rec := ts.do(t, http.MethodGet, "/api/v1/cameras?q=AUTOROUTE", nil)

	var resp camerasResponse
	decodeInto(t, rec, &resp)
	if resp.Count != 1 || resp.Cameras[0].ID != "cam-42" {
		t.Errorf("q=AUTOROUTE matched %+v", resp.Cameras)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/cameras?q=nomatch-xyz", nil)
	decodeInto(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("q=nomatch-xyz matched %d cameras", resp.Count)
	}
}

func TestListCameras_SecondReadHitsCache(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	first := ts.do(t, http.MethodGet, "/api/v1/cameras?region=Outaouais", nil)
	second := ts.do(t, http.MethodGet, "/api/v1/cameras?region=Outaouais", nil)

	if first.Body.String() != second.Body.String() {
		t.Error("cached response differs from the rendered one")
	}
	if hits := ts.cache.Stats().Hits; hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
}

func TestGetCamera_AppliesSalt(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/cameras/cam-42?salt=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp cameraResponse
	decodeInto(t, rec, &resp)
	if resp.Salt != 3 {
		t.Errorf("salt = %d", resp.Salt)
	}
	if resp.Media.SnapshotPrimary != "/cam-images/Cameras/42.jpg?_rs=3" {
		t.Errorf("snapshot primary = %q", resp.Media.SnapshotPrimary)
	}
	if resp.Media.SnapshotAlt != "/cam-images/Cameras/42.png?_rs=3" {
		t.Errorf("snapshot alt = %q", resp.Media.SnapshotAlt)
	}
	if !strings.HasPrefix(resp.Media.Live, "/cam-live/Cameras/42.m3u8") {
		t.Errorf("live = %q", resp.Media.Live)
	}
	if resp.Camera.ID != "cam-42" {
		t.Errorf("camera = %q", resp.Camera.ID)
	}
}

func TestGetCamera_Unknown(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/cameras/cam-missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetCamera_NotPlayable(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/cameras/cam-static", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestGetCamera_BadSalt(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	for _, salt := range []string{"abc", "-1", "1.5"} {
		rec := ts.do(t, http.MethodGet, "/api/v1/cameras/cam-42?salt="+salt, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("salt=%s: status = %d, want 400", salt, rec.Code)
		}
	}
}

func TestListRegions(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/regions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp regionsResponse
	decodeInto(t, rec, &resp)
	if resp.Count != 2 {
		t.Fatalf("count = %d", resp.Count)
	}
	if resp.Regions[0] != "Montréal" || resp.Regions[1] != "Outaouais" {
		t.Errorf("regions = %v", resp.Regions)
	}
}

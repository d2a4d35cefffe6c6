// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package feed fetches and normalizes the upstream camera catalog. The
// primary source is a GeoJSON feature collection; a delimited-text endpoint
// serves as fallback when the primary fails in any way, including a malformed
// 200 response.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/roadcam/internal/catalog"
	rclog "github.com/ManuGH/roadcam/internal/log"
	"github.com/ManuGH/roadcam/internal/platform/httpx"
)

// ErrUnavailable is the single user-facing failure kind: both configured
// endpoints failed. Callers retry by triggering another load, never inside
// one.
var ErrUnavailable = errors.New("feed unavailable")

// Source identifies which endpoint produced a load result.
type Source string

const (
	SourceGeoJSON   Source = "geojson"
	SourceDelimited Source = "delimited"
)

// Limiter throttles upstream requests. The zero client runs unthrottled.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Options configure the feed client.
type Options struct {
	BaseURL       string
	GeoJSONPath   string
	DelimitedPath string
	Timeout       time.Duration
	Client        *http.Client // optional, hardened default otherwise
	Limiter       Limiter      // optional
}

// Client fetches the catalog.
type Client struct {
	base          string
	geojsonPath   string
	delimitedPath string
	http          *http.Client
	limiter       Limiter
}

// New creates a feed client.
func New(opts Options) *Client {
	httpClient := opts.Client
	if httpClient == nil {
		httpClient = httpx.NewClient(opts.Timeout)
	}
	return &Client{
		base:          strings.TrimRight(opts.BaseURL, "/"),
		geojsonPath:   opts.GeoJSONPath,
		delimitedPath: opts.DelimitedPath,
		http:          httpClient,
		limiter:       opts.Limiter,
	}
}

// Result is one normalized load: sanitized records plus the region
// vocabulary, tagged with the source that produced them.
type Result struct {
	Cameras []catalog.Camera
	Regions []string
	Source  Source
}

// Load runs the full sequence: primary GeoJSON, then the delimited fallback,
// then ErrUnavailable. It is idempotent and has no side effects beyond the
// network calls.
func (c *Client) Load(ctx context.Context) (*Result, error) {
	logger := rclog.WithComponentFromContext(ctx, "feed")

	cams, primaryErr := c.loadGeoJSON(ctx)
	if primaryErr == nil {
		sane, regions := catalog.Sanitize(cams)
		logger.Info().
			Str(rclog.FieldEvent, "feed.loaded").
			Str(rclog.FieldFeedSource, string(SourceGeoJSON)).
			Int(rclog.FieldCameras, len(sane)).
			Msg("catalog loaded")
		return &Result{Cameras: sane, Regions: regions, Source: SourceGeoJSON}, nil
	}

	logger.Warn().
		Err(primaryErr).
		Str(rclog.FieldEvent, "feed.fallback").
		Msg("primary feed failed, trying delimited fallback")

	cams, fallbackErr := c.loadDelimited(ctx)
	if fallbackErr == nil {
		sane, regions := catalog.Sanitize(cams)
		logger.Info().
			Str(rclog.FieldEvent, "feed.loaded").
			Str(rclog.FieldFeedSource, string(SourceDelimited)).
			Int(rclog.FieldCameras, len(sane)).
			Msg("catalog loaded")
		return &Result{Cameras: sane, Regions: regions, Source: SourceDelimited}, nil
	}

	return nil, fmt.Errorf("%w: geojson: %v; delimited: %v", ErrUnavailable, primaryErr, fallbackErr)
}

func (c *Client) loadGeoJSON(ctx context.Context) ([]catalog.Camera, error) {
	res, err := c.get(ctx, c.geojsonPath)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return ParseGeoJSON(res.Body)
}

func (c *Client) loadDelimited(ctx context.Context) ([]catalog.Camera, error) {
	res, err := c.get(ctx, c.delimitedPath)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return ParseDelimited(res.Body, res.Header.Get("Content-Type"))
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("upstream limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for %s", res.StatusCode, path)
	}
	return res, nil
}

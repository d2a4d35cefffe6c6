// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks the resolved configuration for operator mistakes that would
// otherwise surface as runtime failures far from their cause.
func Validate(cfg AppConfig) error {
	if err := validateListen(cfg.Listen); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("dataDir must not be empty")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("logLevel %q: %w", cfg.LogLevel, err)
	}

	if err := validateBaseURL("feed.baseUrl", cfg.Feed.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("images.baseUrl", cfg.Images.BaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("live.baseUrl", cfg.Live.BaseURL); err != nil {
		return err
	}
	if !strings.HasPrefix(cfg.Feed.GeoJSONPath, "/") {
		return fmt.Errorf("feed.geojsonPath must start with /")
	}
	if !strings.HasPrefix(cfg.Feed.DelimitedPath, "/") {
		return fmt.Errorf("feed.delimitedPath must start with /")
	}
	if cfg.Feed.Timeout <= 0 {
		return fmt.Errorf("feed.timeout must be positive")
	}

	if cfg.Refresh.Interval < 0 {
		return fmt.Errorf("refresh.interval must not be negative")
	}
	if cfg.Refresh.FreshnessWindow <= 0 {
		return fmt.Errorf("refresh.freshnessWindow must be positive")
	}

	if cfg.Playback.SnapshotInterval < MinSnapshotInterval {
		return fmt.Errorf("playback.snapshotInterval below minimum %s", MinSnapshotInterval)
	}
	if cfg.Playback.LiveEdgeInterval <= 0 {
		return fmt.Errorf("playback.liveEdgeInterval must be positive")
	}
	if cfg.Playback.Dwell <= 0 {
		return fmt.Errorf("playback.dwell must be positive")
	}

	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redisAddr required for redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q: must be memory or redis", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}

	if cfg.API.RateLimitRPS < 0 || cfg.API.RateLimitBurst < 0 {
		return fmt.Errorf("api rate limit values must not be negative")
	}
	if cfg.Upstream.RateLimitRPS <= 0 {
		return fmt.Errorf("upstream.rateLimitRps must be positive")
	}
	if cfg.Upstream.RateLimitBurst < 1 {
		return fmt.Errorf("upstream.rateLimitBurst must be at least 1")
	}

	if cfg.Breaker.Failures < 1 {
		return fmt.Errorf("breaker.failures must be at least 1")
	}
	if cfg.Breaker.ResetTimeout <= 0 {
		return fmt.Errorf("breaker.resetTimeout must be positive")
	}

	if cfg.OTel.Enabled {
		if cfg.OTel.Endpoint == "" {
			return fmt.Errorf("otel.endpoint required when otel is enabled")
		}
		if cfg.OTel.Exporter != "grpc" && cfg.OTel.Exporter != "http" {
			return fmt.Errorf("otel.exporter %q: must be grpc or http", cfg.OTel.Exporter)
		}
		if cfg.OTel.SampleRate < 0 || cfg.OTel.SampleRate > 1 {
			return fmt.Errorf("otel.sampleRate must be within [0,1]")
		}
	}

	return nil
}

func validateListen(addr string) error {
	if addr == "" {
		return fmt.Errorf("must not be empty")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if port == "" {
		return fmt.Errorf("port missing in %q", addr)
	}
	if host != "" {
		if ip := net.ParseIP(host); ip == nil && strings.ContainsAny(host, " /") {
			return fmt.Errorf("invalid host %q", host)
		}
	}
	return nil
}

func validateBaseURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: scheme must be http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: host missing", field)
	}
	return nil
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// AppConfig is the resolved runtime configuration, after defaults, file and
// environment have been merged.
type AppConfig struct {
	Version  string
	Listen   string
	DataDir  string
	LogLevel string
	APIToken string

	Feed     FeedConfig
	Images   ImagesConfig
	Live     LiveConfig
	Refresh  RefreshConfig
	Playback PlaybackConfig
	Session  SessionConfig
	Cache    CacheConfig
	API      APIConfig
	Upstream UpstreamConfig
	Breaker  BreakerConfig
	OTel     OTelConfig
	Proxy    ProxyConfig
}

// FeedConfig addresses the upstream camera catalog.
type FeedConfig struct {
	BaseURL       string
	GeoJSONPath   string
	DelimitedPath string
	Timeout       time.Duration
}

// ImagesConfig addresses the upstream snapshot host.
type ImagesConfig struct {
	BaseURL string
}

// LiveConfig addresses the upstream stream host.
type LiveConfig struct {
	BaseURL string
}

// RefreshConfig controls the periodic catalog reload.
type RefreshConfig struct {
	Interval        time.Duration // 0 disables the periodic trigger
	FreshnessWindow time.Duration
}

// PlaybackConfig carries the default timer settings for new sessions.
type PlaybackConfig struct {
	SnapshotInterval time.Duration
	LiveEdgeInterval time.Duration
	Dwell            time.Duration
	LiveEnabled      bool
}

// SessionConfig controls server-side session housekeeping.
type SessionConfig struct {
	TTL time.Duration
}

// CacheConfig selects and tunes the filter-result cache.
type CacheConfig struct {
	Backend       string // "memory" or "redis"
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// APIConfig tunes the HTTP surface.
type APIConfig struct {
	RateLimitRPS   int
	RateLimitBurst int
}

// UpstreamConfig throttles requests against the agency hosts.
type UpstreamConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// BreakerConfig tunes the feed-fetch circuit breaker.
type BreakerConfig struct {
	Failures     int
	ResetTimeout time.Duration
}

// OTelConfig enables and addresses the trace exporter.
type OTelConfig struct {
	Enabled    bool
	Endpoint   string
	Exporter   string // "grpc" or "http"
	SampleRate float64
}

// ProxyConfig constrains where the same-origin proxy may forward.
type ProxyConfig struct {
	AllowHosts []string // empty: derived from the three base URLs
}

// MinSnapshotInterval is the floor for the snapshot refresh timer. Anything
// lower would hammer the upstream image host for no visible gain.
const MinSnapshotInterval = 500 * time.Millisecond

// FileConfig is the YAML configuration structure. Pointer fields distinguish
// "not set" from an explicit zero value.
type FileConfig struct {
	Listen   string `yaml:"listen,omitempty"`
	DataDir  string `yaml:"dataDir,omitempty"`
	LogLevel string `yaml:"logLevel,omitempty"`
	APIToken string `yaml:"apiToken,omitempty"`

	Feed     FeedFileConfig     `yaml:"feed,omitempty"`
	Images   HostFileConfig     `yaml:"images,omitempty"`
	Live     HostFileConfig     `yaml:"live,omitempty"`
	Refresh  RefreshFileConfig  `yaml:"refresh,omitempty"`
	Playback PlaybackFileConfig `yaml:"playback,omitempty"`
	Session  SessionFileConfig  `yaml:"session,omitempty"`
	Cache    CacheFileConfig    `yaml:"cache,omitempty"`
	API      APIFileConfig      `yaml:"api,omitempty"`
	Upstream UpstreamFileConfig `yaml:"upstream,omitempty"`
	Breaker  BreakerFileConfig  `yaml:"breaker,omitempty"`
	OTel     OTelFileConfig     `yaml:"otel,omitempty"`
	Proxy    ProxyFileConfig    `yaml:"proxy,omitempty"`
}

// FeedFileConfig mirrors FeedConfig for YAML. Durations are strings ("15s").
type FeedFileConfig struct {
	BaseURL       string `yaml:"baseUrl,omitempty"`
	GeoJSONPath   string `yaml:"geojsonPath,omitempty"`
	DelimitedPath string `yaml:"delimitedPath,omitempty"`
	Timeout       string `yaml:"timeout,omitempty"`
}

// HostFileConfig is a single upstream base URL.
type HostFileConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty"`
}

type RefreshFileConfig struct {
	Interval        string `yaml:"interval,omitempty"`
	FreshnessWindow string `yaml:"freshnessWindow,omitempty"`
}

type PlaybackFileConfig struct {
	SnapshotInterval string `yaml:"snapshotInterval,omitempty"`
	LiveEdgeInterval string `yaml:"liveEdgeInterval,omitempty"`
	Dwell            string `yaml:"dwell,omitempty"`
	LiveEnabled      *bool  `yaml:"liveEnabled,omitempty"`
}

type SessionFileConfig struct {
	TTL string `yaml:"ttl,omitempty"`
}

type CacheFileConfig struct {
	Backend       string `yaml:"backend,omitempty"`
	TTL           string `yaml:"ttl,omitempty"`
	RedisAddr     string `yaml:"redisAddr,omitempty"`
	RedisPassword string `yaml:"redisPassword,omitempty"`
	RedisDB       *int   `yaml:"redisDb,omitempty"`
}

type APIFileConfig struct {
	RateLimitRPS   *int `yaml:"rateLimitRps,omitempty"`
	RateLimitBurst *int `yaml:"rateLimitBurst,omitempty"`
}

type UpstreamFileConfig struct {
	RateLimitRPS   *float64 `yaml:"rateLimitRps,omitempty"`
	RateLimitBurst *int     `yaml:"rateLimitBurst,omitempty"`
}

type BreakerFileConfig struct {
	Failures     *int   `yaml:"failures,omitempty"`
	ResetTimeout string `yaml:"resetTimeout,omitempty"`
}

type OTelFileConfig struct {
	Enabled    *bool    `yaml:"enabled,omitempty"`
	Endpoint   string   `yaml:"endpoint,omitempty"`
	Exporter   string   `yaml:"exporter,omitempty"`
	SampleRate *float64 `yaml:"sampleRate,omitempty"`
}

type ProxyFileConfig struct {
	AllowHosts []string `yaml:"allowHosts,omitempty"`
}

// Defaults returns the built-in configuration before file and ENV merging.
func Defaults() AppConfig {
	return AppConfig{
		Listen:   ":8080",
		DataDir:  "/data",
		LogLevel: "info",
		Feed: FeedConfig{
			GeoJSONPath:   "/Diffusion/Cameras.geojson",
			DelimitedPath: "/Diffusion/Cameras.csv",
			Timeout:       15 * time.Second,
		},
		Refresh: RefreshConfig{
			Interval:        0,
			FreshnessWindow: 24 * time.Hour,
		},
		Playback: PlaybackConfig{
			SnapshotInterval: 2 * time.Second,
			LiveEdgeInterval: 15 * time.Second,
			Dwell:            10 * time.Second,
			LiveEnabled:      false,
		},
		Session: SessionConfig{TTL: 5 * time.Minute},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     30 * time.Second,
		},
		API: APIConfig{
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Upstream: UpstreamConfig{
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Breaker: BreakerConfig{
			Failures:     5,
			ResetTimeout: 30 * time.Second,
		},
		OTel: OTelConfig{
			Exporter:   "http",
			SampleRate: 0.1,
		},
	}
}

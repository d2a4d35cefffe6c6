// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/roadcam/internal/log"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a new configuration loader.
func NewLoader(configPath, version string) *Loader {
	return &Loader{configPath: configPath, version: version}
}

// Load resolves the configuration in strict order: defaults, then the YAML
// file (strict parse), then environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	mergeEnvConfig(&cfg)

	// DataDir must be absolute so artifact paths survive daemon cwd changes.
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}

	cfg.Version = l.version

	if cfg.Playback.SnapshotInterval < MinSnapshotInterval {
		logger := log.WithComponent("config")
		logger.Warn().
			Dur("requested", cfg.Playback.SnapshotInterval).
			Dur("minimum", MinSnapshotInterval).
			Msg("snapshot interval below minimum, clamping")
		cfg.Playback.SnapshotInterval = MinSnapshotInterval
	}

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) {
	setString(&cfg.Listen, f.Listen)
	setString(&cfg.DataDir, f.DataDir)
	setString(&cfg.LogLevel, f.LogLevel)
	setString(&cfg.APIToken, f.APIToken)

	setString(&cfg.Feed.BaseURL, f.Feed.BaseURL)
	setString(&cfg.Feed.GeoJSONPath, f.Feed.GeoJSONPath)
	setString(&cfg.Feed.DelimitedPath, f.Feed.DelimitedPath)
	setDuration(&cfg.Feed.Timeout, f.Feed.Timeout)

	setString(&cfg.Images.BaseURL, f.Images.BaseURL)
	setString(&cfg.Live.BaseURL, f.Live.BaseURL)

	setDuration(&cfg.Refresh.Interval, f.Refresh.Interval)
	setDuration(&cfg.Refresh.FreshnessWindow, f.Refresh.FreshnessWindow)

	setDuration(&cfg.Playback.SnapshotInterval, f.Playback.SnapshotInterval)
	setDuration(&cfg.Playback.LiveEdgeInterval, f.Playback.LiveEdgeInterval)
	setDuration(&cfg.Playback.Dwell, f.Playback.Dwell)
	if f.Playback.LiveEnabled != nil {
		cfg.Playback.LiveEnabled = *f.Playback.LiveEnabled
	}

	setDuration(&cfg.Session.TTL, f.Session.TTL)

	setString(&cfg.Cache.Backend, f.Cache.Backend)
	setDuration(&cfg.Cache.TTL, f.Cache.TTL)
	setString(&cfg.Cache.RedisAddr, f.Cache.RedisAddr)
	setString(&cfg.Cache.RedisPassword, f.Cache.RedisPassword)
	if f.Cache.RedisDB != nil {
		cfg.Cache.RedisDB = *f.Cache.RedisDB
	}

	if f.API.RateLimitRPS != nil {
		cfg.API.RateLimitRPS = *f.API.RateLimitRPS
	}
	if f.API.RateLimitBurst != nil {
		cfg.API.RateLimitBurst = *f.API.RateLimitBurst
	}

	if f.Upstream.RateLimitRPS != nil {
		cfg.Upstream.RateLimitRPS = *f.Upstream.RateLimitRPS
	}
	if f.Upstream.RateLimitBurst != nil {
		cfg.Upstream.RateLimitBurst = *f.Upstream.RateLimitBurst
	}

	if f.Breaker.Failures != nil {
		cfg.Breaker.Failures = *f.Breaker.Failures
	}
	setDuration(&cfg.Breaker.ResetTimeout, f.Breaker.ResetTimeout)

	if f.OTel.Enabled != nil {
		cfg.OTel.Enabled = *f.OTel.Enabled
	}
	setString(&cfg.OTel.Endpoint, f.OTel.Endpoint)
	setString(&cfg.OTel.Exporter, f.OTel.Exporter)
	if f.OTel.SampleRate != nil {
		cfg.OTel.SampleRate = *f.OTel.SampleRate
	}

	if len(f.Proxy.AllowHosts) > 0 {
		cfg.Proxy.AllowHosts = append([]string(nil), f.Proxy.AllowHosts...)
	}
}

func mergeEnvConfig(cfg *AppConfig) {
	cfg.Listen = ParseString("ROADCAM_LISTEN", cfg.Listen)
	cfg.DataDir = ParseString("ROADCAM_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = ParseString("ROADCAM_LOG_LEVEL", cfg.LogLevel)
	cfg.APIToken = ParseString("ROADCAM_API_TOKEN", cfg.APIToken)

	cfg.Feed.BaseURL = ParseString("ROADCAM_FEED_BASE_URL", cfg.Feed.BaseURL)
	cfg.Feed.GeoJSONPath = ParseString("ROADCAM_FEED_GEOJSON_PATH", cfg.Feed.GeoJSONPath)
	cfg.Feed.DelimitedPath = ParseString("ROADCAM_FEED_DELIMITED_PATH", cfg.Feed.DelimitedPath)
	cfg.Feed.Timeout = ParseDuration("ROADCAM_FEED_TIMEOUT", cfg.Feed.Timeout)

	cfg.Images.BaseURL = ParseString("ROADCAM_IMAGES_BASE_URL", cfg.Images.BaseURL)
	cfg.Live.BaseURL = ParseString("ROADCAM_LIVE_BASE_URL", cfg.Live.BaseURL)

	cfg.Refresh.Interval = ParseDuration("ROADCAM_REFRESH_INTERVAL", cfg.Refresh.Interval)
	cfg.Refresh.FreshnessWindow = ParseDuration("ROADCAM_REFRESH_FRESHNESS_WINDOW", cfg.Refresh.FreshnessWindow)

	cfg.Playback.SnapshotInterval = ParseDuration("ROADCAM_SNAPSHOT_INTERVAL", cfg.Playback.SnapshotInterval)
	cfg.Playback.LiveEdgeInterval = ParseDuration("ROADCAM_LIVE_EDGE_INTERVAL", cfg.Playback.LiveEdgeInterval)
	cfg.Playback.Dwell = ParseDuration("ROADCAM_DWELL", cfg.Playback.Dwell)
	cfg.Playback.LiveEnabled = ParseBool("ROADCAM_LIVE_ENABLED", cfg.Playback.LiveEnabled)

	cfg.Session.TTL = ParseDuration("ROADCAM_SESSION_TTL", cfg.Session.TTL)

	cfg.Cache.Backend = ParseString("ROADCAM_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = ParseDuration("ROADCAM_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = ParseString("ROADCAM_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = ParseString("ROADCAM_REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = ParseInt("ROADCAM_REDIS_DB", cfg.Cache.RedisDB)

	cfg.API.RateLimitRPS = ParseInt("ROADCAM_API_RATE_LIMIT", cfg.API.RateLimitRPS)
	cfg.API.RateLimitBurst = ParseInt("ROADCAM_API_RATE_BURST", cfg.API.RateLimitBurst)

	cfg.Upstream.RateLimitRPS = ParseFloat("ROADCAM_UPSTREAM_RATE_LIMIT", cfg.Upstream.RateLimitRPS)
	cfg.Upstream.RateLimitBurst = ParseInt("ROADCAM_UPSTREAM_RATE_BURST", cfg.Upstream.RateLimitBurst)

	cfg.Breaker.Failures = ParseInt("ROADCAM_BREAKER_FAILURES", cfg.Breaker.Failures)
	cfg.Breaker.ResetTimeout = ParseDuration("ROADCAM_BREAKER_RESET_TIMEOUT", cfg.Breaker.ResetTimeout)

	cfg.OTel.Enabled = ParseBool("ROADCAM_OTEL_ENABLED", cfg.OTel.Enabled)
	cfg.OTel.Endpoint = ParseString("ROADCAM_OTEL_ENDPOINT", cfg.OTel.Endpoint)
	cfg.OTel.Exporter = ParseString("ROADCAM_OTEL_EXPORTER", cfg.OTel.Exporter)
	cfg.OTel.SampleRate = ParseFloat("ROADCAM_OTEL_SAMPLE_RATE", cfg.OTel.SampleRate)

	cfg.Proxy.AllowHosts = ParseStringSlice("ROADCAM_PROXY_ALLOW_HOSTS", cfg.Proxy.AllowHosts)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("value", v).
			Msg("invalid duration in config file, keeping previous value")
		return
	}
	*dst = d
}

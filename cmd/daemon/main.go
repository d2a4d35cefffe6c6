// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/roadcam/internal/api"
	"github.com/ManuGH/roadcam/internal/cache"
	"github.com/ManuGH/roadcam/internal/catalog"
	"github.com/ManuGH/roadcam/internal/config"
	"github.com/ManuGH/roadcam/internal/daemon"
	"github.com/ManuGH/roadcam/internal/feed"
	"github.com/ManuGH/roadcam/internal/health"
	"github.com/ManuGH/roadcam/internal/jobs"
	rclog "github.com/ManuGH/roadcam/internal/log"
	"github.com/ManuGH/roadcam/internal/media"
	platformnet "github.com/ManuGH/roadcam/internal/platform/net"
	"github.com/ManuGH/roadcam/internal/playback"
	"github.com/ManuGH/roadcam/internal/proxy"
	"github.com/ManuGH/roadcam/internal/ratelimit"
	"github.com/ManuGH/roadcam/internal/resilience"
	"github.com/ManuGH/roadcam/internal/telemetry"
	"github.com/ManuGH/roadcam/internal/version"
)

// Same-origin prefixes the browser sees. The proxy handlers and the media
// builder must agree on these.
const (
	feedPrefix   = "/feed"
	imagesPrefix = "/cam-images"
	livePrefix   = "/cam-live"
)

// maskURL removes user info from a URL string for safe logging.
func maskURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	return parsedURL.String()
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(runHealthcheckCLI(os.Args[2:]))
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	rclog.Configure(rclog.Config{
		Level:   "info",
		Service: "roadcam",
	})
	logger := rclog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config path: explicit via --config, otherwise auto-load
	// ${ROADCAM_DATA_DIR}/config.yaml if it exists.
	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		dataDir := strings.TrimSpace(config.ParseString("ROADCAM_DATA_DIR", "/data"))
		autoPath := filepath.Join(dataDir, "config.yaml")
		if _, err := os.Stat(autoPath); err == nil {
			effectiveConfigPath = autoPath
		}
	}

	loader := config.NewLoader(effectiveConfigPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	switch {
	case explicitConfigPath != "":
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", explicitConfigPath).
			Msg("loaded configuration from file")
	case effectiveConfigPath != "":
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file(auto)").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	default:
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("Startup checks failed. Please verify configuration and permissions.")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.Listen).
		Msg("starting roadcam")

	logger.Info().Msgf("→ Feed: %s", maskURL(cfg.Feed.BaseURL))
	logger.Info().Msgf("→ Images: %s", maskURL(cfg.Images.BaseURL))
	logger.Info().Msgf("→ Live: %s", maskURL(cfg.Live.BaseURL))
	if cfg.Refresh.Interval > 0 {
		logger.Info().Msgf("→ Refresh: every %s", cfg.Refresh.Interval)
	} else {
		logger.Info().Msg("→ Refresh: manual only (POST /api/v1/refresh)")
	}
	logger.Info().Msgf("→ Cache: %s (ttl %s)", cfg.Cache.Backend, cfg.Cache.TTL)
	if cfg.APIToken != "" {
		logger.Info().Msg("→ API token: configured")
	} else {
		logger.Warn().
			Str("security", "weak").
			Msg("→ API token: NOT configured, refresh endpoint is open. Set ROADCAM_API_TOKEN.")
	}
	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)

	telemetryProvider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "roadcam",
		ServiceVersion: version.Version,
		Environment:    config.ParseString("ROADCAM_ENVIRONMENT", "production"),
		ExporterType:   cfg.OTel.Exporter,
		Endpoint:       cfg.OTel.Endpoint,
		SamplingRate:   cfg.OTel.SampleRate,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry initialization failed, continuing without tracing")
		telemetryProvider = nil
	}

	// One outbound budget shared by the feed fetcher and the proxy prefixes.
	upstream := ratelimit.NewUpstream(cfg.Upstream.RateLimitRPS, cfg.Upstream.RateLimitBurst)

	store := catalog.NewStore()
	feedClient := feed.New(feed.Options{
		BaseURL:       cfg.Feed.BaseURL,
		GeoJSONPath:   cfg.Feed.GeoJSONPath,
		DelimitedPath: cfg.Feed.DelimitedPath,
		Timeout:       cfg.Feed.Timeout,
		Limiter:       upstream.For("feed"),
	})
	breaker := resilience.NewCircuitBreaker("feed", cfg.Breaker.Failures, cfg.Breaker.ResetTimeout)
	runner := jobs.NewRunner(&jobs.GuardedLoader{Breaker: breaker, Loader: feedClient}, store, cfg.DataDir)

	restored, err := runner.WarmStart(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("warm start from persisted catalog failed")
	} else if restored {
		logger.Info().Msg("serving persisted catalog until the first live load")
	}

	if config.ParseBool("ROADCAM_INITIAL_REFRESH", true) {
		logger.Info().Msg("performing initial catalog refresh")
		if _, err := runner.Refresh(ctx); err != nil {
			logger.Error().Err(err).Msg("initial catalog refresh failed")
			if !restored {
				logger.Warn().Msg("→ Catalog is empty until a refresh succeeds (POST /api/v1/refresh)")
			}
		}
	} else {
		logger.Warn().Msg("initial refresh disabled (ROADCAM_INITIAL_REFRESH=false)")
	}

	builder := media.Builder{ImagePrefix: imagesPrefix, LivePrefix: livePrefix}
	sessions := playback.NewManager(playback.Config{
		Builder:          builder,
		TTL:              cfg.Session.TTL,
		Dwell:            cfg.Playback.Dwell,
		SnapshotInterval: cfg.Playback.SnapshotInterval,
		LiveEdgeInterval: cfg.Playback.LiveEdgeInterval,
		LiveEnabled:      cfg.Playback.LiveEnabled,
	})

	responseCache, redisPing := buildCache(logger, cfg)

	allowlist := platformnet.NewAllowlist()
	for _, base := range []string{cfg.Feed.BaseURL, cfg.Images.BaseURL, cfg.Live.BaseURL} {
		if err := allowlist.AddBase(base); err != nil {
			logger.Fatal().Err(err).Str("base", maskURL(base)).Msg("invalid upstream base URL")
		}
	}
	for _, host := range cfg.Proxy.AllowHosts {
		if err := allowlist.AddHost(host); err != nil {
			logger.Fatal().Err(err).Str("host", host).Msg("invalid proxy allow host")
		}
	}

	proxies := make([]*proxy.Handler, 0, 3)
	for _, pc := range []struct {
		prefix, target, component string
	}{
		{feedPrefix, cfg.Feed.BaseURL, "proxy-feed"},
		{imagesPrefix, cfg.Images.BaseURL, "proxy-images"},
		{livePrefix, cfg.Live.BaseURL, "proxy-live"},
	} {
		h, err := proxy.New(pc.prefix, pc.target, proxy.Options{
			Allowlist: allowlist,
			Limiter:   upstream.For(pc.component),
		})
		if err != nil {
			logger.Fatal().Err(err).Str("prefix", pc.prefix).Msg("failed to create proxy handler")
		}
		proxies = append(proxies, h)
	}

	healthMgr := health.NewManager(version.Version)
	healthMgr.RegisterChecker(health.NewCatalogChecker(cfg.Refresh.FreshnessWindow, func() health.CatalogState {
		snap := store.Current()
		status := runner.Status()
		return health.CatalogState{
			LoadedAt:  snap.LoadedAt,
			Restored:  snap.Restored,
			LastError: status.Error,
		}
	}))
	if redisPing != nil {
		healthMgr.RegisterChecker(health.NewPingChecker("redis", redisPing))
	}

	apiServer := api.New(api.Deps{
		Config:   cfg,
		Store:    store,
		Runner:   runner,
		Sessions: sessions,
		Cache:    responseCache,
		Builder:  builder,
		Health:   healthMgr,
		Proxies:  proxies,
	})

	holder := config.NewHolder(cfg, config.NewLoader(effectiveConfigPath, version.Version), effectiveConfigPath)

	mgr, err := daemon.NewManager(daemon.DefaultServerConfig(cfg.Listen), daemon.Deps{
		Logger:  logger,
		Handler: apiServer.Handler(),
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.creation.failed").
			Msg("failed to create daemon manager")
	}

	// LIFO: sessions close first so their timers stop before the cache and
	// the trace exporter go away.
	if telemetryProvider != nil {
		mgr.RegisterShutdownHook("telemetry", telemetryProvider.Shutdown)
	}
	mgr.RegisterShutdownHook("cache", func(context.Context) error {
		return responseCache.Close()
	})
	mgr.RegisterShutdownHook("sessions", func(context.Context) error {
		sessions.Close()
		return nil
	})

	app := daemon.NewApp(logger, mgr, holder, runner, sessions, cfg.Refresh.Interval)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
	}

	logger.Info().Msg("server exiting")
}

// buildCache constructs the response cache for the configured backend. A
// Redis connection failure falls back to the in-process cache so the service
// still starts; the returned ping keeps reporting the failure through the
// readiness probe.
func buildCache(logger zerolog.Logger, cfg config.AppConfig) (cache.Cache, func(context.Context) error) {
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}, rclog.WithComponent("cache"))
		if err != nil {
			logger.Error().Err(err).Msg("redis unavailable, falling back to in-memory cache")
			return cache.NewMemoryCache(time.Minute), func(context.Context) error {
				return fmt.Errorf("redis disabled after connect failure: %w", err)
			}
		}
		return rc, rc.HealthCheck
	default:
		return cache.NewMemoryCache(time.Minute), nil
	}
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api is the JSON HTTP surface: catalog queries, slideshow session
// control, the refresh trigger, status, and the health and metrics endpoints.
// The same-origin proxy prefixes mount on the same router so every URL the
// service hands out resolves through one listener.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/roadcam/internal/api/middleware"
	"github.com/ManuGH/roadcam/internal/cache"
	"github.com/ManuGH/roadcam/internal/catalog"
	"github.com/ManuGH/roadcam/internal/config"
	"github.com/ManuGH/roadcam/internal/health"
	"github.com/ManuGH/roadcam/internal/jobs"
	rclog "github.com/ManuGH/roadcam/internal/log"
	"github.com/ManuGH/roadcam/internal/media"
	"github.com/ManuGH/roadcam/internal/playback"
	"github.com/ManuGH/roadcam/internal/proxy"
)

// Deps holds everything the API server serves from. Health and Proxies are
// optional; the rest are required.
type Deps struct {
	Config   config.AppConfig
	Store    *catalog.Store
	Runner   *jobs.Runner
	Sessions *playback.Manager
	Cache    cache.Cache
	Builder  media.Builder
	Health   *health.Manager
	Proxies  []*proxy.Handler
}

// Server carries the handler dependencies.
type Server struct {
	cfg      config.AppConfig
	store    *catalog.Store
	runner   *jobs.Runner
	sessions *playback.Manager
	cache    cache.Cache
	builder  media.Builder
	health   *health.Manager
	proxies  []*proxy.Handler
	logger   zerolog.Logger
}

// New builds the server around its dependencies.
func New(d Deps) *Server {
	return &Server{
		cfg:      d.Config,
		store:    d.Store,
		runner:   d.Runner,
		sessions: d.Sessions,
		cache:    d.Cache,
		builder:  d.Builder,
		health:   d.Health,
		proxies:  d.Proxies,
		logger:   rclog.WithComponent("api"),
	}
}

// Handler assembles the full routing tree: the canonical middleware stack,
// the versioned API, the proxy prefixes, and the infra endpoints.
func (s *Server) Handler() http.Handler {
	tracing := ""
	if s.cfg.OTel.Enabled {
		tracing = "roadcam"
	}
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        tracing,
		EnableLogging:         true,
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIRateLimit(s.cfg.API.RateLimitRPS, s.cfg.API.RateLimitBurst))

		r.Get("/cameras", s.handleListCameras)
		r.Get("/cameras/{id}", s.handleGetCamera)
		r.Get("/regions", s.handleListRegions)
		r.Get("/status", s.handleStatus)
		r.With(s.requireToken).Post("/refresh", s.handleRefresh)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/next", s.handleSessionNext)
				r.Post("/previous", s.handleSessionPrevious)
				r.Post("/pause", s.handleSessionPause)
				r.Post("/resume", s.handleSessionResume)
				r.Post("/select", s.handleSessionSelect)
				r.Post("/media-result", s.handleMediaResult)
			})
		})
	})

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}
	r.Handle("/metrics", promhttp.Handler())

	for _, p := range s.proxies {
		r.Mount(p.Prefix(), p)
	}

	return r
}

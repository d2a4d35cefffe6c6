// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package proxy forwards feed, snapshot and stream requests to the agency
// hosts under same-origin prefixes. The browser only ever talks to this
// service: no agency host in page markup, no client IP on the wire to the
// agency, no agency cookies into our origin.
package proxy

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	rclog "github.com/ManuGH/roadcam/internal/log"
	"github.com/ManuGH/roadcam/internal/metrics"
	"github.com/ManuGH/roadcam/internal/platform/httpx"
	platformnet "github.com/ManuGH/roadcam/internal/platform/net"
)

// Limiter gates outbound forwards. *ratelimit.View satisfies it.
type Limiter interface {
	Allow() bool
}

// Options configure a Handler beyond its prefix and target.
type Options struct {
	// Allowlist is consulted per request on the rewritten URL. Required.
	Allowlist *platformnet.Allowlist

	// Limiter shares the upstream budget. Optional.
	Limiter Limiter

	// Transport overrides the hardened default. The default carries no
	// overall deadline; live playlists stream longer than any sane timeout.
	Transport http.RoundTripper

	// FlushInterval forces periodic flushing so stream segments reach the
	// player promptly. Defaults to 100ms.
	FlushInterval time.Duration
}

// Handler proxies one prefix onto one upstream base URL.
type Handler struct {
	prefix  string
	target  *url.URL
	allow   *platformnet.Allowlist
	limiter Limiter
	proxy   *httputil.ReverseProxy
	logger  zerolog.Logger
}

// New creates a Handler forwarding prefix onto target. The prefix is
// stripped from the request path; the remainder is joined onto the target's
// path with the query passed through verbatim, cache-bust salt included.
func New(prefix, target string, opts Options) (*Handler, error) {
	targetURL, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		prefix:  strings.TrimRight(prefix, "/"),
		target:  targetURL,
		allow:   opts.Allowlist,
		limiter: opts.Limiter,
		logger: rclog.Derive(func(c *zerolog.Context) {
			*c = c.Str(rclog.FieldComponent, "proxy").Str("prefix", prefix)
		}),
	}

	transport := opts.Transport
	if transport == nil {
		transport = httpx.NewTransport()
	}
	flush := opts.FlushInterval
	if flush == 0 {
		flush = 100 * time.Millisecond
	}

	h.proxy = &httputil.ReverseProxy{
		Director:       h.direct,
		Transport:      transport,
		FlushInterval:  flush,
		ErrorLog:       nil,
		ModifyResponse: h.modifyResponse,
		ErrorHandler:   h.handleError,
	}
	return h, nil
}

// Prefix returns the mounted path prefix.
func (h *Handler) Prefix() string {
	return h.prefix
}

func (h *Handler) direct(req *http.Request) {
	req.URL.Scheme = h.target.Scheme
	req.URL.Host = h.target.Host
	req.URL.Path = joinPath(h.target.Path, strings.TrimPrefix(req.URL.Path, h.prefix))
	req.Host = h.target.Host

	// Nil disables the ReverseProxy X-Forwarded-For append; client
	// addresses stay on our side of the wire.
	req.Header["X-Forwarded-For"] = nil
	req.Header.Del("Cookie")
	req.Header.Del("Referer")
}

func (h *Handler) modifyResponse(resp *http.Response) error {
	// No agency cookies into our origin.
	resp.Header.Del("Set-Cookie")
	metrics.RecordProxyRequest(h.prefix, resp.StatusCode)
	return nil
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn().
		Err(err).
		Str(rclog.FieldEvent, "proxy.upstream_error").
		Str(rclog.FieldPath, r.URL.Path).
		Msg("upstream fetch failed")
	metrics.RecordProxyRequest(h.prefix, http.StatusBadGateway)
	w.WriteHeader(http.StatusBadGateway)
}

// ServeHTTP applies the outbound guards, then forwards.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	outbound := *r.URL
	outbound.Scheme = h.target.Scheme
	outbound.Host = h.target.Host

	if err := h.allow.Check(&outbound); err != nil {
		h.logger.Warn().
			Err(err).
			Str(rclog.FieldEvent, "proxy.denied").
			Str(rclog.FieldPath, r.URL.Path).
			Msg("forward target not allowlisted")
		metrics.RecordProxyDenied(h.prefix)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		metrics.RecordProxyRequest(h.prefix, http.StatusServiceUnavailable)
		w.Header().Set("Retry-After", "1")
		http.Error(w, "upstream budget exhausted", http.StatusServiceUnavailable)
		return
	}

	h.proxy.ServeHTTP(w, r)
}

func joinPath(base, rest string) string {
	base = strings.TrimSuffix(base, "/")
	if rest == "" {
		if base == "" {
			return "/"
		}
		return base
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return base + rest
}

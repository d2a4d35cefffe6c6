// SPDX-License-Identifier: MIT

// Package ratelimit paces outbound requests against the agency hosts. One
// token bucket is shared by every upstream consumer, the feed fetcher and
// both proxy prefixes, so a misbehaving slideshow cannot starve the refresh
// job of upstream budget by more than the bucket allows.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var upstreamThrottled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "roadcam_upstream_throttled_total",
		Help: "Total upstream requests rejected or aborted by the shared rate limit.",
	},
	[]string{"component"},
)

// Upstream is the shared outbound token bucket.
type Upstream struct {
	limiter *rate.Limiter
}

// NewUpstream creates the shared bucket. A non-positive rps disables
// throttling.
func NewUpstream(rps float64, burst int) *Upstream {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
		burst = 0
	}
	return &Upstream{limiter: rate.NewLimiter(limit, burst)}
}

// For returns a labeled view on the shared bucket. Views only add the
// metrics label; tokens are drawn from the same bucket.
func (u *Upstream) For(component string) *View {
	return &View{upstream: u, component: component}
}

// View is one consumer's handle on the shared bucket.
type View struct {
	upstream  *Upstream
	component string
}

// Wait blocks until a token is available or ctx ends. The feed fetcher uses
// this; a refresh can afford to queue.
func (v *View) Wait(ctx context.Context) error {
	if err := v.upstream.limiter.Wait(ctx); err != nil {
		upstreamThrottled.WithLabelValues(v.component).Inc()
		return err
	}
	return nil
}

// Allow takes a token without blocking. The proxy uses this; an image
// request that cannot go out now should fail fast, the client retries on
// its own clock.
func (v *View) Allow() bool {
	if !v.upstream.limiter.Allow() {
		upstreamThrottled.WithLabelValues(v.component).Inc()
		return false
	}
	return true
}

// GetClientIP extracts the client IP for logging and per-client limits,
// preferring forwarded headers over the socket peer.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// May contain a chain "client, proxy1, proxy2"; the first entry is
		// the original client.
		if idx := strings.IndexByte(xff, ','); idx > 0 {
			xff = xff[:idx]
		}
		if xff = strings.TrimSpace(xff); xff != "" {
			return xff
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

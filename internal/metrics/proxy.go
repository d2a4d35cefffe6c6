package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProxyRequestsTotal counts proxied requests by prefix and status class.
	ProxyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_proxy_requests_total",
		Help: "Total number of proxied upstream requests, by prefix and status class.",
	}, []string{"prefix", "class"})

	// ProxyDeniedTotal counts proxy requests refused by the outbound policy.
	ProxyDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_proxy_denied_total",
		Help: "Total number of proxy requests refused by the outbound allowlist.",
	}, []string{"prefix"})
)

// RecordProxyRequest records one proxied request and its response class.
func RecordProxyRequest(prefix string, statusCode int) {
	ProxyRequestsTotal.WithLabelValues(prefix, statusClass(statusCode)).Inc()
}

// RecordProxyDenied records one request refused by the outbound policy.
func RecordProxyDenied(prefix string) {
	ProxyDeniedTotal.WithLabelValues(prefix).Inc()
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return fmt.Sprintf("%dxx", code/100)
}

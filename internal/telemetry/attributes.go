// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the service.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Camera attributes
	CameraIDKey     = "camera.id"
	CameraRegionKey = "camera.region"

	// Playback attributes
	PlaybackModeKey  = "playback.mode"
	PlaybackEventKey = "playback.event"

	// Refresh attributes
	FeedSourceKey        = "feed.source"
	CatalogGenerationKey = "catalog.generation"
	CatalogCamerasKey    = "catalog.cameras"

	// Proxy attributes
	ProxyPrefixKey     = "proxy.prefix"
	ProxyTargetHostKey = "proxy.target_host"

	// Job attributes
	JobStatusKey   = "job.status"
	JobDurationKey = "job.duration_ms"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// CameraAttributes creates camera span attributes, skipping empty values.
func CameraAttributes(id, region string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if id != "" {
		attrs = append(attrs, attribute.String(CameraIDKey, id))
	}
	if region != "" {
		attrs = append(attrs, attribute.String(CameraRegionKey, region))
	}
	return attrs
}

// PlaybackAttributes creates playback transition span attributes.
func PlaybackAttributes(mode, event string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(PlaybackModeKey, mode),
		attribute.String(PlaybackEventKey, event),
	}
}

// RefreshAttributes creates catalog refresh span attributes.
func RefreshAttributes(generation uint64, cameras int, source string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(CatalogGenerationKey, int64(generation)), // #nosec G115 -- generations stay far below int64 range
		attribute.Int(CatalogCamerasKey, cameras),
		attribute.String(FeedSourceKey, source),
	}
}

// ProxyAttributes creates proxy forwarding span attributes.
func ProxyAttributes(prefix, targetHost string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ProxyPrefixKey, prefix),
		attribute.String(ProxyTargetHostKey, targetHost),
	}
}

// JobAttributes creates refresh job span attributes.
func JobAttributes(status string, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(JobStatusKey, status),
		attribute.Int64(JobDurationKey, durationMS),
	}
}

// ErrorAttributes creates error span attributes.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}

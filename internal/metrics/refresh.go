// Package metrics provides the Prometheus collectors for the roadcam
// service. Collectors are registered via promauto at init and exposed on
// /metrics; thin helpers keep call sites free of label plumbing. Labels stay
// low-cardinality: no camera ids, no session ids.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogCameras tracks the record count of the committed catalog.
	CatalogCameras = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roadcam_catalog_cameras",
		Help: "Number of camera records in the committed catalog.",
	})

	// CatalogPlayable tracks how many committed records can produce media URLs.
	CatalogPlayable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roadcam_catalog_playable_cameras",
		Help: "Number of catalog records with a derivable numeric camera id.",
	})

	// CatalogRegions tracks the size of the region vocabulary.
	CatalogRegions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roadcam_catalog_regions",
		Help: "Number of distinct regions in the committed catalog.",
	})

	// CatalogGeneration tracks the committed catalog generation.
	CatalogGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roadcam_catalog_generation",
		Help: "Generation counter of the committed catalog.",
	})

	// RefreshTotal counts refresh cycles by result.
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_refresh_total",
		Help: "Total number of catalog refresh cycles, by result.",
	}, []string{"result"})

	// RefreshFailuresTotal counts refresh failures by stage.
	RefreshFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_refresh_failures_total",
		Help: "Total number of catalog refresh failures, by stage (fetch, commit, persist).",
	}, []string{"stage"})

	// RefreshDuration observes the wall time of a full refresh cycle.
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "roadcam_refresh_duration_seconds",
		Help:    "Duration of catalog refresh cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	// FeedSourceTotal counts successful loads by the endpoint that served them.
	FeedSourceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_feed_source_total",
		Help: "Total number of successful feed loads, by source (geojson, delimited).",
	}, []string{"source"})
)

// SetCatalog records the committed catalog shape.
func SetCatalog(cameras, playable, regions int, generation uint64) {
	CatalogCameras.Set(float64(cameras))
	CatalogPlayable.Set(float64(playable))
	CatalogRegions.Set(float64(regions))
	CatalogGeneration.Set(float64(generation))
}

// RecordRefreshSuccess records one successful refresh cycle.
func RecordRefreshSuccess(d time.Duration, source string) {
	RefreshTotal.WithLabelValues("success").Inc()
	RefreshDuration.Observe(d.Seconds())
	FeedSourceTotal.WithLabelValues(source).Inc()
}

// RecordRefreshFailure records one failed refresh cycle and the stage that
// broke it.
func RecordRefreshFailure(d time.Duration, stage string) {
	RefreshTotal.WithLabelValues("failure").Inc()
	RefreshFailuresTotal.WithLabelValues(stage).Inc()
	RefreshDuration.Observe(d.Seconds())
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSessions tracks currently open playback sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "roadcam_active_sessions",
		Help: "Current number of open playback sessions.",
	})

	// SessionsCreatedTotal counts session creations by initial mode.
	SessionsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_sessions_created_total",
		Help: "Total number of playback sessions created, by initial mode.",
	}, []string{"mode"})

	// SessionTransitionsTotal counts playback state transitions by event.
	SessionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_session_transitions_total",
		Help: "Total number of playback state transitions, by event.",
	}, []string{"event"})

	// MediaResultTotal counts client media reports by outcome.
	MediaResultTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_media_result_total",
		Help: "Total number of reported media load outcomes.",
	}, []string{"result"})
)

// SetActiveSessions records the session count.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// RecordSessionCreated records a session creation and its initial mode.
func RecordSessionCreated(mode string) {
	SessionsCreatedTotal.WithLabelValues(mode).Inc()
}

// RecordTransition records one playback state transition.
func RecordTransition(event string) {
	SessionTransitionsTotal.WithLabelValues(event).Inc()
}

// RecordMediaResult records one reported media outcome.
func RecordMediaResult(result string) {
	MediaResultTotal.WithLabelValues(result).Inc()
}

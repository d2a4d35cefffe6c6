package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BreakerState tracks circuit breaker states: 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "roadcam_breaker_state",
		Help: "Circuit breaker state by name: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	// BreakerTripsTotal counts breaker trips by name and reason.
	BreakerTripsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "roadcam_breaker_trips_total",
		Help: "Total number of circuit breaker trips, by name and reason.",
	}, []string{"name", "reason"})
)

// SetBreakerState records a breaker's current state.
func SetBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	BreakerState.WithLabelValues(name).Set(v)
}

// RecordBreakerTrip records one transition into the open state.
func RecordBreakerTrip(name, reason string) {
	BreakerTripsTotal.WithLabelValues(name, reason).Inc()
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	slotQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon_scheduler",
			Name:      "slot_queries_total",
			Help:      "Count of availability queries by cache outcome.",
		},
		[]string{"cache"},
	)

	slotGeneration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "salon_scheduler",
			Name:      "slot_generation_seconds",
			Help:      "Time spent loading rules and generating slots for one day.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon_scheduler",
			Name:      "booking_created_total",
			Help:      "Count of booking attempts by result.",
		},
		[]string{"result"},
	)

	bookingTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon_scheduler",
			Name:      "booking_transition_total",
			Help:      "Count of booking status changes by target status.",
		},
		[]string{"status"},
	)

	clockActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salon_scheduler",
			Name:      "clock_actions_total",
			Help:      "Count of staff clock actions by action and result.",
		},
		[]string{"action", "result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(slotQueries, slotGeneration, bookingCreated, bookingTransition, clockActions)
	})
}

func IncSlotQuery(cache string) {
	slotQueries.WithLabelValues(cache).Inc()
}

func ObserveSlotGeneration(seconds float64) {
	slotGeneration.Observe(seconds)
}

func IncBookingCreated(result string) {
	bookingCreated.WithLabelValues(result).Inc()
}

func IncBookingTransition(status string) {
	bookingTransition.WithLabelValues(status).Inc()
}

func IncClockAction(action, result string) {
	clockActions.WithLabelValues(action, result).Inc()
}

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics exposes counters/histograms for backend API calls.
type ClientMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindcare",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total backend API requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mindcare",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of backend API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency)
	return m
}

// ObserveRequest records one finished request. code is 0 for transport failures.
func (m *ClientMetrics) ObserveRequest(method, route string, code int, seconds float64) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.requestsTotal.WithLabelValues(method, route, label).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(seconds)
}

// BookingMetrics counts booking workflow outcomes.
type BookingMetrics struct {
	submissions    *prometheus.CounterVec
	staleDiscarded prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindcare",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome (booked, rejected, invalid, in_flight)",
		}, []string{"outcome"}),
		staleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mindcare",
			Subsystem: "booking",
			Name:      "stale_availability_discarded_total",
			Help:      "Availability responses dropped because the selection changed while in flight",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.staleDiscarded)
	return m
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveStaleDiscard() {
	if m == nil {
		return
	}
	m.staleDiscarded.Inc()
}

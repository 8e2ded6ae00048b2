package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if labelsMatch(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(metric *dto.Metric, want map[string]string) bool {
	got := map[string]string{}
	for _, lp := range metric.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestClientMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)
	m.ObserveRequest("GET", "/patient/counselors", 200, 0.05)
	m.ObserveRequest("GET", "/patient/counselors", 200, 0.07)
	m.ObserveRequest("POST", "/patient/appointments", 0, 1.2)

	assert.Equal(t, 2.0, counterValue(t, reg, "mindcare_api_requests_total",
		map[string]string{"method": "GET", "route": "/patient/counselors", "code": "200"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "mindcare_api_requests_total",
		map[string]string{"method": "POST", "code": "error"}))
}

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveSubmission("booked")
	m.ObserveSubmission("invalid")
	m.ObserveSubmission("invalid")
	m.ObserveStaleDiscard()

	assert.Equal(t, 2.0, counterValue(t, reg, "mindcare_booking_submissions_total",
		map[string]string{"outcome": "invalid"}))

	families, err := reg.Gather()
	require.NoError(t, err)
	var stale float64
	for _, fam := range families {
		if fam.GetName() == "mindcare_booking_stale_availability_discarded_total" {
			stale = fam.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, stale)
}

func TestMetricsNilSafe(t *testing.T) {
	var c *ClientMetrics
	c.ObserveRequest("GET", "/x", 200, 0.1)
	var b *BookingMetrics
	b.ObserveSubmission("booked")
	b.ObserveStaleDiscard()
}

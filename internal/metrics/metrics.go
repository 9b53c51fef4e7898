// Package metrics provides Prometheus metrics for device tests and the HTTP
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/selimozcann/StoreHunter/internal/runner"
)

// Metrics holds StoreHunter's Prometheus collectors.
type Metrics struct {
	// Device tests
	DeviceResults  *prometheus.CounterVec
	DeviceDuration *prometheus.HistogramVec

	// Batches
	TestsStarted    prometheus.Counter
	TestsFinished   *prometheus.CounterVec
	TestsInFlight   prometheus.Gauge
	LastSuccessRate prometheus.Gauge

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DeviceResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storehunter_device_results_total",
				Help: "Device test verdicts by platform and status",
			},
			[]string{"platform", "status"},
		),
		DeviceDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storehunter_device_duration_seconds",
				Help:    "Wall time of one device test",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
			},
			[]string{"platform"},
		),
		TestsStarted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "storehunter_tests_started_total",
				Help: "Batches started through the HTTP service",
			},
		),
		TestsFinished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storehunter_tests_finished_total",
				Help: "Batches finished by final state",
			},
			[]string{"state"},
		),
		TestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "storehunter_tests_in_flight",
				Help: "Batches currently running",
			},
		),
		LastSuccessRate: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "storehunter_last_success_rate_percent",
				Help: "Success rate of the most recently completed batch",
			},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storehunter_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storehunter_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Observe is a runner.Observer that records each device verdict.
func (m *Metrics) Observe(p runner.Progress) {
	platform := string(p.Result.Platform)
	m.DeviceResults.WithLabelValues(platform, string(p.Result.Status)).Inc()
	m.DeviceDuration.WithLabelValues(platform).Observe((time.Duration(p.Result.ResponseTime) * time.Millisecond).Seconds())
}

// Package metrics provides custom Prometheus metrics for the fitting
// pipeline.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// FitterMetrics contains all Prometheus metrics related to posterior fits.
type FitterMetrics struct {
	FitsStarted   *prometheus.CounterVec
	FitsCompleted *prometheus.CounterVec
	FitsFailed    *prometheus.CounterVec
	FitDuration   *prometheus.HistogramVec

	DegenerateFits   *prometheus.CounterVec
	FallbackFits     *prometheus.CounterVec
	ActiveFitsGauge  prometheus.Gauge
	PriorLookupMiss  prometheus.Counter
	ObservationsSeen prometheus.Counter

	registry *prometheus.Registry
}

// NewFitterMetrics creates a new instance of FitterMetrics registered on
// the given registry.
func NewFitterMetrics(registry *prometheus.Registry) (*FitterMetrics, error) {
	m := &FitterMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register fitter metrics: %w", err)
	}
	return m, nil
}

func (m *FitterMetrics) initMetrics() {
	m.FitsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcel_fits_started_total",
			Help: "Total number of posterior fits started, partitioned by method.",
		},
		[]string{"method"},
	)
	m.FitsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcel_fits_completed_total",
			Help: "Total number of posterior fits completed successfully.",
		},
		[]string{"method"},
	)
	m.FitsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcel_fits_failed_total",
			Help: "Total number of posterior fits that returned an error.",
		},
		[]string{"method"},
	)
	m.FitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bcel_fit_duration_seconds",
			Help:    "Time taken to fit one relationship.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
		},
		[]string{"method"},
	)
	m.DegenerateFits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcel_degenerate_fits_total",
			Help: "Fits flagged as degenerate, partitioned by reason.",
		},
		[]string{"reason"},
	)
	m.FallbackFits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bcel_fallback_fits_total",
			Help: "Fits that degraded to a fallback method.",
		},
		[]string{"method"},
	)
	m.ActiveFitsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bcel_active_fits",
			Help: "Number of fits currently in flight.",
		},
	)
	m.PriorLookupMiss = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bcel_prior_lookup_misses_total",
			Help: "Requests that referenced a relationship with no prior.",
		},
	)
	m.ObservationsSeen = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bcel_observations_total",
			Help: "Total observations consumed across all fits.",
		},
	)
}

// RecordFitStart marks a fit as started and in flight.
func (m *FitterMetrics) RecordFitStart(method string) {
	m.FitsStarted.WithLabelValues(method).Inc()
	m.ActiveFitsGauge.Inc()
}

// RecordFitComplete marks a fit as finished. The resulting method may
// differ from the requested one when a fallback ran.
func (m *FitterMetrics) RecordFitComplete(method string, durationSeconds float64, err error) {
	m.ActiveFitsGauge.Dec()
	m.FitDuration.WithLabelValues(method).Observe(durationSeconds)
	if err != nil {
		m.FitsFailed.WithLabelValues(method).Inc()
		return
	}
	m.FitsCompleted.WithLabelValues(method).Inc()
}

// RecordFallback counts a fit that degraded to another method.
func (m *FitterMetrics) RecordFallback(resultMethod string) {
	m.FallbackFits.WithLabelValues(resultMethod).Inc()
}

// RecordDegenerate counts a degenerate-flagged fit.
func (m *FitterMetrics) RecordDegenerate(reason string) {
	m.DegenerateFits.WithLabelValues(reason).Inc()
}

// RecordObservations adds to the running observation count.
func (m *FitterMetrics) RecordObservations(n int) {
	m.ObservationsSeen.Add(float64(n))
}

// RecordPriorMiss counts a missing-prior request.
func (m *FitterMetrics) RecordPriorMiss() {
	m.PriorLookupMiss.Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *FitterMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.FitsStarted.Describe(ch)
	m.FitsCompleted.Describe(ch)
	m.FitsFailed.Describe(ch)
	m.FitDuration.Describe(ch)
	m.DegenerateFits.Describe(ch)
	m.FallbackFits.Describe(ch)
	m.ActiveFitsGauge.Describe(ch)
	m.PriorLookupMiss.Describe(ch)
	m.ObservationsSeen.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *FitterMetrics) Collect(ch chan<- prometheus.Metric) {
	m.FitsStarted.Collect(ch)
	m.FitsCompleted.Collect(ch)
	m.FitsFailed.Collect(ch)
	m.FitDuration.Collect(ch)
	m.DegenerateFits.Collect(ch)
	m.FallbackFits.Collect(ch)
	m.ActiveFitsGauge.Collect(ch)
	m.PriorLookupMiss.Collect(ch)
	m.ObservationsSeen.Collect(ch)
}

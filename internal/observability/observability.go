// Package observability provides metrics collection for the fitting
// pipeline. All collectors register on a single injected registry so tests
// can gather without global state.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/serifhq/bcel-go/internal/observability/metrics"
)

// Metrics holds all metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Fitter   *metrics.FitterMetrics
}

// NewMetrics creates a new Metrics instance with its own registry.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

// NewMetricsWithRegistry initializes all collectors on the given registry.
func NewMetricsWithRegistry(registry *prometheus.Registry) (*Metrics, error) {
	fitterMetrics, err := metrics.NewFitterMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create fitter metrics: %w", err)
	}
	return &Metrics{
		registry: registry,
		Fitter:   fitterMetrics,
	}, nil
}

// Registry returns the underlying registry, for exposition or test
// gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

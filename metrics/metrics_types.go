// Package metrics exposes the Prometheus instruments of the layout engine
// and its hosts.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Simulation Metrics
	SimTicksTotal     *prometheus.CounterVec
	SimTickDuration   *prometheus.HistogramVec
	SimMovedNodes     *prometheus.HistogramVec
	SimSettleDuration prometheus.Histogram
	GraphNodesTotal   prometheus.Gauge
	GraphEdgesTotal   prometheus.Gauge

	// Frame Metrics
	FramesTotal    prometheus.Counter
	FrameTicks     prometheus.Histogram
	FrameFPS       prometheus.Gauge
	FrameTargetFPS prometheus.Gauge

	// Camera Metrics
	GesturesTotal *prometheus.CounterVec
	CameraScale   prometheus.Gauge

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SessionsActive      prometheus.Gauge
	SocketMessagesTotal *prometheus.CounterVec
	ConfigReloadsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSimMetrics()
	r.initFrameMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

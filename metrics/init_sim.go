package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimMetrics() {
	r.SimTicksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcegraph_sim_ticks_total",
			Help: "Total number of simulation ticks",
		},
		[]string{"backend"},
	)

	r.SimTickDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forcegraph_sim_tick_duration_seconds",
			Help:    "Duration of one simulation tick in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"backend"},
	)

	r.SimMovedNodes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forcegraph_sim_moved_nodes",
			Help:    "Nodes committed per simulation tick",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000},
		},
		[]string{"backend"},
	)

	r.SimSettleDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcegraph_sim_settle_duration_seconds",
			Help:    "Duration of batch settling runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.GraphNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcegraph_graph_nodes_total",
			Help: "Number of nodes in the simulated graph",
		},
	)

	r.GraphEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcegraph_graph_edges_total",
			Help: "Number of edges in the simulated graph",
		},
	)
}

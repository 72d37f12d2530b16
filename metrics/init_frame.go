package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFrameMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "forcegraph_frames_total",
			Help: "Total number of frames",
		},
	)

	r.FrameTicks = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forcegraph_frame_ticks",
			Help:    "Simulation ticks run per frame",
			Buckets: []float64{0, 1, 2, 3, 6, 12},
		},
	)

	r.FrameFPS = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcegraph_frame_fps",
			Help: "Measured frames per second",
		},
	)

	r.FrameTargetFPS = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcegraph_frame_target_fps",
			Help: "Adaptive target frames per second",
		},
	)

	r.GesturesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcegraph_gestures_total",
			Help: "Gestures started, by kind",
		},
		[]string{"gesture"}, // drag, pan, pinch
	)

	r.CameraScale = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "forcegraph_camera_scale",
			Help: "Current camera zoom factor",
		},
	)
}

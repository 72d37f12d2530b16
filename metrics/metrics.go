package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordTick records one simulation tick
func (r *Registry) RecordTick(backend string, moved int, duration time.Duration) {
	r.SimTicksTotal.WithLabelValues(backend).Inc()
	r.SimTickDuration.WithLabelValues(backend).Observe(duration.Seconds())
	r.SimMovedNodes.WithLabelValues(backend).Observe(float64(moved))
}

// RecordSettle records a batch settling run and the ticks it took
func (r *Registry) RecordSettle(backend string, ticks int, duration time.Duration) {
	r.SimTicksTotal.WithLabelValues(backend).Add(float64(ticks))
	r.SimSettleDuration.Observe(duration.Seconds())
}

// UpdateGraphSize sets the node and edge gauges
func (r *Registry) UpdateGraphSize(nodes, edges int) {
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}

// RecordFrame records a rendered frame
func (r *Registry) RecordFrame(ticks int, fps, targetFPS, scale float64) {
	r.FramesTotal.Inc()
	r.FrameTicks.Observe(float64(ticks))
	r.FrameFPS.Set(fps)
	r.FrameTargetFPS.Set(targetFPS)
	r.CameraScale.Set(scale)
}

// RecordGesture counts a started gesture
func (r *Registry) RecordGesture(gesture string) {
	r.GesturesTotal.WithLabelValues(gesture).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSocketMessage counts a websocket message, direction is "in" or "out"
func (r *Registry) RecordSocketMessage(direction string) {
	r.SocketMessagesTotal.WithLabelValues(direction).Inc()
}

// RecordConfigReload counts a configuration reload
func (r *Registry) RecordConfigReload(applied bool) {
	result := "rejected"
	if applied {
		result = "applied"
	}
	r.ConfigReloadsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// UpdateSessions sets the number of connected viewer sessions
func (r *Registry) UpdateSessions(n int) {
	r.SessionsActive.Set(float64(n))
}

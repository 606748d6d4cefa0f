package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the capture loop counters. All methods are safe on a nil receiver
// so the session can run without metrics.
type Metrics struct {
	FramesRead       atomic.Uint64
	SamplesCommitted atomic.Uint64
	FacesCommitted   atomic.Uint64
	FacesInFrame     atomic.Uint64
	PreviewDropped   atomic.Uint64
	Errors           atomic.Uint64

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own Prometheus registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	gauges := []struct {
		name, help string
		value      *atomic.Uint64
	}{
		{"facecounter_frames_read_total", "Frames read from the video source", &m.FramesRead},
		{"facecounter_samples_committed_total", "Samples written to the session log", &m.SamplesCommitted},
		{"facecounter_faces_committed_total", "Sum of faces over committed samples", &m.FacesCommitted},
		{"facecounter_faces_in_frame", "Faces detected in the latest frame", &m.FacesInFrame},
		{"facecounter_preview_frames_dropped_total", "Preview frames dropped because viewers were busy", &m.PreviewDropped},
		{"facecounter_errors_total", "Errors that ended or degraded a session", &m.Errors},
	}

	for _, g := range gauges {
		value := g.value
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return float64(value.Load()) },
		))
	}
}

// FrameRead records one processed frame and its face count.
func (m *Metrics) FrameRead(faces int) {
	if m == nil {
		return
	}
	m.FramesRead.Add(1)
	m.FacesInFrame.Store(uint64(faces))
}

// SampleCommitted records one committed sample.
func (m *Metrics) SampleCommitted(faces int) {
	if m == nil {
		return
	}
	m.SamplesCommitted.Add(1)
	m.FacesCommitted.Add(uint64(faces))
}

func (m *Metrics) PreviewDrop() {
	if m == nil {
		return
	}
	m.PreviewDropped.Add(1)
}

func (m *Metrics) Error() {
	if m == nil {
		return
	}
	m.Errors.Add(1)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

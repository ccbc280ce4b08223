// Package metrics implements Prometheus decode metrics on a private
// registry, exported through the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame results.
const (
	ResultDecoded = "decoded"
	ResultFailed  = "failed"
)

// Roundtrip stages where a mismatch can be detected.
const (
	StageSerialize = "serialize"
	StageClone     = "clone"
	StageEqual     = "equal"
)

// Metrics holds the decode counters of one CLI run.
type Metrics struct {
	registry *prometheus.Registry

	// FramesTotal counts frames by decode result
	FramesTotal *prometheus.CounterVec

	// LayersTotal counts decoded layers by layer type
	LayersTotal *prometheus.CounterVec

	// RoundtripMismatchTotal counts frames whose round trip differs, by stage
	RoundtripMismatchTotal *prometheus.CounterVec

	// FrameDepth tracks the number of layers per decoded frame
	FrameDepth prometheus.Histogram

	// DecodeSeconds measures time spent in the framework per frame
	DecodeSeconds prometheus.Histogram
}

// New registers the decode metrics under namespace on a fresh registry.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FramesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Total number of frames read, by decode result",
			},
			[]string{"result"},
		),
		LayersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layers_total",
				Help:      "Total number of decoded layers, by layer type",
			},
			[]string{"layer"},
		),
		RoundtripMismatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "roundtrip_mismatch_total",
				Help:      "Total number of frames failing a round-trip check, by stage",
			},
			[]string{"stage"},
		),
		FrameDepth: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_layers",
				Help:      "Number of layers per decoded frame",
				Buckets:   prometheus.LinearBuckets(1, 1, 8), // 1..8
			},
		),
		DecodeSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decode_seconds",
				Help:      "Time to deserialize one frame in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10), // 1µs to ~0.26s
			},
		),
	}
}

// ObserveFrame records one decoded frame with its layer names.
func (m *Metrics) ObserveFrame(layers []string, took time.Duration) {
	m.FramesTotal.WithLabelValues(ResultDecoded).Inc()
	for _, l := range layers {
		m.LayersTotal.WithLabelValues(l).Inc()
	}
	m.FrameDepth.Observe(float64(len(layers)))
	m.DecodeSeconds.Observe(took.Seconds())
}

// ObserveFailure records a frame that did not decode.
func (m *Metrics) ObserveFailure() {
	m.FramesTotal.WithLabelValues(ResultFailed).Inc()
}

// ObserveMismatch records a round-trip mismatch detected at stage.
func (m *Metrics) ObserveMismatch(stage string) {
	m.RoundtripMismatchTotal.WithLabelValues(stage).Inc()
}

// Registry exposes the private registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile atomically writes all metrics to path in the text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by a Simulator
type Metrics struct {
	trials        *prometheus.CounterVec   // frames transmitted, by snr
	frameErrors   *prometheus.CounterVec   // frames decoded wrongly, by snr
	bitErrors     *prometheus.CounterVec   // codeword bits decoded wrongly, by snr
	decodeSeconds *prometheus.HistogramVec // time spent in Decode, by snr
}

// NewMetrics registers the simulator collectors with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		trials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "sim",
			Name:      "trials_total",
			Help:      "Number of frames transmitted",
		}, []string{"snr"}),
		frameErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "sim",
			Name:      "frame_errors_total",
			Help:      "Number of frames decoded to the wrong codeword",
		}, []string{"snr"}),
		bitErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trellis",
			Subsystem: "sim",
			Name:      "bit_errors_total",
			Help:      "Number of codeword bits decoded wrongly",
		}, []string{"snr"}),
		decodeSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trellis",
			Subsystem: "sim",
			Name:      "decode_seconds",
			Help:      "Latency of a single Viterbi decode",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"snr"}),
	}
}

// pointMetrics are the collectors of one SNR point
type pointMetrics struct {
	trials        prometheus.Counter
	frameErrors   prometheus.Counter
	bitErrors     prometheus.Counter
	decodeSeconds prometheus.Observer
}

func (m *Metrics) point(snr string) pointMetrics {
	return pointMetrics{
		trials:        m.trials.WithLabelValues(snr),
		frameErrors:   m.frameErrors.WithLabelValues(snr),
		bitErrors:     m.bitErrors.WithLabelValues(snr),
		decodeSeconds: m.decodeSeconds.WithLabelValues(snr),
	}
}

package transmit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region metrics

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	Frames        *prometheus.CounterVec
	AIInvocations *prometheus.CounterVec
	EvalFailures  *prometheus.CounterVec
	BERBefore     *prometheus.HistogramVec
	Duration      prometheus.Histogram
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Frames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satlink",
			Name:      "frames_total",
			Help:      "Transmitted frames by scheme, noise type and decoder outcome.",
		}, []string{"scheme", "noise", "outcome"}),
		AIInvocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satlink",
			Name:      "ai_invocations_total",
			Help:      "AI correction attempts by result.",
		}, []string{"result"}),
		EvalFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "satlink",
			Name:      "eval_failures_total",
			Help:      "Failed blocking link checks by check name.",
		}, []string{"check"}),
		BERBefore: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "satlink",
			Name:      "ber_before",
			Help:      "Payload bit error rate after FEC decoding.",
			Buckets:   []float64{0, 0.0001, 0.001, 0.01, 0.05, 0.1, 0.2, 0.5},
		}, []string{"scheme"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "satlink",
			Name:      "transmit_duration_seconds",
			Help:      "Wall time of one transmission including the AI pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// #endregion metrics

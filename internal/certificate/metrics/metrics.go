package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the certificate pipeline.
type Metrics struct {
	// Record gathering latencies by source
	GatherLatency *prometheus.HistogramVec

	// Pipeline results by outcome ("issued", "ineligible", "failed") and mode
	// ("file", "preview")
	PipelineOutcome *prometheus.CounterVec

	// Full pipeline latency including materialization
	PipelineLatency prometheus.Histogram
}

// New creates a Metrics instance with all certificate pipeline metrics
// registered.
func New() *Metrics {
	return &Metrics{
		GatherLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vaxcert_certificate_gather_duration_seconds",
			Help:    "Duration of record gathering operations by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"source"}), // source: "subject", "doses", "catalog", "facility"

		PipelineOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxcert_certificate_pipeline_total",
			Help: "Total certificate pipeline results by outcome and mode",
		}, []string{"outcome", "mode"}),

		PipelineLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vaxcert_certificate_pipeline_duration_seconds",
			Help:    "Duration of the full certificate pipeline including materialization",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveGatherLatency records the duration of fetching one record source.
func (m *Metrics) ObserveGatherLatency(source string, d time.Duration) {
	if m != nil {
		m.GatherLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a pipeline result.
func (m *Metrics) IncrementOutcome(outcome, mode string) {
	if m != nil {
		m.PipelineOutcome.WithLabelValues(outcome, mode).Inc()
	}
}

// ObservePipelineLatency records the total pipeline duration.
func (m *Metrics) ObservePipelineLatency(d time.Duration) {
	if m != nil {
		m.PipelineLatency.Observe(d.Seconds())
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the biomarker module.
type Metrics struct {
	// Records appended by status and source (api, ingest)
	RecordsAppended *prometheus.CounterVec

	// Dashboard cache lookups by result (hit, miss, error)
	CacheLookups *prometheus.CounterVec

	// Dashboard build latency including record loading
	DashboardLatency prometheus.Histogram

	// Ingest messages rejected before reaching the store
	IngestRejected *prometheus.CounterVec
}

// New creates the biomarker metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "healthhub_biomarker_records_appended_total",
			Help: "Total biomarker records appended by status and source",
		}, []string{"status", "source"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "healthhub_biomarker_cache_lookups_total",
			Help: "Record list cache lookups by result",
		}, []string{"result"}),

		DashboardLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthhub_biomarker_dashboard_duration_seconds",
			Help:    "Duration of dashboard composition including record loading",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		IngestRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "healthhub_biomarker_ingest_rejected_total",
			Help: "Ingest messages skipped by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncrementAppended(status, source string) {
	if m != nil {
		m.RecordsAppended.WithLabelValues(status, source).Inc()
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveDashboardLatency(d time.Duration) {
	if m != nil {
		m.DashboardLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementIngestRejected(reason string) {
	if m != nil {
		m.IngestRejected.WithLabelValues(reason).Inc()
	}
}

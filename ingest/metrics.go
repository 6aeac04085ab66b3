package ingest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for input ingestion.
type Metrics struct {
	Registry      *prometheus.Registry
	FilesTotal    *prometheus.CounterVec
	ItemsTotal    prometheus.Counter
	FetchDuration prometheus.Histogram
	ErrorsTotal   *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	files := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_documents_total",
			Help: "Total input documents by outcome.",
		},
		[]string{"status"},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_items_decoded_total",
			Help: "Total item records decoded from input documents.",
		},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "etl_fetch_duration_seconds",
			Help:    "Latency of remote document fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_errors_total",
			Help: "Total ingestion errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(files, items, fetchDuration, errorsTotal)

	return &Metrics{
		Registry:      registry,
		FilesTotal:    files,
		ItemsTotal:    items,
		FetchDuration: fetchDuration,
		ErrorsTotal:   errorsTotal,
	}
}

// IncFile increments the documents counter for an outcome.
func (m *Metrics) IncFile(status string) {
	if m == nil {
		return
	}
	m.FilesTotal.WithLabelValues(status).Inc()
}

// AddItems records decoded item records.
func (m *Metrics) AddItems(n int) {
	if m == nil {
		return
	}
	m.ItemsTotal.Add(float64(n))
}

// ObserveFetch records a remote fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

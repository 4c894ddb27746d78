// Package metrics provides Prometheus metrics for indexing and completions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Indexing metrics
	DocumentsTotal  *prometheus.CounterVec
	ChunksTotal     prometheus.Counter
	IndexDuration   prometheus.Histogram
	EmbeddingsTotal *prometheus.CounterVec

	// Completion metrics
	CompletionsTotal   *prometheus.CounterVec
	CompletionDuration prometheus.Histogram
	ToolCallsTotal     *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.DocumentsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiassist_index_documents_total",
			Help: "Total number of documents processed by the indexer",
		},
		[]string{"status"},
	)

	m.ChunksTotal = f.NewCounter(
		prometheus.CounterOpts{
			Name: "wikiassist_index_chunks_total",
			Help: "Total number of chunks upserted into the vector store",
		},
	)

	m.IndexDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wikiassist_index_document_duration_seconds",
			Help:    "Duration of single document indexing in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	m.EmbeddingsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiassist_embeddings_total",
			Help: "Total number of embedding requests",
		},
		[]string{"status"},
	)

	m.CompletionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiassist_completions_total",
			Help: "Total number of completion requests",
		},
		[]string{"status"},
	)

	m.CompletionDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wikiassist_completion_duration_seconds",
			Help:    "Duration of completion requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.ToolCallsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikiassist_tool_calls_total",
			Help: "Total number of tool calls requested by the model",
		},
		[]string{"tool", "cached"},
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDocument records the outcome of indexing one document.
func (m *Metrics) RecordDocument(status string, chunks int, duration time.Duration) {
	if m == nil {
		return
	}
	m.DocumentsTotal.WithLabelValues(status).Inc()
	m.ChunksTotal.Add(float64(chunks))
	m.IndexDuration.Observe(duration.Seconds())
}

// RecordEmbedding records one embedding request.
func (m *Metrics) RecordEmbedding(err error) {
	if m == nil {
		return
	}
	m.EmbeddingsTotal.WithLabelValues(statusOf(err)).Inc()
}

// RecordCompletion records one completion round trip.
func (m *Metrics) RecordCompletion(err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.CompletionsTotal.WithLabelValues(statusOf(err)).Inc()
	m.CompletionDuration.Observe(duration.Seconds())
}

// RecordToolCall records one tool call and whether it was served from cache.
func (m *Metrics) RecordToolCall(tool string, cached bool) {
	if m == nil {
		return
	}
	label := "false"
	if cached {
		label = "true"
	}
	m.ToolCallsTotal.WithLabelValues(tool, label).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

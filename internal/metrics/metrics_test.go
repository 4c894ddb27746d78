package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecordDocument(t *testing.T) {
	m := New()

	m.RecordDocument("success", 4, time.Second)
	m.RecordDocument("skipped", 0, time.Millisecond)
	m.RecordDocument("success", 2, time.Second)

	out := scrape(t, m)
	assert.Contains(t, out, `wikiassist_index_documents_total{status="success"} 2`)
	assert.Contains(t, out, `wikiassist_index_documents_total{status="skipped"} 1`)
	assert.Contains(t, out, "wikiassist_index_chunks_total 6")
	assert.Contains(t, out, "wikiassist_index_document_duration_seconds_count 3")
}

func TestRecordCompletionAndToolCalls(t *testing.T) {
	m := New()

	m.RecordCompletion(nil, time.Second)
	m.RecordCompletion(errors.New("boom"), time.Second)
	m.RecordEmbedding(nil)
	m.RecordToolCall("get_document", false)
	m.RecordToolCall("get_document", true)
	m.RecordToolCall("get_document", true)

	out := scrape(t, m)
	assert.Contains(t, out, `wikiassist_completions_total{status="error"} 1`)
	assert.Contains(t, out, `wikiassist_completions_total{status="success"} 1`)
	assert.Contains(t, out, `wikiassist_embeddings_total{status="success"} 1`)
	assert.Contains(t, out, `wikiassist_tool_calls_total{cached="true",tool="get_document"} 2`)
	assert.Contains(t, out, `wikiassist_tool_calls_total{cached="false",tool="get_document"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordDocument("success", 1, time.Second)
		m.RecordEmbedding(nil)
		m.RecordCompletion(nil, time.Second)
		m.RecordToolCall("x", false)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestTwoInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}

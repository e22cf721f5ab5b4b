package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/valislegal/valis/internal/export"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveExport(export.FormatDocx, export.OutcomeFallback, 20*time.Millisecond)
	m.ObserveExport(export.FormatDocx, export.OutcomeFallback, 20*time.Millisecond)
	m.ObserveTask("completed", time.Second)
	m.ObserveRequest("project.create", 200, time.Millisecond)
	m.RecordImport("ok")

	require.Equal(t, 2.0, testutil.ToFloat64(m.ExportsTotal.WithLabelValues("docx", "fallback")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TasksTotal.WithLabelValues("completed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("project.create", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.InboxImports.WithLabelValues("ok")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveTask("cancelled", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `valis_agent_tasks_total{status="cancelled"} 1`)
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.InvoiceComputed(true)
	m.InvoiceComputed(false)
	m.StatusChanged("washing")
	m.ObserveHTTP("GET", "/api/batches/{id}", 200, 10*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.invoices))
	require.Equal(t, 1.0, testutil.ToFloat64(m.discrepancies))
	require.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("washing")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/batches/{id}", "200")))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	m.InvoiceComputed(true)
	m.ReportGenerated("xlsx")
	m.ObserveHTTP("GET", "/", 200, time.Second)
}

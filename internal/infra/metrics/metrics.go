package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linen"

// Metrics: счётчики сервиса. Методы безопасны для nil (метрики выключены).
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	invoices       prometheus.Counter
	discrepancies  prometheus.Counter
	statusChanges  *prometheus.CounterVec
	reports        *prometheus.CounterVec
	invoicesIssued *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		invoices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "batch_invoices_computed_total",
			Help: "Batch invoice computations.",
		}),
		discrepancies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_with_discrepancy_total",
			Help: "Saved batches whose sent and received quantities differ.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "batch_status_changes_total",
			Help: "Batch status transitions by target status.",
		}, []string{"status"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "reports_generated_total",
			Help: "Period reports by output format.",
		}, []string{"format"}),
		invoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "client_invoices_total",
			Help: "Monthly client invoices by status change.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.invoices, m.discrepancies,
		m.statusChanges, m.reports, m.invoicesIssued)
	return m
}

func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) InvoiceComputed(hasDiscrepancy bool) {
	if m == nil {
		return
	}
	m.invoices.Inc()
	if hasDiscrepancy {
		m.discrepancies.Inc()
	}
}

func (m *Metrics) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) ReportGenerated(format string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(format).Inc()
}

func (m *Metrics) ClientInvoice(status string) {
	if m == nil {
		return
	}
	m.invoicesIssued.WithLabelValues(status).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the application collectors. A nil *Metrics is valid and
// records nothing, which keeps services usable in tests.
type Metrics struct {
	documentsSaved     *prometheus.CounterVec
	ledgerPostings     *prometheus.CounterVec
	storageWriteErrors *prometheus.CounterVec
	stockShortfalls    prometheus.Counter
	requestCounter     *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		documentsSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_documents_saved_total",
				Help: "Total number of saved documents by kind",
			},
			[]string{"kind"},
		),
		ledgerPostings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_ledger_postings_total",
				Help: "Total number of customer ledger postings by kind",
			},
			[]string{"kind"},
		),
		storageWriteErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_storage_write_errors_total",
				Help: "Total number of failed writes to the key-value store",
			},
			[]string{"key"},
		),
		stockShortfalls: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pos_stock_shortfall_units_total",
				Help: "Units sold beyond available stock and floored at zero",
			},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pos_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.documentsSaved,
		m.ledgerPostings,
		m.storageWriteErrors,
		m.stockShortfalls,
		m.requestCounter,
		m.requestLatency,
	)
	return m
}

func (m *Metrics) DocumentSaved(kind string) {
	if m == nil {
		return
	}
	m.documentsSaved.WithLabelValues(kind).Inc()
}

func (m *Metrics) LedgerPosted(kind string) {
	if m == nil {
		return
	}
	m.ledgerPostings.WithLabelValues(kind).Inc()
}

func (m *Metrics) StorageWriteFailed(key string) {
	if m == nil {
		return
	}
	m.storageWriteErrors.WithLabelValues(key).Inc()
}

func (m *Metrics) StockShortfall(units int) {
	if m == nil || units <= 0 {
		return
	}
	m.stockShortfalls.Add(float64(units))
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestCounter.WithLabelValues(method, route, status).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(seconds)
}

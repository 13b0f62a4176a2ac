// Package metrics exposes the Prometheus collectors of the sales server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "sales"

type ServerMetrics struct {
	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	SalesCommitted prometheus.Counter
	SalesRevenue   prometheus.Counter
	SalesDeleted   prometheus.Counter
	StoreErrors    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry.
func New(reg *prometheus.Registry) *ServerMetrics {
	m := &ServerMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		SalesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_committed_total",
			Help:      "Sales recorded.",
		}),
		SalesRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_revenue_total",
			Help:      "Sum of the totals of recorded sales.",
		}),
		SalesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_deleted_total",
			Help:      "Sales deleted.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed store operations by kind.",
		}, []string{"kind"}),
		gatherer: reg,
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.SalesCommitted, m.SalesRevenue, m.SalesDeleted, m.StoreErrors)
	return m
}

// ObserveSale counts a committed sale and its total.
func (m *ServerMetrics) ObserveSale(total decimal.Decimal) {
	m.SalesCommitted.Inc()
	m.SalesRevenue.Add(total.InexactFloat64())
}

// Handler serves the registry in the Prometheus text format.
func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

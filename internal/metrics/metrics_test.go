package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSale(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveSale(decimal.RequireFromString("10.50"))
	m.ObserveSale(decimal.RequireFromString("4.50"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SalesCommitted))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.SalesRevenue))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Requests.WithLabelValues("GET /sales", "200").Inc()
	m.StoreErrors.WithLabelValues("timeout").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `sales_http_requests_total{handler="GET /sales",status="200"} 1`))
	assert.True(t, strings.Contains(string(body), `sales_store_errors_total{kind="timeout"} 1`))
}

func TestTwoRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

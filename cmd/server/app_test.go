package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-sales/internal/metrics"
	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return NewApp(store.NewGormStore(db, 5*time.Second), metrics.New(prometheus.NewRegistry()), time.UTC)
}

func do(app *App, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rec := do(app, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(app, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"db":"ok"`)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)
	for _, target := range []string{"/sales", "/customers", "/reports", "/dashboard", "/inventory"} {
		rec := do(app, "GET", target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
	rec := do(app, "POST", "/sales", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	app := newTestApp(t)
	rec := do(app, "POST", "/signup", `{"email":"caixa@loja.com","password":"segredo"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = do(app, "POST", "/customers", `{"name":"Carla Dias"}`, cookies...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(app, "GET", "/customers?lang=en", "", cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Carla Dias")

	rec = do(app, "GET", "/sales/not-a-uuid?lang=en", "", cookies...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid identifier")

	rec = do(app, "GET", "/reports?window=90", "", cookies...)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(app, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sales_http_requests_total{handler="POST /customers",status="201"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)
	rec := do(app, "GET", "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(app, "PATCH", "/sales", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/go-sales/i18n"
	"github.com/diewo77/go-sales/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func langOf(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	h := Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = i18n.LangFrom(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return got, rec
}

func TestPrefsLanguageOrder(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	got, _ := langOf(t, req)
	assert.Equal(t, "pt", got)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	got, _ = langOf(t, req)
	assert.Equal(t, "en", got)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Language", "en-US")
	req.AddCookie(&http.Cookie{Name: "lang", Value: "pt"})
	got, _ = langOf(t, req)
	assert.Equal(t, "pt", got, "cookie beats header")

	req = httptest.NewRequest("GET", "/?lang=en", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "pt"})
	got, rec := langOf(t, req)
	assert.Equal(t, "en", got, "query beats cookie")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "lang=en")

	req = httptest.NewRequest("GET", "/?lang=xx", nil)
	got, rec = langOf(t, req)
	assert.Equal(t, "pt", got)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, rec.Body.String())
}

func TestLoggingKeepsStatus(t *testing.T) {
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestInstrument(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h := Instrument(m, "GET /sales", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/sales", nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET /sales", "404")))

	plain := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, Instrument(nil, "x", plain))
}

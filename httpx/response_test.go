package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONErrorMessage(w, http.StatusNotFound, "not_found", "Sale not found", map[string]string{"id": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "not_found" || body.Message != "Sale not found" {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func TestJSONNilPayload(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, nil)
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Fatalf("expected null body, got %q", w.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	if err := DecodeJSON(r, &dst); err != nil || dst.Name != "Ana" {
		t.Fatalf("decode failed: %v %#v", err, dst)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nome":"Ana"}`))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatalf("expected unknown field error")
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatalf("expected empty body error")
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?window=90&bad=x", nil)
	if got := QueryInt(r, "window", 30); got != 90 {
		t.Fatalf("window = %d", got)
	}
	if got := QueryInt(r, "bad", 30); got != 30 {
		t.Fatalf("bad = %d", got)
	}
	if got := QueryInt(r, "missing", 7); got != 7 {
		t.Fatalf("missing = %d", got)
	}
}

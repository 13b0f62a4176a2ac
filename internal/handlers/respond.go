package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/diewo77/go-sales/httpx"
	"github.com/diewo77/go-sales/i18n"
	"github.com/diewo77/go-sales/internal/metrics"
	"github.com/diewo77/go-sales/internal/services"
	"github.com/google/uuid"
)

// FieldError is one entry of the details of a validation failure.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// responder turns service errors into localized JSON error bodies.
type responder struct {
	metrics *metrics.ServerMetrics
}

func lang(r *http.Request) string { return i18n.LangFrom(r.Context()) }

func (h responder) errorCode(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	httpx.JSONErrorMessage(w, status, code, i18n.T(lang(r), code), details)
}

func (h responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *services.ValidationError
		nf  *services.NotFoundError
		pce *services.PartialCommitError
		pe  *services.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		details := make(map[string]FieldError, len(ve.Violations))
		for field, code := range ve.Violations {
			details[field] = FieldError{Code: code, Message: i18n.T(lang(r), code)}
		}
		h.errorCode(w, r, http.StatusUnprocessableEntity, "validation_failed", details)
	case errors.As(err, &nf):
		h.errorCode(w, r, http.StatusNotFound, "not_found", map[string]string{"entity": nf.Entity, "id": nf.ID})
	case errors.As(err, &pce):
		h.countStoreError("partial_commit")
		log.Printf("partial commit: %v", err)
		h.errorCode(w, r, http.StatusInternalServerError, "partial_commit", map[string]string{"sale_id": pce.SaleID.String()})
	case errors.As(err, &pe) && pe.Retryable():
		h.countStoreError("timeout")
		log.Printf("store timeout: %v", err)
		h.errorCode(w, r, http.StatusServiceUnavailable, "store_timeout", map[string]any{"retryable": true, "operation": pe.Op, "table": pe.Table})
	case errors.As(err, &pe):
		h.countStoreError("persistence")
		log.Printf("store error: %v", err)
		h.errorCode(w, r, http.StatusInternalServerError, "persistence_error", map[string]any{"retryable": false, "operation": pe.Op, "table": pe.Table})
	default:
		log.Printf("unexpected error: %v", err)
		h.errorCode(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}

func (h responder) countStoreError(kind string) {
	if h.metrics != nil {
		h.metrics.StoreErrors.WithLabelValues(kind).Inc()
	}
}

func (h responder) badJSON(w http.ResponseWriter, r *http.Request, err error) {
	httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", i18n.T(lang(r), "invalid_json"), err.Error())
}

// pathID parses the {id} path value, answering 400 when it is not a UUID.
func (h responder) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.errorCode(w, r, http.StatusBadRequest, "invalid_id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// customerName substitutes the localized placeholder for sales whose customer is gone.
func customerName(r *http.Request, name string) string {
	if name == "" {
		return i18n.T(lang(r), "unknown_customer")
	}
	return name
}

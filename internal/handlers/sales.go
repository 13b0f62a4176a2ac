package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/diewo77/go-sales/httpx"
	"github.com/diewo77/go-sales/i18n"
	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/services"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawAmount is a number typed by the user. It accepts a JSON number or a
// string ("12,50") and keeps the raw text for the composer to parse.
type RawAmount string

func (a *RawAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("amount must be a number or a string: %w", err)
		}
		*a = RawAmount(n)
	}
	return nil
}

type saleItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  RawAmount `json:"quantity"`
	Price     RawAmount `json:"price"`
}

// saleRequest is the body of POST /sales and POST /sales/preview. Omitted
// quantity and price keep the composer defaults (1 and the catalog price).
type saleRequest struct {
	CustomerID    uuid.UUID         `json:"customer_id"`
	Items         []saleItemRequest `json:"items"`
	Discount      RawAmount         `json:"discount"`
	Surcharge     RawAmount         `json:"surcharge"`
	PaymentMethod string            `json:"payment_method"`
	Notes         string            `json:"notes"`
}

type previewResponse struct {
	Draft    services.Draft        `json:"draft"`
	Subtotal decimal.Decimal       `json:"subtotal"`
	Total    decimal.Decimal       `json:"total"`
	Valid    bool                  `json:"valid"`
	Errors   map[string]FieldError `json:"errors,omitempty"`
}

type SaleHandler struct {
	responder
	store     store.Store
	reader    *services.Reader
	persister *services.Persister
}

func NewSaleHandler(s store.Store, reader *services.Reader, persister *services.Persister) *SaleHandler {
	return &SaleHandler{store: s, reader: reader, persister: persister}
}

// compose replays the request through a Composer against the current catalog.
func (h *SaleHandler) compose(ctx context.Context, req saleRequest) (services.Draft, error) {
	cat, err := services.LoadCatalog(ctx, h.store)
	if err != nil {
		return services.Draft{}, err
	}
	if req.CustomerID != uuid.Nil {
		if _, ok := cat.Customer(req.CustomerID); !ok {
			return services.Draft{}, &services.NotFoundError{Entity: "customer", ID: req.CustomerID.String()}
		}
	}

	c := services.NewComposer(cat)
	c.SelectCustomer(req.CustomerID)
	for i, item := range req.Items {
		idx := 0
		if i > 0 {
			idx = c.AddLineItem()
		}
		c.SetLineItemProduct(idx, item.ProductID)
		if item.Quantity != "" {
			c.UpdateLineItem(idx, services.FieldQuantity, string(item.Quantity))
		}
		if item.Price != "" {
			c.UpdateLineItem(idx, services.FieldPrice, string(item.Price))
		}
	}
	c.SetDiscount(string(req.Discount))
	c.SetSurcharge(string(req.Surcharge))
	c.SetNotes(req.Notes)
	badPayment := req.PaymentMethod != "" && !c.SetPaymentMethod(models.PaymentMethod(req.PaymentMethod))

	d := c.Draft()
	if len(req.Items) == 0 {
		d.Lines = nil
	}
	if badPayment {
		// keep the rejected value so validation reports it
		d.PaymentMethod = models.PaymentMethod(req.PaymentMethod)
	}
	return d, nil
}

func (h *SaleHandler) decode(w http.ResponseWriter, r *http.Request) (services.Draft, bool) {
	var req saleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.badJSON(w, r, err)
		return services.Draft{}, false
	}
	d, err := h.compose(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return services.Draft{}, false
	}
	return d, true
}

// Preview computes totals and validation messages without writing anything.
func (h *SaleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	d, ok := h.decode(w, r)
	if !ok {
		return
	}
	resp := previewResponse{Draft: d, Subtotal: d.Subtotal(), Total: d.Total(), Valid: true}
	if err := d.Validate(); err != nil {
		resp.Valid = false
		resp.Errors = make(map[string]FieldError)
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			for field, code := range ve.Violations {
				resp.Errors[field] = FieldError{Code: code, Message: i18n.T(lang(r), code)}
			}
		}
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	d, ok := h.decode(w, r)
	if !ok {
		return
	}
	sale, err := h.persister.Commit(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveSale(sale.Total)
	}
	detail, err := h.reader.GetDetail(r.Context(), sale.ID)
	if err != nil {
		// The sale is stored; answer with the committed header so clients do not resubmit it.
		log.Printf("sale %s committed but could not be re-read: %v", sale.ID, err)
		detail = services.SaleDetail{SaleSummary: services.SaleSummary{Sale: sale}}
	}
	detail.CustomerName = customerName(r, detail.CustomerName)
	httpx.JSON(w, http.StatusCreated, detail)
}

func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.reader.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range out {
		out[i].CustomerName = customerName(r, out[i].CustomerName)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.reader.GetDetail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail.CustomerName = customerName(r, detail.CustomerName)
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.reader.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SalesDeleted.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

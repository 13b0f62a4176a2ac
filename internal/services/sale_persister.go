package services

import (
	"context"
	"log"
	"time"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Persister commits drafts as one sales row plus its sale_line_items rows.
type Persister struct {
	store store.Store
	now   func() time.Time
}

func NewPersister(s store.Store) *Persister {
	return &Persister{store: s, now: time.Now}
}

// WithClock replaces the clock used to stamp SoldAt.
func (p *Persister) WithClock(now func() time.Time) *Persister {
	p.now = now
	return p
}

// Commit validates d, recomputes every amount from its lines and writes the
// sale. With a transactional store the header and lines are written
// atomically. Otherwise a failed line write triggers a compensating delete of
// the header; if that fails too the result is a *PartialCommitError.
// Product stock is not touched.
func (p *Persister) Commit(ctx context.Context, d Draft) (models.Sale, error) {
	if err := d.Validate(); err != nil {
		return models.Sale{}, err
	}
	sale, items := buildSaleRows(d, p.now())

	if tx, ok := p.store.(store.Transactor); ok {
		err := tx.Transaction(ctx, func(s store.Store) error {
			return writeSale(ctx, s, &sale, items)
		})
		if err != nil {
			return models.Sale{}, persistErr("commit", store.TableSales, err)
		}
		return sale, nil
	}
	return p.commitSequential(ctx, &sale, items)
}

func (p *Persister) commitSequential(ctx context.Context, sale *models.Sale, items []models.SaleLineItem) (models.Sale, error) {
	if err := p.store.Insert(ctx, store.TableSales, sale); err != nil {
		return models.Sale{}, persistErr("insert", store.TableSales, err)
	}
	err := p.store.Insert(ctx, store.TableSaleLineItems, &items)
	if err == nil {
		return *sale, nil
	}
	cause := &PersistenceError{Op: "insert", Table: store.TableSaleLineItems, Err: err}

	// The caller may already be gone; compensation must still run.
	cctx := context.WithoutCancel(ctx)
	where := store.Where{store.Eq("sale_id", sale.ID)}
	if _, derr := p.store.Delete(cctx, store.TableSaleLineItems, where); derr != nil {
		log.Printf("sale %s: compensating delete of line items failed: %v", sale.ID, derr)
		return models.Sale{}, &PartialCommitError{SaleID: sale.ID, Cause: cause}
	}
	if _, derr := p.store.Delete(cctx, store.TableSales, store.Where{store.Eq("id", sale.ID)}); derr != nil {
		log.Printf("sale %s: compensating delete of header failed: %v", sale.ID, derr)
		return models.Sale{}, &PartialCommitError{SaleID: sale.ID, Cause: cause}
	}
	return models.Sale{}, cause
}

func writeSale(ctx context.Context, s store.Store, sale *models.Sale, items []models.SaleLineItem) error {
	if err := s.Insert(ctx, store.TableSales, sale); err != nil {
		return persistErr("insert", store.TableSales, err)
	}
	if err := s.Insert(ctx, store.TableSaleLineItems, &items); err != nil {
		return persistErr("insert", store.TableSaleLineItems, err)
	}
	return nil
}

// buildSaleRows derives the header and line rows from the draft. Prices and
// adjustments are rounded to cents first so the stored rows satisfy
// total = subtotal - discount + surcharge exactly.
func buildSaleRows(d Draft, now time.Time) (models.Sale, []models.SaleLineItem) {
	sale := models.Sale{
		ID:            uuid.New(),
		CustomerID:    d.CustomerID,
		SoldAt:        now.UTC(),
		Discount:      d.Discount.Round(2),
		Surcharge:     d.Surcharge.Round(2),
		PaymentMethod: d.PaymentMethod,
		Notes:         d.Notes,
		Status:        models.SaleStatusCompleted,
	}
	items := make([]models.SaleLineItem, len(d.Lines))
	subtotal := decimal.Zero
	for i, l := range d.Lines {
		item := models.SaleLineItem{
			SaleID:      sale.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.Round(2),
			Position:    i,
		}
		item.Subtotal = item.LineSubtotal()
		subtotal = subtotal.Add(item.Subtotal)
		items[i] = item
	}
	sale.Subtotal = subtotal
	sale.Total = subtotal.Sub(sale.Discount).Add(sale.Surcharge)
	return sale, items
}

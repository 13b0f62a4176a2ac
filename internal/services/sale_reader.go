package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/google/uuid"
)

// SaleSummary is a sale header annotated with its customer's name. The name
// is empty when the customer row no longer exists.
type SaleSummary struct {
	models.Sale
	CustomerName string `json:"customer_name"`
}

// SaleDetail is a sale with its line items in insertion order.
type SaleDetail struct {
	SaleSummary
	Items []models.SaleLineItem `json:"items"`
}

// newestFirst breaks timestamp ties by id so repeated listings keep one order.
const newestFirst = "sold_at DESC, id DESC"

// selectBatch bounds the ids bound into a single IN condition.
var selectBatch = 500

// selectIn selects the rows whose column is in ids, one query per batch.
func selectIn[T any](ctx context.Context, s store.Store, table, column string, ids []uuid.UUID, order string, withDeleted bool) ([]T, error) {
	var out []T
	for start := 0; start < len(ids); start += selectBatch {
		end := min(start+selectBatch, len(ids))
		var page []T
		q := store.Query{Where: store.Where{store.In(column, ids[start:end])}, Order: order, WithDeleted: withDeleted}
		if err := s.Select(ctx, table, &page, q); err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}

// Reader lists, fetches and deletes committed sales.
type Reader struct {
	store store.Store
}

func NewReader(s store.Store) *Reader {
	return &Reader{store: s}
}

// List returns every sale, newest first. A non-empty filter keeps sales whose
// customer name or id contains it, ignoring case; it is applied in memory.
func (r *Reader) List(ctx context.Context, filter string) ([]SaleSummary, error) {
	var sales []models.Sale
	if err := r.store.Select(ctx, store.TableSales, &sales, store.Query{Order: newestFirst}); err != nil {
		return nil, persistErr("select", store.TableSales, err)
	}
	out, err := r.annotate(ctx, sales)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return out, nil
	}
	kept := out[:0]
	for _, s := range out {
		if strings.Contains(strings.ToLower(s.CustomerName), needle) || strings.Contains(s.ID.String(), needle) {
			kept = append(kept, s)
		}
	}
	return kept, nil
}

// Recent returns the latest limit sales.
func (r *Reader) Recent(ctx context.Context, limit int) ([]SaleSummary, error) {
	var sales []models.Sale
	if err := r.store.Select(ctx, store.TableSales, &sales, store.Query{Order: newestFirst, Limit: limit}); err != nil {
		return nil, persistErr("select", store.TableSales, err)
	}
	return r.annotate(ctx, sales)
}

// ListWithItems returns sales sold at or after since, newest first, each with
// its line items. Reports use it to avoid loading the full history.
func (r *Reader) ListWithItems(ctx context.Context, since time.Time) ([]SaleDetail, error) {
	var sales []models.Sale
	q := store.Query{Where: store.Where{store.Gte("sold_at", since.UTC())}, Order: newestFirst}
	if err := r.store.Select(ctx, store.TableSales, &sales, q); err != nil {
		return nil, persistErr("select", store.TableSales, err)
	}
	summaries, err := r.annotate(ctx, sales)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return []SaleDetail{}, nil
	}

	ids := make([]uuid.UUID, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}
	items, err := selectIn[models.SaleLineItem](ctx, r.store, store.TableSaleLineItems, "sale_id", ids, "position ASC", false)
	if err != nil {
		return nil, persistErr("select", store.TableSaleLineItems, err)
	}
	bySale := make(map[uuid.UUID][]models.SaleLineItem, len(sales))
	for _, it := range items {
		bySale[it.SaleID] = append(bySale[it.SaleID], it)
	}

	out := make([]SaleDetail, len(summaries))
	for i, s := range summaries {
		out[i] = SaleDetail{SaleSummary: s, Items: bySale[s.ID]}
	}
	return out, nil
}

// GetDetail returns the header, customer name and ordered line items of a sale.
func (r *Reader) GetDetail(ctx context.Context, id uuid.UUID) (SaleDetail, error) {
	var sales []models.Sale
	if err := r.store.Select(ctx, store.TableSales, &sales, store.Query{Where: store.Where{store.Eq("id", id)}, Limit: 1}); err != nil {
		return SaleDetail{}, persistErr("select", store.TableSales, err)
	}
	if len(sales) == 0 {
		return SaleDetail{}, &NotFoundError{Entity: "sale", ID: id.String()}
	}
	summaries, err := r.annotate(ctx, sales)
	if err != nil {
		return SaleDetail{}, err
	}
	var items []models.SaleLineItem
	iq := store.Query{Where: store.Where{store.Eq("sale_id", id)}, Order: "position ASC"}
	if err := r.store.Select(ctx, store.TableSaleLineItems, &items, iq); err != nil {
		return SaleDetail{}, persistErr("select", store.TableSaleLineItems, err)
	}
	return SaleDetail{SaleSummary: summaries[0], Items: items}, nil
}

// Delete removes the line items and then the header of a sale. With a
// transactional store both deletes happen atomically; otherwise a failure on
// the header leaves it in place without its lines, and the call can be retried.
func (r *Reader) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.store.Count(ctx, store.TableSales, store.Query{Where: store.Where{store.Eq("id", id)}})
	if err != nil {
		return persistErr("count", store.TableSales, err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "sale", ID: id.String()}
	}

	del := func(s store.Store) error {
		if _, err := s.Delete(ctx, store.TableSaleLineItems, store.Where{store.Eq("sale_id", id)}); err != nil {
			return persistErr("delete", store.TableSaleLineItems, err)
		}
		n, err := s.Delete(ctx, store.TableSales, store.Where{store.Eq("id", id)})
		if err != nil {
			return persistErr("delete", store.TableSales, err)
		}
		if n == 0 {
			return &NotFoundError{Entity: "sale", ID: id.String()}
		}
		return nil
	}
	if tx, ok := r.store.(store.Transactor); ok {
		return tx.Transaction(ctx, del)
	}
	return del(r.store)
}

// annotate attaches customer names, including soft-deleted customers.
func (r *Reader) annotate(ctx context.Context, sales []models.Sale) ([]SaleSummary, error) {
	out := make([]SaleSummary, len(sales))
	if len(sales) == 0 {
		return out, nil
	}
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, s := range sales {
		if !seen[s.CustomerID] {
			seen[s.CustomerID] = true
			ids = append(ids, s.CustomerID)
		}
	}
	customers, err := selectIn[models.Customer](ctx, r.store, store.TableCustomers, "id", ids, "", true)
	if err != nil {
		return nil, persistErr("select", store.TableCustomers, err)
	}
	names := make(map[uuid.UUID]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	for i, s := range sales {
		out[i] = SaleSummary{Sale: s, CustomerName: names[s.CustomerID]}
	}
	return out, nil
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeDraft(t *testing.T, s store.Store, f fixtures) Draft {
	t.Helper()
	cat, err := LoadCatalog(context.Background(), s)
	require.NoError(t, err)
	c := NewComposer(cat)
	c.SelectCustomer(f.ana.ID)
	c.SetLineItemProduct(0, f.coffee.ID)
	c.UpdateLineItem(0, FieldQuantity, "3")
	i := c.AddLineItem()
	c.SetLineItemProduct(i, f.cheese.ID)
	c.UpdateLineItem(i, FieldPrice, "30")
	c.SetDiscount("6.50")
	c.SetSurcharge("1")
	c.SetPaymentMethod(models.PaymentCard)
	c.SetNotes("balcão")
	return c.Draft()
}

func countRows(t *testing.T, s store.Store, table string) int64 {
	t.Helper()
	n, err := s.Count(context.Background(), table, store.Query{})
	require.NoError(t, err)
	return n
}

func TestCommitThenGetDetail(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	f := seedFixtures(t, s)
	draft := composeDraft(t, s, f)
	soldAt := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	sale, err := NewPersister(s).WithClock(func() time.Time { return soldAt }).Commit(ctx, draft)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sale.ID)
	assert.True(t, sale.SoldAt.Equal(soldAt))
	assert.Equal(t, models.SaleStatusCompleted, sale.Status)
	// 3*25.50 + 30 = 106.50; 106.50 - 6.50 + 1 = 101
	assert.True(t, sale.Subtotal.Equal(dec("106.5")), "subtotal %s", sale.Subtotal)
	assert.True(t, sale.Total.Equal(dec("101")), "total %s", sale.Total)

	detail, err := NewReader(s).GetDetail(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", detail.CustomerName)
	assert.True(t, detail.Total.Equal(sale.Total))
	assert.Equal(t, models.PaymentCard, detail.PaymentMethod)
	assert.Equal(t, "balcão", detail.Notes)
	require.Len(t, detail.Items, len(draft.Lines))
	for i, line := range draft.Lines {
		item := detail.Items[i]
		assert.Equal(t, line.ProductName, item.ProductName)
		assert.Equal(t, line.Quantity, item.Quantity)
		assert.True(t, line.UnitPrice.Equal(item.UnitPrice), "unit price line %d", i)
		assert.True(t, line.Subtotal().Equal(item.Subtotal), "subtotal line %d", i)
	}
}

func TestCommitRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	f := seedFixtures(t, s)
	draft := Draft{
		CustomerID:    f.bruno.ID,
		PaymentMethod: models.PaymentCash,
		Lines: []DraftLine{
			{ProductID: f.coffee.ID, ProductName: "Café Especial", Quantity: 2, UnitPrice: dec("10.005")},
		},
	}
	sale, err := NewPersister(s).Commit(ctx, draft)
	require.NoError(t, err)
	// unit price is rounded to cents before the subtotal is derived
	assert.True(t, sale.Subtotal.Equal(dec("20.02")), "subtotal %s", sale.Subtotal)
	assert.True(t, sale.Total.Equal(sale.Subtotal.Sub(sale.Discount).Add(sale.Surcharge)))
}

func TestCommitInvalidDraftWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	f := seedFixtures(t, s)
	seq := newSequentialStore(s)

	drafts := map[string]Draft{
		"no lines":        {CustomerID: f.ana.ID, PaymentMethod: models.PaymentCash},
		"missing product": {CustomerID: f.ana.ID, PaymentMethod: models.PaymentCash, Lines: []DraftLine{{Quantity: 1}}},
		"no customer":     {PaymentMethod: models.PaymentCash, Lines: []DraftLine{{ProductID: f.coffee.ID, Quantity: 1}}},
	}
	for name, d := range drafts {
		t.Run(name, func(t *testing.T) {
			_, err := NewPersister(seq).Commit(ctx, d)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
	assert.Zero(t, seq.inserts[store.TableSales])
	assert.Zero(t, seq.inserts[store.TableSaleLineItems])
	assert.Zero(t, countRows(t, s, store.TableSales))
}

func TestCommitDoesNotTouchStock(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	f := seedFixtures(t, s)
	_, err := NewPersister(s).Commit(ctx, composeDraft(t, s, f))
	require.NoError(t, err)
	p, err := NewProductService(s).Get(ctx, f.coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, f.coffee.Stock, p.Stock)
}

// lineFailingTx is transactional but fails every line item insert.
type lineFailingTx struct {
	*store.GormStore
}

func (s lineFailingTx) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return s.GormStore.Transaction(ctx, func(tx store.Store) error {
		seq := newSequentialStore(tx)
		seq.failInsert = store.TableSaleLineItems
		return fn(seq)
	})
}

func TestCommitTransactionRollsBackHeader(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	f := seedFixtures(t, s)

	_, err := NewPersister(lineFailingTx{s}).Commit(ctx, composeDraft(t, s, f))
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, store.TableSaleLineItems, pe.Table)
	assert.ErrorIs(t, err, errInjected)
	assert.Zero(t, countRows(t, s, store.TableSales))
}

func TestCommitSequentialCompensates(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	f := seedFixtures(t, s)
	seq := newSequentialStore(s)
	seq.failInsert = store.TableSaleLineItems

	_, err := NewPersister(seq).Commit(ctx, composeDraft(t, s, f))
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	var pce *PartialCommitError
	assert.False(t, errors.As(err, &pce), "compensation succeeded, no partial commit expected")
	assert.Zero(t, countRows(t, s, store.TableSales))
}

func TestCommitSequentialPartialCommit(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	f := seedFixtures(t, s)
	seq := newSequentialStore(s)
	seq.failInsert = store.TableSaleLineItems
	seq.failDelete = store.TableSales

	_, err := NewPersister(seq).Commit(ctx, composeDraft(t, s, f))
	var pce *PartialCommitError
	require.ErrorAs(t, err, &pce)
	assert.NotEqual(t, uuid.Nil, pce.SaleID)
	var pe *PersistenceError
	assert.ErrorAs(t, err, &pe, "a partial commit is also a persistence error")

	var orphans []models.Sale
	require.NoError(t, s.Select(ctx, store.TableSales, &orphans, store.Query{}))
	require.Len(t, orphans, 1)
	assert.Equal(t, pce.SaleID, orphans[0].ID)
}

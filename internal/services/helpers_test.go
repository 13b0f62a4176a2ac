package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *store.GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return store.NewGormStore(db, 5*time.Second)
}

type fixtures struct {
	ana, bruno     models.Customer
	coffee, cheese models.Product
}

func seedFixtures(t *testing.T, s store.Store) fixtures {
	t.Helper()
	ctx := context.Background()
	f := fixtures{
		ana:    models.Customer{Name: "Ana Souza"},
		bruno:  models.Customer{Name: "Bruno Lima"},
		coffee: models.Product{Name: "Café Especial", Category: "Bebidas", Price: decimal.RequireFromString("25.50"), Stock: 40},
		cheese: models.Product{Name: "Queijo Minas", Category: "Laticínios", Price: decimal.RequireFromString("32.00"), Stock: 5},
	}
	require.NoError(t, s.Insert(ctx, store.TableCustomers, &f.ana))
	require.NoError(t, s.Insert(ctx, store.TableCustomers, &f.bruno))
	require.NoError(t, s.Insert(ctx, store.TableProducts, &f.coffee))
	require.NoError(t, s.Insert(ctx, store.TableProducts, &f.cheese))
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sequentialStore hides the Transactor capability and can fail chosen calls.
type sequentialStore struct {
	store.Store
	failInsert string
	failDelete string
	inserts    map[string]int
}

var errInjected = errors.New("injected failure")

func newSequentialStore(s store.Store) *sequentialStore {
	return &sequentialStore{Store: s, inserts: map[string]int{}}
}

func (s *sequentialStore) Insert(ctx context.Context, table string, row any) error {
	s.inserts[table]++
	if table == s.failInsert {
		return errInjected
	}
	return s.Store.Insert(ctx, table, row)
}

func (s *sequentialStore) Delete(ctx context.Context, table string, where store.Where) (int64, error) {
	if table == s.failDelete {
		return 0, errInjected
	}
	return s.Store.Delete(ctx, table, where)
}

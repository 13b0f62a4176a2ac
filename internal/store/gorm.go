package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-sales/internal/models"
	"gorm.io/gorm"
)

// prototypes maps each table to a constructor of its model, used when gorm
// needs a schema and the caller only supplied a table name.
var prototypes = map[string]func() any{
	TableCustomers:     func() any { return &models.Customer{} },
	TableProducts:      func() any { return &models.Product{} },
	TableCategories:    func() any { return &models.Category{} },
	TableSales:         func() any { return &models.Sale{} },
	TableSaleLineItems: func() any { return &models.SaleLineItem{} },
	TableUsers:         func() any { return &models.User{} },
}

// GormStore implements Store and Transactor on top of gorm. Every operation
// runs under its own timeout.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormStore wraps db. A zero timeout disables the per-operation deadline.
func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	return &GormStore{db: db, timeout: timeout}
}

func (s *GormStore) run(ctx context.Context, op func(db *gorm.DB) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return classify(ctx, op(s.db.WithContext(ctx)))
}

func classify(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, gorm.ErrMissingWhereClause):
		return ErrMissingWhere
	}
	return err
}

func prototype(table string) (any, error) {
	newModel, ok := prototypes[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return newModel(), nil
}

func scope(db *gorm.DB, where Where) *gorm.DB {
	for _, c := range where {
		db = db.Where(c.expr, c.args...)
	}
	return db
}

func (s *GormStore) Insert(ctx context.Context, table string, row any) error {
	if _, err := prototype(table); err != nil {
		return err
	}
	return s.run(ctx, func(db *gorm.DB) error {
		return db.Table(table).Create(row).Error
	})
}

func (s *GormStore) Update(ctx context.Context, table string, where Where, patch map[string]any) (int64, error) {
	if len(where) == 0 {
		return 0, ErrMissingWhere
	}
	model, err := prototype(table)
	if err != nil {
		return 0, err
	}
	var affected int64
	err = s.run(ctx, func(db *gorm.DB) error {
		res := scope(db.Model(model), where).Updates(patch)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (s *GormStore) Delete(ctx context.Context, table string, where Where) (int64, error) {
	if len(where) == 0 {
		return 0, ErrMissingWhere
	}
	model, err := prototype(table)
	if err != nil {
		return 0, err
	}
	var affected int64
	err = s.run(ctx, func(db *gorm.DB) error {
		res := scope(db, where).Delete(model)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (s *GormStore) Select(ctx context.Context, table string, dest any, q Query) error {
	if _, err := prototype(table); err != nil {
		return err
	}
	return s.run(ctx, func(db *gorm.DB) error {
		db = scope(db.Table(table), q.Where)
		if q.WithDeleted {
			db = db.Unscoped()
		}
		if q.Order != "" {
			db = db.Order(q.Order)
		}
		if q.Limit > 0 {
			db = db.Limit(q.Limit)
		}
		return db.Find(dest).Error
	})
}

func (s *GormStore) Count(ctx context.Context, table string, q Query) (int64, error) {
	model, err := prototype(table)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.run(ctx, func(db *gorm.DB) error {
		db = scope(db.Model(model), q.Where)
		if q.WithDeleted {
			db = db.Unscoped()
		}
		return db.Count(&n).Error
	})
	return n, err
}

// Transaction runs fn inside a database transaction. The Store handed to fn
// keeps the per-operation timeout.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, timeout: s.timeout})
	})
	return classify(ctx, err)
}

// Ping checks connectivity, used by the health endpoint.
func (s *GormStore) Ping(ctx context.Context) error {
	return s.run(ctx, func(db *gorm.DB) error {
		return db.Exec("SELECT 1").Error
	})
}

// Package store is the data-access contract used by the services: plain
// insert/update/delete/select over named tables, with an optional transaction
// capability.
package store

import (
	"context"
	"errors"
	"strings"
)

// Table names.
const (
	TableCustomers     = "customers"
	TableProducts      = "products"
	TableCategories    = "categories"
	TableSales         = "sales"
	TableSaleLineItems = "sale_line_items"
	TableUsers         = "users"
)

var (
	// ErrTimeout wraps errors caused by an operation exceeding its deadline.
	// Callers may retry.
	ErrTimeout = errors.New("store: operation timed out")
	// ErrMissingWhere refuses updates and deletes without a predicate.
	ErrMissingWhere = errors.New("store: update or delete without predicate")
	// ErrUnknownTable is returned for table names outside the constants above.
	ErrUnknownTable = errors.New("store: unknown table")
)

// Store is implemented by every backend.
type Store interface {
	// Insert writes row and fills its generated fields (id, timestamps).
	Insert(ctx context.Context, table string, row any) error
	Update(ctx context.Context, table string, where Where, patch map[string]any) (int64, error)
	Delete(ctx context.Context, table string, where Where) (int64, error)
	// Select loads matching rows into dest, a pointer to a slice of models.
	Select(ctx context.Context, table string, dest any, q Query) error
	Count(ctx context.Context, table string, q Query) (int64, error)
}

// Transactor is implemented by stores able to run several writes atomically.
// fn receives a Store bound to the transaction; returning an error rolls back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// Query describes a select.
type Query struct {
	Where Where
	Order string
	Limit int
	// WithDeleted includes soft-deleted rows.
	WithDeleted bool
}

// Cond is one SQL predicate. Column names come from code, never from user input.
type Cond struct {
	expr string
	args []any
}

// Where is a conjunction of conditions.
type Where []Cond

func Eq(column string, value any) Cond {
	return Cond{expr: column + " = ?", args: []any{value}}
}

func In(column string, values any) Cond {
	return Cond{expr: column + " IN ?", args: []any{values}}
}

func Gte(column string, value any) Cond {
	return Cond{expr: column + " >= ?", args: []any{value}}
}

func Lt(column string, value any) Cond {
	return Cond{expr: column + " < ?", args: []any{value}}
}

// Contains matches rows where any of the columns contains term, ignoring case.
func Contains(term string, columns ...string) Cond {
	pattern := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = pattern
	}
	return Cond{expr: "(" + strings.Join(parts, " OR ") + ")", args: args}
}

// String renders the predicate for logs.
func (c Cond) String() string { return c.expr }

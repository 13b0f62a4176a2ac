package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/go-sales/internal/store"
	"github.com/diewo77/go-sales/validation"
	"github.com/google/uuid"
)

// ValidationError reports input that breaks a business rule. It is the
// caller's to fix; nothing was written.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + "=" + e.Violations[f]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func validationError(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// PersistenceError wraps a failed store call.
type PersistenceError struct {
	Op    string
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Retryable reports whether the failure was a timeout.
func (e *PersistenceError) Retryable() bool {
	return errors.Is(e.Err, store.ErrTimeout)
}

func persistErr(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Table: table, Err: err}
}

// PartialCommitError is a PersistenceError where the sale header was written,
// its line items were not, and the compensating delete failed too. SaleID
// names the orphaned header so it can be removed.
type PartialCommitError struct {
	SaleID uuid.UUID
	Cause  *PersistenceError
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("sale %s committed partially: %v", e.SaleID, e.Cause)
}

func (e *PartialCommitError) Unwrap() error { return e.Cause }

// IsRetryable reports whether err came from a store timeout.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return errors.Is(err, store.ErrTimeout)
}

package models

import (
	"github.com/google/uuid"
)

// ensureID assigns a fresh UUID when id is still the zero value.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Customer{},
		&Product{},
		&Sale{},
		&SaleLineItem{},
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod is how the customer paid.
type PaymentMethod string

const (
	PaymentCash            PaymentMethod = "cash"
	PaymentCard            PaymentMethod = "card"
	PaymentInstantTransfer PaymentMethod = "instant_transfer"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentInstantTransfer:
		return true
	}
	return false
}

// SaleStatus is the lifecycle state of a sale. Only completed sales are produced.
type SaleStatus string

const SaleStatusCompleted SaleStatus = "completed"

// Sale is the header row of a recorded sale.
// Invariants: Total = Subtotal - Discount + Surcharge and
// Subtotal = sum of the line item subtotals.
type Sale struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`
	SoldAt     time.Time `gorm:"index;not null" json:"sold_at"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	Surcharge decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"surcharge"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	PaymentMethod PaymentMethod `gorm:"size:32;not null" json:"payment_method"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	Status        SaleStatus    `gorm:"size:20;not null" json:"status"`
}

// BeforeCreate assigns the UUID primary key.
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// SaleLineItem is one product/quantity/price entry of a sale. ProductName and
// UnitPrice are snapshots taken when the sale was committed.
type SaleLineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	SaleID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"sale_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	// Position keeps insertion order within the sale.
	Position int `gorm:"not null" json:"position"`
}

// BeforeCreate assigns the UUID primary key.
func (i *SaleLineItem) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// LineSubtotal returns Quantity * UnitPrice.
func (i *SaleLineItem) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowStockThreshold is the quantity under which a product is reported as low on stock.
const LowStockThreshold = 10

// StockStatus buckets a product's stock quantity for the inventory view.
type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

// Product is a catalog item. Sales copy its name and price at the time of sale.
type Product struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:255;not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	// Category is the free-text label; renaming a Category does not touch it.
	Category string          `gorm:"size:100;not null" json:"category"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock    int             `gorm:"not null;default:0" json:"stock"`
	Barcode  string          `gorm:"size:64" json:"barcode,omitempty"`
}

// BeforeCreate assigns the UUID primary key.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// StockStatus classifies the current stock quantity.
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock < LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// StockLevel returns a 0-100 gauge: low stock fills the first half
// proportionally, healthy stock starts at 50 and saturates at 100.
func (p *Product) StockLevel() int {
	switch p.StockStatus() {
	case StockOut:
		return 0
	case StockLow:
		return p.Stock * 50 / LowStockThreshold
	default:
		return min(50+(p.Stock-LowStockThreshold), 100)
	}
}

// Category is a managed label offered when editing products.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Label     string    `gorm:"size:100;not null;uniqueIndex" json:"label"`
}

// BeforeCreate assigns the UUID primary key.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

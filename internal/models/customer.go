package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a buyer. Sales reference customers but never own them.
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name       string `gorm:"size:255;not null;index" json:"name"`
	Email      string `gorm:"size:255" json:"email,omitempty"`
	NationalID string `gorm:"size:11" json:"national_id,omitempty"` // CPF, digits only
	Phone      string `gorm:"size:11" json:"phone,omitempty"`       // digits only

	// Address
	PostalCode string `gorm:"size:8" json:"postal_code,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	Street     string `gorm:"size:255" json:"street,omitempty"`
	Number     string `gorm:"size:20" json:"number,omitempty"`
	District   string `gorm:"size:100" json:"district,omitempty"`
}

// BeforeCreate assigns the UUID primary key.
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// FullAddress formats the address as "Street, Number - District\nPostalCode City",
// leaving out whatever parts are empty.
func (c *Customer) FullAddress() string {
	line1 := c.Street
	if c.Number != "" {
		line1 = joinNonEmpty(", ", line1, c.Number)
	}
	if c.District != "" {
		line1 = joinNonEmpty(" - ", line1, c.District)
	}
	line2 := joinNonEmpty(" ", c.PostalCode, c.City)
	return joinNonEmpty("\n", line1, line2)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

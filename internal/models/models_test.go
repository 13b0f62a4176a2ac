package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPaymentMethod_Valid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentCash, PaymentCard, PaymentInstantTransfer} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if PaymentMethod("cheque").Valid() {
		t.Errorf("cheque should not be valid")
	}
}

func TestProduct_Stock(t *testing.T) {
	tests := []struct {
		name   string
		stock  int
		status StockStatus
		level  int
	}{
		{"empty", 0, StockOut, 0},
		{"low", 4, StockLow, 20},
		{"threshold", 10, StockIn, 50},
		{"healthy", 35, StockIn, 75},
		{"plenty", 500, StockIn, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Stock: tt.stock}
			if got := p.StockStatus(); got != tt.status {
				t.Errorf("StockStatus() = %q, want %q", got, tt.status)
			}
			if got := p.StockLevel(); got != tt.level {
				t.Errorf("StockLevel() = %d, want %d", got, tt.level)
			}
		})
	}
}

func TestCustomer_FullAddress(t *testing.T) {
	tests := []struct {
		name     string
		customer Customer
		want     string
	}{
		{
			name: "full address",
			customer: Customer{
				Street:     "Rua das Flores",
				Number:     "12",
				District:   "Centro",
				PostalCode: "01234567",
				City:       "São Paulo",
			},
			want: "Rua das Flores, 12 - Centro\n01234567 São Paulo",
		},
		{
			name:     "only city",
			customer: Customer{City: "Recife"},
			want:     "Recife",
		},
		{
			name:     "street and city",
			customer: Customer{Street: "Av. Brasil", City: "Rio de Janeiro"},
			want:     "Av. Brasil\nRio de Janeiro",
		},
		{
			name:     "empty",
			customer: Customer{},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.customer.FullAddress(); got != tt.want {
				t.Errorf("FullAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSaleLineItem_LineSubtotal(t *testing.T) {
	item := &SaleLineItem{Quantity: 3, UnitPrice: decimal.RequireFromString("19.90")}
	if got := item.LineSubtotal(); !got.Equal(decimal.RequireFromString("59.70")) {
		t.Errorf("LineSubtotal() = %s, want 59.70", got)
	}
}

func TestBeforeCreateKeepsExistingID(t *testing.T) {
	id := uuid.New()
	s := &Sale{ID: id}
	_ = s.BeforeCreate(nil)
	if s.ID != id {
		t.Errorf("BeforeCreate replaced an explicit id")
	}
	c := &Customer{}
	_ = c.BeforeCreate(nil)
	if c.ID == uuid.Nil {
		t.Errorf("BeforeCreate did not assign an id")
	}
}

package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineField names the editable numeric fields of a draft line.
type LineField string

const (
	FieldQuantity LineField = "quantity"
	FieldPrice    LineField = "price"
)

// DraftLine is one line of a sale under construction.
type DraftLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal returns Quantity * UnitPrice.
func (l DraftLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Draft is a sale that has not been committed.
type Draft struct {
	CustomerID    uuid.UUID            `json:"customer_id"`
	Lines         []DraftLine          `json:"items"`
	Discount      decimal.Decimal      `json:"discount"`
	Surcharge     decimal.Decimal      `json:"surcharge"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Notes         string               `json:"notes,omitempty"`
}

// Subtotal is the sum of the line subtotals.
func (d Draft) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range d.Lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// Total is Subtotal - Discount + Surcharge, unrounded.
func (d Draft) Total() decimal.Decimal {
	return d.Subtotal().Sub(d.Discount).Add(d.Surcharge)
}

// Validate checks that the draft can be committed: a customer is selected,
// there is at least one line and every line references a product.
func (d Draft) Validate() error {
	v := make(validation.Violations)
	if d.CustomerID == uuid.Nil {
		v["customer_id"] = "customer_required"
	}
	if len(d.Lines) == 0 {
		v["items"] = "items_required"
	}
	for i, l := range d.Lines {
		if l.ProductID == uuid.Nil {
			v[fmt.Sprintf("items[%d].product_id", i)] = "item_product_required"
		}
	}
	if !d.PaymentMethod.Valid() {
		v["payment_method"] = "invalid_payment"
	}
	return validationError(v)
}

// Composer assembles a Draft from user edits. It never touches the store;
// products are resolved through the Catalog.
type Composer struct {
	catalog *Catalog
	draft   Draft
}

// NewComposer starts a draft with one empty line, paid in cash.
func NewComposer(catalog *Catalog) *Composer {
	c := &Composer{catalog: catalog}
	c.draft.PaymentMethod = models.PaymentCash
	c.AddLineItem()
	return c
}

func (c *Composer) SelectCustomer(id uuid.UUID) {
	c.draft.CustomerID = id
}

// AddLineItem appends an empty line (no product, quantity 1, price 0) and returns its index.
func (c *Composer) AddLineItem() int {
	c.draft.Lines = append(c.draft.Lines, DraftLine{Quantity: 1, UnitPrice: decimal.Zero})
	return len(c.draft.Lines) - 1
}

// SetLineItemProduct points a line at a catalog product and copies its name
// and current price. Unknown products or indexes leave the line untouched.
func (c *Composer) SetLineItemProduct(index int, productID uuid.UUID) bool {
	if index < 0 || index >= len(c.draft.Lines) {
		return false
	}
	p, ok := c.catalog.Product(productID)
	if !ok {
		return false
	}
	l := &c.draft.Lines[index]
	l.ProductID = p.ID
	l.ProductName = p.Name
	l.UnitPrice = p.Price
	return true
}

// UpdateLineItem sets quantity or price from raw user input. Unparsable
// quantities become 1 and unparsable prices become 0.
func (c *Composer) UpdateLineItem(index int, field LineField, raw string) bool {
	if index < 0 || index >= len(c.draft.Lines) {
		return false
	}
	l := &c.draft.Lines[index]
	switch field {
	case FieldQuantity:
		l.Quantity = parseQuantity(raw)
	case FieldPrice:
		l.UnitPrice = parseAmount(raw)
	default:
		return false
	}
	return true
}

// RemoveLineItem deletes a line. The last remaining line cannot be removed.
func (c *Composer) RemoveLineItem(index int) bool {
	if len(c.draft.Lines) <= 1 || index < 0 || index >= len(c.draft.Lines) {
		return false
	}
	c.draft.Lines = append(c.draft.Lines[:index], c.draft.Lines[index+1:]...)
	return true
}

func (c *Composer) SetDiscount(raw string) {
	c.draft.Discount = parseAmount(raw)
}

func (c *Composer) SetSurcharge(raw string) {
	c.draft.Surcharge = parseAmount(raw)
}

// SetPaymentMethod ignores unknown methods.
func (c *Composer) SetPaymentMethod(m models.PaymentMethod) bool {
	if !m.Valid() {
		return false
	}
	c.draft.PaymentMethod = m
	return true
}

func (c *Composer) SetNotes(notes string) {
	c.draft.Notes = strings.TrimSpace(notes)
}

func (c *Composer) Subtotal() decimal.Decimal { return c.draft.Subtotal() }

func (c *Composer) ComputeTotal() decimal.Decimal { return c.draft.Total() }

func (c *Composer) Validate() error { return c.draft.Validate() }

// Draft returns a copy of the current draft.
func (c *Composer) Draft() Draft {
	d := c.draft
	d.Lines = append([]DraftLine(nil), c.draft.Lines...)
	return d
}

// MaxQuantity bounds a single line so its subtotal fits the money columns.
const MaxQuantity = 100000

// parseQuantity reads the leading digits of raw ("3.7" is 3, "1e30" is 1).
// Unparsable input, anything below 1 and anything above MaxQuantity yield 1.
func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && raw[end] == '+' {
		end++
	}
	start := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == start {
		return 1
	}
	n, err := strconv.Atoi(raw[start:end])
	if err != nil || n < 1 || n > MaxQuantity {
		return 1
	}
	return n
}

// parseAmount reads a money amount, accepting a comma as decimal separator.
// Unparsable or negative input yields 0.
func parseAmount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(normalizeDecimal(strings.TrimSpace(raw)))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func normalizeDecimal(raw string) string {
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		return strings.Replace(raw, ",", ".", 1)
	}
	return raw
}

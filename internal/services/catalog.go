package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/google/uuid"
)

// Catalog is a snapshot of customers and products used while composing a
// sale: lookup by id and case-insensitive name search.
type Catalog struct {
	customers  []models.Customer
	products   []models.Product
	customerAt map[uuid.UUID]int
	productAt  map[uuid.UUID]int
}

// LoadCatalog reads every active customer and product, ordered by name.
func LoadCatalog(ctx context.Context, s store.Store) (*Catalog, error) {
	var customers []models.Customer
	if err := s.Select(ctx, store.TableCustomers, &customers, store.Query{Order: "name ASC"}); err != nil {
		return nil, persistErr("select", store.TableCustomers, err)
	}
	var products []models.Product
	if err := s.Select(ctx, store.TableProducts, &products, store.Query{Order: "name ASC"}); err != nil {
		return nil, persistErr("select", store.TableProducts, err)
	}
	return NewCatalog(customers, products), nil
}

// NewCatalog indexes the given customers and products.
func NewCatalog(customers []models.Customer, products []models.Product) *Catalog {
	c := &Catalog{
		customers:  customers,
		products:   products,
		customerAt: make(map[uuid.UUID]int, len(customers)),
		productAt:  make(map[uuid.UUID]int, len(products)),
	}
	for i, cu := range customers {
		c.customerAt[cu.ID] = i
	}
	for i, p := range products {
		c.productAt[p.ID] = i
	}
	return c
}

func (c *Catalog) Customer(id uuid.UUID) (models.Customer, bool) {
	i, ok := c.customerAt[id]
	if !ok {
		return models.Customer{}, false
	}
	return c.customers[i], true
}

func (c *Catalog) Product(id uuid.UUID) (models.Product, bool) {
	i, ok := c.productAt[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Customers() []models.Customer { return c.customers }

func (c *Catalog) Products() []models.Product { return c.products }

// SearchCustomers returns customers whose name contains term. Order is kept.
func (c *Catalog) SearchCustomers(term string) []models.Customer {
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []models.Customer
	for _, cu := range c.customers {
		if strings.Contains(strings.ToLower(cu.Name), needle) {
			out = append(out, cu)
		}
	}
	return out
}

// SearchProducts returns products whose name or category contains term. Order is kept.
func (c *Catalog) SearchProducts(term string) []models.Product {
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []models.Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/diewo77/go-sales/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInput carries the editable product fields.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Barcode     string          `json:"barcode"`
}

func (in ProductInput) normalized() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Price = in.Price.Round(2)
	return in
}

func (in ProductInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Required("category", in.Category, v)
	validation.NonNegativeDecimal("price", in.Price, v)
	validation.MinInt("stock", in.Stock, 0, v)
	return validationError(v)
}

// InventoryItem is a product annotated with its stock status.
type InventoryItem struct {
	models.Product
	Status models.StockStatus `json:"status"`
	Level  int                `json:"level"`
}

// ProductService manages products and the inventory view.
type ProductService struct {
	store store.Store
}

func NewProductService(s store.Store) *ProductService {
	return &ProductService{store: s}
}

func (s *ProductService) search(ctx context.Context, q, order string) ([]models.Product, error) {
	query := store.Query{Order: order}
	if q = strings.TrimSpace(q); q != "" {
		query.Where = store.Where{store.Contains(q, "name", "category")}
	}
	var out []models.Product
	if err := s.store.Select(ctx, store.TableProducts, &out, query); err != nil {
		return nil, persistErr("select", store.TableProducts, err)
	}
	return out, nil
}

// List returns products by name, optionally filtered by name or category.
func (s *ProductService) List(ctx context.Context, q string) ([]models.Product, error) {
	return s.search(ctx, q, "name ASC")
}

// Inventory lists products from the lowest stock up, with their status.
func (s *ProductService) Inventory(ctx context.Context, q string) ([]InventoryItem, error) {
	products, err := s.search(ctx, q, "stock ASC, name ASC")
	if err != nil {
		return nil, err
	}
	out := make([]InventoryItem, len(products))
	for i := range products {
		p := &products[i]
		out[i] = InventoryItem{Product: *p, Status: p.StockStatus(), Level: p.StockLevel()}
	}
	return out, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (models.Product, error) {
	var out []models.Product
	if err := s.store.Select(ctx, store.TableProducts, &out, store.Query{Where: store.Where{store.Eq("id", id)}, Limit: 1}); err != nil {
		return models.Product{}, persistErr("select", store.TableProducts, err)
	}
	if len(out) == 0 {
		return models.Product{}, &NotFoundError{Entity: "product", ID: id.String()}
	}
	return out[0], nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Product{}, err
	}
	p := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		Barcode:     in.Barcode,
	}
	if err := s.store.Insert(ctx, store.TableProducts, &p); err != nil {
		return models.Product{}, persistErr("insert", store.TableProducts, err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (models.Product, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Product{}, err
	}
	n, err := s.store.Update(ctx, store.TableProducts, store.Where{store.Eq("id", id)}, map[string]any{
		"name":        in.Name,
		"description": in.Description,
		"category":    in.Category,
		"price":       in.Price,
		"stock":       in.Stock,
		"barcode":     in.Barcode,
	})
	if err != nil {
		return models.Product{}, persistErr("update", store.TableProducts, err)
	}
	if n == 0 {
		return models.Product{}, &NotFoundError{Entity: "product", ID: id.String()}
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the product. Line items keep their name and price snapshot.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.Delete(ctx, store.TableProducts, store.Where{store.Eq("id", id)})
	if err != nil {
		return persistErr("delete", store.TableProducts, err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "product", ID: id.String()}
	}
	return nil
}

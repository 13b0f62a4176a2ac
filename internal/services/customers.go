package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/diewo77/go-sales/validation"
	"github.com/google/uuid"
)

// CustomerInput carries the editable customer fields. Formatting characters
// in national id, phone and postal code are stripped before storage.
type CustomerInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	District   string `json:"district"`
}

func (in CustomerInput) normalized() CustomerInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.NationalID = validation.Digits(in.NationalID)
	in.Phone = validation.Digits(in.Phone)
	in.PostalCode = validation.Digits(in.PostalCode)
	in.City = strings.TrimSpace(in.City)
	in.Street = strings.TrimSpace(in.Street)
	in.Number = strings.TrimSpace(in.Number)
	in.District = strings.TrimSpace(in.District)
	return in
}

func (in CustomerInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	validation.NationalID("national_id", in.NationalID, v)
	validation.Phone("phone", in.Phone, v)
	validation.PostalCode("postal_code", in.PostalCode, v)
	return validationError(v)
}

func (in CustomerInput) patch() map[string]any {
	return map[string]any{
		"name":        in.Name,
		"email":       in.Email,
		"national_id": in.NationalID,
		"phone":       in.Phone,
		"postal_code": in.PostalCode,
		"city":        in.City,
		"street":      in.Street,
		"number":      in.Number,
		"district":    in.District,
	}
}

// CustomerService manages customers.
type CustomerService struct {
	store store.Store
}

func NewCustomerService(s store.Store) *CustomerService {
	return &CustomerService{store: s}
}

// List returns customers newest first, optionally filtered by name or email.
func (s *CustomerService) List(ctx context.Context, q string) ([]models.Customer, error) {
	query := store.Query{Order: "created_at DESC"}
	if q = strings.TrimSpace(q); q != "" {
		query.Where = store.Where{store.Contains(q, "name", "email")}
	}
	var out []models.Customer
	if err := s.store.Select(ctx, store.TableCustomers, &out, query); err != nil {
		return nil, persistErr("select", store.TableCustomers, err)
	}
	return out, nil
}

func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (models.Customer, error) {
	var out []models.Customer
	if err := s.store.Select(ctx, store.TableCustomers, &out, store.Query{Where: store.Where{store.Eq("id", id)}, Limit: 1}); err != nil {
		return models.Customer{}, persistErr("select", store.TableCustomers, err)
	}
	if len(out) == 0 {
		return models.Customer{}, &NotFoundError{Entity: "customer", ID: id.String()}
	}
	return out[0], nil
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (models.Customer, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Customer{}, err
	}
	c := models.Customer{
		Name:       in.Name,
		Email:      in.Email,
		NationalID: in.NationalID,
		Phone:      in.Phone,
		PostalCode: in.PostalCode,
		City:       in.City,
		Street:     in.Street,
		Number:     in.Number,
		District:   in.District,
	}
	if err := s.store.Insert(ctx, store.TableCustomers, &c); err != nil {
		return models.Customer{}, persistErr("insert", store.TableCustomers, err)
	}
	return c, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, in CustomerInput) (models.Customer, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Customer{}, err
	}
	n, err := s.store.Update(ctx, store.TableCustomers, store.Where{store.Eq("id", id)}, in.patch())
	if err != nil {
		return models.Customer{}, persistErr("update", store.TableCustomers, err)
	}
	if n == 0 {
		return models.Customer{}, &NotFoundError{Entity: "customer", ID: id.String()}
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the customer. Past sales keep showing the name.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.Delete(ctx, store.TableCustomers, store.Where{store.Eq("id", id)})
	if err != nil {
		return persistErr("delete", store.TableCustomers, err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "customer", ID: id.String()}
	}
	return nil
}

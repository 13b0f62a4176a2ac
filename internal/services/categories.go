package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/diewo77/go-sales/validation"
	"github.com/google/uuid"
)

// CategoryService manages the category labels offered for products.
// Renaming or deleting a category never rewrites products.
type CategoryService struct {
	store store.Store
}

func NewCategoryService(s store.Store) *CategoryService {
	return &CategoryService{store: s}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.store.Select(ctx, store.TableCategories, &out, store.Query{Order: "label ASC"}); err != nil {
		return nil, persistErr("select", store.TableCategories, err)
	}
	return out, nil
}

func validateLabel(label string) error {
	v := make(validation.Violations)
	validation.Required("label", label, v)
	return validationError(v)
}

// checkLabelFree reports label_taken when another category already uses label.
func (s *CategoryService) checkLabelFree(ctx context.Context, label string, self uuid.UUID) error {
	var same []models.Category
	if err := s.store.Select(ctx, store.TableCategories, &same, store.Query{Where: store.Where{store.Eq("label", label)}}); err != nil {
		return persistErr("select", store.TableCategories, err)
	}
	for _, c := range same {
		if c.ID != self {
			return &ValidationError{Violations: validation.Violations{"label": "label_taken"}}
		}
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, label string) (models.Category, error) {
	label = strings.TrimSpace(label)
	if err := validateLabel(label); err != nil {
		return models.Category{}, err
	}
	if err := s.checkLabelFree(ctx, label, uuid.Nil); err != nil {
		return models.Category{}, err
	}
	c := models.Category{Label: label}
	if err := s.store.Insert(ctx, store.TableCategories, &c); err != nil {
		return models.Category{}, persistErr("insert", store.TableCategories, err)
	}
	return c, nil
}

func (s *CategoryService) Rename(ctx context.Context, id uuid.UUID, label string) (models.Category, error) {
	label = strings.TrimSpace(label)
	if err := validateLabel(label); err != nil {
		return models.Category{}, err
	}
	if err := s.checkLabelFree(ctx, label, id); err != nil {
		return models.Category{}, err
	}
	n, err := s.store.Update(ctx, store.TableCategories, store.Where{store.Eq("id", id)}, map[string]any{"label": label})
	if err != nil {
		return models.Category{}, persistErr("update", store.TableCategories, err)
	}
	if n == 0 {
		return models.Category{}, &NotFoundError{Entity: "category", ID: id.String()}
	}
	var out []models.Category
	if err := s.store.Select(ctx, store.TableCategories, &out, store.Query{Where: store.Where{store.Eq("id", id)}}); err != nil {
		return models.Category{}, persistErr("select", store.TableCategories, err)
	}
	if len(out) == 0 {
		return models.Category{}, &NotFoundError{Entity: "category", ID: id.String()}
	}
	return out[0], nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.Delete(ctx, store.TableCategories, store.Where{store.Eq("id", id)})
	if err != nil {
		return persistErr("delete", store.TableCategories, err)
	}
	if n == 0 {
		return &NotFoundError{Entity: "category", ID: id.String()}
	}
	return nil
}

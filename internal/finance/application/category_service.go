package application

import (
	"context"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type CategoryService struct {
	repo domain.CategoryRepository
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// GetAllCategories lists categories, optionally restricted to one type. An empty slice is
// returned instead of nil so handlers always encode a JSON array.
func (s *CategoryService) GetAllCategories(ctx context.Context, categoryType string) ([]domain.Category, error) {
	if categoryType != "" && !domain.IsValidTransactionType(categoryType) {
		return nil, financeErrors.NewValidationError("Type must be 'income' or 'expense'")
	}
	categories, err := s.repo.FindAll(ctx, categoryType)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error) {
	return s.repo.FindByID(ctx, categoryID)
}

func (s *CategoryService) CreateCategory(ctx context.Context, category *domain.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, category)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, category domain.Category) error {
	if err := category.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, category)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID int64) error {
	return s.repo.Delete(ctx, categoryID)
}

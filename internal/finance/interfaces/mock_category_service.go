package interfaces

import (
	"context"
	"errors"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type MockCategoryService struct {
	categories []domain.Category
	shouldFail bool
}

var errMockService = errors.New("service error")

func (m *MockCategoryService) GetAllCategories(_ context.Context, categoryType string) ([]domain.Category, error) {
	if m.shouldFail {
		return nil, errMockService
	}
	var categories []domain.Category
	for _, c := range m.categories {
		if categoryType == "" || c.Type == categoryType {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (m *MockCategoryService) CreateCategory(_ context.Context, category *domain.Category) error {
	if m.shouldFail {
		return errMockService
	}
	if err := category.Validate(); err != nil {
		return err
	}
	category.ID = int64(len(m.categories) + 1)
	m.categories = append(m.categories, *category)
	return nil
}

func (m *MockCategoryService) UpdateCategory(context.Context, domain.Category) error {
	if m.shouldFail {
		return errMockService
	}
	return nil
}

func (m *MockCategoryService) DeleteCategory(context.Context, int64) error {
	if m.shouldFail {
		return errMockService
	}
	return nil
}

package application

import (
	"context"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type MockCategoryService struct {
	Categories map[int64]domain.Category
}

func (m *MockCategoryService) GetCategory(_ context.Context, categoryID int64) (*domain.Category, error) {
	category, ok := m.Categories[categoryID]
	if !ok {
		return nil, financeErrors.ErrCategoryNotFound
	}
	return &category, nil
}

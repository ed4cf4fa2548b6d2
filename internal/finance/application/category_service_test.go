package application

import (
	"context"
	"testing"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_CreateAndList(t *testing.T) {
	repo := &infrastructure.MockCategoryRepository{}
	service := NewCategoryService(repo)

	food := &domain.Category{Name: "  Food ", Type: domain.TypeExpense}
	require.NoError(t, service.CreateCategory(context.Background(), food))
	assert.Equal(t, "Food", food.Name)
	require.NoError(t, service.CreateCategory(context.Background(), &domain.Category{Name: "Salary", Type: domain.TypeIncome}))

	expenses, err := service.GetAllCategories(context.Background(), domain.TypeExpense)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].Name)

	all, err := service.GetAllCategories(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCategoryService_Validation(t *testing.T) {
	service := NewCategoryService(&infrastructure.MockCategoryRepository{})

	err := service.CreateCategory(context.Background(), &domain.Category{Name: "   ", Type: domain.TypeExpense})
	assert.True(t, financeErrors.IsValidationError(err))

	err = service.CreateCategory(context.Background(), &domain.Category{Name: "Rent", Type: "transfer"})
	assert.True(t, financeErrors.IsValidationError(err))

	_, err = service.GetAllCategories(context.Background(), "transfer")
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestCategoryService_DeleteInUse(t *testing.T) {
	repo := &infrastructure.MockCategoryRepository{
		Categories: []domain.Category{{ID: 1, Name: "Food", Type: domain.TypeExpense}, {ID: 2, Name: "Fun", Type: domain.TypeExpense}},
		InUse:      func(categoryID int64) bool { return categoryID == 1 },
	}
	service := NewCategoryService(repo)

	assert.ErrorIs(t, service.DeleteCategory(context.Background(), 1), financeErrors.ErrCategoryInUse)
	assert.NoError(t, service.DeleteCategory(context.Background(), 2))
	assert.ErrorIs(t, service.DeleteCategory(context.Background(), 2), financeErrors.ErrCategoryNotFound)
	assert.Len(t, repo.Categories, 1)
}

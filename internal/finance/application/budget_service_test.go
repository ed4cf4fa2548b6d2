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

func TestCreateBudget(t *testing.T) {
	repo := &infrastructure.MockBudgetRepository{}
	service := NewBudgetService(repo, newCategoryService())

	budget := &domain.Budget{UserID: testUserID, CategoryID: 1, LimitAmount: amount("500.006"), Period: domain.PeriodMonthly}
	require.NoError(t, service.CreateBudget(context.Background(), budget))

	assert.NotZero(t, budget.ID)
	assert.Equal(t, "Food", budget.CategoryName)
	assert.Equal(t, "500.01", budget.LimitAmount.StringFixed(2))
}

func TestCreateBudget_DuplicatesAllowed(t *testing.T) {
	repo := &infrastructure.MockBudgetRepository{}
	service := NewBudgetService(repo, newCategoryService())

	for i := 0; i < 2; i++ {
		budget := &domain.Budget{UserID: testUserID, CategoryID: 1, LimitAmount: amount("100"), Period: domain.PeriodWeekly}
		require.NoError(t, service.CreateBudget(context.Background(), budget))
	}

	budgets, err := service.GetUserBudgets(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Len(t, budgets, 2)
}

func TestCreateBudget_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		budget  domain.Budget
		wantErr error
	}{
		{name: "income category", budget: domain.Budget{CategoryID: 2, LimitAmount: amount("10"), Period: domain.PeriodMonthly}, wantErr: financeErrors.ErrBudgetCategoryNotExpense},
		{name: "unknown category", budget: domain.Budget{CategoryID: 42, LimitAmount: amount("10"), Period: domain.PeriodMonthly}, wantErr: financeErrors.ErrInvalidCategory},
		{name: "bad period", budget: domain.Budget{CategoryID: 1, LimitAmount: amount("10"), Period: "yearly"}},
		{name: "negative limit", budget: domain.Budget{CategoryID: 1, LimitAmount: amount("-10"), Period: domain.PeriodWeekly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &infrastructure.MockBudgetRepository{}
			service := NewBudgetService(repo, newCategoryService())
			budget := tt.budget
			budget.UserID = testUserID

			err := service.CreateBudget(context.Background(), &budget)
			require.Error(t, err)
			assert.True(t, financeErrors.IsValidationError(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, repo.Budgets)
		})
	}
}

func TestDeleteBudget_OnlyOwner(t *testing.T) {
	repo := &infrastructure.MockBudgetRepository{
		Budgets: []domain.Budget{{ID: 7, UserID: "owner", CategoryID: 1, LimitAmount: amount("10"), Period: domain.PeriodWeekly}},
	}
	service := NewBudgetService(repo, newCategoryService())

	assert.ErrorIs(t, service.DeleteBudget(context.Background(), 7, "intruder"), financeErrors.ErrBudgetNotFound)
	assert.NoError(t, service.DeleteBudget(context.Background(), 7, "owner"))
	assert.Empty(t, repo.Budgets)
}

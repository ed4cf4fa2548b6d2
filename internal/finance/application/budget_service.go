package application

import (
	"context"
	"errors"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type BudgetService struct {
	repo            domain.BudgetRepository
	categoryService CategoryServiceInterface
}

func NewBudgetService(repo domain.BudgetRepository, categoryService CategoryServiceInterface) *BudgetService {
	return &BudgetService{repo: repo, categoryService: categoryService}
}

// checkCategory requires an existing expense category and fills in its name.
func (s *BudgetService) checkCategory(ctx context.Context, budget *domain.Budget) error {
	category, err := s.categoryService.GetCategory(ctx, budget.CategoryID)
	if err != nil {
		if errors.Is(err, financeErrors.ErrCategoryNotFound) {
			return financeErrors.ErrInvalidCategory
		}
		return err
	}
	if category.Type != domain.TypeExpense {
		return financeErrors.ErrBudgetCategoryNotExpense
	}
	budget.CategoryName = category.Name
	return nil
}

func (s *BudgetService) CreateBudget(ctx context.Context, budget *domain.Budget) error {
	budget.LimitAmount = budget.LimitAmount.Round(2)
	if err := budget.Validate(); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, budget); err != nil {
		return err
	}
	return s.repo.Save(ctx, budget)
}

func (s *BudgetService) GetUserBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	budgets, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if budgets == nil {
		return []domain.Budget{}, nil
	}
	return budgets, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, budgetID int64, userID string) (*domain.Budget, error) {
	return s.repo.FindByID(ctx, budgetID, userID)
}

func (s *BudgetService) UpdateBudget(ctx context.Context, budget *domain.Budget) error {
	if _, err := s.repo.FindByID(ctx, budget.ID, budget.UserID); err != nil {
		return err
	}
	budget.LimitAmount = budget.LimitAmount.Round(2)
	if err := budget.Validate(); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, budget); err != nil {
		return err
	}
	return s.repo.Update(ctx, budget)
}

func (s *BudgetService) DeleteBudget(ctx context.Context, budgetID int64, userID string) error {
	return s.repo.Delete(ctx, budgetID, userID)
}

package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type MockBudgetRepository struct {
	mu      sync.Mutex
	Budgets []domain.Budget
	nextID  int64
}

func (m *MockBudgetRepository) Save(_ context.Context, budget *domain.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	for _, b := range m.Budgets {
		if b.ID >= m.nextID {
			m.nextID = b.ID + 1
		}
	}
	now := time.Now().UTC()
	budget.ID = m.nextID
	budget.CreatedAt = now
	budget.UpdatedAt = now
	m.Budgets = append(m.Budgets, *budget)
	return nil
}

func (m *MockBudgetRepository) FindByID(_ context.Context, budgetID int64, userID string) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.Budgets {
		if b.ID == budgetID && b.UserID == userID {
			found := b
			return &found, nil
		}
	}
	return nil, financeErrors.ErrBudgetNotFound
}

func (m *MockBudgetRepository) FindByUser(_ context.Context, userID string) ([]domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var budgets []domain.Budget
	for _, b := range m.Budgets {
		if b.UserID == userID {
			budgets = append(budgets, b)
		}
	}
	return budgets, nil
}

func (m *MockBudgetRepository) Update(_ context.Context, budget *domain.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.Budgets {
		if b.ID == budget.ID && b.UserID == budget.UserID {
			budget.CreatedAt = b.CreatedAt
			budget.UpdatedAt = time.Now().UTC()
			m.Budgets[i] = *budget
			return nil
		}
	}
	return financeErrors.ErrBudgetNotFound
}

func (m *MockBudgetRepository) Delete(_ context.Context, budgetID int64, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.Budgets {
		if b.ID == budgetID && b.UserID == userID {
			m.Budgets = append(m.Budgets[:i], m.Budgets[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrBudgetNotFound
}

package domain

import (
	"context"
	"strings"

	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

const maxCategoryNameLength = 100

func IsValidTransactionType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Category is shared by all users; transactions and budgets point at it by ID.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // "income" or "expense"
}

func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return errors.NewValidationError("Category name is required")
	}
	if len(c.Name) > maxCategoryNameLength {
		return errors.NewValidationError("Category name must be of length less than 100")
	}
	if !IsValidTransactionType(c.Type) {
		return errors.NewValidationError("Type must be 'income' or 'expense'")
	}
	return nil
}

type CategoryRepository interface {
	FindAll(ctx context.Context, categoryType string) ([]Category, error)
	FindByID(ctx context.Context, categoryID int64) (*Category, error)
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category Category) error
	Delete(ctx context.Context, categoryID int64) error
}

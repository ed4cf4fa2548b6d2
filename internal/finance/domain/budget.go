package domain

import (
	"context"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

func IsValidBudgetPeriod(p string) bool {
	return p == PeriodWeekly || p == PeriodMonthly
}

// Budget caps spending in one category over a rolling week or the current calendar month.
// Several budgets for the same category and period may coexist.
type Budget struct {
	ID           int64           `json:"id"`
	UserID       string          `json:"-"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	LimitAmount  decimal.Decimal `json:"limit_amount"`
	Period       string          `json:"period"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (b *Budget) Validate() error {
	if b.LimitAmount.IsNegative() {
		return errors.NewValidationError("Limit amount must not be negative")
	}
	if !IsValidBudgetPeriod(b.Period) {
		return errors.NewValidationError("Period must be 'weekly' or 'monthly'")
	}
	if b.CategoryID <= 0 {
		return errors.NewValidationError("Category ID must be provided")
	}
	return nil
}

type BudgetRepository interface {
	Save(ctx context.Context, budget *Budget) error
	FindByID(ctx context.Context, budgetID int64, userID string) (*Budget, error)
	FindByUser(ctx context.Context, userID string) ([]Budget, error)
	Update(ctx context.Context, budget *Budget) error
	Delete(ctx context.Context, budgetID int64, userID string) error
}

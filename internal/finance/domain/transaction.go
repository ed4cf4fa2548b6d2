package domain

import (
	"context"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const maxNoteLength = 255

type TransactionRepository interface {
	Save(ctx context.Context, transaction *Transaction) error
	SaveAll(ctx context.Context, transactions []*Transaction) error
	FindByID(ctx context.Context, transactionID int64, userID string) (*Transaction, error)
	Find(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	Update(ctx context.Context, transaction *Transaction) error
	Delete(ctx context.Context, transactionID int64, userID string) error
	GetTransactionsInDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]Transaction, error)
	SumAmount(ctx context.Context, filter SumFilter) (decimal.Decimal, error)
	CountByType(ctx context.Context, userID, transactionType string) (int, error)
}

type Transaction struct {
	ID           int64           `json:"id"`
	UserID       string          `json:"-"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	// Type is stored independently of the category's type and is not forced to match it.
	Type      string    `json:"type"`
	Date      time.Time `json:"date"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Transaction) RoundToTwoDecimalPlaces() {
	t.Amount = t.Amount.Round(2)
}

// NormalizeDate drops the clock part; transactions are dated by calendar day.
func (t *Transaction) NormalizeDate() {
	t.Date = TruncateToDay(t.Date)
}

func (t *Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return errors.NewValidationError("Amount must not be negative")
	}
	if !IsValidTransactionType(t.Type) {
		return errors.NewValidationError("Type must be 'income' or 'expense'")
	}
	if t.Date.IsZero() {
		return errors.NewValidationError("Date is required")
	}
	if len(t.Note) > maxNoteLength {
		return errors.NewValidationError("Note must be of length less than 255")
	}
	if t.CategoryID <= 0 {
		return errors.NewValidationError("Category ID must be provided")
	}
	return nil
}

type TransactionFilter struct {
	UserID     string
	Type       string
	CategoryID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Page       int
}

// SumFilter selects transactions for an aggregate: user and type are required,
// the date window is From (inclusive) up to an optional To (inclusive).
type SumFilter struct {
	UserID     string
	Type       string
	CategoryID *int64
	From       time.Time
	To         *time.Time
}

func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

package application

import (
	"context"
	"errors"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type CategoryServiceInterface interface {
	GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error)
}

type TransactionService struct {
	repo            domain.TransactionRepository
	categoryService CategoryServiceInterface
}

func NewTransactionService(repo domain.TransactionRepository, categoryService CategoryServiceInterface) *TransactionService {
	return &TransactionService{repo: repo, categoryService: categoryService}
}

type TransactionSummary struct {
	Year         int                     `json:"year"`
	IncomeTotal  decimal.Decimal         `json:"income_total"`
	ExpenseTotal decimal.Decimal         `json:"expense_total"`
	Months       map[string]MonthSummary `json:"months"`
}

type MonthSummary struct {
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	Weeks        []WeekSummary   `json:"weeks"`
}

type WeekSummary struct {
	Week         int             `json:"week"`
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
}

// GetTransactionSummary groups the user's transactions by year, month name and ISO week.
func (s *TransactionService) GetTransactionSummary(ctx context.Context, userID string, startDate, endDate time.Time) (map[int]TransactionSummary, error) {
	transactions, err := s.repo.GetTransactionsInDateRange(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	summary := make(map[int]TransactionSummary)

	for _, transaction := range transactions {
		year := transaction.Date.Year()
		month := transaction.Date.Month().String()
		_, week := transaction.Date.ISOWeek()

		yearSummary, exists := summary[year]
		if !exists {
			yearSummary = TransactionSummary{Year: year, Months: make(map[string]MonthSummary)}
		}

		monthSummary, exists := yearSummary.Months[month]
		if !exists {
			monthSummary = MonthSummary{Weeks: []WeekSummary{}}
		}

		weekIndex := -1
		for i, weekSummary := range monthSummary.Weeks {
			if weekSummary.Week == week {
				weekIndex = i
				break
			}
		}
		if weekIndex == -1 {
			monthSummary.Weeks = append(monthSummary.Weeks, WeekSummary{Week: week})
			weekIndex = len(monthSummary.Weeks) - 1
		}

		switch transaction.Type {
		case domain.TypeIncome:
			yearSummary.IncomeTotal = yearSummary.IncomeTotal.Add(transaction.Amount)
			monthSummary.IncomeTotal = monthSummary.IncomeTotal.Add(transaction.Amount)
			monthSummary.Weeks[weekIndex].IncomeTotal = monthSummary.Weeks[weekIndex].IncomeTotal.Add(transaction.Amount)
		case domain.TypeExpense:
			yearSummary.ExpenseTotal = yearSummary.ExpenseTotal.Add(transaction.Amount)
			monthSummary.ExpenseTotal = monthSummary.ExpenseTotal.Add(transaction.Amount)
			monthSummary.Weeks[weekIndex].ExpenseTotal = monthSummary.Weeks[weekIndex].ExpenseTotal.Add(transaction.Amount)
		}

		yearSummary.Months[month] = monthSummary
		summary[year] = yearSummary
	}

	return summary, nil
}

func (s *TransactionService) checkCategory(ctx context.Context, categoryID int64) error {
	if _, err := s.categoryService.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, financeErrors.ErrCategoryNotFound) {
			return financeErrors.ErrInvalidCategory
		}
		return err
	}
	return nil
}

func (s *TransactionService) CreateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	transaction.RoundToTwoDecimalPlaces()
	transaction.NormalizeDate()
	if err := transaction.Validate(); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, transaction.CategoryID); err != nil {
		return err
	}
	return s.repo.Save(ctx, transaction)
}

// CreateTransactionsBulk validates the whole batch first and stores nothing when any entry is invalid.
func (s *TransactionService) CreateTransactionsBulk(ctx context.Context, transactions []*domain.Transaction, userID string) error {
	categories := make(map[int64]bool)
	validationErrors := &financeErrors.ValidationErrors{}

	for i, transaction := range transactions {
		transaction.UserID = userID
		transaction.RoundToTwoDecimalPlaces()
		transaction.NormalizeDate()
		if err := transaction.Validate(); err != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
			continue
		}

		exists, checked := categories[transaction.CategoryID]
		if !checked {
			err := s.checkCategory(ctx, transaction.CategoryID)
			if err != nil && !errors.Is(err, financeErrors.ErrInvalidCategory) {
				return err
			}
			exists = err == nil
			categories[transaction.CategoryID] = exists
		}
		if !exists {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidCategory.Error()))
		}
	}

	if len(validationErrors.Errors) > 0 {
		return validationErrors
	}
	return s.repo.SaveAll(ctx, transactions)
}

func (s *TransactionService) GetTransaction(ctx context.Context, transactionID int64, userID string) (*domain.Transaction, error) {
	return s.repo.FindByID(ctx, transactionID, userID)
}

func (s *TransactionService) GetUserTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if filter.Type != "" && !domain.IsValidTransactionType(filter.Type) {
		return nil, financeErrors.NewValidationError("Type must be 'income' or 'expense'")
	}
	transactions, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

// UpdateTransaction replaces the editable fields of a transaction owned by transaction.UserID.
func (s *TransactionService) UpdateTransaction(ctx context.Context, transaction *domain.Transaction) error {
	if _, err := s.repo.FindByID(ctx, transaction.ID, transaction.UserID); err != nil {
		return err
	}
	transaction.RoundToTwoDecimalPlaces()
	transaction.NormalizeDate()
	if err := transaction.Validate(); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, transaction.CategoryID); err != nil {
		return err
	}
	return s.repo.Update(ctx, transaction)
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID int64, userID string) error {
	return s.repo.Delete(ctx, transactionID, userID)
}

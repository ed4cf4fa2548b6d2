package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

// MockTransactionRepository keeps transactions in memory. Date bounds are inclusive,
// matching the Postgres repository.
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions []domain.Transaction
	nextID       int64
}

func (m *MockTransactionRepository) Save(_ context.Context, transaction *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	for _, t := range m.Transactions {
		if t.ID >= m.nextID {
			m.nextID = t.ID + 1
		}
	}
	now := time.Now().UTC()
	transaction.ID = m.nextID
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	m.Transactions = append(m.Transactions, *transaction)
	return nil
}

func (m *MockTransactionRepository) SaveAll(ctx context.Context, transactions []*domain.Transaction) error {
	for _, transaction := range transactions {
		if err := m.Save(ctx, transaction); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockTransactionRepository) FindByID(_ context.Context, transactionID int64, userID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.Transactions {
		if t.ID == transactionID && t.UserID == userID {
			found := t
			return &found, nil
		}
	}
	return nil, financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Find(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var filtered []domain.Transaction
	for _, t := range m.Transactions {
		if t.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.CategoryID != nil && t.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.From != nil && t.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.Date.After(*filter.To) {
			continue
		}
		filtered = append(filtered, t)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Date.Equal(filtered[j].Date) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].Date.After(filtered[j].Date)
	})

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.Limit
		if start >= len(filtered) {
			return nil, nil
		}
		end := start + filter.Limit
		if end > len(filtered) {
			end = len(filtered)
		}
		filtered = filtered[start:end]
	}
	return filtered, nil
}

func (m *MockTransactionRepository) Update(_ context.Context, transaction *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.Transactions {
		if t.ID == transaction.ID && t.UserID == transaction.UserID {
			transaction.CreatedAt = t.CreatedAt
			transaction.UpdatedAt = time.Now().UTC()
			m.Transactions[i] = *transaction
			return nil
		}
	}
	return financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Delete(_ context.Context, transactionID int64, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.Transactions {
		if t.ID == transactionID && t.UserID == userID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetTransactionsInDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	return m.Find(ctx, domain.TransactionFilter{UserID: userID, From: &startDate, To: &endDate})
}

func (m *MockTransactionRepository) SumAmount(_ context.Context, filter domain.SumFilter) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.UserID != filter.UserID || t.Type != filter.Type {
			continue
		}
		if filter.CategoryID != nil && t.CategoryID != *filter.CategoryID {
			continue
		}
		if t.Date.Before(filter.From) {
			continue
		}
		if filter.To != nil && t.Date.After(*filter.To) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

func (m *MockTransactionRepository) CountByType(_ context.Context, userID, transactionType string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, t := range m.Transactions {
		if t.UserID == userID && t.Type == transactionType {
			count++
		}
	}
	return count, nil
}

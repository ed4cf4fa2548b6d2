package infrastructure

import (
	"context"
	"sync"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

// MockCategoryRepository refuses to delete a category while InUse reports it as referenced.
type MockCategoryRepository struct {
	mu         sync.Mutex
	Categories []domain.Category
	InUse      func(categoryID int64) bool
	nextID     int64
}

func (m *MockCategoryRepository) FindAll(_ context.Context, categoryType string) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var categories []domain.Category
	for _, c := range m.Categories {
		if categoryType == "" || c.Type == categoryType {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (m *MockCategoryRepository) FindByID(_ context.Context, categoryID int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.Categories {
		if c.ID == categoryID {
			found := c
			return &found, nil
		}
	}
	return nil, financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryRepository) Create(_ context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	for _, c := range m.Categories {
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
	category.ID = m.nextID
	m.Categories = append(m.Categories, *category)
	return nil
}

func (m *MockCategoryRepository) Update(_ context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.Categories {
		if c.ID == category.ID {
			m.Categories[i] = category
			return nil
		}
	}
	return financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryRepository) Delete(_ context.Context, categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.Categories {
		if c.ID == categoryID {
			if m.InUse != nil && m.InUse(categoryID) {
				return financeErrors.ErrCategoryInUse
			}
			m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrCategoryNotFound
}

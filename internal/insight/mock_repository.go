package insight

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockRepository is an in-memory Repository with the same uniqueness and ordering rules
// as the Postgres one.
type MockRepository struct {
	mu       sync.Mutex
	Insights []Insight
	nextID   int64
}

func (m *MockRepository) GetOrCreate(_ context.Context, insight Insight) (Insight, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Insights {
		if existing.UserID == insight.UserID && existing.Kind == insight.Kind && existing.Title == insight.Title {
			return existing, false, nil
		}
	}

	m.nextID++
	for _, existing := range m.Insights {
		if existing.ID >= m.nextID {
			m.nextID = existing.ID + 1
		}
	}
	insight.ID = m.nextID
	insight.IsRead = false
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now().UTC()
	}
	m.Insights = append(m.Insights, insight)
	return insight, true, nil
}

func (m *MockRepository) DeleteUnreadBefore(_ context.Context, userID string, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []Insight
	var deleted int64
	for _, insight := range m.Insights {
		if insight.UserID == userID && !insight.IsRead && insight.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, insight)
	}
	m.Insights = kept
	return deleted, nil
}

func (m *MockRepository) List(_ context.Context, userID string, filter Filter) ([]Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var insights []Insight
	for _, insight := range m.Insights {
		if insight.UserID != userID {
			continue
		}
		if filter.Kind != "" && insight.Kind != filter.Kind {
			continue
		}
		if filter.UnreadOnly && insight.IsRead {
			continue
		}
		insights = append(insights, insight)
	}
	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].CreatedAt.Equal(insights[j].CreatedAt) {
			return insights[i].ID > insights[j].ID
		}
		return insights[i].CreatedAt.After(insights[j].CreatedAt)
	})
	return insights, nil
}

func (m *MockRepository) MarkRead(_ context.Context, insightID int64, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.Insights {
		if m.Insights[i].ID == insightID && m.Insights[i].UserID == userID {
			m.Insights[i].IsRead = true
			return nil
		}
	}
	return ErrInsightNotFound
}

func (m *MockRepository) Delete(_ context.Context, insightID int64, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, insight := range m.Insights {
		if insight.ID == insightID && insight.UserID == userID {
			m.Insights = append(m.Insights[:i], m.Insights[i+1:]...)
			return nil
		}
	}
	return ErrInsightNotFound
}

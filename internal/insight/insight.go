package insight

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindPrediction     = "prediction"
	KindAlert          = "alert"
	KindRecommendation = "recommendation"
	KindTip            = "tip"
)

func IsValidKind(kind string) bool {
	switch kind {
	case KindPrediction, KindAlert, KindRecommendation, KindTip:
		return true
	}
	return false
}

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
)

var ErrInsightNotFound = errors.New("insight not found")

// Insight is a stored notification. Rows are unique per (user, kind, title) and are
// never refreshed once created.
type Insight struct {
	ID        int64               `json:"id"`
	UserID    string              `json:"-"`
	Kind      string              `json:"insight_type"`
	Title     string              `json:"title"`
	Message   string              `json:"message"`
	Amount    decimal.NullDecimal `json:"amount"`
	CreatedAt time.Time           `json:"created_at"`
	IsRead    bool                `json:"is_read"`
}

type Filter struct {
	Kind       string
	UnreadOnly bool
}

type Prediction struct {
	Amount     decimal.Decimal `json:"amount"`
	Average    decimal.Decimal `json:"average"`
	Confidence string          `json:"confidence"`
}

type Alert struct {
	CategoryID int64           `json:"category_id"`
	Category   string          `json:"category"`
	Spent      decimal.Decimal `json:"spent"`
	Limit      decimal.Decimal `json:"limit"`
	Percentage decimal.Decimal `json:"percentage"`
	Severity   string          `json:"severity"`
}

type Recommendation struct {
	Balance      decimal.Decimal `json:"balance"`
	Conservative decimal.Decimal `json:"conservative"`
	Moderate     decimal.Decimal `json:"moderate"`
	Aggressive   decimal.Decimal `json:"aggressive"`
	Recommended  decimal.Decimal `json:"recommended"`
}

// Report describes one generation run.
type Report struct {
	Pruned         int64           `json:"pruned"`
	Created        int             `json:"created"`
	Prediction     *Prediction     `json:"prediction,omitempty"`
	Alerts         []Alert         `json:"alerts"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

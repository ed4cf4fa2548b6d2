package insight

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/shopspring/decimal"
)

const (
	minPredictionSamples    = 5
	mediumConfidenceSamples = 20
	predictionWindowDays    = 90
	predictionMonths        = 3
	weeklyWindowDays        = 7
	staleUnreadAge          = 7 * 24 * time.Hour

	DefaultCurrencySymbol = "GH₵"
)

var (
	predictionBuffer  = decimal.RequireFromString("1.05")
	alertThreshold    = decimal.NewFromInt(90)
	criticalThreshold = decimal.NewFromInt(100)
	hundred           = decimal.NewFromInt(100)

	conservativeRatio = decimal.RequireFromString("0.20")
	moderateRatio     = decimal.RequireFromString("0.25")
	aggressiveRatio   = decimal.RequireFromString("0.30")
)

// TransactionStore is the aggregate view of a user's transactions.
type TransactionStore interface {
	SumAmount(ctx context.Context, filter domain.SumFilter) (decimal.Decimal, error)
	CountByType(ctx context.Context, userID, transactionType string) (int, error)
}

type BudgetStore interface {
	FindByUser(ctx context.Context, userID string) ([]domain.Budget, error)
}

type Repository interface {
	// GetOrCreate inserts the insight unless a row with the same user, kind and title
	// exists. It returns the stored row and whether it was created by this call.
	GetOrCreate(ctx context.Context, insight Insight) (Insight, bool, error)
	DeleteUnreadBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error)
	List(ctx context.Context, userID string, filter Filter) ([]Insight, error)
	MarkRead(ctx context.Context, insightID int64, userID string) error
	Delete(ctx context.Context, insightID int64, userID string) error
}

type Generator struct {
	transactions   TransactionStore
	budgets        BudgetStore
	insights       Repository
	currencySymbol string
	nowFn          func() time.Time
}

func NewGenerator(transactions TransactionStore, budgets BudgetStore, insights Repository, currencySymbol string) *Generator {
	if currencySymbol == "" {
		currencySymbol = DefaultCurrencySymbol
	}
	return &Generator{
		transactions:   transactions,
		budgets:        budgets,
		insights:       insights,
		currencySymbol: currencySymbol,
		nowFn:          time.Now,
	}
}

// Predict forecasts next month's spending from the last 90 days of expenses.
// It returns nil when the user has fewer than five expense transactions in total.
func (g *Generator) Predict(ctx context.Context, userID string, now time.Time) (*Prediction, error) {
	count, err := g.transactions.CountByType(ctx, userID, domain.TypeExpense)
	if err != nil {
		return nil, err
	}
	if count < minPredictionSamples {
		return nil, nil
	}

	recent, err := g.transactions.SumAmount(ctx, domain.SumFilter{
		UserID: userID,
		Type:   domain.TypeExpense,
		From:   domain.TruncateToDay(now.AddDate(0, 0, -predictionWindowDays)),
	})
	if err != nil {
		return nil, err
	}

	average := recent.Div(decimal.NewFromInt(predictionMonths))
	confidence := ConfidenceLow
	if count > mediumConfidenceSamples {
		confidence = ConfidenceMedium
	}

	return &Prediction{
		Amount:     average.Mul(predictionBuffer).Round(2),
		Average:    average.Round(2),
		Confidence: confidence,
	}, nil
}

// budgetWindowStart anchors a budget period to now: seven days back for weekly budgets,
// the first of the current month otherwise.
func budgetWindowStart(period string, now time.Time) time.Time {
	if period == domain.PeriodWeekly {
		return domain.TruncateToDay(now.AddDate(0, 0, -weeklyWindowDays))
	}
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CheckAlerts reports every budget whose period spending reached 90% of its limit.
func (g *Generator) CheckAlerts(ctx context.Context, userID string, now time.Time) ([]Alert, error) {
	budgets, err := g.budgets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	alerts := []Alert{}
	for _, budget := range budgets {
		categoryID := budget.CategoryID
		spent, err := g.transactions.SumAmount(ctx, domain.SumFilter{
			UserID:     userID,
			Type:       domain.TypeExpense,
			CategoryID: &categoryID,
			From:       budgetWindowStart(budget.Period, now),
		})
		if err != nil {
			return nil, err
		}

		percentage := decimal.Zero
		if budget.LimitAmount.IsPositive() {
			percentage = spent.Div(budget.LimitAmount).Mul(hundred)
		}
		if percentage.LessThan(alertThreshold) {
			continue
		}

		severity := SeverityWarning
		if percentage.GreaterThanOrEqual(criticalThreshold) {
			severity = SeverityCritical
		}
		alerts = append(alerts, Alert{
			CategoryID: budget.CategoryID,
			Category:   budget.CategoryName,
			Spent:      spent,
			Limit:      budget.LimitAmount,
			Percentage: percentage.Round(1),
			Severity:   severity,
		})
	}
	return alerts, nil
}

// Recommend suggests savings bands from the current month's surplus. It returns nil
// when income does not exceed expenses.
func (g *Generator) Recommend(ctx context.Context, userID string, now time.Time) (*Recommendation, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	today := domain.TruncateToDay(now)

	income, err := g.transactions.SumAmount(ctx, domain.SumFilter{UserID: userID, Type: domain.TypeIncome, From: monthStart, To: &today})
	if err != nil {
		return nil, err
	}
	expenses, err := g.transactions.SumAmount(ctx, domain.SumFilter{UserID: userID, Type: domain.TypeExpense, From: monthStart, To: &today})
	if err != nil {
		return nil, err
	}

	balance := income.Sub(expenses)
	if !balance.IsPositive() {
		return nil, nil
	}

	moderate := balance.Mul(moderateRatio).Round(2)
	return &Recommendation{
		Balance:      balance.Round(2),
		Conservative: balance.Mul(conservativeRatio).Round(2),
		Moderate:     moderate,
		Aggressive:   balance.Mul(aggressiveRatio).Round(2),
		Recommended:  moderate,
	}, nil
}

// Generate prunes the user's stale unread insights and stores whatever the three
// computations produce. Existing rows with the same title are left as they are.
func (g *Generator) Generate(ctx context.Context, userID string) (*Report, error) {
	now := g.nowFn().UTC()
	report := &Report{Alerts: []Alert{}}

	pruned, err := g.insights.DeleteUnreadBefore(ctx, userID, now.Add(-staleUnreadAge))
	if err != nil {
		return nil, fmt.Errorf("prune insights: %w", err)
	}
	report.Pruned = pruned

	prediction, err := g.Predict(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("predict spending: %w", err)
	}
	if prediction != nil {
		report.Prediction = prediction
		err = g.store(ctx, report, Insight{
			UserID: userID,
			Kind:   KindPrediction,
			Title:  "Next Month Spending Forecast",
			Message: fmt.Sprintf("Based on your recent spending patterns, you are likely to spend around %s next month. Your average monthly spending is %s.",
				g.money(prediction.Amount), g.money(prediction.Average)),
			Amount:    decimal.NewNullDecimal(prediction.Amount),
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
	}

	alerts, err := g.CheckAlerts(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("check budget alerts: %w", err)
	}
	report.Alerts = alerts
	for _, alert := range alerts {
		err = g.store(ctx, report, Insight{
			UserID: userID,
			Kind:   KindAlert,
			Title:  fmt.Sprintf("%s: %s Budget Alert", strings.ToUpper(alert.Severity), alert.Category),
			Message: fmt.Sprintf("You have spent %s (%s%%) of your %s budget for %s.",
				g.money(alert.Spent), alert.Percentage.StringFixed(1), g.money(alert.Limit), alert.Category),
			Amount:    decimal.NewNullDecimal(alert.Spent.Round(2)),
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
	}

	recommendation, err := g.Recommend(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("recommend savings: %w", err)
	}
	if recommendation != nil {
		report.Recommendation = recommendation
		err = g.store(ctx, report, Insight{
			UserID: userID,
			Kind:   KindRecommendation,
			Title:  "Investment Opportunity",
			Message: fmt.Sprintf("You have %s in available balance this month. Consider saving %s (25%%) towards your financial goals or investments.",
				g.money(recommendation.Balance), g.money(recommendation.Recommended)),
			Amount:    decimal.NewNullDecimal(recommendation.Recommended),
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
	}

	return report, nil
}

func (g *Generator) store(ctx context.Context, report *Report, insight Insight) error {
	_, created, err := g.insights.GetOrCreate(ctx, insight)
	if err != nil {
		return fmt.Errorf("store %s insight: %w", insight.Kind, err)
	}
	if created {
		report.Created++
		log.Printf("[Insight] created %s insight %q for user %s", insight.Kind, insight.Title, insight.UserID)
	}
	return nil
}

func (g *Generator) money(amount decimal.Decimal) string {
	return g.currencySymbol + amount.StringFixed(2)
}

package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const budgetColumns = `b.id, b.user_id, b.category_id, c.name, b.limit_amount, b.period, b.created_at, b.updated_at`

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func scanBudget(row rowScanner) (domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &b.LimitAmount, &b.Period, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *BudgetRepository) Save(ctx context.Context, budget *domain.Budget) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO budgets (user_id, category_id, limit_amount, period)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`,
		budget.UserID, budget.CategoryID, budget.LimitAmount, budget.Period,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil && isForeignKeyViolation(err) {
		return financeErrors.ErrInvalidCategory
	}
	return err
}

func (r *BudgetRepository) FindByID(ctx context.Context, budgetID int64, userID string) (*domain.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+`
        FROM budgets b JOIN categories c ON c.id = b.category_id
        WHERE b.id = $1 AND b.user_id = $2`,
		budgetID, userID,
	)
	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrBudgetNotFound
		}
		return nil, err
	}
	return &budget, nil
}

func (r *BudgetRepository) FindByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+`
        FROM budgets b JOIN categories c ON c.id = b.category_id
        WHERE b.user_id = $1
        ORDER BY b.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE budgets
        SET category_id = $1, limit_amount = $2, period = $3, updated_at = NOW()
        WHERE id = $4 AND user_id = $5
        RETURNING created_at, updated_at`,
		budget.CategoryID, budget.LimitAmount, budget.Period, budget.ID, budget.UserID,
	).Scan(&budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return financeErrors.ErrBudgetNotFound
		}
		if isForeignKeyViolation(err) {
			return financeErrors.ErrInvalidCategory
		}
		return err
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, budgetID int64, userID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = $1 AND user_id = $2", budgetID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrBudgetNotFound
	}
	return nil
}

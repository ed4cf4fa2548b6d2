package infrastructure

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindAll(ctx context.Context, categoryType string) ([]domain.Category, error) {
	query := "SELECT id, name, type FROM categories"
	var args []interface{}

	if categoryType != "" {
		query += " WHERE type = $1"
		args = append(args, categoryType)
	}
	query += " ORDER BY name, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Type); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, categoryID int64) (*domain.Category, error) {
	var category domain.Category
	err := r.db.QueryRowContext(ctx, "SELECT id, name, type FROM categories WHERE id = $1", categoryID).
		Scan(&category.ID, &category.Name, &category.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.db.QueryRowContext(ctx,
		"INSERT INTO categories (name, type) VALUES ($1, $2) RETURNING id",
		category.Name, category.Type,
	).Scan(&category.ID)
}

func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = $1, type = $2 WHERE id = $3",
		category.Name, category.Type, category.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrCategoryNotFound
	}
	return nil
}

// Delete removes the category and, through ON DELETE CASCADE, its budgets.
// Transactions hold a RESTRICT foreign key, so a referenced category is kept.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", categoryID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return financeErrors.ErrCategoryInUse
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrCategoryNotFound
	}
	return nil
}

package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.user_id, t.category_id, c.name, t.amount, t.type, t.date, t.note, t.created_at, t.updated_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.CategoryName, &t.Amount, &t.Type, &t.Date, &t.Note, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *TransactionRepository) Save(ctx context.Context, transaction *domain.Transaction) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, category_id, amount, type, date, note)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`,
		transaction.UserID, transaction.CategoryID, transaction.Amount,
		transaction.Type, transaction.Date, transaction.Note,
	).Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil && isForeignKeyViolation(err) {
		return financeErrors.ErrInvalidCategory
	}
	return err
}

// SaveAll inserts every transaction inside one database transaction; either all rows land or none do.
func (r *TransactionRepository) SaveAll(ctx context.Context, transactions []*domain.Transaction) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions (user_id, category_id, amount, type, date, note)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, transaction := range transactions {
		err = stmt.QueryRowContext(ctx,
			transaction.UserID, transaction.CategoryID, transaction.Amount,
			transaction.Type, transaction.Date, transaction.Note,
		).Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return financeErrors.NewIndexedValidationError(i+1, financeErrors.ErrInvalidCategory.Error())
			}
			return fmt.Errorf("database error at transaction %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, transactionID int64, userID string) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+`
        FROM transactions t JOIN categories c ON c.id = t.category_id
        WHERE t.id = $1 AND t.user_id = $2`,
		transactionID, userID,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *TransactionRepository) Find(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	where := &whereBuilder{}
	where.add("t.user_id = $%d", filter.UserID)
	if filter.Type != "" {
		where.add("t.type = $%d", filter.Type)
	}
	if filter.CategoryID != nil {
		where.add("t.category_id = $%d", *filter.CategoryID)
	}
	if filter.From != nil {
		where.add("t.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		where.add("t.date <= $%d", *filter.To)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions t JOIN categories c ON c.id = t.category_id` +
		where.String() + ` ORDER BY t.date DESC, t.id DESC`
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *TransactionRepository) Update(ctx context.Context, transaction *domain.Transaction) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE transactions
        SET category_id = $1, amount = $2, type = $3, date = $4, note = $5, updated_at = NOW()
        WHERE id = $6 AND user_id = $7
        RETURNING created_at, updated_at`,
		transaction.CategoryID, transaction.Amount, transaction.Type, transaction.Date, transaction.Note,
		transaction.ID, transaction.UserID,
	).Scan(&transaction.CreatedAt, &transaction.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return financeErrors.ErrTransactionNotFound
		}
		if isForeignKeyViolation(err) {
			return financeErrors.ErrInvalidCategory
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, transactionID int64, userID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = $1 AND user_id = $2", transactionID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) GetTransactionsInDateRange(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.Transaction, error) {
	return r.Find(ctx, domain.TransactionFilter{UserID: userID, From: &startDate, To: &endDate})
}

func (r *TransactionRepository) SumAmount(ctx context.Context, filter domain.SumFilter) (decimal.Decimal, error) {
	where := &whereBuilder{}
	where.add("user_id = $%d", filter.UserID)
	where.add("type = $%d", filter.Type)
	where.add("date >= $%d", filter.From)
	if filter.CategoryID != nil {
		where.add("category_id = $%d", *filter.CategoryID)
	}
	if filter.To != nil {
		where.add("date <= $%d", *filter.To)
	}

	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(amount), 0) FROM transactions"+where.String(), where.args...).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *TransactionRepository) CountByType(ctx context.Context, userID, transactionType string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND type = $2",
		userID, transactionType,
	).Scan(&count)
	return count, err
}

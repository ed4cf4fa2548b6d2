package insight

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

const insightColumns = `id, user_id, insight_type, title, message, amount, created_at, is_read`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInsight(row rowScanner) (Insight, error) {
	var i Insight
	err := row.Scan(&i.ID, &i.UserID, &i.Kind, &i.Title, &i.Message, &i.Amount, &i.CreatedAt, &i.IsRead)
	return i, err
}

// GetOrCreate relies on the (user_id, insight_type, title) unique constraint, so concurrent
// generations for the same user cannot produce duplicates.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, insight Insight) (Insight, bool, error) {
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO spending_insights (user_id, insight_type, title, message, amount, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, insight_type, title) DO NOTHING
        RETURNING `+insightColumns,
		insight.UserID, insight.Kind, insight.Title, insight.Message, insight.Amount, insight.CreatedAt,
	)
	created, err := scanInsight(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Insight{}, false, err
	}

	row = r.db.QueryRowContext(ctx,
		`SELECT `+insightColumns+` FROM spending_insights WHERE user_id = $1 AND insight_type = $2 AND title = $3`,
		insight.UserID, insight.Kind, insight.Title,
	)
	existing, err := scanInsight(row)
	if err != nil {
		return Insight{}, false, err
	}
	return existing, false, nil
}

func (r *PostgresRepository) DeleteUnreadBefore(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM spending_insights WHERE user_id = $1 AND is_read = FALSE AND created_at < $2`,
		userID, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) List(ctx context.Context, userID string, filter Filter) ([]Insight, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, "insight_type = $"+strconv.Itoa(len(args)))
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "is_read = FALSE")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+insightColumns+` FROM spending_insights WHERE `+strings.Join(conditions, " AND ")+` ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insights []Insight
	for rows.Next() {
		insight, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return insights, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, insightID int64, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE spending_insights SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		insightID, userID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *PostgresRepository) Delete(ctx context.Context, insightID int64, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM spending_insights WHERE id = $1 AND user_id = $2`,
		insightID, userID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsightNotFound
	}
	return nil
}

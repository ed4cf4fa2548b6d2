package infrastructure

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func safeRollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		log.Printf("Error during transaction rollback: %v", err)
	}
}

// whereBuilder collects AND-ed conditions with positional placeholders.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

func (w *whereBuilder) add(condition string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conditions = append(w.conditions, fmt.Sprintf(condition, len(w.args)))
}

func (w *whereBuilder) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

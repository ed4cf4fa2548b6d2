package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrUserNotFound = errors.New("user not found")

const uniqueViolation = "23505"

const userColumns = `id, email, username, password_hash, hash_token, is_admin, created_at, updated_at`

type Repository interface {
	createUser(ctx context.Context, user *User) error
	saveAdmin(ctx context.Context, user *User) (bool, error)
	userExistsByLoginOrEmail(ctx context.Context, username, email string) (*User, error)
	getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	getUserByID(ctx context.Context, id string) (*User, error)
	updateUserPasswordAndHashToken(ctx context.Context, userID, newPasswordHash, newHashToken string) error
	listUserIDs(ctx context.Context) ([]string, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.HashToken, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) createUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, hash_token, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at;
	`
	id := uuid.NewString()
	err := r.db.QueryRowContext(ctx, query, id, user.Email, user.Username, user.PasswordHash, user.HashToken, user.IsAdmin).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_email_key" {
				return ErrEmailAlreadyExists
			}
			return ErrUsernameAlreadyExists
		}
		return fmt.Errorf("could not create user: %w", err)
	}

	user.ID = id
	return nil
}

// saveAdmin inserts the admin or overwrites the credentials of the row with the same
// username. xmax is zero only for freshly inserted tuples.
func (r *userRepository) saveAdmin(ctx context.Context, user *User) (bool, error) {
	query := `
		INSERT INTO users (id, email, username, password_hash, hash_token, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE
		SET email = EXCLUDED.email,
		    password_hash = EXCLUDED.password_hash,
		    hash_token = EXCLUDED.hash_token,
		    is_admin = TRUE,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted;
	`
	var inserted bool
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), user.Email, user.Username, user.PasswordHash, user.HashToken).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("could not save admin: %w", err)
	}
	return inserted, nil
}

func (r *userRepository) userExistsByLoginOrEmail(ctx context.Context, username, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2 LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, query, username, email))
}

func (r *userRepository) getUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 LIMIT 1`
	return scanUser(r.db.QueryRowContext(ctx, query, loginOrEmail))
}

func (r *userRepository) getUserByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) updateUserPasswordAndHashToken(ctx context.Context, userID, newPasswordHash, newHashToken string) error {
	query := `
        UPDATE users
        SET password_hash = $1,
            hash_token = $2,
            updated_at = NOW()
        WHERE id = $3
    `
	res, err := r.db.ExecContext(ctx, query, newPasswordHash, newHashToken, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) listUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Package users stores customer accounts in PostgreSQL.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
)

const userColumns = `id, email, password, full_name, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, password, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.FullName).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) EmailTakenByOther(ctx context.Context, email string, exceptID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`

	var taken bool
	if err := r.db.QueryRowContext(ctx, query, email, exceptID).Scan(&taken); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return taken, nil
}

// UpdateProfile sets whichever of name and email is non-nil.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, name, email *string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET full_name = COALESCE($2, full_name),
		     email = COALESCE($3, email),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, nullable(name), nullable(email)))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	query := `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// InsertIgnore inserts a legacy user, keeping the existing row when the
// e-mail is already registered. It reports whether a row was inserted.
func (r *PostgresRepository) InsertIgnore(ctx context.Context, user *models.User) (bool, error) {
	query :=
		`INSERT INTO users (email, password, full_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT ((lower(email))) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

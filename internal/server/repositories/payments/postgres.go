// Package payments stores checkout records in PostgreSQL.
package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
)

const paymentColumns = `id, user_id, email, amount, currency, service, payment_id, status, qr_code_url, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.UserID, &p.Email, &p.Amount, &p.Currency, &p.Service,
		&p.PaymentID, &p.Status, &p.QRCodeURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
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

func (r *PostgresRepository) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	query :=
		`INSERT INTO payments (user_id, email, amount, currency, service, payment_id, status, qr_code_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.Email, p.Amount, p.Currency, p.Service, p.PaymentID, p.Status, p.QRCodeURL).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// List returns one page of payments, newest first. An empty status means
// no filter.
func (r *PostgresRepository) List(ctx context.Context, page models.ListPage, status string) ([]*models.Payment, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		query := `SELECT ` + paymentColumns + ` FROM payments
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`
		rows, err = r.db.QueryContext(ctx, query, page.Limit, page.Offset)
	} else {
		query := `SELECT ` + paymentColumns + ` FROM payments
		 WHERE status = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`
		rows, err = r.db.QueryContext(ctx, query, status, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Payment, 0, page.Limit)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, status string) (int64, error) {
	var (
		total int64
		err   error
	)
	if status == "" {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE status = $1`, status).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, paymentID, status string) (*models.Payment, error) {
	query :=
		`UPDATE payments SET status = $2, updated_at = NOW()
		 WHERE payment_id = $1
		 RETURNING ` + paymentColumns

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, paymentID, status))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// InsertIgnore inserts a legacy payment unless its payment_id already
// exists. It reports whether a row was inserted.
func (r *PostgresRepository) InsertIgnore(ctx context.Context, p *models.Payment) (bool, error) {
	query :=
		`INSERT INTO payments (user_id, email, amount, currency, service, payment_id, status, qr_code_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (payment_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		p.UserID, p.Email, p.Amount, p.Currency, p.Service, p.PaymentID, p.Status, p.QRCodeURL,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

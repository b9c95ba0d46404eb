// Package contacts stores contact-form inquiries in PostgreSQL.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
)

const contactColumns = `id, name, email, topic, subject, description, status, notes, legacy_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanContact(row interface{ Scan(...any) error }) (*models.Contact, error) {
	c := &models.Contact{}
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Topic, &c.Subject, &c.Description,
		&c.Status, &c.Notes, &c.LegacyID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
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

func (r *PostgresRepository) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	query :=
		`INSERT INTO contacts (name, email, topic, subject, description, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Topic, c.Subject, c.Description, c.Status, c.Notes).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// List returns one page of contacts, newest first. An empty status means
// no filter.
func (r *PostgresRepository) List(ctx context.Context, page models.ListPage, status string) ([]*models.Contact, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		query := `SELECT ` + contactColumns + ` FROM contacts
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`
		rows, err = r.db.QueryContext(ctx, query, page.Limit, page.Offset)
	} else {
		query := `SELECT ` + contactColumns + ` FROM contacts
		 WHERE status = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`
		rows, err = r.db.QueryContext(ctx, query, status, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Contact, 0, page.Limit)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
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
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE status = $1`, status).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

// Update sets whichever of status and notes is non-nil. Status is stored
// verbatim.
func (r *PostgresRepository) Update(ctx context.Context, id int64, status, notes *string) (*models.Contact, error) {
	query :=
		`UPDATE contacts
		 SET status = COALESCE($2, status),
		     notes = COALESCE($3, notes),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING ` + contactColumns

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id, nullable(status), nullable(notes)))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// Delete removes the contact and returns the row as it was.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (*models.Contact, error) {
	query := `DELETE FROM contacts WHERE id = $1 RETURNING ` + contactColumns

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return r.groupCount(ctx, `SELECT status, COUNT(*) FROM contacts GROUP BY status`)
}

func (r *PostgresRepository) CountByTopic(ctx context.Context) ([]models.StatusCount, error) {
	return r.groupCount(ctx, `SELECT topic, COUNT(*) FROM contacts GROUP BY topic`)
}

func (r *PostgresRepository) groupCount(ctx context.Context, query string) ([]models.StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.StatusCount
	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.Key, &sc.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// InsertIgnore inserts a legacy contact unless its legacy_id was already
// imported. It reports whether a row was inserted.
func (r *PostgresRepository) InsertIgnore(ctx context.Context, c *models.Contact) (bool, error) {
	query :=
		`INSERT INTO contacts (name, email, topic, subject, description, status, notes, legacy_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (legacy_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		c.Name, c.Email, c.Topic, c.Subject, c.Description, c.Status, c.Notes, c.LegacyID,
		c.CreatedAt, c.UpdatedAt)
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

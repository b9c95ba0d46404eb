// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/server/migrations"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/payments"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// gooseUpContext is swapped out in tests.
var gooseUpContext = goose.UpContext

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Payments(db dbx.DBTX) payments.Repository {
	return payments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Contacts(db dbx.DBTX) contacts.Repository {
	return contacts.NewPostgresRepository(db)
}

// RunMigrations applies all pending embedded migrations. Already applied
// versions are skipped, so it is safe to call on every start.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dbx.DriverName); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

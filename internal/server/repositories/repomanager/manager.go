package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/payments"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Payments(db dbx.DBTX) payments.Repository
	Contacts(db dbx.DBTX) contacts.Repository
}

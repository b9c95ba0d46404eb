package importer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/payments"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/users"
)

// The fakes embed the repository interfaces and only implement what the
// importer calls. Anything else panics on the nil embedded value.

type fakeUsers struct {
	users.Repository
	rows map[string]*models.User
}

func (f *fakeUsers) InsertIgnore(_ context.Context, u *models.User) (bool, error) {
	if _, ok := f.rows[u.Email]; ok {
		return false, nil
	}
	cp := *u
	f.rows[u.Email] = &cp
	return true, nil
}

type fakePayments struct {
	payments.Repository
	rows    map[string]*models.Payment
	failFor string
}

func (f *fakePayments) InsertIgnore(_ context.Context, p *models.Payment) (bool, error) {
	if p.PaymentID == f.failFor {
		return false, errors.New("db error: boom")
	}
	if _, ok := f.rows[p.PaymentID]; ok {
		return false, nil
	}
	cp := *p
	f.rows[p.PaymentID] = &cp
	return true, nil
}

type fakeContacts struct {
	contacts.Repository
	rows []*models.Contact
}

func (f *fakeContacts) InsertIgnore(_ context.Context, c *models.Contact) (bool, error) {
	if c.LegacyID != nil {
		for _, r := range f.rows {
			if r.LegacyID != nil && *r.LegacyID == *c.LegacyID {
				return false, nil
			}
		}
	}
	cp := *c
	f.rows = append(f.rows, &cp)
	return true, nil
}

type fakeRepoManager struct {
	u *fakeUsers
	p *fakePayments
	c *fakeContacts
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsers{rows: map[string]*models.User{}},
		p: &fakePayments{rows: map[string]*models.Payment{}},
		c: &fakeContacts{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Payments(dbx.DBTX) payments.Repository        { return m.p }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository        { return m.c }

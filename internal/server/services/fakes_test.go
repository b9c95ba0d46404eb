package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/payments"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/users"
)

// In-memory repositories that honour the same uniqueness rules as the
// postgres schema.

type memUsers struct {
	mu     sync.Mutex
	rows   map[int64]*models.User
	nextID int64
	err    error
}

func newMemUsers() *memUsers { return &memUsers{rows: map[int64]*models.User{}} }

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rows {
		if r.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rows {
		if r.Email == email {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) EmailTakenByOther(_ context.Context, email string, exceptID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email && r.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id int64, name, email *string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if name != nil {
		r.FullName = *name
	}
	if email != nil {
		r.Email = *email
	}
	cp := *r
	return &cp, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.PasswordHash = hash
	return nil
}

func (m *memUsers) InsertIgnore(ctx context.Context, u *models.User) (bool, error) {
	if _, err := m.Create(ctx, u); err != nil {
		if err == common.ErrorAlreadyExists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memPayments struct {
	mu     sync.Mutex
	rows   []*models.Payment
	nextID int64
	err    error
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rows {
		if r.PaymentID == p.PaymentID {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.rows = append(m.rows, &cp)
	out := cp
	return &out, nil
}

func (m *memPayments) GetByPaymentID(_ context.Context, paymentID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.PaymentID == paymentID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memPayments) filtered(status string) []*models.Payment {
	var out []*models.Payment
	for i := len(m.rows) - 1; i >= 0; i-- {
		if status == "" || m.rows[i].Status == status {
			out = append(out, m.rows[i])
		}
	}
	return out
}

func (m *memPayments) List(_ context.Context, page models.ListPage, status string) ([]*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return window(m.filtered(status), page), nil
}

func (m *memPayments) Count(_ context.Context, status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.filtered(status))), nil
}

func (m *memPayments) UpdateStatus(_ context.Context, paymentID, status string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.PaymentID == paymentID {
			r.Status = status
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memPayments) InsertIgnore(ctx context.Context, p *models.Payment) (bool, error) {
	if _, err := m.Create(ctx, p); err != nil {
		if err == common.ErrorAlreadyExists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type memContacts struct {
	mu     sync.Mutex
	rows   []*models.Contact
	nextID int64
	err    error
}

func (m *memContacts) Create(_ context.Context, c *models.Contact) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if c.LegacyID != nil {
		for _, r := range m.rows {
			if r.LegacyID != nil && *r.LegacyID == *c.LegacyID {
				return nil, common.ErrorAlreadyExists
			}
		}
	}
	m.nextID++
	cp := *c
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.rows = append(m.rows, &cp)
	out := cp
	return &out, nil
}

func (m *memContacts) GetByID(_ context.Context, id int64) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memContacts) filtered(status string) []*models.Contact {
	var out []*models.Contact
	for i := len(m.rows) - 1; i >= 0; i-- {
		if status == "" || m.rows[i].Status == status {
			out = append(out, m.rows[i])
		}
	}
	return out
}

func (m *memContacts) List(_ context.Context, page models.ListPage, status string) ([]*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return window(m.filtered(status), page), nil
}

func (m *memContacts) Count(_ context.Context, status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.filtered(status))), nil
}

func (m *memContacts) Update(_ context.Context, id int64, status, notes *string) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			if status != nil {
				r.Status = *status
			}
			if notes != nil {
				r.Notes = *notes
			}
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memContacts) Delete(_ context.Context, id int64) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return r, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memContacts) group(key func(*models.Contact) string) []models.StatusCount {
	counts := map[string]int64{}
	for _, r := range m.rows {
		counts[key(r)]++
	}
	out := make([]models.StatusCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, models.StatusCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (m *memContacts) CountByStatus(context.Context) ([]models.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.group(func(c *models.Contact) string { return c.Status }), nil
}

func (m *memContacts) CountByTopic(context.Context) ([]models.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.group(func(c *models.Contact) string { return c.Topic }), nil
}

func (m *memContacts) InsertIgnore(ctx context.Context, c *models.Contact) (bool, error) {
	if _, err := m.Create(ctx, c); err != nil {
		if err == common.ErrorAlreadyExists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *memContacts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func window[T any](rows []T, page models.ListPage) []T {
	out := []T{}
	for i := page.Offset; i < len(rows) && len(out) < page.Limit; i++ {
		out = append(out, rows[i])
	}
	return out
}

type fakeRepoManager struct {
	u *memUsers
	p *memPayments
	c *memContacts
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newMemUsers(), p: &memPayments{}, c: &memContacts{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Payments(dbx.DBTX) payments.Repository        { return m.p }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository        { return m.c }

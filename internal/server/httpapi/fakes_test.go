package httpapi

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
	"github.com/dmitrijs2005/dzakcloud/internal/server/services"
)

type fakeUsers struct {
	mu        sync.Mutex
	nextID    int64
	byEmail   map[string]*models.User
	passwords map[int64]string
	tokens    map[string]int64
	revoked   map[string]bool
	expired   map[string]bool
	calls     int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail:   map[string]*models.User{},
		passwords: map[int64]string{},
		tokens:    map[string]int64{},
		revoked:   map[string]bool{},
		expired:   map[string]bool{},
	}
}

func (f *fakeUsers) issue(id int64) string {
	tok := fmt.Sprintf("tok-%d-%d", id, len(f.tokens))
	f.tokens[tok] = id
	return tok
}

func (f *fakeUsers) Register(_ context.Context, name, email, password string) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(password) < services.MinPasswordLength {
		return nil, "", common.ErrorValidation
	}
	if _, ok := f.byEmail[email]; ok {
		return nil, "", common.ErrorAlreadyExists
	}
	f.nextID++
	u := &models.User{ID: f.nextID, Email: email, FullName: name, CreatedAt: time.Now()}
	f.byEmail[email] = u
	f.passwords[u.ID] = password
	return u, f.issue(u.ID), nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok || f.passwords[u.ID] != password {
		return nil, "", common.ErrorUnauthorized
	}
	return u, f.issue(u.ID), nil
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.revoked[token]:
		return 0, common.ErrTokenRevoked
	case f.expired[token]:
		return 0, common.ErrTokenExpired
	}
	id, ok := f.tokens[token]
	if !ok {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

func (f *fakeUsers) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != "" {
		f.revoked[token] = true
	}
	return nil
}

func (f *fakeUsers) byID(id int64) *models.User {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) Profile(_ context.Context, userID int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byID(userID)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID int64, name, email *string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byID(userID)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	if name == nil && email == nil {
		return nil, common.ErrorValidation
	}
	if email != nil {
		if other, ok := f.byEmail[*email]; ok && other.ID != userID {
			return nil, common.ErrorAlreadyExists
		}
		delete(f.byEmail, u.Email)
		u.Email = *email
		f.byEmail[u.Email] = u
	}
	if name != nil {
		u.FullName = *name
	}
	return u, nil
}

func (f *fakeUsers) IsAdmin(_ context.Context, userID int64, admins []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byID(userID)
	if u == nil {
		return false, common.ErrorNotFound
	}
	for _, a := range admins {
		if strings.EqualFold(a, u.Email) {
			return true, nil
		}
	}
	return false, nil
}

type fakePayments struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]*models.Payment
	err    error
}

func newFakePayments() *fakePayments {
	return &fakePayments{rows: map[string]*models.Payment{}}
}

func (f *fakePayments) Create(_ context.Context, in services.CreatePaymentInput) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	pid := in.PaymentID
	if pid == "" {
		pid = fmt.Sprintf("%016x", f.nextID)
	}
	if _, ok := f.rows[pid]; ok {
		return nil, common.ErrorAlreadyExists
	}
	status := in.Status
	if status == "" {
		status = common.PaymentStatusPending
	}
	p := &models.Payment{
		ID: f.nextID, UserID: in.UserID, Email: in.Email, Amount: in.Amount,
		Currency: common.DefaultCurrency, Service: in.Service, PaymentID: pid,
		Status: status, QRCodeURL: in.QRCodeURL, CreatedAt: time.Now(),
	}
	f.rows[pid] = p
	return p, nil
}

func (f *fakePayments) Get(_ context.Context, paymentID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[paymentID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakePayments) List(_ context.Context, page models.ListPage, status string) (*services.ListResult[*models.Payment], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}
	var all []*models.Payment
	for _, p := range f.rows {
		if status == "" || p.Status == status {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return &services.ListResult[*models.Payment]{
		Items: window(all, page), Total: int64(len(all)), Limit: page.Limit, Offset: page.Offset,
	}, nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, paymentID, status string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[paymentID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Status = status
	return p, nil
}

type fakeContacts struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Contact
	panic  bool
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{rows: map[int64]*models.Contact{}}
}

func (f *fakeContacts) Create(_ context.Context, in services.CreateContactInput) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := &models.Contact{
		ID: f.nextID, Name: in.Name, Email: in.Email, Topic: in.Topic,
		Subject: in.Subject, Description: in.Description,
		Status: common.ContactStatusNew, CreatedAt: time.Now(),
	}
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeContacts) Get(_ context.Context, id int64) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeContacts) List(_ context.Context, page models.ListPage, status string) (*services.ListResult[*models.Contact], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}
	status = strings.ToLower(status)
	var all []*models.Contact
	for _, c := range f.rows {
		if status == "" || c.Status == status {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return &services.ListResult[*models.Contact]{
		Items: window(all, page), Total: int64(len(all)), Limit: page.Limit, Offset: page.Offset,
	}, nil
}

func (f *fakeContacts) Update(_ context.Context, id int64, status, notes *string) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if status == nil && notes == nil {
		return nil, common.ErrorValidation
	}
	if status != nil {
		c.Status = *status
	}
	if notes != nil {
		c.Notes = *notes
	}
	return c, nil
}

func (f *fakeContacts) Delete(_ context.Context, id int64) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.rows, id)
	return c, nil
}

func (f *fakeContacts) Stats(_ context.Context) (*models.ContactStats, error) {
	if f.panic {
		panic("stats exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &models.ContactStats{TopicBreakdown: map[string]int64{}}
	for _, c := range f.rows {
		s.Total++
		switch c.Status {
		case common.ContactStatusNew:
			s.New++
		case common.ContactStatusInProgress:
			s.InProgress++
		case common.ContactStatusResolved:
			s.Resolved++
		}
		s.TopicBreakdown[c.Topic]++
	}
	return s, nil
}

func (f *fakeContacts) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func window[T any](all []T, page models.ListPage) []T {
	if page.Offset >= len(all) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[page.Offset:end]
}

// Package httpapi serves the DzakCloud JSON API over HTTP.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/dzakcloud/internal/logging"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
	"github.com/dmitrijs2005/dzakcloud/internal/server/services"
)

// UserService is the account side of the API.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Authenticate(ctx context.Context, token string) (int64, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, name, email *string) (*models.User, error)
	IsAdmin(ctx context.Context, userID int64, admins []string) (bool, error)
}

type PaymentService interface {
	Create(ctx context.Context, in services.CreatePaymentInput) (*models.Payment, error)
	Get(ctx context.Context, paymentID string) (*models.Payment, error)
	List(ctx context.Context, page models.ListPage, status string) (*services.ListResult[*models.Payment], error)
	UpdateStatus(ctx context.Context, paymentID, status string) (*models.Payment, error)
}

type ContactService interface {
	Create(ctx context.Context, in services.CreateContactInput) (*models.Contact, error)
	Get(ctx context.Context, id int64) (*models.Contact, error)
	List(ctx context.Context, page models.ListPage, status string) (*services.ListResult[*models.Contact], error)
	Update(ctx context.Context, id int64, status, notes *string) (*models.Contact, error)
	Delete(ctx context.Context, id int64) (*models.Contact, error)
	Stats(ctx context.Context) (*models.ContactStats, error)
}

// Pinger reports database reachability for /health. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	PingMessage        string
	AdminEmails        []string
	TrustProxy         bool
	StaticDir          string
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Handler holds the dependencies shared by all routes.
type Handler struct {
	users    UserService
	payments PaymentService
	contacts ContactService
	db       Pinger
	log      logging.Logger
	opts     Options
	validate *RequestValidator
	limiter  *ipRateLimiter
}

func NewHandler(users UserService, payments PaymentService, contacts ContactService,
	db Pinger, log logging.Logger, opts Options) *Handler {

	h := &Handler{
		users:    users,
		payments: payments,
		contacts: contacts,
		db:       db,
		log:      log.With("module", "httpapi"),
		opts:     opts,
		validate: NewRequestValidator(),
	}
	if opts.RateLimitPerMinute > 0 {
		h.limiter = newIPRateLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst)
	}
	return h
}

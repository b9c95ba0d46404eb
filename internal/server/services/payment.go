package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// paymentIDBytes is the number of random bytes in a generated payment id.
const paymentIDBytes = 8

// CreatePaymentInput carries a checkout attempt. Empty PaymentID and Status
// are filled in by the service.
type CreatePaymentInput struct {
	UserID    *int64
	Email     string
	Service   string
	Amount    decimal.Decimal
	QRCodeURL *string
	PaymentID string
	Status    string
}

// ListResult is one page of a list query together with the total number
// of rows matching the same filter.
type ListResult[T any] struct {
	Items  []T
	Total  int64
	Limit  int
	Offset int
}

type PaymentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager) *PaymentService {
	return &PaymentService{db: db, repomanager: m}
}

// Create stores a payment. A duplicate PaymentID yields
// common.ErrorAlreadyExists.
func (s *PaymentService) Create(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	paymentID := in.PaymentID
	if paymentID == "" {
		var err error
		paymentID, err = common.MakeRandHexString(paymentIDBytes)
		if err != nil {
			return nil, fmt.Errorf("error generating payment id: %w", err)
		}
	}

	status := in.Status
	if status == "" {
		status = common.PaymentStatusPending
	}

	p := &models.Payment{
		UserID:    in.UserID,
		Email:     in.Email,
		Amount:    in.Amount,
		Currency:  common.DefaultCurrency,
		Service:   in.Service,
		PaymentID: paymentID,
		Status:    status,
		QRCodeURL: in.QRCodeURL,
	}

	created, err := s.repomanager.Payments(s.db).Create(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating payment: %w", err)
	}
	return created, nil
}

func (s *PaymentService) Get(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, err := s.repomanager.Payments(s.db).GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading payment: %w", err)
	}
	return p, nil
}

func (s *PaymentService) List(ctx context.Context, page models.ListPage, status string) (*ListResult[*models.Payment], error) {
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Payments(s.db)

	items, err := repo.List(ctx, page, status)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	total, err := repo.Count(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("error counting payments: %w", err)
	}

	return &ListResult[*models.Payment]{Items: items, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID, status string) (*models.Payment, error) {
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", common.ErrorValidation)
	}

	p, err := s.repomanager.Payments(s.db).UpdateStatus(ctx, paymentID, status)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating payment: %w", err)
	}
	return p, nil
}

package payments

import (
	"context"

	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Payment) (*models.Payment, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error)
	List(ctx context.Context, page models.ListPage, status string) ([]*models.Payment, error)
	Count(ctx context.Context, status string) (int64, error)
	UpdateStatus(ctx context.Context, paymentID, status string) (*models.Payment, error)
	InsertIgnore(ctx context.Context, p *models.Payment) (bool, error)
}

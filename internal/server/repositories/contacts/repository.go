package contacts

import (
	"context"

	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Contact) (*models.Contact, error)
	GetByID(ctx context.Context, id int64) (*models.Contact, error)
	List(ctx context.Context, page models.ListPage, status string) ([]*models.Contact, error)
	Count(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, id int64, status, notes *string) (*models.Contact, error)
	Delete(ctx context.Context, id int64) (*models.Contact, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountByTopic(ctx context.Context) ([]models.StatusCount, error)
	InsertIgnore(ctx context.Context, c *models.Contact) (bool, error)
}

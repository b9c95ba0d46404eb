package users

import (
	"context"

	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
)

// Repository persists site accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTakenByOther(ctx context.Context, email string, exceptID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, name, email *string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	InsertIgnore(ctx context.Context, user *models.User) (bool, error)
}

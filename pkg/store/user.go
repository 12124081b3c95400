package store

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
)

// UserStore is an interface for managing users.
type UserStore interface {
	GetUserByID(ctx context.Context, h db.Handler, id int64) (models.User, error)
	FindUserByEmail(ctx context.Context, h db.Handler, email string) (models.User, error)
	GetAllUsers(ctx context.Context, h db.Handler) ([]models.User, error)
	CreateUser(ctx context.Context, h db.Handler, email string, name string) (models.User, error)
	UpdateUser(ctx context.Context, h db.Handler, id int64, name string, avatarURL *string) error
	DeleteUser(ctx context.Context, h db.Handler, id int64) error
}

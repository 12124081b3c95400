package store

import (
	"context"
	"time"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
)

// ActivityStore is an interface for the board audit trail.
type ActivityStore interface {
	CreateActivity(ctx context.Context, h db.Handler, activity models.Activity) error
	// ListActivitiesByBoard returns up to limit activities, newest first,
	// starting at the activity with id cursor when cursor is non-zero.
	ListActivitiesByBoard(ctx context.Context, h db.Handler, boardID int64, cursor int64, limit int) ([]models.ActivityWithUser, error)
}

// AuthStore is an interface for magic links and sessions.
type AuthStore interface {
	CreateMagicLink(ctx context.Context, h db.Handler, email string, tokenHash string, redirect string, expiresAt time.Time) error
	FindMagicLinkByHash(ctx context.Context, h db.Handler, tokenHash string) (models.MagicLink, error)
	DeleteMagicLink(ctx context.Context, h db.Handler, id int64) error
	DeleteExpiredMagicLinks(ctx context.Context, h db.Handler, now time.Time) (int64, error)

	CreateSession(ctx context.Context, h db.Handler, uuid string, userID int64, userAgent string, expiresAt time.Time) (models.Session, error)
	FindSessionByUUID(ctx context.Context, h db.Handler, uuid string) (models.Session, error)
	ListSessionsByUser(ctx context.Context, h db.Handler, userID int64) ([]models.Session, error)
	DeleteSession(ctx context.Context, h db.Handler, uuid string) error
	DeleteExpiredSessions(ctx context.Context, h db.Handler, now time.Time) (int64, error)
}

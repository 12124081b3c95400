package database

import (
	"context"
	"time"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
)

type activityStore struct{}

var _ store.ActivityStore = (*activityStore)(nil)

// CreateActivity implements store.ActivityStore.
func (*activityStore) CreateActivity(ctx context.Context, h db.Handler, a models.Activity) error {
	if a.Metadata == "" {
		a.Metadata = "{}"
	}
	query := h.Rebind(`INSERT INTO activities (board_id, card_id, user_id, action, metadata)
			VALUES (?, ?, ?, ?, ?);`)
	_, err := h.ExecContext(ctx, query, a.BoardID, a.CardID, a.UserID, a.Action, a.Metadata)
	return err //nolint:wrapcheck
}

// ListActivitiesByBoard implements store.ActivityStore.
func (*activityStore) ListActivitiesByBoard(ctx context.Context, h db.Handler, boardID int64, cursor int64, limit int) ([]models.ActivityWithUser, error) {
	var ms []models.ActivityWithUser
	q := `SELECT activities.*, users.name AS user_name, users.avatar_url AS user_avatar_url
			FROM activities
			LEFT JOIN users ON users.id = activities.user_id
			WHERE activities.board_id = ?`
	args := []interface{}{boardID}
	if cursor > 0 {
		q += ` AND activities.id <= ?`
		args = append(args, cursor)
	}
	q += ` ORDER BY activities.id DESC LIMIT ?;`
	args = append(args, limit)
	err := h.SelectContext(ctx, &ms, h.Rebind(q), args...)
	return ms, err //nolint:wrapcheck
}

type authStore struct{}

var _ store.AuthStore = (*authStore)(nil)

// CreateMagicLink implements store.AuthStore.
func (*authStore) CreateMagicLink(ctx context.Context, h db.Handler, email string, tokenHash string, redirect string, expiresAt time.Time) error {
	query := h.Rebind(`INSERT INTO magic_links (email, token_hash, redirect, expires_at) VALUES (?, ?, ?, ?);`)
	_, err := h.ExecContext(ctx, query, email, tokenHash, redirect, expiresAt.UTC())
	return err //nolint:wrapcheck
}

// FindMagicLinkByHash implements store.AuthStore.
func (*authStore) FindMagicLinkByHash(ctx context.Context, h db.Handler, tokenHash string) (models.MagicLink, error) {
	var m models.MagicLink
	query := h.Rebind(`SELECT * FROM magic_links WHERE token_hash = ?;`)
	err := h.GetContext(ctx, &m, query, tokenHash)
	return m, err //nolint:wrapcheck
}

// DeleteMagicLink implements store.AuthStore.
func (*authStore) DeleteMagicLink(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM magic_links WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

// DeleteExpiredMagicLinks implements store.AuthStore.
func (*authStore) DeleteExpiredMagicLinks(ctx context.Context, h db.Handler, now time.Time) (int64, error) {
	query := h.Rebind(`DELETE FROM magic_links WHERE expires_at <= ?;`)
	res, err := h.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return res.RowsAffected() //nolint:wrapcheck
}

// CreateSession implements store.AuthStore.
func (s *authStore) CreateSession(ctx context.Context, h db.Handler, uuid string, userID int64, userAgent string, expiresAt time.Time) (models.Session, error) {
	query := h.Rebind(`INSERT INTO sessions (uuid, user_id, user_agent, expires_at) VALUES (?, ?, ?, ?);`)
	if _, err := h.ExecContext(ctx, query, uuid, userID, userAgent, expiresAt.UTC()); err != nil {
		return models.Session{}, err //nolint:wrapcheck
	}

	return s.FindSessionByUUID(ctx, h, uuid)
}

// FindSessionByUUID implements store.AuthStore.
func (*authStore) FindSessionByUUID(ctx context.Context, h db.Handler, uuid string) (models.Session, error) {
	var m models.Session
	query := h.Rebind(`SELECT * FROM sessions WHERE uuid = ?;`)
	err := h.GetContext(ctx, &m, query, uuid)
	return m, err //nolint:wrapcheck
}

// ListSessionsByUser implements store.AuthStore.
func (*authStore) ListSessionsByUser(ctx context.Context, h db.Handler, userID int64) ([]models.Session, error) {
	var ms []models.Session
	query := h.Rebind(`SELECT * FROM sessions WHERE user_id = ? ORDER BY created_at DESC, id DESC;`)
	err := h.SelectContext(ctx, &ms, query, userID)
	return ms, err //nolint:wrapcheck
}

// DeleteSession implements store.AuthStore.
func (*authStore) DeleteSession(ctx context.Context, h db.Handler, uuid string) error {
	query := h.Rebind(`DELETE FROM sessions WHERE uuid = ?;`)
	_, err := h.ExecContext(ctx, query, uuid)
	return err //nolint:wrapcheck
}

// DeleteExpiredSessions implements store.AuthStore.
func (*authStore) DeleteExpiredSessions(ctx context.Context, h db.Handler, now time.Time) (int64, error) {
	query := h.Rebind(`DELETE FROM sessions WHERE expires_at <= ?;`)
	res, err := h.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return res.RowsAffected() //nolint:wrapcheck
}

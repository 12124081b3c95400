package database

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
	"github.com/printnow/portal/pkg/utils"
)

type userStore struct{}

var _ store.UserStore = (*userStore)(nil)

// CreateUser implements store.UserStore.
func (s *userStore) CreateUser(ctx context.Context, h db.Handler, email string, name string) (models.User, error) {
	query := h.Rebind(`INSERT INTO users (email, name, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP) RETURNING id;`)

	var id int64
	if err := h.GetContext(ctx, &id, query, utils.NormalizeEmail(email), name); err != nil {
		return models.User{}, err //nolint:wrapcheck
	}

	return s.GetUserByID(ctx, h, id)
}

// DeleteUser implements store.UserStore.
func (*userStore) DeleteUser(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM users WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

// FindUserByEmail implements store.UserStore.
func (*userStore) FindUserByEmail(ctx context.Context, h db.Handler, email string) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE email = ?;`)
	err := h.GetContext(ctx, &m, query, utils.NormalizeEmail(email))
	return m, err //nolint:wrapcheck
}

// GetAllUsers implements store.UserStore.
func (*userStore) GetAllUsers(ctx context.Context, h db.Handler) ([]models.User, error) {
	var ms []models.User
	query := h.Rebind(`SELECT * FROM users ORDER BY id;`)
	err := h.SelectContext(ctx, &ms, query)
	return ms, err //nolint:wrapcheck
}

// GetUserByID implements store.UserStore.
func (*userStore) GetUserByID(ctx context.Context, h db.Handler, id int64) (models.User, error) {
	var m models.User
	query := h.Rebind(`SELECT * FROM users WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// UpdateUser implements store.UserStore.
func (*userStore) UpdateUser(ctx context.Context, h db.Handler, id int64, name string, avatarURL *string) error {
	query := h.Rebind(`UPDATE users SET name = ?, avatar_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, name, avatarURL, id)
	return err //nolint:wrapcheck
}

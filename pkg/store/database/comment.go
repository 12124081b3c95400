package database

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
)

type commentStore struct{}

var _ store.CommentStore = (*commentStore)(nil)

// CreateComment implements store.CommentStore.
func (*commentStore) CreateComment(ctx context.Context, h db.Handler, comment models.Comment) (models.Comment, error) {
	query := h.Rebind(`INSERT INTO comments (card_id, user_id, customer_id, contact_id, content, updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, comment.CardID, comment.UserID,
		comment.CustomerID, comment.ContactID, comment.Content); err != nil {
		return models.Comment{}, err //nolint:wrapcheck
	}

	var m models.Comment
	query = h.Rebind(`SELECT * FROM comments WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

const commentWithAuthorQuery = `SELECT comments.*,
		users.name AS user_name,
		users.email AS user_email,
		users.avatar_url AS user_avatar_url,
		customers.name AS customer_name,
		customer_contacts.name AS contact_name
	FROM comments
	LEFT JOIN users ON users.id = comments.user_id
	LEFT JOIN customers ON customers.id = comments.customer_id
	LEFT JOIN customer_contacts ON customer_contacts.id = comments.contact_id`

// GetCommentByID implements store.CommentStore.
func (*commentStore) GetCommentByID(ctx context.Context, h db.Handler, id int64) (models.CommentWithAuthor, error) {
	var m models.CommentWithAuthor
	query := h.Rebind(commentWithAuthorQuery + ` WHERE comments.id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// ListCommentsByCard implements store.CommentStore.
func (*commentStore) ListCommentsByCard(ctx context.Context, h db.Handler, cardID int64) ([]models.CommentWithAuthor, error) {
	var ms []models.CommentWithAuthor
	query := h.Rebind(commentWithAuthorQuery + `
			WHERE comments.card_id = ?
			ORDER BY comments.created_at ASC, comments.id ASC;`)
	err := h.SelectContext(ctx, &ms, query, cardID)
	return ms, err //nolint:wrapcheck
}

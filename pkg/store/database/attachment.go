package database

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
)

type attachmentStore struct{}

var _ store.AttachmentStore = (*attachmentStore)(nil)

// CreateAttachment implements store.AttachmentStore.
func (s *attachmentStore) CreateAttachment(ctx context.Context, h db.Handler, a models.Attachment) (models.Attachment, error) {
	query := h.Rebind(`INSERT INTO attachments (card_id, name, url, storage_path, size, mime_type, uploaded_by)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, a.CardID, a.Name, a.URL, a.StoragePath,
		a.Size, a.MimeType, a.UploadedBy); err != nil {
		return models.Attachment{}, err //nolint:wrapcheck
	}

	return s.GetAttachmentByID(ctx, h, id)
}

// GetAttachmentByID implements store.AttachmentStore.
func (*attachmentStore) GetAttachmentByID(ctx context.Context, h db.Handler, id int64) (models.Attachment, error) {
	var m models.Attachment
	query := h.Rebind(`SELECT * FROM attachments WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindAttachmentByStoragePath implements store.AttachmentStore.
func (*attachmentStore) FindAttachmentByStoragePath(ctx context.Context, h db.Handler, storagePath string) (models.Attachment, error) {
	var m models.Attachment
	query := h.Rebind(`SELECT * FROM attachments WHERE storage_path = ?;`)
	err := h.GetContext(ctx, &m, query, storagePath)
	return m, err //nolint:wrapcheck
}

// ListAttachmentsByCard implements store.AttachmentStore.
func (*attachmentStore) ListAttachmentsByCard(ctx context.Context, h db.Handler, cardID int64) ([]models.Attachment, error) {
	var ms []models.Attachment
	query := h.Rebind(`SELECT * FROM attachments WHERE card_id = ? ORDER BY created_at ASC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query, cardID)
	return ms, err //nolint:wrapcheck
}

// DeleteAttachment implements store.AttachmentStore.
func (*attachmentStore) DeleteAttachment(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM attachments WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

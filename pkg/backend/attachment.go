package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/storage"
	"github.com/printnow/portal/pkg/utils"
)

// ErrObjectNotFound is returned when an attachment row has no stored object.
var ErrObjectNotFound = proto.NewError(proto.ErrNotFound, "file not found")

// attachmentPrefix is the storage prefix of a card's attachments.
func attachmentPrefix(cardID int64) string {
	return fmt.Sprintf("cards/%d/", cardID)
}

// AttachmentURL returns the download URL of a stored object.
func (d *Backend) AttachmentURL(storagePath string) string {
	return strings.TrimSuffix(d.cfg.HTTP.PublicURL, "/") + "/attachments/" + storagePath
}

func (d *Backend) policyErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return proto.Errorf(proto.ErrBadRequest, "File is larger than %s", humanize.IBytes(uint64(d.policy.MaxSize)))
	case errors.Is(err, storage.ErrTypeNotAllowed):
		return proto.NewError(proto.ErrBadRequest, "File type is not allowed")
	}
	return err
}

// UploadAttachment stores the content of a card attachment. size is the
// declared length, or -1 when unknown. The attachment is recorded with
// CreateAttachment once uploaded.
func (d *Backend) UploadAttachment(ctx context.Context, user proto.User, cardID int64, filename, contentType string, size int64, r io.Reader) (proto.Upload, error) {
	c, _, err := d.cardAccess(ctx, d.db, user, cardID)
	if err != nil {
		return proto.Upload{}, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := d.policy.Check(size, contentType); err != nil {
		return proto.Upload{}, d.policyErr(err)
	}

	name := attachmentPrefix(c.ID) + uuid.NewString() + "-" + utils.SanitizeFilename(filename)
	if d.policy.MaxSize > 0 {
		r = io.LimitReader(r, d.policy.MaxSize+1)
	}
	n, err := d.storage.Put(name, r)
	if err != nil {
		return proto.Upload{}, fmt.Errorf("store attachment: %w", err)
	}
	if d.policy.MaxSize > 0 && n > d.policy.MaxSize {
		d.removeObjects(name)
		return proto.Upload{}, d.policyErr(storage.ErrTooLarge)
	}

	d.logger.Debug("attachment uploaded", "card", c.ID, "path", name, "size", humanize.IBytes(uint64(n)))
	return proto.Upload{
		StoragePath: name,
		URL:         d.AttachmentURL(name),
		Size:        n,
		MimeType:    contentType,
	}, nil
}

// CreateAttachment records an uploaded attachment on a card.
func (d *Backend) CreateAttachment(ctx context.Context, user proto.User, in proto.CreateAttachmentInput) (proto.Attachment, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Attachment{}, err //nolint:wrapcheck
	}

	c, _, err := d.cardAccess(ctx, d.db, user, in.CardID)
	if err != nil {
		return proto.Attachment{}, err
	}
	storagePath, err := storage.CleanName(in.StoragePath)
	if err != nil || !strings.HasPrefix(storagePath, attachmentPrefix(c.ID)) {
		return proto.Attachment{}, proto.Invalid("storagePath", "is not an upload of this card")
	}
	if err := d.policy.Check(in.Size, in.MimeType); err != nil {
		return proto.Attachment{}, d.policyErr(err)
	}
	ok, err := d.storage.Exists(storagePath)
	if err != nil {
		return proto.Attachment{}, fmt.Errorf("stat attachment: %w", err)
	}
	if !ok {
		return proto.Attachment{}, ErrObjectNotFound
	}

	a, err := d.store.CreateAttachment(ctx, d.db, models.Attachment{
		CardID:      c.ID,
		Name:        in.Name,
		URL:         in.URL,
		StoragePath: storagePath,
		Size:        in.Size,
		MimeType:    in.MimeType,
		UploadedBy:  toNullInt64(user.ID),
	})
	if err != nil {
		return proto.Attachment{}, dbErr(err, proto.ErrCardNotFound)
	}

	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionAttachmentAdded, Metadata{"name": a.Name, "cardId": c.ID})
	d.notify(c.BoardID, "attachment", "created")
	return toAttachment(a), nil
}

// DeleteAttachment deletes an attachment. The stored object is removed in
// the background.
func (d *Backend) DeleteAttachment(ctx context.Context, user proto.User, in proto.IDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	a, err := d.store.GetAttachmentByID(ctx, d.db, in.ID)
	if err != nil {
		return dbErr(err, proto.ErrAttachmentNotFound)
	}
	c, _, err := d.cardAccess(ctx, d.db, user, a.CardID)
	if errors.Is(err, proto.ErrCardNotFound) {
		return proto.ErrAttachmentNotFound
	} else if err != nil {
		return err
	}
	if err := d.store.DeleteAttachment(ctx, d.db, a.ID); err != nil {
		return dbErr(err, proto.ErrAttachmentNotFound)
	}

	d.removeObjects(a.StoragePath)
	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionAttachmentRemoved, Metadata{"name": a.Name, "cardId": c.ID})
	d.notify(c.BoardID, "attachment", "deleted")
	return nil
}

// OpenAttachment opens the stored object of an attachment the caller can
// see. The caller closes the object.
func (d *Backend) OpenAttachment(ctx context.Context, user proto.User, storagePath string) (storage.Object, proto.Attachment, error) {
	storagePath, err := storage.CleanName(storagePath)
	if err != nil {
		return nil, proto.Attachment{}, proto.ErrAttachmentNotFound
	}
	a, err := d.store.FindAttachmentByStoragePath(ctx, d.db, storagePath)
	if err != nil {
		return nil, proto.Attachment{}, dbErr(err, proto.ErrAttachmentNotFound)
	}
	if _, _, err := d.cardAccess(ctx, d.db, user, a.CardID); err != nil {
		if errors.Is(err, proto.ErrCardNotFound) {
			err = proto.ErrAttachmentNotFound
		}
		return nil, proto.Attachment{}, err
	}
	return d.openObject(a)
}

func (d *Backend) openObject(a models.Attachment) (storage.Object, proto.Attachment, error) {
	obj, err := d.storage.Open(a.StoragePath)
	if err != nil {
		d.logger.Warn("attachment object missing", "attachment", a.ID, "path", a.StoragePath, "err", err)
		return nil, proto.Attachment{}, ErrObjectNotFound
	}
	return obj, toAttachment(a), nil
}

// removeObjects deletes stored objects in the background.
func (d *Backend) removeObjects(names ...string) {
	for _, name := range names {
		name := name
		d.async("remove object", func(context.Context) error {
			return d.storage.Delete(name) //nolint:wrapcheck
		})
	}
}

package backend

import (
	"context"
	"errors"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/utils"
)

// ListLabels returns the labels of a board, oldest first.
func (d *Backend) ListLabels(ctx context.Context, user proto.User, in proto.BoardIDInput) ([]proto.Label, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if _, _, err := d.boardAccess(ctx, d.db, user, in.BoardID); err != nil {
		return nil, err
	}
	ms, err := d.store.ListLabelsByBoard(ctx, d.db, in.BoardID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	labels := make([]proto.Label, 0, len(ms))
	for _, m := range ms {
		labels = append(labels, toLabel(m))
	}
	return labels, nil
}

// CreateLabel creates a board label.
func (d *Backend) CreateLabel(ctx context.Context, user proto.User, in proto.CreateLabelInput) (proto.Label, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Label{}, err //nolint:wrapcheck
	}

	b, _, err := d.boardAccess(ctx, d.db, user, in.BoardID)
	if err != nil {
		return proto.Label{}, err
	}
	l, err := d.store.CreateLabel(ctx, d.db, b.ID, in.Name, in.Color)
	if err != nil {
		return proto.Label{}, dbErr(err, nil)
	}

	d.notify(b.ID, "label", "created")
	return toLabel(l), nil
}

// UpdateLabel renames a label or changes its color.
func (d *Backend) UpdateLabel(ctx context.Context, user proto.User, in proto.UpdateLabelInput) (proto.Label, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Label{}, err //nolint:wrapcheck
	}

	l, _, err := d.labelAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return proto.Label{}, err
	}
	if in.Name != nil {
		l.Name = *in.Name
	}
	if in.Color != nil {
		l.Color = *in.Color
	}
	if err := d.store.UpdateLabel(ctx, d.db, l.ID, l.Name, l.Color); err != nil {
		return proto.Label{}, dbErr(err, nil)
	}

	d.notify(l.BoardID, "label", "updated")
	return toLabel(l), nil
}

// DeleteLabel deletes a label and detaches it from its cards.
func (d *Backend) DeleteLabel(ctx context.Context, user proto.User, in proto.IDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	l, _, err := d.labelAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return err
	}
	if err := d.store.DeleteLabel(ctx, d.db, l.ID); err != nil {
		return dbErr(err, proto.ErrLabelNotFound)
	}

	d.notify(l.BoardID, "label", "deleted")
	return nil
}

var errLabelBoardMismatch = proto.NewError(proto.ErrBadRequest, "Label and card must belong to the same board")

// AddLabelToCard attaches a label to a card of the same board.
func (d *Backend) AddLabelToCard(ctx context.Context, user proto.User, in proto.CardLabelInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	l, _, err := d.labelAccess(ctx, d.db, user, in.LabelID)
	if err != nil {
		return err
	}
	c, _, err := d.cardAccess(ctx, d.db, user, in.CardID)
	if err != nil {
		return err
	}
	if l.BoardID != c.BoardID {
		return errLabelBoardMismatch
	}
	err = d.store.AddCardLabel(ctx, d.db, c.ID, l.ID)
	if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
		return nil
	} else if err != nil {
		return dbErr(err, nil)
	}

	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionLabelAdded, Metadata{"labelId": l.ID, "cardId": c.ID})
	d.notify(c.BoardID, "card", "updated")
	return nil
}

// RemoveLabelFromCard detaches a label from a card.
func (d *Backend) RemoveLabelFromCard(ctx context.Context, user proto.User, in proto.CardLabelInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	l, _, err := d.labelAccess(ctx, d.db, user, in.LabelID)
	if err != nil {
		return err
	}
	c, _, err := d.cardAccess(ctx, d.db, user, in.CardID)
	if err != nil {
		return err
	}
	if l.BoardID != c.BoardID {
		return errLabelBoardMismatch
	}
	if err := d.store.RemoveCardLabel(ctx, d.db, c.ID, l.ID); err != nil {
		return dbErr(err, nil)
	}

	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionLabelRemoved, Metadata{"labelId": l.ID, "cardId": c.ID})
	d.notify(c.BoardID, "card", "updated")
	return nil
}

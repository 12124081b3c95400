package backend

import (
	"context"
	"database/sql"
	"errors"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/utils"
)

// cardDetails returns a card with its relations, comments and attachments.
func (d *Backend) cardDetails(ctx context.Context, h db.Handler, c models.Card) (proto.Card, error) {
	row, err := d.store.GetCardWithCounts(ctx, h, c.ID)
	if err != nil {
		return proto.Card{}, dbErr(err, proto.ErrCardNotFound)
	}
	cards, err := d.hydrateCards(ctx, h, []models.CardWithCounts{row})
	if err != nil {
		return proto.Card{}, err
	}
	card := cards[0]

	comments, err := d.store.ListCommentsByCard(ctx, h, c.ID)
	if err != nil {
		return card, dbErr(err, nil)
	}
	card.Comments = make([]proto.Comment, 0, len(comments))
	for _, m := range comments {
		card.Comments = append(card.Comments, toComment(m))
	}

	as, err := d.store.ListAttachmentsByCard(ctx, h, c.ID)
	if err != nil {
		return card, dbErr(err, nil)
	}
	card.Attachments = make([]proto.Attachment, 0, len(as))
	for _, a := range as {
		card.Attachments = append(card.Attachments, toAttachment(a))
	}

	if c.CreatedBy.Valid {
		u, err := d.store.GetUserByID(ctx, h, c.CreatedBy.Int64)
		if err == nil {
			s := toUser(u).Summary()
			card.Creator = &s
		} else if !errors.Is(err, db.ErrRecordNotFound) {
			return card, dbErr(err, nil)
		}
	}
	return card, nil
}

// GetCard returns a card with its comments and attachments.
func (d *Backend) GetCard(ctx context.Context, user proto.User, in proto.IDInput) (proto.Card, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Card{}, err //nolint:wrapcheck
	}

	c, _, err := d.cardAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return proto.Card{}, err
	}
	return d.cardDetails(ctx, d.db, c)
}

// CreateCard appends a card to a column.
func (d *Backend) CreateCard(ctx context.Context, user proto.User, in proto.CreateCardInput) (proto.Card, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Card{}, err //nolint:wrapcheck
	}

	var card models.Card
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		col, _, err := d.columnAccess(ctx, tx, user, in.ColumnID)
		if err != nil {
			return err
		}
		pos, err := d.store.NextCardPosition(ctx, tx, col.ID)
		if err != nil {
			return dbErr(err, nil)
		}
		card, err = d.store.CreateCard(ctx, tx, models.Card{
			BoardID:     col.BoardID,
			ColumnID:    col.ID,
			Title:       in.Title,
			Description: toNullString(in.Description),
			Position:    pos,
			Priority:    string(proto.PriorityNone),
			CreatedBy:   toNullInt64(user.ID),
		})
		return dbErr(err, nil)
	})
	if err != nil {
		return proto.Card{}, err //nolint:wrapcheck
	}

	d.logActivity(card.BoardID, card.ID, user.ID, proto.ActionCardCreated, Metadata{"title": card.Title})
	d.notify(card.BoardID, "card", "created")
	return toCard(card), nil
}

// UpdateCard changes the fields present in the input. A null description or
// due date clears it.
func (d *Backend) UpdateCard(ctx context.Context, user proto.User, in proto.UpdateCardInput) (proto.Card, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Card{}, err //nolint:wrapcheck
	}

	c, _, err := d.cardAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return proto.Card{}, err
	}

	fields := []string{}
	if in.Title != nil {
		c.Title = *in.Title
		fields = append(fields, "title")
	}
	if in.Description.Set {
		c.Description = toNullString(in.Description.Value)
		fields = append(fields, "description")
	}
	if in.DueDate.Set {
		c.DueDate = sql.NullTime{}
		if in.DueDate.Value != nil {
			c.DueDate = sql.NullTime{Time: in.DueDate.Value.UTC(), Valid: true}
		}
		fields = append(fields, "dueDate")
	}
	if in.Priority != nil {
		c.Priority = string(*in.Priority)
		fields = append(fields, "priority")
	}

	if err := d.store.UpdateCard(ctx, d.db, c); err != nil {
		return proto.Card{}, dbErr(err, nil)
	}
	if c, err = d.store.GetCardByID(ctx, d.db, c.ID); err != nil {
		return proto.Card{}, dbErr(err, proto.ErrCardNotFound)
	}

	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionCardUpdated, Metadata{"fields": fields})
	d.notify(c.BoardID, "card", "updated")
	return toCard(c), nil
}

// positioned is a card id with its place in a column.
type positioned struct {
	id       int64
	position int
}

// columnCards returns the cards of a column in order.
func (d *Backend) columnCards(ctx context.Context, h db.Handler, columnID int64) ([]positioned, error) {
	ms, err := d.store.ListCardsByColumn(ctx, h, columnID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	out := make([]positioned, 0, len(ms))
	for _, m := range ms {
		out = append(out, positioned{m.ID, m.Position})
	}
	return out, nil
}

// MoveCard moves a card to a position in a column of the same board. The
// positions of both columns are rewritten as 0..n-1.
func (d *Backend) MoveCard(ctx context.Context, user proto.User, in proto.MoveCardInput) (proto.Card, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Card{}, err //nolint:wrapcheck
	}

	var card models.Card
	var from int64
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		c, _, err := d.cardAccess(ctx, tx, user, in.CardID)
		if err != nil {
			return err
		}
		from = c.ColumnID
		col, err := d.store.GetColumnByID(ctx, tx, in.ColumnID)
		if err != nil {
			return dbErr(err, proto.ErrColumnNotFound)
		}
		if col.BoardID != c.BoardID {
			return proto.NewError(proto.ErrBadRequest, "Target column is on another board")
		}

		target, err := d.columnCards(ctx, tx, col.ID)
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(target)+1)
		for _, p := range target {
			if p.id != c.ID {
				ids = append(ids, p.id)
			}
		}
		pos := in.Position
		if pos > len(ids) {
			pos = len(ids)
		}
		ids = append(ids[:pos], append([]int64{c.ID}, ids[pos:]...)...)

		current := make(map[int64]int, len(target))
		for _, p := range target {
			current[p.id] = p.position
		}
		for i, id := range ids {
			if old, ok := current[id]; ok && old == i && id != c.ID {
				continue
			}
			if err := d.store.MoveCard(ctx, tx, id, col.ID, i); err != nil {
				return dbErr(err, nil)
			}
		}

		if from != col.ID {
			source, err := d.columnCards(ctx, tx, from)
			if err != nil {
				return err
			}
			for i, p := range source {
				if p.position == i {
					continue
				}
				if err := d.store.MoveCard(ctx, tx, p.id, from, i); err != nil {
					return dbErr(err, nil)
				}
			}
		}

		card, err = d.store.GetCardByID(ctx, tx, c.ID)
		return dbErr(err, proto.ErrCardNotFound)
	})
	if err != nil {
		return proto.Card{}, err //nolint:wrapcheck
	}

	if from != card.ColumnID {
		d.logActivity(card.BoardID, card.ID, user.ID, proto.ActionCardMoved, Metadata{
			"fromColumnId": from,
			"toColumnId":   card.ColumnID,
		})
	}
	d.notify(card.BoardID, "card", "moved")
	return toCard(card), nil
}

// DeleteCard deletes a card with its comments and attachments.
func (d *Backend) DeleteCard(ctx context.Context, user proto.User, in proto.IDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	c, _, err := d.cardAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return err
	}
	as, err := d.store.ListAttachmentsByCard(ctx, d.db, c.ID)
	if err != nil {
		return dbErr(err, nil)
	}
	if err := d.store.DeleteCard(ctx, d.db, c.ID); err != nil {
		return dbErr(err, proto.ErrCardNotFound)
	}

	paths := make([]string, 0, len(as))
	for _, a := range as {
		paths = append(paths, a.StoragePath)
	}
	d.removeObjects(paths...)
	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionCardDeleted, Metadata{"title": c.Title})
	d.notify(c.BoardID, "card", "deleted")
	return nil
}

// AddCardAssignee assigns an organization member to a card.
func (d *Backend) AddCardAssignee(ctx context.Context, user proto.User, in proto.CardAssigneeInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	c, b, err := d.cardAccess(ctx, d.db, user, in.CardID)
	if err != nil {
		return err
	}
	if err := d.requireOrgMember(ctx, d.db, b.OrganizationID, in.UserID); err != nil {
		return err
	}
	err = d.store.AddCardAssignee(ctx, d.db, c.ID, in.UserID)
	if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
		return proto.NewError(proto.ErrConflict, "User is already assigned")
	} else if err != nil {
		return dbErr(err, nil)
	}

	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionAssigneeAdded, Metadata{"assigneeId": in.UserID})
	d.notify(c.BoardID, "card", "updated")
	return nil
}

// RemoveCardAssignee unassigns a user from a card.
func (d *Backend) RemoveCardAssignee(ctx context.Context, user proto.User, in proto.CardAssigneeInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	c, _, err := d.cardAccess(ctx, d.db, user, in.CardID)
	if err != nil {
		return err
	}
	if err := d.store.RemoveCardAssignee(ctx, d.db, c.ID, in.UserID); err != nil {
		return dbErr(err, nil)
	}

	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionAssigneeRemoved, Metadata{"assigneeId": in.UserID})
	d.notify(c.BoardID, "card", "updated")
	return nil
}

// SearchCards returns the ids of the cards of a board whose title,
// description or comments contain the query.
func (d *Backend) SearchCards(ctx context.Context, user proto.User, in proto.SearchCardsInput) ([]int64, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if _, _, err := d.boardAccess(ctx, d.db, user, in.BoardID); err != nil {
		return nil, err
	}
	ids, err := d.store.SearchCards(ctx, d.db, in.BoardID, in.Query)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// comment returns a comment with its author.
func (d *Backend) comment(ctx context.Context, h db.Handler, id int64) (proto.Comment, error) {
	m, err := d.store.GetCommentByID(ctx, h, id)
	if err != nil {
		return proto.Comment{}, dbErr(err, proto.NewError(proto.ErrNotFound, "comment not found"))
	}
	return toComment(m), nil
}

// AddComment comments on a card.
func (d *Backend) AddComment(ctx context.Context, user proto.User, in proto.AddCommentInput) (proto.Comment, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Comment{}, err //nolint:wrapcheck
	}

	c, _, err := d.cardAccess(ctx, d.db, user, in.CardID)
	if err != nil {
		return proto.Comment{}, err
	}
	m, err := d.store.CreateComment(ctx, d.db, models.Comment{
		CardID:  c.ID,
		UserID:  toNullInt64(user.ID),
		Content: in.Content,
	})
	if err != nil {
		return proto.Comment{}, dbErr(err, proto.ErrCardNotFound)
	}

	d.logActivity(c.BoardID, c.ID, user.ID, proto.ActionCommentAdded, Metadata{"cardId": c.ID})
	d.notify(c.BoardID, "comment", "created")
	return d.comment(ctx, d.db, m.ID)
}

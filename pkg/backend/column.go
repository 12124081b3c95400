package backend

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/utils"
)

// CreateColumn appends a column to a board.
func (d *Backend) CreateColumn(ctx context.Context, user proto.User, in proto.CreateColumnInput) (proto.Column, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Column{}, err //nolint:wrapcheck
	}

	var col proto.Column
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		b, _, err := d.boardAccess(ctx, tx, user, in.BoardID)
		if err != nil {
			return err
		}
		pos, err := d.store.NextColumnPosition(ctx, tx, b.ID)
		if err != nil {
			return dbErr(err, nil)
		}
		c, err := d.store.CreateColumn(ctx, tx, b.ID, in.Name, in.Color, pos)
		if err != nil {
			return dbErr(err, nil)
		}
		col = toColumn(c)
		return nil
	})
	if err != nil {
		return proto.Column{}, err //nolint:wrapcheck
	}

	d.notify(col.BoardID, "column", "created")
	return col, nil
}

// UpdateColumn renames a column or changes its color.
func (d *Backend) UpdateColumn(ctx context.Context, user proto.User, in proto.UpdateColumnInput) (proto.Column, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Column{}, err //nolint:wrapcheck
	}

	c, _, err := d.columnAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return proto.Column{}, err
	}
	name, color := c.Name, nullString(c.Color)
	if in.Name != nil {
		name = *in.Name
	}
	if in.Color != nil {
		color = in.Color
	}
	if err := d.store.UpdateColumn(ctx, d.db, c.ID, name, color); err != nil {
		return proto.Column{}, dbErr(err, nil)
	}

	c, err = d.store.GetColumnByID(ctx, d.db, c.ID)
	if err != nil {
		return proto.Column{}, dbErr(err, proto.ErrColumnNotFound)
	}
	d.notify(c.BoardID, "column", "updated")
	return toColumn(c), nil
}

// DeleteColumn deletes a column and its cards.
func (d *Backend) DeleteColumn(ctx context.Context, user proto.User, in proto.IDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	c, _, err := d.columnAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return err
	}

	var paths []string
	err = d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		cards, err := d.store.ListCardsByBoard(ctx, tx, c.BoardID)
		if err != nil {
			return dbErr(err, nil)
		}
		for _, card := range cards {
			if card.ColumnID != c.ID {
				continue
			}
			as, err := d.store.ListAttachmentsByCard(ctx, tx, card.ID)
			if err != nil {
				return dbErr(err, nil)
			}
			for _, a := range as {
				paths = append(paths, a.StoragePath)
			}
		}
		return dbErr(d.store.DeleteColumn(ctx, tx, c.ID), proto.ErrColumnNotFound)
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	d.removeObjects(paths...)
	d.notify(c.BoardID, "column", "deleted")
	return nil
}

// ReorderColumns sets the position of each listed column to its index.
// Columns left out keep their relative order after the listed ones.
func (d *Backend) ReorderColumns(ctx context.Context, user proto.User, in proto.ReorderColumnsInput) ([]proto.Column, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	var cols []proto.Column
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		b, _, err := d.boardAccess(ctx, tx, user, in.BoardID)
		if err != nil {
			return err
		}
		current, err := d.store.ListColumnsByBoard(ctx, tx, b.ID)
		if err != nil {
			return dbErr(err, nil)
		}

		onBoard := make(map[int64]bool, len(current))
		for _, c := range current {
			onBoard[c.ID] = true
		}
		listed := make(map[int64]bool, len(in.ColumnIDs))
		order := make([]int64, 0, len(current))
		for _, id := range in.ColumnIDs {
			if !onBoard[id] {
				return proto.Errorf(proto.ErrBadRequest, "column %d does not belong to this board", id)
			}
			listed[id] = true
			order = append(order, id)
		}
		for _, c := range current {
			if !listed[c.ID] {
				order = append(order, c.ID)
			}
		}

		for i, id := range order {
			if err := d.store.SetColumnPosition(ctx, tx, id, i); err != nil {
				return dbErr(err, nil)
			}
		}
		cols, err = d.boardColumns(ctx, tx, b.ID, false)
		return err
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	d.notify(in.BoardID, "column", "reordered")
	return cols, nil
}

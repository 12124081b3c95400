package backend

import (
	"context"
	"errors"

	"github.com/printnow/portal/pkg/access"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/utils"
)

// hydrateCards attaches assignees and labels to cards.
func (d *Backend) hydrateCards(ctx context.Context, h db.Handler, ms []models.CardWithCounts) ([]proto.Card, error) {
	cards := make([]proto.Card, 0, len(ms))
	if len(ms) == 0 {
		return cards, nil
	}
	ids := make([]int64, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}

	assignees, err := d.store.ListCardAssignees(ctx, h, ids)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	labels, err := d.store.ListCardLabels(ctx, h, ids)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	byCardAssignees := map[int64][]proto.UserSummary{}
	for _, a := range assignees {
		byCardAssignees[a.CardID] = append(byCardAssignees[a.CardID], proto.UserSummary{
			ID:        a.UserID,
			Email:     a.Email,
			Name:      a.Name,
			AvatarURL: nullString(a.AvatarURL),
		})
	}
	byCardLabels := map[int64][]proto.Label{}
	for _, l := range labels {
		byCardLabels[l.CardID] = append(byCardLabels[l.CardID], toLabel(l.Label))
	}

	for _, m := range ms {
		c := toCard(m.Card)
		c.CommentCount = m.CommentCount
		c.AttachmentCount = m.AttachmentCount
		if as, ok := byCardAssignees[m.ID]; ok {
			c.Assignees = as
		}
		if ls, ok := byCardLabels[m.ID]; ok {
			c.Labels = ls
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// boardColumns returns the columns of a board by position. With cards set,
// every column carries its cards by position.
func (d *Backend) boardColumns(ctx context.Context, h db.Handler, boardID int64, cards bool) ([]proto.Column, error) {
	cols, err := d.columns(ctx, h, boardID, cards)
	if err != nil || !cards {
		return cols, err
	}

	ms, err := d.store.ListCardsByBoard(ctx, h, boardID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	all, err := d.hydrateCards(ctx, h, ms)
	if err != nil {
		return nil, err
	}
	placeCards(cols, all)
	return cols, nil
}

// columns returns the columns of a board by position. With cards set, every
// column starts with an empty card list.
func (d *Backend) columns(ctx context.Context, h db.Handler, boardID int64, cards bool) ([]proto.Column, error) {
	cms, err := d.store.ListColumnsByBoard(ctx, h, boardID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	cols := make([]proto.Column, 0, len(cms))
	for _, m := range cms {
		c := toColumn(m.Column)
		c.CardCount = m.CardCount
		if cards {
			c.Cards = []proto.Card{}
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// placeCards appends every card to its column. Cards of other boards are
// skipped.
func placeCards(cols []proto.Column, cards []proto.Card) {
	index := make(map[int64]int, len(cols))
	for i, c := range cols {
		index[c.ID] = i
	}
	for _, c := range cards {
		if i, ok := index[c.ColumnID]; ok {
			cols[i].Cards = append(cols[i].Cards, c)
		}
	}
}

// ListBoards returns the non-archived boards visible to the caller, most
// recently updated first.
func (d *Backend) ListBoards(ctx context.Context, user proto.User) ([]proto.Board, error) {
	m, err := d.membership(ctx, d.db, user)
	if err != nil {
		return nil, err
	}

	var memberID int64
	if !m.Role.AtLeast(access.Admin) {
		memberID = user.ID
	}
	bs, err := d.store.ListBoards(ctx, d.db, m.OrganizationID, memberID)
	if err != nil {
		return nil, dbErr(err, nil)
	}

	boards := make([]proto.Board, 0, len(bs))
	for _, b := range bs {
		board := toBoard(b)
		if board.Columns, err = d.boardColumns(ctx, d.db, b.ID, false); err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, nil
}

// GetBoard returns a board with its columns and cards.
func (d *Backend) GetBoard(ctx context.Context, user proto.User, in proto.IDInput) (proto.Board, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Board{}, err //nolint:wrapcheck
	}

	b, _, err := d.boardAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return proto.Board{}, err
	}
	board := toBoard(b)
	board.Columns, err = d.boardColumns(ctx, d.db, b.ID, true)
	return board, err
}

// CreateBoard creates a board with the default columns. The creator becomes
// a member of the board.
func (d *Backend) CreateBoard(ctx context.Context, user proto.User, in proto.CreateBoardInput) (proto.Board, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Board{}, err //nolint:wrapcheck
	}

	var board proto.Board
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := d.membership(ctx, tx, user)
		if err != nil {
			return err
		}
		b, err := d.store.CreateBoard(ctx, tx, m.OrganizationID, in.Name, in.Description, user.ID)
		if err != nil {
			return dbErr(err, nil)
		}
		for i, c := range proto.DefaultColumns {
			color := c.Color
			if _, err := d.store.CreateColumn(ctx, tx, b.ID, c.Name, &color, i); err != nil {
				return dbErr(err, nil)
			}
		}
		if err := d.store.AddBoardMember(ctx, tx, b.ID, user.ID); err != nil {
			return dbErr(err, nil)
		}

		board = toBoard(b)
		board.Columns, err = d.boardColumns(ctx, tx, b.ID, true)
		return err
	})
	if err != nil {
		return proto.Board{}, err //nolint:wrapcheck
	}

	d.logger.Debug("board created", "board", board.ID, "user", user.ID)
	return board, nil
}

// UpdateBoard renames a board or changes its description.
func (d *Backend) UpdateBoard(ctx context.Context, user proto.User, in proto.UpdateBoardInput) (proto.Board, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Board{}, err //nolint:wrapcheck
	}

	b, _, err := d.boardAdminAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return proto.Board{}, err
	}
	name, desc := b.Name, nullString(b.Description)
	if in.Name != nil {
		name = *in.Name
	}
	if in.Description != nil {
		desc = in.Description
	}
	if err := d.store.UpdateBoard(ctx, d.db, b.ID, name, desc); err != nil {
		return proto.Board{}, dbErr(err, nil)
	}

	b, err = d.store.GetBoardByID(ctx, d.db, b.ID)
	if err != nil {
		return proto.Board{}, dbErr(err, proto.ErrBoardNotFound)
	}
	d.notify(b.ID, "board", "updated")
	return toBoard(b), nil
}

// ArchiveBoard hides a board from the board list and customer portals.
func (d *Backend) ArchiveBoard(ctx context.Context, user proto.User, in proto.IDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	b, _, err := d.boardAdminAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return err
	}
	if err := d.store.ArchiveBoard(ctx, d.db, b.ID); err != nil {
		return dbErr(err, nil)
	}
	d.notify(b.ID, "board", "archived")
	return nil
}

// DeleteBoard deletes a board with everything on it. Stored attachment
// objects are removed in the background.
func (d *Backend) DeleteBoard(ctx context.Context, user proto.User, in proto.IDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	b, _, err := d.boardAdminAccess(ctx, d.db, user, in.ID)
	if err != nil {
		return err
	}

	var paths []string
	err = d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		cards, err := d.store.ListCardsByBoard(ctx, tx, b.ID)
		if err != nil {
			return dbErr(err, nil)
		}
		for _, c := range cards {
			as, err := d.store.ListAttachmentsByCard(ctx, tx, c.ID)
			if err != nil {
				return dbErr(err, nil)
			}
			for _, a := range as {
				paths = append(paths, a.StoragePath)
			}
		}
		return dbErr(d.store.DeleteBoard(ctx, tx, b.ID), proto.ErrBoardNotFound)
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	d.removeObjects(paths...)
	d.notify(b.ID, "board", "deleted")
	d.logger.Info("board deleted", "board", b.ID, "user", user.ID)
	return nil
}

// ListBoardMembers returns every member of the board's organization, flagged
// with whether they belong to the board.
func (d *Backend) ListBoardMembers(ctx context.Context, user proto.User, in proto.BoardIDInput) ([]proto.BoardMember, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	b, _, err := d.boardAccess(ctx, d.db, user, in.BoardID)
	if err != nil {
		return nil, err
	}
	ms, err := d.store.ListOrgMembers(ctx, d.db, b.OrganizationID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	ids, err := d.store.ListBoardMemberIDs(ctx, d.db, b.ID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	onBoard := make(map[int64]bool, len(ids))
	for _, id := range ids {
		onBoard[id] = true
	}

	members := make([]proto.BoardMember, 0, len(ms))
	for _, m := range ms {
		members = append(members, proto.BoardMember{
			UserSummary:   toMember(m).User,
			Role:          m.Role,
			IsBoardMember: onBoard[m.UserID],
		})
	}
	return members, nil
}

// AddBoardMember gives an organization member access to a board.
func (d *Backend) AddBoardMember(ctx context.Context, user proto.User, in proto.BoardMemberInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	b, _, err := d.boardAdminAccess(ctx, d.db, user, in.BoardID)
	if err != nil {
		return err
	}
	if err := d.requireOrgMember(ctx, d.db, b.OrganizationID, in.UserID); err != nil {
		return err
	}
	err = d.store.AddBoardMember(ctx, d.db, b.ID, in.UserID)
	if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
		return proto.ErrAlreadyMember
	} else if err != nil {
		return dbErr(err, nil)
	}

	d.logActivity(b.ID, 0, user.ID, proto.ActionMemberAdded, Metadata{"userId": in.UserID})
	d.notify(b.ID, "member", "added")
	return nil
}

// RemoveBoardMember takes away a member's access to a board.
func (d *Backend) RemoveBoardMember(ctx context.Context, user proto.User, in proto.BoardMemberInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	b, _, err := d.boardAdminAccess(ctx, d.db, user, in.BoardID)
	if err != nil {
		return err
	}
	if err := d.store.RemoveBoardMember(ctx, d.db, b.ID, in.UserID); err != nil {
		return dbErr(err, nil)
	}

	d.logActivity(b.ID, 0, user.ID, proto.ActionMemberRemoved, Metadata{"userId": in.UserID})
	d.notify(b.ID, "member", "removed")
	return nil
}

package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/printnow/portal/pkg/access"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
)

// ErrNoOrganization is returned when the caller is not a member of any
// organization.
var ErrNoOrganization = proto.NewError(proto.ErrForbidden, "You are not a member of any organization")

// dbErr maps a store error to a proto error. notFound is returned for
// missing records.
func dbErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	switch {
	case errors.Is(err, db.ErrDuplicateKey):
		return proto.NewError(proto.ErrConflict, "record already exists")
	case errors.Is(err, db.ErrForeignKey):
		return proto.NewError(proto.ErrBadRequest, "referenced record does not exist")
	}
	var perr *proto.Error
	var verr *proto.ValidationError
	if errors.As(err, &perr) || errors.As(err, &verr) {
		return err
	}
	return fmt.Errorf("database: %w", err)
}

// membership returns the caller's membership in their current
// organization, which is the organization they joined first.
func (d *Backend) membership(ctx context.Context, h db.Handler, user proto.User) (models.OrganizationMember, error) {
	m, err := d.store.FindFirstMembership(ctx, h, user.ID)
	if err != nil {
		return models.OrganizationMember{}, dbErr(err, ErrNoOrganization)
	}
	return m, nil
}

// adminMembership is membership restricted to admins and owners.
func (d *Backend) adminMembership(ctx context.Context, h db.Handler, user proto.User) (models.OrganizationMember, error) {
	m, err := d.membership(ctx, h, user)
	if err != nil {
		return m, err
	}
	if !m.Role.AtLeast(access.Admin) {
		return m, proto.ErrAdminRequired
	}
	return m, nil
}

// boardAccess loads a board the caller can work on. The caller must belong
// to the board's organization and be an admin or a member of the board.
func (d *Backend) boardAccess(ctx context.Context, h db.Handler, user proto.User, boardID int64) (models.Board, models.OrganizationMember, error) {
	b, err := d.store.GetBoardByID(ctx, h, boardID)
	if err != nil {
		return b, models.OrganizationMember{}, dbErr(err, proto.ErrBoardNotFound)
	}

	m, err := d.store.FindOrgMember(ctx, h, b.OrganizationID, user.ID)
	if err != nil {
		// Boards of other organizations do not exist for the caller.
		return b, m, dbErr(err, proto.ErrBoardNotFound)
	}
	if m.Role.AtLeast(access.Admin) {
		return b, m, nil
	}

	ok, err := d.store.IsBoardMember(ctx, h, b.ID, user.ID)
	if err != nil {
		return b, m, dbErr(err, nil)
	}
	if !ok {
		return b, m, proto.ErrBoardAccessDenied
	}
	return b, m, nil
}

// boardAdminAccess is boardAccess restricted to admins and owners.
func (d *Backend) boardAdminAccess(ctx context.Context, h db.Handler, user proto.User, boardID int64) (models.Board, models.OrganizationMember, error) {
	b, m, err := d.boardAccess(ctx, h, user, boardID)
	if err != nil {
		return b, m, err
	}
	if !m.Role.AtLeast(access.Admin) {
		return b, m, proto.ErrAdminRequired
	}
	return b, m, nil
}

// cardAccess loads a card on a board the caller can work on.
func (d *Backend) cardAccess(ctx context.Context, h db.Handler, user proto.User, cardID int64) (models.Card, models.Board, error) {
	c, err := d.store.GetCardByID(ctx, h, cardID)
	if err != nil {
		return c, models.Board{}, dbErr(err, proto.ErrCardNotFound)
	}
	b, _, err := d.boardAccess(ctx, h, user, c.BoardID)
	if errors.Is(err, proto.ErrBoardNotFound) {
		err = proto.ErrCardNotFound
	}
	return c, b, err
}

// columnAccess loads a column on a board the caller can work on.
func (d *Backend) columnAccess(ctx context.Context, h db.Handler, user proto.User, columnID int64) (models.Column, models.Board, error) {
	c, err := d.store.GetColumnByID(ctx, h, columnID)
	if err != nil {
		return c, models.Board{}, dbErr(err, proto.ErrColumnNotFound)
	}
	b, _, err := d.boardAccess(ctx, h, user, c.BoardID)
	if errors.Is(err, proto.ErrBoardNotFound) {
		err = proto.ErrColumnNotFound
	}
	return c, b, err
}

// labelAccess loads a label on a board the caller can work on.
func (d *Backend) labelAccess(ctx context.Context, h db.Handler, user proto.User, labelID int64) (models.Label, models.Board, error) {
	l, err := d.store.GetLabelByID(ctx, h, labelID)
	if err != nil {
		return l, models.Board{}, dbErr(err, proto.ErrLabelNotFound)
	}
	b, _, err := d.boardAccess(ctx, h, user, l.BoardID)
	if errors.Is(err, proto.ErrBoardNotFound) {
		err = proto.ErrLabelNotFound
	}
	return l, b, err
}

// requireOrgMember checks that userID belongs to orgID.
func (d *Backend) requireOrgMember(ctx context.Context, h db.Handler, orgID, userID int64) error {
	_, err := d.store.FindOrgMember(ctx, h, orgID, userID)
	return dbErr(err, proto.NewError(proto.ErrBadRequest, "User is not a member of this organization"))
}

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

func (d *Backend) invites(ctx context.Context, h db.Handler, ms []models.InviteWithInviter) ([]proto.Invite, error) {
	out := make([]proto.Invite, 0, len(ms))
	if len(ms) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	boards, err := d.store.ListInviteBoards(ctx, h, ids)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	byInvite := map[int64][]proto.BoardRef{}
	for _, b := range boards {
		byInvite[b.InviteID] = append(byInvite[b.InviteID], proto.BoardRef{ID: b.BoardID, Name: b.BoardName})
	}

	for _, m := range ms {
		inv := proto.Invite{
			ID:        m.ID,
			Email:     m.Email,
			Role:      m.Role,
			CreatedAt: m.CreatedAt.UTC(),
			Boards:    []proto.BoardRef{},
		}
		if m.InvitedBy.Valid {
			inv.InvitedBy = &proto.UserSummary{
				ID:    m.InvitedBy.Int64,
				Name:  m.InviterName.String,
				Email: m.InviterEmail.String,
			}
		}
		if bs, ok := byInvite[m.ID]; ok {
			inv.Boards = bs
		}
		out = append(out, inv)
	}
	return out, nil
}

// ListInvites returns the pending invites of the caller's organization,
// newest first.
func (d *Backend) ListInvites(ctx context.Context, user proto.User) ([]proto.Invite, error) {
	m, err := d.adminMembership(ctx, d.db, user)
	if err != nil {
		return nil, err
	}
	ms, err := d.store.ListInvitesByOrg(ctx, d.db, m.OrganizationID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	return d.invites(ctx, d.db, ms)
}

// CreateInvite invites an email to the caller's organization. The invitee
// joins with the given role and boards on their first sign in.
func (d *Backend) CreateInvite(ctx context.Context, user proto.User, in proto.CreateInviteInput) (proto.Invite, error) {
	in.Email = utils.NormalizeEmail(in.Email)
	if err := utils.Validate(in); err != nil {
		return proto.Invite{}, err //nolint:wrapcheck
	}
	if in.Role == access.NoAccess {
		in.Role = access.Member
	}

	var id int64
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := d.adminMembership(ctx, tx, user)
		if err != nil {
			return err
		}

		if _, err := d.store.FindOrgMemberByEmail(ctx, tx, m.OrganizationID, in.Email); err == nil {
			return proto.ErrAlreadyMember
		} else if !errors.Is(err, db.ErrRecordNotFound) {
			return dbErr(err, nil)
		}
		if _, err := d.store.FindOrgInviteByEmail(ctx, tx, m.OrganizationID, in.Email); err == nil {
			return proto.ErrAlreadyInvited
		} else if !errors.Is(err, db.ErrRecordNotFound) {
			return dbErr(err, nil)
		}

		for _, boardID := range in.BoardIDs {
			b, err := d.store.GetBoardByID(ctx, tx, boardID)
			if err != nil {
				return dbErr(err, proto.ErrBoardNotFound)
			}
			if b.OrganizationID != m.OrganizationID {
				return proto.ErrBoardNotFound
			}
		}

		inv, err := d.store.CreateInvite(ctx, tx, models.Invite{
			OrganizationID: m.OrganizationID,
			Email:          in.Email,
			Role:           in.Role,
			InvitedBy:      toNullInt64(user.ID),
		})
		if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
			return proto.ErrAlreadyInvited
		} else if err != nil {
			return dbErr(err, nil)
		}
		for _, boardID := range in.BoardIDs {
			if err := d.store.AddInviteBoard(ctx, tx, inv.ID, boardID); err != nil {
				return dbErr(err, nil)
			}
		}
		id = inv.ID
		return nil
	})
	if err != nil {
		return proto.Invite{}, err //nolint:wrapcheck
	}

	d.logger.Info("invite created", "invite", id, "role", in.Role, "by", user.ID)
	return d.invite(ctx, user, id)
}

func (d *Backend) invite(ctx context.Context, user proto.User, id int64) (proto.Invite, error) {
	all, err := d.ListInvites(ctx, user)
	if err != nil {
		return proto.Invite{}, err
	}
	for _, inv := range all {
		if inv.ID == id {
			return inv, nil
		}
	}
	return proto.Invite{}, proto.ErrInviteNotFound
}

// DeleteInvite revokes a pending invite of the caller's organization.
func (d *Backend) DeleteInvite(ctx context.Context, user proto.User, in proto.InviteIDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	m, err := d.adminMembership(ctx, d.db, user)
	if err != nil {
		return err
	}
	inv, err := d.store.GetInviteByID(ctx, d.db, in.InviteID)
	if err != nil {
		return dbErr(err, proto.ErrInviteNotFound)
	}
	if inv.OrganizationID != m.OrganizationID {
		return proto.ErrInviteNotFound
	}
	return dbErr(d.store.DeleteInvite(ctx, d.db, inv.ID), proto.ErrInviteNotFound)
}

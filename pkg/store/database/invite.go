package database

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
)

type inviteStore struct{}

var _ store.InviteStore = (*inviteStore)(nil)

// CreateInvite implements store.InviteStore.
func (s *inviteStore) CreateInvite(ctx context.Context, h db.Handler, invite models.Invite) (models.Invite, error) {
	query := h.Rebind(`INSERT INTO invites (org_id, email, role, invited_by)
			VALUES (?, ?, ?, ?) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, invite.OrganizationID, invite.Email,
		invite.Role, invite.InvitedBy); err != nil {
		return models.Invite{}, err //nolint:wrapcheck
	}

	return s.GetInviteByID(ctx, h, id)
}

// GetInviteByID implements store.InviteStore.
func (*inviteStore) GetInviteByID(ctx context.Context, h db.Handler, id int64) (models.Invite, error) {
	var m models.Invite
	query := h.Rebind(`SELECT * FROM invites WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindInviteByEmail implements store.InviteStore. When the email was
// invited to several organizations the oldest invite wins.
func (*inviteStore) FindInviteByEmail(ctx context.Context, h db.Handler, email string) (models.Invite, error) {
	var m models.Invite
	query := h.Rebind(`SELECT * FROM invites WHERE email = ? ORDER BY created_at ASC, id ASC LIMIT 1;`)
	err := h.GetContext(ctx, &m, query, email)
	return m, err //nolint:wrapcheck
}

// FindOrgInviteByEmail implements store.InviteStore.
func (*inviteStore) FindOrgInviteByEmail(ctx context.Context, h db.Handler, orgID int64, email string) (models.Invite, error) {
	var m models.Invite
	query := h.Rebind(`SELECT * FROM invites WHERE org_id = ? AND email = ?;`)
	err := h.GetContext(ctx, &m, query, orgID, email)
	return m, err //nolint:wrapcheck
}

// ListInvitesByOrg implements store.InviteStore.
func (*inviteStore) ListInvitesByOrg(ctx context.Context, h db.Handler, orgID int64) ([]models.InviteWithInviter, error) {
	var ms []models.InviteWithInviter
	query := h.Rebind(`SELECT invites.*, users.name AS inviter_name, users.email AS inviter_email
			FROM invites
			LEFT JOIN users ON users.id = invites.invited_by
			WHERE invites.org_id = ?
			ORDER BY invites.created_at DESC, invites.id DESC;`)
	err := h.SelectContext(ctx, &ms, query, orgID)
	return ms, err //nolint:wrapcheck
}

// AddInviteBoard implements store.InviteStore.
func (*inviteStore) AddInviteBoard(ctx context.Context, h db.Handler, inviteID int64, boardID int64) error {
	query := h.Rebind(`INSERT INTO invite_boards (invite_id, board_id) VALUES (?, ?);`)
	_, err := h.ExecContext(ctx, query, inviteID, boardID)
	return err //nolint:wrapcheck
}

// ListInviteBoards implements store.InviteStore.
func (*inviteStore) ListInviteBoards(ctx context.Context, h db.Handler, inviteIDs []int64) ([]models.InviteBoard, error) {
	var ms []models.InviteBoard
	if len(inviteIDs) == 0 {
		return ms, nil
	}
	query, args, err := in(h, `SELECT invite_boards.invite_id, boards.id AS board_id, boards.name AS board_name
			FROM invite_boards
			INNER JOIN boards ON boards.id = invite_boards.board_id
			WHERE invite_boards.invite_id IN (?)
			ORDER BY boards.name ASC, boards.id ASC;`, inviteIDs)
	if err != nil {
		return nil, err
	}
	err = h.SelectContext(ctx, &ms, query, args...)
	return ms, err //nolint:wrapcheck
}

// DeleteInvite implements store.InviteStore.
func (*inviteStore) DeleteInvite(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM invites WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

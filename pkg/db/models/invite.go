package models

import (
	"database/sql"
	"time"

	"github.com/printnow/portal/pkg/access"
)

// Invite is a pending organization membership.
type Invite struct {
	ID             int64         `db:"id"`
	OrganizationID int64         `db:"org_id"`
	Email          string        `db:"email"`
	Role           access.Role   `db:"role"`
	InvitedBy      sql.NullInt64 `db:"invited_by"`
	CreatedAt      time.Time     `db:"created_at"`
}

// InviteWithInviter is an invite joined with the user who sent it.
type InviteWithInviter struct {
	Invite
	InviterName  sql.NullString `db:"inviter_name"`
	InviterEmail sql.NullString `db:"inviter_email"`
}

// InviteBoard is a board granted by an invite.
type InviteBoard struct {
	InviteID  int64  `db:"invite_id"`
	BoardID   int64  `db:"board_id"`
	BoardName string `db:"board_name"`
}

package proto

import (
	"time"

	"github.com/printnow/portal/pkg/access"
)

// Invite is a pending organization membership.
type Invite struct {
	ID        int64        `json:"id"`
	Email     string       `json:"email"`
	Role      access.Role  `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
	InvitedBy *UserSummary `json:"invitedBy"`
	Boards    []BoardRef   `json:"boards"`
}

// CreateInviteInput invites an email to the current organization.
type CreateInviteInput struct {
	Email    string      `json:"email" validate:"required,email"`
	Role     access.Role `json:"role" validate:"omitempty,min=1,max=2"`
	BoardIDs []int64     `json:"boardIds" validate:"omitempty,unique"`
}

// InviteIDInput selects an invite.
type InviteIDInput struct {
	InviteID int64 `json:"inviteId" validate:"required"`
}

package proto

import (
	"time"

	"github.com/printnow/portal/pkg/access"
)

// Organization is an organization with its members.
type Organization struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Members         []Member    `json:"members"`
	CurrentUserRole access.Role `json:"currentUserRole"`
}

// Member is an organization member.
type Member struct {
	ID        int64       `json:"id"`
	Role      access.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	User      UserSummary `json:"user"`
}

// UpdateOrganizationInput updates the current organization.
type UpdateOrganizationInput struct {
	Name *string `json:"name" validate:"omitnil,min=1,max=100"`
	Slug *string `json:"slug" validate:"omitnil,min=1,max=50,slug"`
}

// UpdateMemberRoleInput changes the role of a member.
type UpdateMemberRoleInput struct {
	MemberID int64       `json:"memberId" validate:"required"`
	Role     access.Role `json:"role" validate:"min=1,max=3"`
}

// RemoveMemberInput removes a member from the organization.
type RemoveMemberInput struct {
	MemberID int64 `json:"memberId" validate:"required"`
}

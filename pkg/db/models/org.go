package models

import (
	"database/sql"
	"time"

	"github.com/printnow/portal/pkg/access"
)

// Organization represents an organization in the system.
type Organization struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// OrganizationMember represents a member of an organization.
type OrganizationMember struct {
	ID             int64       `db:"id"`
	OrganizationID int64       `db:"org_id"`
	UserID         int64       `db:"user_id"`
	Role           access.Role `db:"role"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

// MemberWithUser is an organization member joined with its user.
type MemberWithUser struct {
	OrganizationMember
	Email     string         `db:"email"`
	Name      string         `db:"name"`
	AvatarURL sql.NullString `db:"avatar_url"`
}

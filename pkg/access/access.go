// Package access defines organization roles.
package access

import (
	"encoding"
	"errors"
	"strings"
)

// Role is the role of a user within an organization. Roles are ordered, a
// higher role includes every permission of the lower ones.
type Role int

const (
	// NoAccess is the role of a user outside the organization.
	NoAccess Role = iota

	// Member can work on the boards they were added to.
	Member

	// Admin can manage every board, customer and invite of the organization.
	Admin

	// Owner can additionally grant and revoke ownership.
	Owner
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case NoAccess:
		return "NONE"
	case Member:
		return "MEMBER"
	case Admin:
		return "ADMIN"
	case Owner:
		return "OWNER"
	default:
		return "UNKNOWN"
	}
}

// ParseRole parses a role string. It returns -1 for unknown roles.
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE":
		return NoAccess
	case "MEMBER":
		return Member
	case "ADMIN":
		return Admin
	case "OWNER":
		return Owner
	default:
		return Role(-1)
	}
}

// AtLeast reports whether r includes the permissions of min.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Valid reports whether r is a role a member can hold.
func (r Role) Valid() bool {
	return r >= Member && r <= Owner
}

var (
	_ encoding.TextMarshaler   = Role(0)
	_ encoding.TextUnmarshaler = (*Role)(nil)
)

// ErrInvalidRole is returned when an invalid role is provided.
var ErrInvalidRole = errors.New("invalid role")

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	l := ParseRole(string(text))
	if l < 0 {
		return ErrInvalidRole
	}

	*r = l

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}

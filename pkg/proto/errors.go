package proto

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the backend wraps one of them so the
// transport can pick a status code with errors.Is.
var (
	// ErrBadRequest is returned when the input is invalid.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized is returned when the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller may not perform the action.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a record does not exist or is not visible.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a record already exists.
	ErrConflict = errors.New("conflict")
)

// Error is an error of a given kind with a user facing message.
type Error struct {
	kind error
	msg  string
}

// NewError returns an error of the given kind.
func NewError(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Errorf returns an error of the given kind with a formatted message.
func Errorf(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Error implements error.
func (e *Error) Error() string {
	return e.msg
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.kind
}

var (
	ErrUserNotFound         = NewError(ErrNotFound, "user not found")
	ErrOrganizationNotFound = NewError(ErrNotFound, "organization not found")
	ErrMemberNotFound       = NewError(ErrNotFound, "member not found")
	ErrBoardNotFound        = NewError(ErrNotFound, "board not found")
	ErrColumnNotFound       = NewError(ErrNotFound, "column not found")
	ErrCardNotFound         = NewError(ErrNotFound, "card not found")
	ErrLabelNotFound        = NewError(ErrNotFound, "label not found")
	ErrAttachmentNotFound   = NewError(ErrNotFound, "attachment not found")
	ErrCustomerNotFound     = NewError(ErrNotFound, "customer not found")
	ErrContactNotFound      = NewError(ErrNotFound, "contact not found")
	ErrInviteNotFound       = NewError(ErrNotFound, "invite not found")
	ErrInvalidAccessCode    = NewError(ErrNotFound, "Invalid access code")

	ErrNotAuthenticated  = NewError(ErrUnauthorized, "not authenticated")
	ErrTokenExpired      = NewError(ErrUnauthorized, "token expired")
	ErrInvalidToken      = NewError(ErrUnauthorized, "invalid token")
	ErrSessionNotFound   = NewError(ErrUnauthorized, "session not found")
	ErrEmailNotAllowed   = NewError(ErrForbidden, "email is not allowed to sign in")
	ErrAdminRequired     = NewError(ErrForbidden, "Only admins can perform this action")
	ErrOwnerRequired     = NewError(ErrForbidden, "Only owners can manage owners")
	ErrRemoveSelf        = NewError(ErrForbidden, "You cannot remove yourself")
	ErrLastOwner         = NewError(ErrForbidden, "An organization needs at least one owner")
	ErrBoardAccessDenied = NewError(ErrForbidden, "You do not have access to this board")
	ErrAccessDenied      = NewError(ErrForbidden, "Access denied")
	ErrContactDenied     = NewError(ErrForbidden, "Contact not found")

	ErrInvalidContact = NewError(ErrBadRequest, "Invalid contact")

	ErrSlugTaken      = NewError(ErrConflict, "slug is already taken")
	ErrAlreadyMember  = NewError(ErrConflict, "User is already a member")
	ErrAlreadyInvited = NewError(ErrConflict, "User has already been invited")
	ErrContactExists  = NewError(ErrConflict, "contact already exists")
)

// Issue describes why a single input field is invalid.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError is returned when the input does not match its schema.
type ValidationError struct {
	Issues []Issue
}

// Error implements error.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid input"
	}
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s: %s", e.Issues[0].Path, e.Issues[0].Message)
	}
	return fmt.Sprintf("%s: %s (and %d more)", e.Issues[0].Path, e.Issues[0].Message, len(e.Issues)-1)
}

// Unwrap returns ErrBadRequest.
func (e *ValidationError) Unwrap() error {
	return ErrBadRequest
}

// Invalid returns a validation error for a single field.
func Invalid(path, msg string) error {
	return &ValidationError{Issues: []Issue{{Path: path, Message: msg}}}
}

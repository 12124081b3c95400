package proto

import "time"

// Customer is an external party with access to shared boards.
type Customer struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"orgId"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	AccessCode     string     `json:"accessCode"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Boards         []BoardRef `json:"boards"`
	Contacts       []Contact  `json:"contacts"`
	ContactCount   int        `json:"contactCount"`
}

// Contact is a person working for a customer.
type Contact struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Portal is what a customer sees through their access code.
type Portal struct {
	Name     string    `json:"name"`
	Boards   []Board   `json:"boards"`
	Contacts []Contact `json:"contacts"`
}

// AccessCodeAlphabet is the set of characters access codes are drawn from.
// It leaves out characters that are easy to confuse.
const AccessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// AccessCodeLength is the length of an access code.
const AccessCodeLength = 8

// CreateCustomerInput creates a customer.
type CreateCustomerInput struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateCustomerInput updates a customer.
type UpdateCustomerInput struct {
	ID    int64   `json:"id" validate:"required"`
	Name  *string `json:"name" validate:"omitnil,min=1,max=100"`
	Email *string `json:"email" validate:"omitnil,email"`
}

// CustomerBoardInput shares or unshares a board with a customer.
type CustomerBoardInput struct {
	CustomerID int64 `json:"customerId" validate:"required"`
	BoardID    int64 `json:"boardId" validate:"required"`
}

// CustomerIDInput selects a customer.
type CustomerIDInput struct {
	CustomerID int64 `json:"customerId" validate:"required"`
}

// AddContactInput adds a contact to a customer.
type AddContactInput struct {
	CustomerID int64  `json:"customerId" validate:"required"`
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Email      string `json:"email" validate:"required,email"`
}

// UpdateContactInput updates a contact.
type UpdateContactInput struct {
	ID       int64   `json:"id" validate:"required"`
	Name     *string `json:"name" validate:"omitnil,min=1,max=100"`
	Email    *string `json:"email" validate:"omitnil,email"`
	IsActive *bool   `json:"isActive"`
}

// AccessCodeInput selects a customer by access code.
type AccessCodeInput struct {
	AccessCode string `json:"accessCode" validate:"required"`
}

// PortalContactInput lets a contact rename themselves.
type PortalContactInput struct {
	AccessCode string `json:"accessCode" validate:"required"`
	ContactID  int64  `json:"contactId" validate:"required"`
	Name       string `json:"name" validate:"required,min=1,max=100"`
}

// PortalCardInput selects a card through an access code.
type PortalCardInput struct {
	AccessCode string `json:"accessCode" validate:"required"`
	CardID     int64  `json:"cardId" validate:"required"`
}

// PortalCommentInput comments on a card through an access code.
type PortalCommentInput struct {
	AccessCode string `json:"accessCode" validate:"required"`
	CardID     int64  `json:"cardId" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=2000"`
	ContactID  *int64 `json:"contactId"`
}

package models

import "time"

// Customer represents an external party with access to shared boards.
type Customer struct {
	ID             int64     `db:"id"`
	OrganizationID int64     `db:"org_id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	AccessCode     string    `db:"access_code"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// CustomerContact is a person working for a customer.
type CustomerContact struct {
	ID         int64     `db:"id"`
	CustomerID int64     `db:"customer_id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// CustomerBoard is a board shared with a customer.
type CustomerBoard struct {
	CustomerID int64  `db:"customer_id"`
	BoardID    int64  `db:"board_id"`
	BoardName  string `db:"board_name"`
}

package models

import "time"

// Label represents a board label.
type Label struct {
	ID        int64     `db:"id"`
	BoardID   int64     `db:"board_id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

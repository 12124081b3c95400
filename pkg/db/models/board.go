package models

import (
	"database/sql"
	"time"
)

// Board represents a kanban board.
type Board struct {
	ID             int64          `db:"id"`
	OrganizationID int64          `db:"org_id"`
	Name           string         `db:"name"`
	Description    sql.NullString `db:"description"`
	Archived       bool           `db:"archived"`
	CreatedBy      sql.NullInt64  `db:"created_by"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// BoardMember represents a user explicitly added to a board.
type BoardMember struct {
	ID        int64     `db:"id"`
	BoardID   int64     `db:"board_id"`
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Column represents an ordered stage of a board.
type Column struct {
	ID        int64          `db:"id"`
	BoardID   int64          `db:"board_id"`
	Name      string         `db:"name"`
	Color     sql.NullString `db:"color"`
	Position  int            `db:"position"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// ColumnWithCount is a column with the number of cards it holds.
type ColumnWithCount struct {
	Column
	CardCount int `db:"card_count"`
}

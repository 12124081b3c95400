package models

import (
	"database/sql"
	"time"
)

// Card represents a task on a board.
type Card struct {
	ID          int64          `db:"id"`
	BoardID     int64          `db:"board_id"`
	ColumnID    int64          `db:"column_id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Position    int            `db:"position"`
	Priority    string         `db:"priority"`
	DueDate     sql.NullTime   `db:"due_date"`
	CreatedBy   sql.NullInt64  `db:"created_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// CardWithCounts is a card with its comment and attachment counts.
type CardWithCounts struct {
	Card
	CommentCount    int `db:"comment_count"`
	AttachmentCount int `db:"attachment_count"`
}

// CardAssignee is a user assigned to a card.
type CardAssignee struct {
	CardID    int64          `db:"card_id"`
	UserID    int64          `db:"user_id"`
	Email     string         `db:"email"`
	Name      string         `db:"name"`
	AvatarURL sql.NullString `db:"avatar_url"`
}

// CardLabel is a label attached to a card.
type CardLabel struct {
	CardID int64 `db:"card_id"`
	Label
}

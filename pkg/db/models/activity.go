package models

import (
	"database/sql"
	"time"
)

// Activity is an entry of a board's audit trail.
type Activity struct {
	ID        int64         `db:"id"`
	BoardID   int64         `db:"board_id"`
	CardID    sql.NullInt64 `db:"card_id"`
	UserID    sql.NullInt64 `db:"user_id"`
	Action    string        `db:"action"`
	Metadata  string        `db:"metadata"`
	CreatedAt time.Time     `db:"created_at"`
}

// ActivityWithUser is an activity joined with its author.
type ActivityWithUser struct {
	Activity
	UserName      sql.NullString `db:"user_name"`
	UserAvatarURL sql.NullString `db:"user_avatar_url"`
}

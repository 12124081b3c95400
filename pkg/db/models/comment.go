package models

import (
	"database/sql"
	"time"
)

// Comment represents a card comment. A comment is written either by a user
// or by a customer, optionally through one of its contacts.
type Comment struct {
	ID         int64         `db:"id"`
	CardID     int64         `db:"card_id"`
	UserID     sql.NullInt64 `db:"user_id"`
	CustomerID sql.NullInt64 `db:"customer_id"`
	ContactID  sql.NullInt64 `db:"contact_id"`
	Content    string        `db:"content"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

// CommentWithAuthor is a comment joined with its author names.
type CommentWithAuthor struct {
	Comment
	UserName      sql.NullString `db:"user_name"`
	UserEmail     sql.NullString `db:"user_email"`
	UserAvatarURL sql.NullString `db:"user_avatar_url"`
	CustomerName  sql.NullString `db:"customer_name"`
	ContactName   sql.NullString `db:"contact_name"`
}

package models

import "time"

// MagicLink is a single-use login token. Only the token hash is stored.
type MagicLink struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	TokenHash string    `db:"token_hash"`
	Redirect  string    `db:"redirect"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Session is a login session. UUID is the session token id.
type Session struct {
	ID        int64     `db:"id"`
	UUID      string    `db:"uuid"`
	UserID    int64     `db:"user_id"`
	UserAgent string    `db:"user_agent"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

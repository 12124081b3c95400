package models

import (
	"database/sql"
	"time"
)

// Attachment represents a file attached to a card.
type Attachment struct {
	ID          int64         `db:"id"`
	CardID      int64         `db:"card_id"`
	Name        string        `db:"name"`
	URL         string        `db:"url"`
	StoragePath string        `db:"storage_path"`
	Size        int64         `db:"size"`
	MimeType    string        `db:"mime_type"`
	UploadedBy  sql.NullInt64 `db:"uploaded_by"`
	CreatedAt   time.Time     `db:"created_at"`
}

package proto

import (
	"encoding/json"
	"time"
)

// Priority is the priority of a card.
type Priority string

// Card priorities.
const (
	PriorityNone   Priority = "NONE"
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Card is a board card.
type Card struct {
	ID              int64         `json:"id"`
	BoardID         int64         `json:"boardId"`
	ColumnID        int64         `json:"columnId"`
	Title           string        `json:"title"`
	Description     *string       `json:"description"`
	Position        int           `json:"position"`
	Priority        Priority      `json:"priority"`
	DueDate         *time.Time    `json:"dueDate"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Assignees       []UserSummary `json:"assignees"`
	Labels          []Label       `json:"labels"`
	CommentCount    int           `json:"commentCount"`
	AttachmentCount int           `json:"attachmentCount"`
	Creator         *UserSummary  `json:"creator,omitempty"`
	Comments        []Comment     `json:"comments,omitempty"`
	Attachments     []Attachment  `json:"attachments,omitempty"`
}

// Label is a board label.
type Label struct {
	ID        int64     `json:"id"`
	BoardID   int64     `json:"boardId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a card comment.
type Comment struct {
	ID        int64        `json:"id"`
	CardID    int64        `json:"cardId"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	User      *UserSummary `json:"user"`
	Customer  *NamedRef    `json:"customer"`
	Contact   *NamedRef    `json:"contact"`
}

// NamedRef references a record by id and name.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Attachment is a file attached to a card.
type Attachment struct {
	ID          int64     `json:"id"`
	CardID      int64     `json:"cardId"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	StoragePath string    `json:"storagePath"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mimeType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Upload is the result of storing an attachment's content.
type Upload struct {
	StoragePath string `json:"storagePath"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	MimeType    string `json:"mimeType"`
}

// CreateCardInput creates a card.
type CreateCardInput struct {
	ColumnID    int64   `json:"columnId" validate:"required"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description"`
}

// UpdateCardInput updates a card. Description and DueDate are nullable:
// a JSON null clears them, an absent field leaves them untouched.
type UpdateCardInput struct {
	ID          int64               `json:"id" validate:"required"`
	Title       *string             `json:"title" validate:"omitnil,min=1,max=200"`
	Description Nullable[string]    `json:"description"`
	DueDate     Nullable[time.Time] `json:"dueDate"`
	Priority    *Priority           `json:"priority" validate:"omitnil,oneof=NONE LOW MEDIUM HIGH URGENT"`
}

// MoveCardInput moves a card to a column and position.
type MoveCardInput struct {
	CardID   int64 `json:"cardId" validate:"required"`
	ColumnID int64 `json:"columnId" validate:"required"`
	Position int   `json:"position" validate:"min=0"`
}

// CardAssigneeInput adds or removes an assignee.
type CardAssigneeInput struct {
	CardID int64 `json:"cardId" validate:"required"`
	UserID int64 `json:"userId" validate:"required"`
}

// SearchCardsInput searches a board.
type SearchCardsInput struct {
	BoardID int64  `json:"boardId" validate:"required"`
	Query   string `json:"query" validate:"required,min=1,max=200"`
}

// AddCommentInput comments on a card.
type AddCommentInput struct {
	CardID  int64  `json:"cardId" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

// CreateLabelInput creates a label.
type CreateLabelInput struct {
	BoardID int64  `json:"boardId" validate:"required"`
	Name    string `json:"name" validate:"required,min=1,max=50"`
	Color   string `json:"color" validate:"required,hexcolor6"`
}

// UpdateLabelInput updates a label.
type UpdateLabelInput struct {
	ID    int64   `json:"id" validate:"required"`
	Name  *string `json:"name" validate:"omitnil,min=1,max=50"`
	Color *string `json:"color" validate:"omitnil,hexcolor6"`
}

// CardLabelInput attaches or detaches a label.
type CardLabelInput struct {
	LabelID int64 `json:"labelId" validate:"required"`
	CardID  int64 `json:"cardId" validate:"required"`
}

// CreateAttachmentInput records an uploaded attachment.
type CreateAttachmentInput struct {
	CardID      int64  `json:"cardId" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	URL         string `json:"url" validate:"required"`
	StoragePath string `json:"storagePath" validate:"required"`
	Size        int64  `json:"size" validate:"min=0"`
	MimeType    string `json:"mimeType" validate:"required"`
}

// Nullable is an optional field that distinguishes an absent value from an
// explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler. It is only called when the
// field is present.
func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Of returns a set Nullable holding v.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a set Nullable holding null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

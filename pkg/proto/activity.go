package proto

import (
	"encoding/json"
	"time"
)

// Action is the kind of an activity entry.
type Action string

// Activity actions.
const (
	ActionCardCreated       Action = "CARD_CREATED"
	ActionCardUpdated       Action = "CARD_UPDATED"
	ActionCardMoved         Action = "CARD_MOVED"
	ActionCardDeleted       Action = "CARD_DELETED"
	ActionCommentAdded      Action = "COMMENT_ADDED"
	ActionAssigneeAdded     Action = "ASSIGNEE_ADDED"
	ActionAssigneeRemoved   Action = "ASSIGNEE_REMOVED"
	ActionLabelAdded        Action = "LABEL_ADDED"
	ActionLabelRemoved      Action = "LABEL_REMOVED"
	ActionAttachmentAdded   Action = "ATTACHMENT_ADDED"
	ActionAttachmentRemoved Action = "ATTACHMENT_REMOVED"
	ActionMemberAdded       Action = "MEMBER_ADDED"
	ActionMemberRemoved     Action = "MEMBER_REMOVED"
)

// Activity is an entry of a board's audit trail.
type Activity struct {
	ID        int64           `json:"id"`
	BoardID   int64           `json:"boardId"`
	CardID    *int64          `json:"cardId"`
	Action    Action          `json:"action"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"createdAt"`
	User      *UserSummary    `json:"user"`
}

// ActivityPage is a page of activities, newest first.
type ActivityPage struct {
	Items      []Activity `json:"items"`
	NextCursor *int64     `json:"nextCursor"`
}

// ListActivityInput pages through a board's activities. Cursor is the id of
// the first entry to return.
type ListActivityInput struct {
	BoardID int64  `json:"boardId" validate:"required"`
	Limit   int    `json:"limit" validate:"omitempty,min=1,max=50"`
	Cursor  *int64 `json:"cursor"`
}

// DefaultActivityLimit is the page size used when none is given.
const DefaultActivityLimit = 20

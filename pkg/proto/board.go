package proto

import (
	"time"

	"github.com/printnow/portal/pkg/access"
)

// Board is a kanban board.
type Board struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"orgId"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	Archived       bool      `json:"archived"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Columns        []Column  `json:"columns"`
}

// BoardRef is a reference to a board.
type BoardRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Column is a board column.
type Column struct {
	ID        int64   `json:"id"`
	BoardID   int64   `json:"boardId"`
	Name      string  `json:"name"`
	Color     *string `json:"color"`
	Position  int     `json:"position"`
	CardCount int     `json:"cardCount"`
	Cards     []Card  `json:"cards,omitempty"`
}

// BoardMember is an organization member with their board membership.
type BoardMember struct {
	UserSummary
	Role          access.Role `json:"role"`
	IsBoardMember bool        `json:"isBoardMember"`
}

// DefaultColumns are created with every new board.
var DefaultColumns = []struct {
	Name  string
	Color string
}{
	{"To Do", "#6366f1"},
	{"In Progress", "#f97316"},
	{"Done", "#22c55e"},
}

// BoardIDInput selects a board.
type BoardIDInput struct {
	BoardID int64 `json:"boardId" validate:"required"`
}

// IDInput selects a record by id.
type IDInput struct {
	ID int64 `json:"id" validate:"required"`
}

// CreateBoardInput creates a board.
type CreateBoardInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

// UpdateBoardInput updates a board.
type UpdateBoardInput struct {
	ID          int64   `json:"id" validate:"required"`
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

// BoardMemberInput adds or removes a board member.
type BoardMemberInput struct {
	BoardID int64 `json:"boardId" validate:"required"`
	UserID  int64 `json:"userId" validate:"required"`
}

// CreateColumnInput creates a column.
type CreateColumnInput struct {
	BoardID int64   `json:"boardId" validate:"required"`
	Name    string  `json:"name" validate:"required,min=1,max=50"`
	Color   *string `json:"color" validate:"omitnil,hexcolor6"`
}

// UpdateColumnInput updates a column.
type UpdateColumnInput struct {
	ID    int64   `json:"id" validate:"required"`
	Name  *string `json:"name" validate:"omitnil,min=1,max=50"`
	Color *string `json:"color" validate:"omitnil,hexcolor6"`
}

// ReorderColumnsInput rewrites the column positions of a board.
type ReorderColumnsInput struct {
	BoardID   int64   `json:"boardId" validate:"required"`
	ColumnIDs []int64 `json:"columnIds" validate:"required,min=1,unique"`
}

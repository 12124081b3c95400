package store

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
)

// BoardStore is an interface for managing boards and board members.
type BoardStore interface {
	CreateBoard(ctx context.Context, h db.Handler, orgID int64, name string, description *string, createdBy int64) (models.Board, error)
	GetBoardByID(ctx context.Context, h db.Handler, id int64) (models.Board, error)
	// ListBoards returns the non-archived boards of an organization, most
	// recently updated first. A non-zero memberID restricts the result to
	// boards that user is a board member of.
	ListBoards(ctx context.Context, h db.Handler, orgID int64, memberID int64) ([]models.Board, error)
	UpdateBoard(ctx context.Context, h db.Handler, id int64, name string, description *string) error
	ArchiveBoard(ctx context.Context, h db.Handler, id int64) error
	TouchBoard(ctx context.Context, h db.Handler, id int64) error
	DeleteBoard(ctx context.Context, h db.Handler, id int64) error

	AddBoardMember(ctx context.Context, h db.Handler, boardID int64, userID int64) error
	RemoveBoardMember(ctx context.Context, h db.Handler, boardID int64, userID int64) error
	IsBoardMember(ctx context.Context, h db.Handler, boardID int64, userID int64) (bool, error)
	ListBoardMemberIDs(ctx context.Context, h db.Handler, boardID int64) ([]int64, error)
}

// ColumnStore is an interface for managing board columns.
type ColumnStore interface {
	CreateColumn(ctx context.Context, h db.Handler, boardID int64, name string, color *string, position int) (models.Column, error)
	GetColumnByID(ctx context.Context, h db.Handler, id int64) (models.Column, error)
	ListColumnsByBoard(ctx context.Context, h db.Handler, boardID int64) ([]models.ColumnWithCount, error)
	NextColumnPosition(ctx context.Context, h db.Handler, boardID int64) (int, error)
	UpdateColumn(ctx context.Context, h db.Handler, id int64, name string, color *string) error
	SetColumnPosition(ctx context.Context, h db.Handler, id int64, position int) error
	DeleteColumn(ctx context.Context, h db.Handler, id int64) error
}

package store

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
)

// CardStore is an interface for managing cards, their assignees and labels.
type CardStore interface {
	CreateCard(ctx context.Context, h db.Handler, card models.Card) (models.Card, error)
	GetCardByID(ctx context.Context, h db.Handler, id int64) (models.Card, error)
	GetCardWithCounts(ctx context.Context, h db.Handler, id int64) (models.CardWithCounts, error)
	ListCardsByColumn(ctx context.Context, h db.Handler, columnID int64) ([]models.Card, error)
	ListCardsByBoard(ctx context.Context, h db.Handler, boardID int64) ([]models.CardWithCounts, error)
	ListCardsByBoards(ctx context.Context, h db.Handler, boardIDs []int64) ([]models.CardWithCounts, error)
	NextCardPosition(ctx context.Context, h db.Handler, columnID int64) (int, error)
	UpdateCard(ctx context.Context, h db.Handler, card models.Card) error
	MoveCard(ctx context.Context, h db.Handler, id int64, columnID int64, position int) error
	DeleteCard(ctx context.Context, h db.Handler, id int64) error
	SearchCards(ctx context.Context, h db.Handler, boardID int64, query string) ([]int64, error)

	AddCardAssignee(ctx context.Context, h db.Handler, cardID int64, userID int64) error
	RemoveCardAssignee(ctx context.Context, h db.Handler, cardID int64, userID int64) error
	ListCardAssignees(ctx context.Context, h db.Handler, cardIDs []int64) ([]models.CardAssignee, error)

	AddCardLabel(ctx context.Context, h db.Handler, cardID int64, labelID int64) error
	RemoveCardLabel(ctx context.Context, h db.Handler, cardID int64, labelID int64) error
	ListCardLabels(ctx context.Context, h db.Handler, cardIDs []int64) ([]models.CardLabel, error)
}

// LabelStore is an interface for managing board labels.
type LabelStore interface {
	CreateLabel(ctx context.Context, h db.Handler, boardID int64, name string, color string) (models.Label, error)
	GetLabelByID(ctx context.Context, h db.Handler, id int64) (models.Label, error)
	ListLabelsByBoard(ctx context.Context, h db.Handler, boardID int64) ([]models.Label, error)
	UpdateLabel(ctx context.Context, h db.Handler, id int64, name string, color string) error
	DeleteLabel(ctx context.Context, h db.Handler, id int64) error
}

// CommentStore is an interface for managing card comments.
type CommentStore interface {
	CreateComment(ctx context.Context, h db.Handler, comment models.Comment) (models.Comment, error)
	GetCommentByID(ctx context.Context, h db.Handler, id int64) (models.CommentWithAuthor, error)
	ListCommentsByCard(ctx context.Context, h db.Handler, cardID int64) ([]models.CommentWithAuthor, error)
}

// AttachmentStore is an interface for managing card attachments.
type AttachmentStore interface {
	CreateAttachment(ctx context.Context, h db.Handler, attachment models.Attachment) (models.Attachment, error)
	GetAttachmentByID(ctx context.Context, h db.Handler, id int64) (models.Attachment, error)
	FindAttachmentByStoragePath(ctx context.Context, h db.Handler, storagePath string) (models.Attachment, error)
	ListAttachmentsByCard(ctx context.Context, h db.Handler, cardID int64) ([]models.Attachment, error)
	DeleteAttachment(ctx context.Context, h db.Handler, id int64) error
}

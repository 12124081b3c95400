package database

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
)

type boardStore struct{}

var _ store.BoardStore = (*boardStore)(nil)

// CreateBoard implements store.BoardStore.
func (s *boardStore) CreateBoard(ctx context.Context, h db.Handler, orgID int64, name string, description *string, createdBy int64) (models.Board, error) {
	query := h.Rebind(`INSERT INTO boards (org_id, name, description, created_by, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, orgID, name, description, createdBy); err != nil {
		return models.Board{}, err //nolint:wrapcheck
	}

	return s.GetBoardByID(ctx, h, id)
}

// GetBoardByID implements store.BoardStore.
func (*boardStore) GetBoardByID(ctx context.Context, h db.Handler, id int64) (models.Board, error) {
	var m models.Board
	query := h.Rebind(`SELECT * FROM boards WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// ListBoards implements store.BoardStore.
func (*boardStore) ListBoards(ctx context.Context, h db.Handler, orgID int64, memberID int64) ([]models.Board, error) {
	var ms []models.Board
	if memberID == 0 {
		query := h.Rebind(`SELECT * FROM boards
				WHERE org_id = ? AND archived = false
				ORDER BY updated_at DESC, id DESC;`)
		err := h.SelectContext(ctx, &ms, query, orgID)
		return ms, err //nolint:wrapcheck
	}

	query := h.Rebind(`SELECT boards.* FROM boards
			INNER JOIN board_members ON board_members.board_id = boards.id
			WHERE boards.org_id = ? AND boards.archived = false AND board_members.user_id = ?
			ORDER BY boards.updated_at DESC, boards.id DESC;`)
	err := h.SelectContext(ctx, &ms, query, orgID, memberID)
	return ms, err //nolint:wrapcheck
}

// UpdateBoard implements store.BoardStore.
func (*boardStore) UpdateBoard(ctx context.Context, h db.Handler, id int64, name string, description *string) error {
	query := h.Rebind(`UPDATE boards SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, name, description, id)
	return err //nolint:wrapcheck
}

// ArchiveBoard implements store.BoardStore.
func (*boardStore) ArchiveBoard(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`UPDATE boards SET archived = true, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

// TouchBoard implements store.BoardStore.
func (*boardStore) TouchBoard(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`UPDATE boards SET updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

// DeleteBoard implements store.BoardStore.
func (*boardStore) DeleteBoard(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM boards WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

// AddBoardMember implements store.BoardStore.
func (*boardStore) AddBoardMember(ctx context.Context, h db.Handler, boardID int64, userID int64) error {
	query := h.Rebind(`INSERT INTO board_members (board_id, user_id) VALUES (?, ?);`)
	_, err := h.ExecContext(ctx, query, boardID, userID)
	return err //nolint:wrapcheck
}

// RemoveBoardMember implements store.BoardStore.
func (*boardStore) RemoveBoardMember(ctx context.Context, h db.Handler, boardID int64, userID int64) error {
	query := h.Rebind(`DELETE FROM board_members WHERE board_id = ? AND user_id = ?;`)
	_, err := h.ExecContext(ctx, query, boardID, userID)
	return err //nolint:wrapcheck
}

// IsBoardMember implements store.BoardStore.
func (*boardStore) IsBoardMember(ctx context.Context, h db.Handler, boardID int64, userID int64) (bool, error) {
	var count int
	query := h.Rebind(`SELECT COUNT(*) FROM board_members WHERE board_id = ? AND user_id = ?;`)
	err := h.GetContext(ctx, &count, query, boardID, userID)
	return count > 0, err //nolint:wrapcheck
}

// ListBoardMemberIDs implements store.BoardStore.
func (*boardStore) ListBoardMemberIDs(ctx context.Context, h db.Handler, boardID int64) ([]int64, error) {
	var ids []int64
	query := h.Rebind(`SELECT user_id FROM board_members WHERE board_id = ? ORDER BY id;`)
	err := h.SelectContext(ctx, &ids, query, boardID)
	return ids, err //nolint:wrapcheck
}

type columnStore struct{}

var _ store.ColumnStore = (*columnStore)(nil)

// CreateColumn implements store.ColumnStore.
func (s *columnStore) CreateColumn(ctx context.Context, h db.Handler, boardID int64, name string, color *string, position int) (models.Column, error) {
	query := h.Rebind(`INSERT INTO board_columns (board_id, name, color, position, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, boardID, name, color, position); err != nil {
		return models.Column{}, err //nolint:wrapcheck
	}

	return s.GetColumnByID(ctx, h, id)
}

// GetColumnByID implements store.ColumnStore.
func (*columnStore) GetColumnByID(ctx context.Context, h db.Handler, id int64) (models.Column, error) {
	var m models.Column
	query := h.Rebind(`SELECT * FROM board_columns WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// ListColumnsByBoard implements store.ColumnStore.
func (*columnStore) ListColumnsByBoard(ctx context.Context, h db.Handler, boardID int64) ([]models.ColumnWithCount, error) {
	var ms []models.ColumnWithCount
	query := h.Rebind(`SELECT board_columns.*,
				(SELECT COUNT(*) FROM cards WHERE cards.column_id = board_columns.id) AS card_count
			FROM board_columns
			WHERE board_columns.board_id = ?
			ORDER BY board_columns.position ASC, board_columns.id ASC;`)
	err := h.SelectContext(ctx, &ms, query, boardID)
	return ms, err //nolint:wrapcheck
}

// NextColumnPosition implements store.ColumnStore.
func (*columnStore) NextColumnPosition(ctx context.Context, h db.Handler, boardID int64) (int, error) {
	var pos int
	query := h.Rebind(`SELECT COALESCE(MAX(position) + 1, 0) FROM board_columns WHERE board_id = ?;`)
	err := h.GetContext(ctx, &pos, query, boardID)
	return pos, err //nolint:wrapcheck
}

// UpdateColumn implements store.ColumnStore.
func (*columnStore) UpdateColumn(ctx context.Context, h db.Handler, id int64, name string, color *string) error {
	query := h.Rebind(`UPDATE board_columns SET name = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, name, color, id)
	return err //nolint:wrapcheck
}

// SetColumnPosition implements store.ColumnStore.
func (*columnStore) SetColumnPosition(ctx context.Context, h db.Handler, id int64, position int) error {
	query := h.Rebind(`UPDATE board_columns SET position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, position, id)
	return err //nolint:wrapcheck
}

// DeleteColumn implements store.ColumnStore.
func (*columnStore) DeleteColumn(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM board_columns WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

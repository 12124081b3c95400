package database

import (
	"context"
	"sort"
	"strings"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
)

type cardStore struct{}

var _ store.CardStore = (*cardStore)(nil)

const cardWithCountsColumns = `cards.*,
	(SELECT COUNT(*) FROM comments WHERE comments.card_id = cards.id) AS comment_count,
	(SELECT COUNT(*) FROM attachments WHERE attachments.card_id = cards.id) AS attachment_count`

// CreateCard implements store.CardStore.
func (s *cardStore) CreateCard(ctx context.Context, h db.Handler, card models.Card) (models.Card, error) {
	query := h.Rebind(`INSERT INTO cards (board_id, column_id, title, description, position, priority, created_by, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	if card.Priority == "" {
		card.Priority = "NONE"
	}
	var id int64
	if err := h.GetContext(ctx, &id, query, card.BoardID, card.ColumnID, card.Title,
		card.Description, card.Position, card.Priority, card.CreatedBy); err != nil {
		return models.Card{}, err //nolint:wrapcheck
	}

	return s.GetCardByID(ctx, h, id)
}

// GetCardByID implements store.CardStore.
func (*cardStore) GetCardByID(ctx context.Context, h db.Handler, id int64) (models.Card, error) {
	var m models.Card
	query := h.Rebind(`SELECT * FROM cards WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// GetCardWithCounts implements store.CardStore.
func (*cardStore) GetCardWithCounts(ctx context.Context, h db.Handler, id int64) (models.CardWithCounts, error) {
	var m models.CardWithCounts
	query := h.Rebind(`SELECT ` + cardWithCountsColumns + ` FROM cards WHERE cards.id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// ListCardsByColumn implements store.CardStore.
func (*cardStore) ListCardsByColumn(ctx context.Context, h db.Handler, columnID int64) ([]models.Card, error) {
	var ms []models.Card
	query := h.Rebind(`SELECT * FROM cards WHERE column_id = ? ORDER BY position ASC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query, columnID)
	return ms, err //nolint:wrapcheck
}

// ListCardsByBoard implements store.CardStore.
func (*cardStore) ListCardsByBoard(ctx context.Context, h db.Handler, boardID int64) ([]models.CardWithCounts, error) {
	var ms []models.CardWithCounts
	query := h.Rebind(`SELECT ` + cardWithCountsColumns + `
			FROM cards
			WHERE cards.board_id = ?
			ORDER BY cards.column_id ASC, cards.position ASC, cards.id ASC;`)
	err := h.SelectContext(ctx, &ms, query, boardID)
	return ms, err //nolint:wrapcheck
}

// ListCardsByBoards implements store.CardStore.
func (*cardStore) ListCardsByBoards(ctx context.Context, h db.Handler, boardIDs []int64) ([]models.CardWithCounts, error) {
	var ms []models.CardWithCounts
	if len(boardIDs) == 0 {
		return ms, nil
	}
	query, args, err := in(h, `SELECT `+cardWithCountsColumns+`
			FROM cards
			WHERE cards.board_id IN (?)
			ORDER BY cards.column_id ASC, cards.position ASC, cards.id ASC;`, boardIDs)
	if err != nil {
		return nil, err
	}
	err = h.SelectContext(ctx, &ms, query, args...)
	return ms, err //nolint:wrapcheck
}

// NextCardPosition implements store.CardStore.
func (*cardStore) NextCardPosition(ctx context.Context, h db.Handler, columnID int64) (int, error) {
	var pos int
	query := h.Rebind(`SELECT COALESCE(MAX(position) + 1, 0) FROM cards WHERE column_id = ?;`)
	err := h.GetContext(ctx, &pos, query, columnID)
	return pos, err //nolint:wrapcheck
}

// UpdateCard implements store.CardStore.
func (*cardStore) UpdateCard(ctx context.Context, h db.Handler, card models.Card) error {
	query := h.Rebind(`UPDATE cards SET title = ?, description = ?, priority = ?, due_date = ?,
			updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	var due interface{}
	if card.DueDate.Valid {
		due = card.DueDate.Time.UTC()
	}
	_, err := h.ExecContext(ctx, query, card.Title, card.Description, card.Priority, due, card.ID)
	return err //nolint:wrapcheck
}

// MoveCard implements store.CardStore.
func (*cardStore) MoveCard(ctx context.Context, h db.Handler, id int64, columnID int64, position int) error {
	query := h.Rebind(`UPDATE cards SET column_id = ?, position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, columnID, position, id)
	return err //nolint:wrapcheck
}

// DeleteCard implements store.CardStore.
func (*cardStore) DeleteCard(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM cards WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchCards implements store.CardStore. Postgres matches with ILIKE. SQLite
// only folds ASCII in LOWER, so there the board's text is folded in Go.
func (*cardStore) SearchCards(ctx context.Context, h db.Handler, boardID int64, q string) ([]int64, error) {
	if h.DriverName() == "postgres" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		query := h.Rebind(`SELECT cards.id FROM cards
				WHERE cards.board_id = ? AND (
					cards.title ILIKE ? ESCAPE '\'
					OR COALESCE(cards.description, '') ILIKE ? ESCAPE '\'
					OR EXISTS (
						SELECT 1 FROM comments
						WHERE comments.card_id = cards.id AND comments.content ILIKE ? ESCAPE '\'
					)
				)
				ORDER BY cards.id;`)
		var ids []int64
		err := h.SelectContext(ctx, &ids, query, boardID, pattern, pattern, pattern)
		return ids, err //nolint:wrapcheck
	}

	var rows []struct {
		ID   int64  `db:"id"`
		Text string `db:"text"`
	}
	query := h.Rebind(`SELECT id, title AS text FROM cards WHERE board_id = ?
			UNION ALL
			SELECT id, description AS text FROM cards WHERE board_id = ? AND description IS NOT NULL
			UNION ALL
			SELECT comments.card_id AS id, comments.content AS text FROM comments
				JOIN cards ON cards.id = comments.card_id
				WHERE cards.board_id = ?;`)
	if err := h.SelectContext(ctx, &rows, query, boardID, boardID, boardID); err != nil {
		return nil, err //nolint:wrapcheck
	}

	needle := strings.ToLower(q)
	seen := map[int64]struct{}{}
	ids := []int64{}
	for _, r := range rows {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		if strings.Contains(strings.ToLower(r.Text), needle) {
			seen[r.ID] = struct{}{}
			ids = append(ids, r.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// AddCardAssignee implements store.CardStore.
func (*cardStore) AddCardAssignee(ctx context.Context, h db.Handler, cardID int64, userID int64) error {
	query := h.Rebind(`INSERT INTO card_assignees (card_id, user_id) VALUES (?, ?);`)
	_, err := h.ExecContext(ctx, query, cardID, userID)
	return err //nolint:wrapcheck
}

// RemoveCardAssignee implements store.CardStore.
func (*cardStore) RemoveCardAssignee(ctx context.Context, h db.Handler, cardID int64, userID int64) error {
	query := h.Rebind(`DELETE FROM card_assignees WHERE card_id = ? AND user_id = ?;`)
	_, err := h.ExecContext(ctx, query, cardID, userID)
	return err //nolint:wrapcheck
}

// ListCardAssignees implements store.CardStore.
func (*cardStore) ListCardAssignees(ctx context.Context, h db.Handler, cardIDs []int64) ([]models.CardAssignee, error) {
	var ms []models.CardAssignee
	if len(cardIDs) == 0 {
		return ms, nil
	}
	query, args, err := in(h, `SELECT card_assignees.card_id, users.id AS user_id, users.email, users.name, users.avatar_url
			FROM card_assignees
			INNER JOIN users ON users.id = card_assignees.user_id
			WHERE card_assignees.card_id IN (?)
			ORDER BY card_assignees.created_at ASC, users.id ASC;`, cardIDs)
	if err != nil {
		return nil, err
	}
	err = h.SelectContext(ctx, &ms, query, args...)
	return ms, err //nolint:wrapcheck
}

// AddCardLabel implements store.CardStore.
func (*cardStore) AddCardLabel(ctx context.Context, h db.Handler, cardID int64, labelID int64) error {
	query := h.Rebind(`INSERT INTO card_labels (card_id, label_id) VALUES (?, ?);`)
	_, err := h.ExecContext(ctx, query, cardID, labelID)
	return err //nolint:wrapcheck
}

// RemoveCardLabel implements store.CardStore.
func (*cardStore) RemoveCardLabel(ctx context.Context, h db.Handler, cardID int64, labelID int64) error {
	query := h.Rebind(`DELETE FROM card_labels WHERE card_id = ? AND label_id = ?;`)
	_, err := h.ExecContext(ctx, query, cardID, labelID)
	return err //nolint:wrapcheck
}

// ListCardLabels implements store.CardStore.
func (*cardStore) ListCardLabels(ctx context.Context, h db.Handler, cardIDs []int64) ([]models.CardLabel, error) {
	var ms []models.CardLabel
	if len(cardIDs) == 0 {
		return ms, nil
	}
	query, args, err := in(h, `SELECT card_labels.card_id, labels.*
			FROM card_labels
			INNER JOIN labels ON labels.id = card_labels.label_id
			WHERE card_labels.card_id IN (?)
			ORDER BY labels.created_at ASC, labels.id ASC;`, cardIDs)
	if err != nil {
		return nil, err
	}
	err = h.SelectContext(ctx, &ms, query, args...)
	return ms, err //nolint:wrapcheck
}

type labelStore struct{}

var _ store.LabelStore = (*labelStore)(nil)

// CreateLabel implements store.LabelStore.
func (s *labelStore) CreateLabel(ctx context.Context, h db.Handler, boardID int64, name string, color string) (models.Label, error) {
	query := h.Rebind(`INSERT INTO labels (board_id, name, color, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, boardID, name, color); err != nil {
		return models.Label{}, err //nolint:wrapcheck
	}

	return s.GetLabelByID(ctx, h, id)
}

// GetLabelByID implements store.LabelStore.
func (*labelStore) GetLabelByID(ctx context.Context, h db.Handler, id int64) (models.Label, error) {
	var m models.Label
	query := h.Rebind(`SELECT * FROM labels WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// ListLabelsByBoard implements store.LabelStore.
func (*labelStore) ListLabelsByBoard(ctx context.Context, h db.Handler, boardID int64) ([]models.Label, error) {
	var ms []models.Label
	query := h.Rebind(`SELECT * FROM labels WHERE board_id = ? ORDER BY created_at ASC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query, boardID)
	return ms, err //nolint:wrapcheck
}

// UpdateLabel implements store.LabelStore.
func (*labelStore) UpdateLabel(ctx context.Context, h db.Handler, id int64, name string, color string) error {
	query := h.Rebind(`UPDATE labels SET name = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, name, color, id)
	return err //nolint:wrapcheck
}

// DeleteLabel implements store.LabelStore.
func (*labelStore) DeleteLabel(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM labels WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

package database

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
)

type customerStore struct{}

var _ store.CustomerStore = (*customerStore)(nil)

// CreateCustomer implements store.CustomerStore.
func (s *customerStore) CreateCustomer(ctx context.Context, h db.Handler, orgID int64, name string, email string, accessCode string) (models.Customer, error) {
	query := h.Rebind(`INSERT INTO customers (org_id, name, email, access_code, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, orgID, name, email, accessCode); err != nil {
		return models.Customer{}, err //nolint:wrapcheck
	}

	return s.GetCustomerByID(ctx, h, id)
}

// GetCustomerByID implements store.CustomerStore.
func (*customerStore) GetCustomerByID(ctx context.Context, h db.Handler, id int64) (models.Customer, error) {
	var m models.Customer
	query := h.Rebind(`SELECT * FROM customers WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindCustomerByAccessCode implements store.CustomerStore.
func (*customerStore) FindCustomerByAccessCode(ctx context.Context, h db.Handler, accessCode string) (models.Customer, error) {
	var m models.Customer
	query := h.Rebind(`SELECT * FROM customers WHERE access_code = ?;`)
	err := h.GetContext(ctx, &m, query, accessCode)
	return m, err //nolint:wrapcheck
}

// ListCustomersByOrg implements store.CustomerStore.
func (*customerStore) ListCustomersByOrg(ctx context.Context, h db.Handler, orgID int64) ([]models.Customer, error) {
	var ms []models.Customer
	query := h.Rebind(`SELECT * FROM customers WHERE org_id = ? ORDER BY created_at DESC, id DESC;`)
	err := h.SelectContext(ctx, &ms, query, orgID)
	return ms, err //nolint:wrapcheck
}

// UpdateCustomer implements store.CustomerStore.
func (*customerStore) UpdateCustomer(ctx context.Context, h db.Handler, id int64, name string, email string) error {
	query := h.Rebind(`UPDATE customers SET name = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, name, email, id)
	return err //nolint:wrapcheck
}

// SetCustomerAccessCode implements store.CustomerStore.
func (*customerStore) SetCustomerAccessCode(ctx context.Context, h db.Handler, id int64, accessCode string) error {
	query := h.Rebind(`UPDATE customers SET access_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, accessCode, id)
	return err //nolint:wrapcheck
}

// DeleteCustomer implements store.CustomerStore.
func (*customerStore) DeleteCustomer(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM customers WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

// AddCustomerBoard implements store.CustomerStore.
func (*customerStore) AddCustomerBoard(ctx context.Context, h db.Handler, customerID int64, boardID int64) error {
	query := h.Rebind(`INSERT INTO customer_boards (customer_id, board_id) VALUES (?, ?);`)
	_, err := h.ExecContext(ctx, query, customerID, boardID)
	return err //nolint:wrapcheck
}

// RemoveCustomerBoard implements store.CustomerStore.
func (*customerStore) RemoveCustomerBoard(ctx context.Context, h db.Handler, customerID int64, boardID int64) error {
	query := h.Rebind(`DELETE FROM customer_boards WHERE customer_id = ? AND board_id = ?;`)
	_, err := h.ExecContext(ctx, query, customerID, boardID)
	return err //nolint:wrapcheck
}

// ListCustomerBoards implements store.CustomerStore.
func (*customerStore) ListCustomerBoards(ctx context.Context, h db.Handler, customerIDs []int64) ([]models.CustomerBoard, error) {
	var ms []models.CustomerBoard
	if len(customerIDs) == 0 {
		return ms, nil
	}
	query, args, err := in(h, `SELECT customer_boards.customer_id, boards.id AS board_id, boards.name AS board_name
			FROM customer_boards
			INNER JOIN boards ON boards.id = customer_boards.board_id
			WHERE customer_boards.customer_id IN (?)
			ORDER BY boards.name ASC, boards.id ASC;`, customerIDs)
	if err != nil {
		return nil, err
	}
	err = h.SelectContext(ctx, &ms, query, args...)
	return ms, err //nolint:wrapcheck
}

// ListSharedBoards implements store.CustomerStore.
func (*customerStore) ListSharedBoards(ctx context.Context, h db.Handler, customerID int64) ([]models.Board, error) {
	var ms []models.Board
	query := h.Rebind(`SELECT boards.*
			FROM boards
			INNER JOIN customer_boards ON customer_boards.board_id = boards.id
			WHERE customer_boards.customer_id = ? AND boards.archived = ?
			ORDER BY boards.name ASC, boards.id ASC;`)
	err := h.SelectContext(ctx, &ms, query, customerID, false)
	return ms, err //nolint:wrapcheck
}

// IsBoardShared implements store.CustomerStore.
func (*customerStore) IsBoardShared(ctx context.Context, h db.Handler, customerID int64, boardID int64) (bool, error) {
	var count int
	query := h.Rebind(`SELECT COUNT(*) FROM customer_boards WHERE customer_id = ? AND board_id = ?;`)
	err := h.GetContext(ctx, &count, query, customerID, boardID)
	return count > 0, err //nolint:wrapcheck
}

// ListCustomerIDsByBoard implements store.CustomerStore.
func (*customerStore) ListCustomerIDsByBoard(ctx context.Context, h db.Handler, boardID int64) ([]int64, error) {
	var ids []int64
	query := h.Rebind(`SELECT customer_id FROM customer_boards WHERE board_id = ? ORDER BY customer_id;`)
	err := h.SelectContext(ctx, &ids, query, boardID)
	return ids, err //nolint:wrapcheck
}

// CreateContact implements store.CustomerStore.
func (s *customerStore) CreateContact(ctx context.Context, h db.Handler, customerID int64, name string, email string) (models.CustomerContact, error) {
	query := h.Rebind(`INSERT INTO customer_contacts (customer_id, name, email, is_active, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := h.GetContext(ctx, &id, query, customerID, name, email, true); err != nil {
		return models.CustomerContact{}, err //nolint:wrapcheck
	}

	return s.GetContactByID(ctx, h, id)
}

// GetContactByID implements store.CustomerStore.
func (*customerStore) GetContactByID(ctx context.Context, h db.Handler, id int64) (models.CustomerContact, error) {
	var m models.CustomerContact
	query := h.Rebind(`SELECT * FROM customer_contacts WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// ListContacts implements store.CustomerStore.
func (*customerStore) ListContacts(ctx context.Context, h db.Handler, customerIDs []int64) ([]models.CustomerContact, error) {
	var ms []models.CustomerContact
	if len(customerIDs) == 0 {
		return ms, nil
	}
	query, args, err := in(h, `SELECT * FROM customer_contacts
			WHERE customer_id IN (?)
			ORDER BY created_at ASC, id ASC;`, customerIDs)
	if err != nil {
		return nil, err
	}
	err = h.SelectContext(ctx, &ms, query, args...)
	return ms, err //nolint:wrapcheck
}

// ListActiveContacts implements store.CustomerStore.
func (*customerStore) ListActiveContacts(ctx context.Context, h db.Handler, customerID int64) ([]models.CustomerContact, error) {
	var ms []models.CustomerContact
	query := h.Rebind(`SELECT * FROM customer_contacts
			WHERE customer_id = ? AND is_active = ?
			ORDER BY name ASC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query, customerID, true)
	return ms, err //nolint:wrapcheck
}

// UpdateContact implements store.CustomerStore.
func (*customerStore) UpdateContact(ctx context.Context, h db.Handler, contact models.CustomerContact) error {
	query := h.Rebind(`UPDATE customer_contacts SET name = ?, email = ?, is_active = ?,
			updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, contact.Name, contact.Email, contact.IsActive, contact.ID)
	return err //nolint:wrapcheck
}

// DeleteContact implements store.CustomerStore.
func (*customerStore) DeleteContact(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM customer_contacts WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

package store

import (
	"context"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
)

// CustomerStore is an interface for managing customers, their shared boards
// and their contacts.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, h db.Handler, orgID int64, name string, email string, accessCode string) (models.Customer, error)
	GetCustomerByID(ctx context.Context, h db.Handler, id int64) (models.Customer, error)
	FindCustomerByAccessCode(ctx context.Context, h db.Handler, accessCode string) (models.Customer, error)
	ListCustomersByOrg(ctx context.Context, h db.Handler, orgID int64) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, h db.Handler, id int64, name string, email string) error
	SetCustomerAccessCode(ctx context.Context, h db.Handler, id int64, accessCode string) error
	DeleteCustomer(ctx context.Context, h db.Handler, id int64) error

	AddCustomerBoard(ctx context.Context, h db.Handler, customerID int64, boardID int64) error
	RemoveCustomerBoard(ctx context.Context, h db.Handler, customerID int64, boardID int64) error
	ListCustomerBoards(ctx context.Context, h db.Handler, customerIDs []int64) ([]models.CustomerBoard, error)
	ListSharedBoards(ctx context.Context, h db.Handler, customerID int64) ([]models.Board, error)
	IsBoardShared(ctx context.Context, h db.Handler, customerID int64, boardID int64) (bool, error)
	ListCustomerIDsByBoard(ctx context.Context, h db.Handler, boardID int64) ([]int64, error)

	CreateContact(ctx context.Context, h db.Handler, customerID int64, name string, email string) (models.CustomerContact, error)
	GetContactByID(ctx context.Context, h db.Handler, id int64) (models.CustomerContact, error)
	ListContacts(ctx context.Context, h db.Handler, customerIDs []int64) ([]models.CustomerContact, error)
	ListActiveContacts(ctx context.Context, h db.Handler, customerID int64) ([]models.CustomerContact, error)
	UpdateContact(ctx context.Context, h db.Handler, contact models.CustomerContact) error
	DeleteContact(ctx context.Context, h db.Handler, id int64) error
}

// InviteStore is an interface for managing pending invites.
type InviteStore interface {
	CreateInvite(ctx context.Context, h db.Handler, invite models.Invite) (models.Invite, error)
	GetInviteByID(ctx context.Context, h db.Handler, id int64) (models.Invite, error)
	FindInviteByEmail(ctx context.Context, h db.Handler, email string) (models.Invite, error)
	FindOrgInviteByEmail(ctx context.Context, h db.Handler, orgID int64, email string) (models.Invite, error)
	ListInvitesByOrg(ctx context.Context, h db.Handler, orgID int64) ([]models.InviteWithInviter, error)
	AddInviteBoard(ctx context.Context, h db.Handler, inviteID int64, boardID int64) error
	ListInviteBoards(ctx context.Context, h db.Handler, inviteIDs []int64) ([]models.InviteBoard, error)
	DeleteInvite(ctx context.Context, h db.Handler, id int64) error
}

package backend

import (
	"context"
	"errors"

	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/utils"
)

// accessCodeAttempts bounds the retries on access code collisions.
const accessCodeAttempts = 5

// GenerateAccessCode returns a random customer access code.
func GenerateAccessCode() (string, error) {
	return randomString(proto.AccessCodeAlphabet, proto.AccessCodeLength)
}

func accessCodeKey(code string) string {
	return "access-code:" + code
}

// forgetAccessCode drops a cached access code lookup.
func (d *Backend) forgetAccessCode(ctx context.Context, code string) {
	if d.cache != nil {
		d.cache.Delete(ctx, accessCodeKey(code))
	}
}

// customerAccess loads a customer of the caller's organization.
func (d *Backend) customerAccess(ctx context.Context, h db.Handler, user proto.User, customerID int64, admin bool) (models.Customer, models.OrganizationMember, error) {
	var m models.OrganizationMember
	var err error
	if admin {
		m, err = d.adminMembership(ctx, h, user)
	} else {
		m, err = d.membership(ctx, h, user)
	}
	if err != nil {
		return models.Customer{}, m, err
	}
	c, err := d.store.GetCustomerByID(ctx, h, customerID)
	if err != nil {
		return c, m, dbErr(err, proto.ErrCustomerNotFound)
	}
	if c.OrganizationID != m.OrganizationID {
		return c, m, proto.ErrCustomerNotFound
	}
	return c, m, nil
}

// customers attaches shared boards and contacts to customers.
func (d *Backend) customers(ctx context.Context, h db.Handler, ms []models.Customer) ([]proto.Customer, error) {
	out := make([]proto.Customer, 0, len(ms))
	if len(ms) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	boards, err := d.store.ListCustomerBoards(ctx, h, ids)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	contacts, err := d.store.ListContacts(ctx, h, ids)
	if err != nil {
		return nil, dbErr(err, nil)
	}

	byBoards := map[int64][]proto.BoardRef{}
	for _, b := range boards {
		byBoards[b.CustomerID] = append(byBoards[b.CustomerID], proto.BoardRef{ID: b.BoardID, Name: b.BoardName})
	}
	byContacts := map[int64][]proto.Contact{}
	for _, c := range contacts {
		byContacts[c.CustomerID] = append(byContacts[c.CustomerID], toContact(c))
	}
	for _, m := range ms {
		c := toCustomer(m)
		if bs, ok := byBoards[m.ID]; ok {
			c.Boards = bs
		}
		if cs, ok := byContacts[m.ID]; ok {
			c.Contacts = cs
		}
		c.ContactCount = len(c.Contacts)
		out = append(out, c)
	}
	return out, nil
}

func (d *Backend) customer(ctx context.Context, h db.Handler, id int64) (proto.Customer, error) {
	m, err := d.store.GetCustomerByID(ctx, h, id)
	if err != nil {
		return proto.Customer{}, dbErr(err, proto.ErrCustomerNotFound)
	}
	cs, err := d.customers(ctx, h, []models.Customer{m})
	if err != nil {
		return proto.Customer{}, err
	}
	return cs[0], nil
}

// ListCustomers returns the customers of the caller's organization, newest
// first.
func (d *Backend) ListCustomers(ctx context.Context, user proto.User) ([]proto.Customer, error) {
	m, err := d.membership(ctx, d.db, user)
	if err != nil {
		return nil, err
	}
	ms, err := d.store.ListCustomersByOrg(ctx, d.db, m.OrganizationID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	return d.customers(ctx, d.db, ms)
}

// CreateCustomer creates a customer with a fresh access code.
func (d *Backend) CreateCustomer(ctx context.Context, user proto.User, in proto.CreateCustomerInput) (proto.Customer, error) {
	in.Email = utils.NormalizeEmail(in.Email)
	if err := utils.Validate(in); err != nil {
		return proto.Customer{}, err //nolint:wrapcheck
	}

	m, err := d.adminMembership(ctx, d.db, user)
	if err != nil {
		return proto.Customer{}, err
	}
	return d.createCustomer(ctx, m.OrganizationID, in)
}

func (d *Backend) createCustomer(ctx context.Context, orgID int64, in proto.CreateCustomerInput) (proto.Customer, error) {
	for i := 0; i < accessCodeAttempts; i++ {
		code, err := GenerateAccessCode()
		if err != nil {
			return proto.Customer{}, err
		}
		c, err := d.store.CreateCustomer(ctx, d.db, orgID, in.Name, in.Email, code)
		if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
			continue
		} else if err != nil {
			return proto.Customer{}, dbErr(err, nil)
		}
		d.logger.Info("customer created", "customer", c.ID, "org", orgID)
		return d.customer(ctx, d.db, c.ID)
	}
	return proto.Customer{}, errors.New("could not generate a unique access code")
}

// UpdateCustomer renames a customer or changes its email.
func (d *Backend) UpdateCustomer(ctx context.Context, user proto.User, in proto.UpdateCustomerInput) (proto.Customer, error) {
	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := utils.Validate(in); err != nil {
		return proto.Customer{}, err //nolint:wrapcheck
	}

	c, _, err := d.customerAccess(ctx, d.db, user, in.ID, true)
	if err != nil {
		return proto.Customer{}, err
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if err := d.store.UpdateCustomer(ctx, d.db, c.ID, c.Name, c.Email); err != nil {
		return proto.Customer{}, dbErr(err, nil)
	}
	return d.customer(ctx, d.db, c.ID)
}

// DeleteCustomer deletes a customer. Its access code stops working.
func (d *Backend) DeleteCustomer(ctx context.Context, user proto.User, in proto.IDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	c, _, err := d.customerAccess(ctx, d.db, user, in.ID, true)
	if err != nil {
		return err
	}
	boards, err := d.store.ListCustomerBoards(ctx, d.db, []int64{c.ID})
	if err != nil {
		return dbErr(err, nil)
	}
	if err := d.store.DeleteCustomer(ctx, d.db, c.ID); err != nil {
		return dbErr(err, proto.ErrCustomerNotFound)
	}

	d.forgetAccessCode(ctx, c.AccessCode)
	for _, b := range boards {
		d.notify(b.BoardID, "customer", "deleted")
	}
	return nil
}

// RegenerateAccessCode gives a customer a new access code. Links with the
// old code stop working.
func (d *Backend) RegenerateAccessCode(ctx context.Context, user proto.User, in proto.IDInput) (proto.Customer, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Customer{}, err //nolint:wrapcheck
	}

	c, _, err := d.customerAccess(ctx, d.db, user, in.ID, true)
	if err != nil {
		return proto.Customer{}, err
	}
	for i := 0; i < accessCodeAttempts; i++ {
		code, err := GenerateAccessCode()
		if err != nil {
			return proto.Customer{}, err
		}
		err = d.store.SetCustomerAccessCode(ctx, d.db, c.ID, code)
		if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
			continue
		} else if err != nil {
			return proto.Customer{}, dbErr(err, nil)
		}
		d.forgetAccessCode(ctx, c.AccessCode)
		d.logger.Info("access code regenerated", "customer", c.ID, "user", user.ID)
		return d.customer(ctx, d.db, c.ID)
	}
	return proto.Customer{}, errors.New("could not generate a unique access code")
}

// customerBoard checks that a customer and a board belong to the caller's
// organization.
func (d *Backend) customerBoard(ctx context.Context, user proto.User, in proto.CustomerBoardInput) (models.Customer, models.Board, error) {
	c, m, err := d.customerAccess(ctx, d.db, user, in.CustomerID, true)
	if err != nil {
		return c, models.Board{}, err
	}
	b, err := d.store.GetBoardByID(ctx, d.db, in.BoardID)
	if err != nil {
		return c, b, dbErr(err, proto.ErrBoardNotFound)
	}
	if b.OrganizationID != m.OrganizationID {
		return c, b, proto.ErrBoardNotFound
	}
	return c, b, nil
}

// AssignBoard shares a board with a customer.
func (d *Backend) AssignBoard(ctx context.Context, user proto.User, in proto.CustomerBoardInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	c, b, err := d.customerBoard(ctx, user, in)
	if err != nil {
		return err
	}
	err = d.store.AddCustomerBoard(ctx, d.db, c.ID, b.ID)
	if err != nil && !errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
		return dbErr(err, nil)
	}
	d.notifyCustomer(c.ID, b.ID, actionAssigned)
	d.notify(b.ID, "customer", actionAssigned)
	return nil
}

// UnassignBoard stops sharing a board with a customer.
func (d *Backend) UnassignBoard(ctx context.Context, user proto.User, in proto.CustomerBoardInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	c, b, err := d.customerBoard(ctx, user, in)
	if err != nil {
		return err
	}
	if err := d.store.RemoveCustomerBoard(ctx, d.db, c.ID, b.ID); err != nil {
		return dbErr(err, nil)
	}
	d.notifyCustomer(c.ID, b.ID, actionUnassigned)
	d.notify(b.ID, "customer", actionUnassigned)
	return nil
}

// ListContacts returns the contacts of a customer, oldest first.
func (d *Backend) ListContacts(ctx context.Context, user proto.User, in proto.CustomerIDInput) ([]proto.Contact, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	c, _, err := d.customerAccess(ctx, d.db, user, in.CustomerID, false)
	if err != nil {
		return nil, err
	}
	ms, err := d.store.ListContacts(ctx, d.db, []int64{c.ID})
	if err != nil {
		return nil, dbErr(err, nil)
	}
	contacts := make([]proto.Contact, 0, len(ms))
	for _, m := range ms {
		contacts = append(contacts, toContact(m))
	}
	return contacts, nil
}

// AddContact adds a contact to a customer.
func (d *Backend) AddContact(ctx context.Context, user proto.User, in proto.AddContactInput) (proto.Contact, error) {
	in.Email = utils.NormalizeEmail(in.Email)
	if err := utils.Validate(in); err != nil {
		return proto.Contact{}, err //nolint:wrapcheck
	}

	c, _, err := d.customerAccess(ctx, d.db, user, in.CustomerID, true)
	if err != nil {
		return proto.Contact{}, err
	}
	m, err := d.store.CreateContact(ctx, d.db, c.ID, in.Name, in.Email)
	if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
		return proto.Contact{}, proto.ErrContactExists
	} else if err != nil {
		return proto.Contact{}, dbErr(err, nil)
	}
	return toContact(m), nil
}

// contactAccess loads a contact of a customer of the caller's organization.
func (d *Backend) contactAccess(ctx context.Context, user proto.User, contactID int64) (models.CustomerContact, error) {
	m, err := d.store.GetContactByID(ctx, d.db, contactID)
	if err != nil {
		return m, dbErr(err, proto.ErrContactNotFound)
	}
	if _, _, err := d.customerAccess(ctx, d.db, user, m.CustomerID, true); err != nil {
		if errors.Is(err, proto.ErrCustomerNotFound) {
			err = proto.ErrContactNotFound
		}
		return m, err
	}
	return m, nil
}

// UpdateContact changes a contact's name, email or active flag.
func (d *Backend) UpdateContact(ctx context.Context, user proto.User, in proto.UpdateContactInput) (proto.Contact, error) {
	if in.Email != nil {
		email := utils.NormalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := utils.Validate(in); err != nil {
		return proto.Contact{}, err //nolint:wrapcheck
	}

	m, err := d.contactAccess(ctx, user, in.ID)
	if err != nil {
		return proto.Contact{}, err
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Email != nil {
		m.Email = *in.Email
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	err = d.store.UpdateContact(ctx, d.db, m)
	if errors.Is(db.WrapError(err), db.ErrDuplicateKey) {
		return proto.Contact{}, proto.ErrContactExists
	} else if err != nil {
		return proto.Contact{}, dbErr(err, nil)
	}
	m, err = d.store.GetContactByID(ctx, d.db, m.ID)
	return toContact(m), dbErr(err, proto.ErrContactNotFound)
}

// DeleteContact removes a contact. Their comments stay with the customer.
func (d *Backend) DeleteContact(ctx context.Context, user proto.User, in proto.IDInput) error {
	if err := utils.Validate(in); err != nil {
		return err //nolint:wrapcheck
	}

	m, err := d.contactAccess(ctx, user, in.ID)
	if err != nil {
		return err
	}
	return dbErr(d.store.DeleteContact(ctx, d.db, m.ID), proto.ErrContactNotFound)
}

// CreateCustomerInOrganization creates a customer of an organization given
// by slug. It backs the command line.
func (d *Backend) CreateCustomerInOrganization(ctx context.Context, orgSlug string, in proto.CreateCustomerInput) (proto.Customer, error) {
	in.Email = utils.NormalizeEmail(in.Email)
	if err := utils.Validate(in); err != nil {
		return proto.Customer{}, err //nolint:wrapcheck
	}
	o, err := d.store.FindOrgBySlug(ctx, d.db, orgSlug)
	if err != nil {
		return proto.Customer{}, dbErr(err, proto.ErrOrganizationNotFound)
	}
	return d.createCustomer(ctx, o.ID, in)
}

// ListCustomersInOrganization lists the customers of an organization given
// by slug. It backs the command line.
func (d *Backend) ListCustomersInOrganization(ctx context.Context, orgSlug string) ([]proto.Customer, error) {
	o, err := d.store.FindOrgBySlug(ctx, d.db, orgSlug)
	if err != nil {
		return nil, dbErr(err, proto.ErrOrganizationNotFound)
	}
	ms, err := d.store.ListCustomersByOrg(ctx, d.db, o.ID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	return d.customers(ctx, d.db, ms)
}


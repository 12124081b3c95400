package backend

import (
	"context"
	"errors"

	"github.com/printnow/portal/pkg/cache"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/storage"
	"github.com/printnow/portal/pkg/utils"
)

// customerByCode resolves an access code. Codes are case insensitive.
func (d *Backend) customerByCode(ctx context.Context, code string) (models.Customer, error) {
	code = utils.NormalizeAccessCode(code)
	if len(code) != proto.AccessCodeLength {
		return models.Customer{}, proto.ErrInvalidAccessCode
	}

	if id, ok := cache.GetJSON[int64](ctx, d.cache, accessCodeKey(code)); ok {
		c, err := d.store.GetCustomerByID(ctx, d.db, id)
		if err == nil && c.AccessCode == code {
			return c, nil
		}
		d.forgetAccessCode(ctx, code)
	}

	c, err := d.store.FindCustomerByAccessCode(ctx, d.db, code)
	if err != nil {
		return c, dbErr(err, proto.ErrInvalidAccessCode)
	}
	cache.SetJSON(ctx, d.cache, accessCodeKey(code), c.ID, d.cfg.Cache.TTL)
	return c, nil
}

// sharedBoard checks that a board is shared with a customer and not
// archived.
func (d *Backend) sharedBoard(ctx context.Context, c models.Customer, boardID int64) error {
	ok, err := d.store.IsBoardShared(ctx, d.db, c.ID, boardID)
	if err != nil {
		return dbErr(err, nil)
	}
	if !ok {
		return proto.ErrAccessDenied
	}
	b, err := d.store.GetBoardByID(ctx, d.db, boardID)
	if err != nil {
		return dbErr(err, proto.ErrBoardNotFound)
	}
	if b.Archived {
		return proto.ErrAccessDenied
	}
	return nil
}

// portalCard loads a card on a board shared with the customer. Cards of
// other boards are forbidden.
func (d *Backend) portalCard(ctx context.Context, c models.Customer, cardID int64) (models.Card, error) {
	card, err := d.store.GetCardByID(ctx, d.db, cardID)
	if err != nil {
		return card, dbErr(err, proto.ErrCardNotFound)
	}
	if err := d.sharedBoard(ctx, c, card.BoardID); err != nil {
		return card, err
	}
	return card, nil
}

// hideEmails strips member email addresses from what customers see.
func hideEmails(card *proto.Card) {
	for i := range card.Assignees {
		card.Assignees[i].Email = ""
	}
	if card.Creator != nil {
		card.Creator.Email = ""
	}
	for i := range card.Comments {
		if card.Comments[i].User != nil {
			card.Comments[i].User.Email = ""
		}
	}
}

// GetPortal returns what a customer sees through their access code, or nil
// when the code is unknown.
func (d *Backend) GetPortal(ctx context.Context, in proto.AccessCodeInput) (*proto.Portal, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	c, err := d.customerByCode(ctx, in.AccessCode)
	if errors.Is(err, proto.ErrInvalidAccessCode) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	bs, err := d.store.ListSharedBoards(ctx, d.db, c.ID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	p := &proto.Portal{
		Name:     c.Name,
		Boards:   make([]proto.Board, 0, len(bs)),
		Contacts: []proto.Contact{},
	}
	ids := make([]int64, 0, len(bs))
	for _, b := range bs {
		ids = append(ids, b.ID)
	}
	ms, err := d.store.ListCardsByBoards(ctx, d.db, ids)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	cards, err := d.hydrateCards(ctx, d.db, ms)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		hideEmails(&cards[i])
	}

	for _, b := range bs {
		board := toBoard(b)
		if board.Columns, err = d.columns(ctx, d.db, b.ID, true); err != nil {
			return nil, err
		}
		placeCards(board.Columns, cards)
		p.Boards = append(p.Boards, board)
	}

	contacts, err := d.store.ListActiveContacts(ctx, d.db, c.ID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	for _, m := range contacts {
		p.Contacts = append(p.Contacts, toContact(m))
	}
	return p, nil
}

// PortalBoardIDs returns the ids of the boards shared with a customer.
func (d *Backend) PortalBoardIDs(ctx context.Context, code string) ([]int64, error) {
	c, err := d.customerByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	bs, err := d.store.ListSharedBoards(ctx, d.db, c.ID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	ids := make([]int64, 0, len(bs))
	for _, b := range bs {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

// UpdateContactProfile lets a customer contact change their name.
func (d *Backend) UpdateContactProfile(ctx context.Context, in proto.PortalContactInput) (proto.Contact, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Contact{}, err //nolint:wrapcheck
	}

	c, err := d.customerByCode(ctx, in.AccessCode)
	if err != nil {
		return proto.Contact{}, err
	}
	m, err := d.store.GetContactByID(ctx, d.db, in.ContactID)
	if err != nil {
		return proto.Contact{}, dbErr(err, proto.ErrContactDenied)
	}
	if m.CustomerID != c.ID {
		return proto.Contact{}, proto.ErrContactDenied
	}
	m.Name = in.Name
	if err := d.store.UpdateContact(ctx, d.db, m); err != nil {
		return proto.Contact{}, dbErr(err, nil)
	}
	m, err = d.store.GetContactByID(ctx, d.db, m.ID)
	return toContact(m), dbErr(err, proto.ErrContactNotFound)
}

// GetPortalCard returns a card of a shared board with its comments and
// attachments.
func (d *Backend) GetPortalCard(ctx context.Context, in proto.PortalCardInput) (proto.Card, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Card{}, err //nolint:wrapcheck
	}

	c, err := d.customerByCode(ctx, in.AccessCode)
	if err != nil {
		return proto.Card{}, err
	}
	m, err := d.portalCard(ctx, c, in.CardID)
	if err != nil {
		return proto.Card{}, err
	}
	card, err := d.cardDetails(ctx, d.db, m)
	if err != nil {
		return card, err
	}
	hideEmails(&card)
	return card, nil
}

// AddPortalComment comments on a shared card as the customer, optionally on
// behalf of one of its active contacts.
func (d *Backend) AddPortalComment(ctx context.Context, in proto.PortalCommentInput) (proto.Comment, error) {
	if err := utils.Validate(in); err != nil {
		return proto.Comment{}, err //nolint:wrapcheck
	}

	c, err := d.customerByCode(ctx, in.AccessCode)
	if err != nil {
		return proto.Comment{}, err
	}
	card, err := d.portalCard(ctx, c, in.CardID)
	if err != nil {
		return proto.Comment{}, err
	}

	var contactID int64
	if in.ContactID != nil {
		contact, err := d.store.GetContactByID(ctx, d.db, *in.ContactID)
		if err != nil {
			return proto.Comment{}, dbErr(err, proto.ErrInvalidContact)
		}
		if contact.CustomerID != c.ID || !contact.IsActive {
			return proto.Comment{}, proto.ErrInvalidContact
		}
		contactID = contact.ID
	}

	m, err := d.store.CreateComment(ctx, d.db, models.Comment{
		CardID:     card.ID,
		CustomerID: toNullInt64(c.ID),
		ContactID:  toNullInt64(contactID),
		Content:    in.Content,
	})
	if err != nil {
		return proto.Comment{}, dbErr(err, proto.ErrCardNotFound)
	}

	d.logActivity(card.BoardID, card.ID, 0, proto.ActionCommentAdded, Metadata{
		"cardId":     card.ID,
		"customerId": c.ID,
	})
	d.notify(card.BoardID, "comment", "created")
	return d.comment(ctx, d.db, m.ID)
}

// OpenPortalAttachment opens an attachment of a card on a shared board.
func (d *Backend) OpenPortalAttachment(ctx context.Context, code string, id int64) (storage.Object, proto.Attachment, error) {
	c, err := d.customerByCode(ctx, code)
	if err != nil {
		return nil, proto.Attachment{}, err
	}
	a, err := d.store.GetAttachmentByID(ctx, d.db, id)
	if err != nil {
		return nil, proto.Attachment{}, dbErr(err, proto.ErrAttachmentNotFound)
	}
	if _, err := d.portalCard(ctx, c, a.CardID); err != nil {
		if errors.Is(err, proto.ErrCardNotFound) || errors.Is(err, proto.ErrAccessDenied) {
			err = proto.ErrAttachmentNotFound
		}
		return nil, proto.Attachment{}, err
	}
	return d.openObject(a)
}

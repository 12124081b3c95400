package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/access"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/store"
	"github.com/printnow/portal/pkg/test"
)

type fixture struct {
	ctx   context.Context
	db    *db.DB
	store store.Store
	user  models.User
	org   models.Organization
	board models.Board
	todo  models.Column
	done  models.Column
}

func setup(t *testing.T) *fixture {
	t.Helper()
	is := is.New(t)
	ctx := context.TODO()
	dbx := test.OpenDB(ctx, t)
	s := New(ctx, dbx)

	f := &fixture{ctx: ctx, db: dbx, store: s}
	var err error
	f.user, err = s.CreateUser(ctx, dbx, "Ada@Example.com", "Ada")
	is.NoErr(err)
	f.org, err = s.CreateOrg(ctx, dbx, "Acme", "acme")
	is.NoErr(err)
	_, err = s.AddOrgMember(ctx, dbx, f.org.ID, f.user.ID, access.Owner)
	is.NoErr(err)
	f.board, err = s.CreateBoard(ctx, dbx, f.org.ID, "Jobs", nil, f.user.ID)
	is.NoErr(err)
	f.todo, err = s.CreateColumn(ctx, dbx, f.board.ID, "To Do", nil, 0)
	is.NoErr(err)
	f.done, err = s.CreateColumn(ctx, dbx, f.board.ID, "Done", nil, 1)
	is.NoErr(err)
	return f
}

func (f *fixture) card(t *testing.T, title string, col models.Column) models.Card {
	t.Helper()
	pos, err := f.store.NextCardPosition(f.ctx, f.db, col.ID)
	if err != nil {
		t.Fatal(err)
	}
	c, err := f.store.CreateCard(f.ctx, f.db, models.Card{
		BoardID:   f.board.ID,
		ColumnID:  col.ID,
		Title:     title,
		Position:  pos,
		CreatedBy: sql.NullInt64{Int64: f.user.ID, Valid: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestUserEmailIsNormalized(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	is.Equal(f.user.Email, "ada@example.com")
	u, err := f.store.FindUserByEmail(f.ctx, f.db, " ADA@example.com ")
	is.NoErr(err)
	is.Equal(u.ID, f.user.ID)

	_, err = f.store.CreateUser(f.ctx, f.db, "ada@example.com", "Other")
	is.True(errors.Is(db.WrapError(err), db.ErrDuplicateKey))
}

func TestOrgMembership(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	bob, err := f.store.CreateUser(f.ctx, f.db, "bob@example.com", "Bob")
	is.NoErr(err)
	m, err := f.store.AddOrgMember(f.ctx, f.db, f.org.ID, bob.ID, access.Member)
	is.NoErr(err)
	is.Equal(m.Role, access.Member)

	_, err = f.store.AddOrgMember(f.ctx, f.db, f.org.ID, bob.ID, access.Admin)
	is.True(errors.Is(db.WrapError(err), db.ErrDuplicateKey))

	owners, err := f.store.CountOrgMembersWithRole(f.ctx, f.db, f.org.ID, access.Owner)
	is.NoErr(err)
	is.Equal(owners, 1)

	members, err := f.store.ListOrgMembers(f.ctx, f.db, f.org.ID)
	is.NoErr(err)
	is.Equal(len(members), 2)
	is.Equal(members[0].Email, "ada@example.com")
	is.Equal(members[1].Name, "Bob")

	found, err := f.store.FindOrgMemberByEmail(f.ctx, f.db, f.org.ID, "BOB@example.com")
	is.NoErr(err)
	is.Equal(found.ID, m.ID)

	first, err := f.store.FindFirstMembership(f.ctx, f.db, bob.ID)
	is.NoErr(err)
	is.Equal(first.OrganizationID, f.org.ID)

	is.NoErr(f.store.SetOrgMemberRole(f.ctx, f.db, m.ID, access.Admin))
	m, err = f.store.GetOrgMember(f.ctx, f.db, m.ID)
	is.NoErr(err)
	is.Equal(m.Role, access.Admin)

	is.NoErr(f.store.RemoveOrgMember(f.ctx, f.db, m.ID))
	_, err = f.store.FindOrgMember(f.ctx, f.db, f.org.ID, bob.ID)
	is.True(errors.Is(err, db.ErrRecordNotFound))
}

func TestListBoards(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	other, err := f.store.CreateBoard(f.ctx, f.db, f.org.ID, "Other", nil, f.user.ID)
	is.NoErr(err)
	archived, err := f.store.CreateBoard(f.ctx, f.db, f.org.ID, "Old", nil, f.user.ID)
	is.NoErr(err)
	is.NoErr(f.store.ArchiveBoard(f.ctx, f.db, archived.ID))

	all, err := f.store.ListBoards(f.ctx, f.db, f.org.ID, 0)
	is.NoErr(err)
	is.Equal(len(all), 2)

	bob, err := f.store.CreateUser(f.ctx, f.db, "bob@example.com", "Bob")
	is.NoErr(err)
	is.NoErr(f.store.AddBoardMember(f.ctx, f.db, other.ID, bob.ID))
	is.NoErr(f.store.AddBoardMember(f.ctx, f.db, archived.ID, bob.ID))

	mine, err := f.store.ListBoards(f.ctx, f.db, f.org.ID, bob.ID)
	is.NoErr(err)
	is.Equal(len(mine), 1)
	is.Equal(mine[0].ID, other.ID)

	ok, err := f.store.IsBoardMember(f.ctx, f.db, f.board.ID, bob.ID)
	is.NoErr(err)
	is.True(!ok)
}

func TestColumnsAndCards(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	a := f.card(t, "Business cards", f.todo)
	b := f.card(t, "Flyers", f.todo)
	is.Equal(a.Position, 0)
	is.Equal(b.Position, 1)
	is.Equal(a.Priority, "NONE")

	cols, err := f.store.ListColumnsByBoard(f.ctx, f.db, f.board.ID)
	is.NoErr(err)
	is.Equal(len(cols), 2)
	is.Equal(cols[0].CardCount, 2)
	is.Equal(cols[1].CardCount, 0)

	is.NoErr(f.store.MoveCard(f.ctx, f.db, a.ID, f.done.ID, 0))
	cards, err := f.store.ListCardsByBoard(f.ctx, f.db, f.board.ID)
	is.NoErr(err)
	is.Equal(len(cards), 2)
	is.Equal(cards[0].ID, b.ID) // todo column sorts first
	is.Equal(cards[1].ColumnID, f.done.ID)

	todo, err := f.store.ListCardsByColumn(f.ctx, f.db, f.todo.ID)
	is.NoErr(err)
	is.Equal(len(todo), 1)
	is.Equal(todo[0].ID, b.ID)

	a.DueDate = sql.NullTime{Time: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Valid: true}
	a.Priority = "HIGH"
	is.NoErr(f.store.UpdateCard(f.ctx, f.db, a))
	a, err = f.store.GetCardByID(f.ctx, f.db, a.ID)
	is.NoErr(err)
	is.Equal(a.Priority, "HIGH")
	is.True(a.DueDate.Valid)

	// Deleting a column removes its cards.
	is.NoErr(f.store.DeleteColumn(f.ctx, f.db, f.done.ID))
	_, err = f.store.GetCardByID(f.ctx, f.db, a.ID)
	is.True(errors.Is(err, db.ErrRecordNotFound))
}

func TestSearchCards(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	a := f.card(t, "Business cards", f.todo)
	b := f.card(t, "Flyers", f.todo)
	c := f.card(t, "100% recycled", f.todo)
	_, err := f.store.CreateComment(f.ctx, f.db, models.Comment{
		CardID:  b.ID,
		UserID:  sql.NullInt64{Int64: f.user.ID, Valid: true},
		Content: "Customer wants BUSINESS stock",
	})
	is.NoErr(err)

	ids, err := f.store.SearchCards(f.ctx, f.db, f.board.ID, "business")
	is.NoErr(err)
	is.Equal(ids, []int64{a.ID, b.ID})

	ids, err = f.store.SearchCards(f.ctx, f.db, f.board.ID, "%")
	is.NoErr(err)
	is.Equal(ids, []int64{c.ID})

	d := f.card(t, "ÄRGER Broschüre", f.todo)
	ids, err = f.store.SearchCards(f.ctx, f.db, f.board.ID, "ärger")
	is.NoErr(err)
	is.Equal(ids, []int64{d.ID})

	ids, err = f.store.SearchCards(f.ctx, f.db, f.board.ID, "BROSCHÜRE")
	is.NoErr(err)
	is.Equal(ids, []int64{d.ID})
}

func TestCardRelations(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	a := f.card(t, "Posters", f.todo)
	label, err := f.store.CreateLabel(f.ctx, f.db, f.board.ID, "Rush", "#FF0000")
	is.NoErr(err)

	is.NoErr(f.store.AddCardLabel(f.ctx, f.db, a.ID, label.ID))
	is.True(errors.Is(db.WrapError(f.store.AddCardLabel(f.ctx, f.db, a.ID, label.ID)), db.ErrDuplicateKey))
	is.NoErr(f.store.AddCardAssignee(f.ctx, f.db, a.ID, f.user.ID))

	labels, err := f.store.ListCardLabels(f.ctx, f.db, []int64{a.ID})
	is.NoErr(err)
	is.Equal(len(labels), 1)
	is.Equal(labels[0].Name, "Rush")
	is.Equal(labels[0].CardID, a.ID)

	assignees, err := f.store.ListCardAssignees(f.ctx, f.db, []int64{a.ID})
	is.NoErr(err)
	is.Equal(len(assignees), 1)
	is.Equal(assignees[0].Email, "ada@example.com")

	empty, err := f.store.ListCardLabels(f.ctx, f.db, nil)
	is.NoErr(err)
	is.Equal(len(empty), 0)

	// Deleting a label detaches it from its cards.
	is.NoErr(f.store.DeleteLabel(f.ctx, f.db, label.ID))
	labels, err = f.store.ListCardLabels(f.ctx, f.db, []int64{a.ID})
	is.NoErr(err)
	is.Equal(len(labels), 0)

	att, err := f.store.CreateAttachment(f.ctx, f.db, models.Attachment{
		CardID:      a.ID,
		Name:        "proof.pdf",
		URL:         "/attachments/cards/1/x-proof.pdf",
		StoragePath: "cards/1/x-proof.pdf",
		Size:        42,
		MimeType:    "application/pdf",
	})
	is.NoErr(err)
	found, err := f.store.FindAttachmentByStoragePath(f.ctx, f.db, "cards/1/x-proof.pdf")
	is.NoErr(err)
	is.Equal(found.ID, att.ID)

	cards, err := f.store.ListCardsByBoards(f.ctx, f.db, []int64{f.board.ID})
	is.NoErr(err)
	is.Equal(cards[0].AttachmentCount, 1)
}

func TestCustomers(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	c, err := f.store.CreateCustomer(f.ctx, f.db, f.org.ID, "Globex", "ops@globex.com", "ABCD2345")
	is.NoErr(err)
	_, err = f.store.CreateCustomer(f.ctx, f.db, f.org.ID, "Initech", "hi@initech.com", "ABCD2345")
	is.True(errors.Is(db.WrapError(err), db.ErrDuplicateKey))

	found, err := f.store.FindCustomerByAccessCode(f.ctx, f.db, "ABCD2345")
	is.NoErr(err)
	is.Equal(found.ID, c.ID)

	is.NoErr(f.store.AddCustomerBoard(f.ctx, f.db, c.ID, f.board.ID))
	shared, err := f.store.IsBoardShared(f.ctx, f.db, c.ID, f.board.ID)
	is.NoErr(err)
	is.True(shared)
	boards, err := f.store.ListSharedBoards(f.ctx, f.db, c.ID)
	is.NoErr(err)
	is.Equal(len(boards), 1)
	ids, err := f.store.ListCustomerIDsByBoard(f.ctx, f.db, f.board.ID)
	is.NoErr(err)
	is.Equal(ids, []int64{c.ID})

	jane, err := f.store.CreateContact(f.ctx, f.db, c.ID, "Jane", "jane@globex.com")
	is.NoErr(err)
	is.True(jane.IsActive)
	_, err = f.store.CreateContact(f.ctx, f.db, c.ID, "Jane", "jane@globex.com")
	is.True(errors.Is(db.WrapError(err), db.ErrDuplicateKey))

	jane.IsActive = false
	is.NoErr(f.store.UpdateContact(f.ctx, f.db, jane))
	active, err := f.store.ListActiveContacts(f.ctx, f.db, c.ID)
	is.NoErr(err)
	is.Equal(len(active), 0)
	all, err := f.store.ListContacts(f.ctx, f.db, []int64{c.ID})
	is.NoErr(err)
	is.Equal(len(all), 1)

	is.NoErr(f.store.DeleteCustomer(f.ctx, f.db, c.ID))
	_, err = f.store.GetContactByID(f.ctx, f.db, jane.ID)
	is.True(errors.Is(err, db.ErrRecordNotFound))
}

func TestComments(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	a := f.card(t, "Banner", f.todo)
	c, err := f.store.CreateCustomer(f.ctx, f.db, f.org.ID, "Globex", "ops@globex.com", "ZXCV2345")
	is.NoErr(err)
	jane, err := f.store.CreateContact(f.ctx, f.db, c.ID, "Jane", "jane@globex.com")
	is.NoErr(err)

	_, err = f.store.CreateComment(f.ctx, f.db, models.Comment{
		CardID:  a.ID,
		UserID:  sql.NullInt64{Int64: f.user.ID, Valid: true},
		Content: "Proof attached",
	})
	is.NoErr(err)
	reply, err := f.store.CreateComment(f.ctx, f.db, models.Comment{
		CardID:     a.ID,
		CustomerID: sql.NullInt64{Int64: c.ID, Valid: true},
		ContactID:  sql.NullInt64{Int64: jane.ID, Valid: true},
		Content:    "Looks good",
	})
	is.NoErr(err)

	one, err := f.store.GetCommentByID(f.ctx, f.db, reply.ID)
	is.NoErr(err)
	is.Equal(one.Content, "Looks good")
	is.Equal(one.ContactName.String, "Jane")
	_, err = f.store.GetCommentByID(f.ctx, f.db, reply.ID+100)
	is.True(errors.Is(err, sql.ErrNoRows))

	withCounts, err := f.store.GetCardWithCounts(f.ctx, f.db, a.ID)
	is.NoErr(err)
	is.Equal(withCounts.CommentCount, 2)

	comments, err := f.store.ListCommentsByCard(f.ctx, f.db, a.ID)
	is.NoErr(err)
	is.Equal(len(comments), 2)
	is.Equal(comments[0].UserName.String, "Ada")
	is.True(!comments[0].CustomerName.Valid)
	is.Equal(comments[1].CustomerName.String, "Globex")
	is.Equal(comments[1].ContactName.String, "Jane")
}

func TestInvites(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	inv, err := f.store.CreateInvite(f.ctx, f.db, models.Invite{
		OrganizationID: f.org.ID,
		Email:          "new@example.com",
		Role:           access.Member,
		InvitedBy:      sql.NullInt64{Int64: f.user.ID, Valid: true},
	})
	is.NoErr(err)
	is.NoErr(f.store.AddInviteBoard(f.ctx, f.db, inv.ID, f.board.ID))

	_, err = f.store.CreateInvite(f.ctx, f.db, models.Invite{
		OrganizationID: f.org.ID,
		Email:          "new@example.com",
		Role:           access.Admin,
	})
	is.True(errors.Is(db.WrapError(err), db.ErrDuplicateKey))

	found, err := f.store.FindInviteByEmail(f.ctx, f.db, "new@example.com")
	is.NoErr(err)
	is.Equal(found.ID, inv.ID)

	list, err := f.store.ListInvitesByOrg(f.ctx, f.db, f.org.ID)
	is.NoErr(err)
	is.Equal(len(list), 1)
	is.Equal(list[0].InviterName.String, "Ada")

	boards, err := f.store.ListInviteBoards(f.ctx, f.db, []int64{inv.ID})
	is.NoErr(err)
	is.Equal(len(boards), 1)
	is.Equal(boards[0].BoardName, "Jobs")

	is.NoErr(f.store.DeleteInvite(f.ctx, f.db, inv.ID))
	boards, err = f.store.ListInviteBoards(f.ctx, f.db, []int64{inv.ID})
	is.NoErr(err)
	is.Equal(len(boards), 0)
}

func TestActivityPagination(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	for i := 0; i < 5; i++ {
		is.NoErr(f.store.CreateActivity(f.ctx, f.db, models.Activity{
			BoardID: f.board.ID,
			UserID:  sql.NullInt64{Int64: f.user.ID, Valid: true},
			Action:  "card.created",
		}))
	}

	page, err := f.store.ListActivitiesByBoard(f.ctx, f.db, f.board.ID, 0, 3)
	is.NoErr(err)
	is.Equal(len(page), 3)
	is.True(page[0].ID > page[1].ID)
	is.Equal(page[0].Metadata, "{}")
	is.Equal(page[0].UserName.String, "Ada")

	rest, err := f.store.ListActivitiesByBoard(f.ctx, f.db, f.board.ID, page[2].ID-1, 3)
	is.NoErr(err)
	is.Equal(len(rest), 2)
	is.Equal(rest[1].ID, page[0].ID-4)
}

func TestAuthExpiry(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	now := time.Now().UTC()

	is.NoErr(f.store.CreateMagicLink(f.ctx, f.db, "ada@example.com", "old", "", now.Add(-time.Minute)))
	is.NoErr(f.store.CreateMagicLink(f.ctx, f.db, "ada@example.com", "fresh", "/boards/1", now.Add(time.Hour)))

	link, err := f.store.FindMagicLinkByHash(f.ctx, f.db, "fresh")
	is.NoErr(err)
	is.Equal(link.Redirect, "/boards/1")

	n, err := f.store.DeleteExpiredMagicLinks(f.ctx, f.db, now)
	is.NoErr(err)
	is.Equal(n, int64(1))

	sess, err := f.store.CreateSession(f.ctx, f.db, "abc", f.user.ID, "test", now.Add(-time.Second))
	is.NoErr(err)
	is.Equal(sess.UserID, f.user.ID)
	_, err = f.store.CreateSession(f.ctx, f.db, "def", f.user.ID, "test", now.Add(time.Hour))
	is.NoErr(err)

	n, err = f.store.DeleteExpiredSessions(f.ctx, f.db, now)
	is.NoErr(err)
	is.Equal(n, int64(1))
	sessions, err := f.store.ListSessionsByUser(f.ctx, f.db, f.user.ID)
	is.NoErr(err)
	is.Equal(len(sessions), 1)
	is.Equal(sessions[0].UUID, "def")
}

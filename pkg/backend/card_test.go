package backend

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/proto"
)

func TestCreateAndUpdateCard(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	jobs := f.board(t, "Jobs")
	todo := jobs.Columns[0].ID

	a, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: todo, Title: "Flyers"})
	is.NoErr(err)
	b, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: todo, Title: "Posters"})
	is.NoErr(err)
	is.Equal(a.Position, 0)
	is.Equal(b.Position, 1)
	is.Equal(a.Priority, proto.PriorityNone)

	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	high := proto.PriorityHigh
	c, err := f.b.UpdateCard(f.ctx, f.owner, proto.UpdateCardInput{
		ID:          a.ID,
		Description: proto.Of("500 copies"),
		DueDate:     proto.Of(due),
		Priority:    &high,
	})
	is.NoErr(err)
	is.Equal(c.Title, "Flyers")
	is.Equal(*c.Description, "500 copies")
	is.True(c.DueDate.Equal(due))
	is.Equal(c.Priority, proto.PriorityHigh)

	// Null clears, absent keeps.
	c, err = f.b.UpdateCard(f.ctx, f.owner, proto.UpdateCardInput{ID: a.ID, DueDate: proto.Null[time.Time]()})
	is.NoErr(err)
	is.Equal(c.DueDate, nil)
	is.Equal(*c.Description, "500 copies")

	bogus := proto.Priority("SOMEDAY")
	_, err = f.b.UpdateCard(f.ctx, f.owner, proto.UpdateCardInput{ID: a.ID, Priority: &bogus})
	is.True(errors.Is(err, proto.ErrBadRequest))

	f.b.flush()
	page, err := f.b.ListActivity(f.ctx, f.owner, proto.ListActivityInput{BoardID: jobs.ID})
	is.NoErr(err)
	is.Equal(len(page.Items), 4)
	is.Equal(page.Items[0].Action, proto.ActionCardUpdated)
	var meta struct {
		Fields []string `json:"fields"`
	}
	is.NoErr(json.Unmarshal(page.Items[1].Metadata, &meta))
	is.Equal(meta.Fields, []string{"description", "dueDate", "priority"})
	is.Equal(page.Items[3].Action, proto.ActionCardCreated)
	is.Equal(page.Items[3].User.Name, "Ada")
}

func TestUpdateCardFromJSON(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	jobs := f.board(t, "Jobs")
	desc := "draft"
	card, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: jobs.Columns[0].ID, Title: "Flyers", Description: &desc})
	is.NoErr(err)

	var in proto.UpdateCardInput
	is.NoErr(json.Unmarshal([]byte(`{"title":"Leaflets","description":null}`), &in))
	in.ID = card.ID
	got, err := f.b.UpdateCard(f.ctx, f.owner, in)
	is.NoErr(err)
	is.Equal(got.Title, "Leaflets")
	is.Equal(got.Description, nil)
}

func TestMoveCard(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	jobs := f.board(t, "Jobs")
	other := f.board(t, "Other")
	todo, doing := jobs.Columns[0].ID, jobs.Columns[1].ID

	var cards []proto.Card
	for _, title := range []string{"A", "B", "C"} {
		c, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: todo, Title: title})
		is.NoErr(err)
		cards = append(cards, c)
	}

	// Within a column.
	moved, err := f.b.MoveCard(f.ctx, f.owner, proto.MoveCardInput{CardID: cards[2].ID, ColumnID: todo, Position: 0})
	is.NoErr(err)
	is.Equal(moved.Position, 0)
	titles := func(columnID int64) []string {
		b, err := f.b.GetBoard(f.ctx, f.owner, proto.IDInput{ID: jobs.ID})
		is.NoErr(err)
		var out []string
		for _, col := range b.Columns {
			if col.ID != columnID {
				continue
			}
			for i, c := range col.Cards {
				is.Equal(c.Position, i)
				out = append(out, c.Title)
			}
		}
		return out
	}
	is.Equal(titles(todo), []string{"C", "A", "B"})

	// Across columns, past the end.
	moved, err = f.b.MoveCard(f.ctx, f.owner, proto.MoveCardInput{CardID: cards[0].ID, ColumnID: doing, Position: 10})
	is.NoErr(err)
	is.Equal(moved.ColumnID, doing)
	is.Equal(moved.Position, 0)
	is.Equal(titles(todo), []string{"C", "B"})
	is.Equal(titles(doing), []string{"A"})

	_, err = f.b.MoveCard(f.ctx, f.owner, proto.MoveCardInput{CardID: cards[1].ID, ColumnID: other.Columns[0].ID})
	is.True(errors.Is(err, proto.ErrBadRequest))

	f.b.flush()
	page, err := f.b.ListActivity(f.ctx, f.owner, proto.ListActivityInput{BoardID: jobs.ID})
	is.NoErr(err)
	var moves int
	for _, a := range page.Items {
		if a.Action == proto.ActionCardMoved {
			moves++
			var meta map[string]int64
			is.NoErr(json.Unmarshal(a.Metadata, &meta))
			is.Equal(meta["fromColumnId"], todo)
			is.Equal(meta["toColumnId"], doing)
		}
	}
	is.Equal(moves, 1)
}

func TestCardDetails(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	bob := f.join(t, "bob@example.com", proto.CreateInviteInput{})
	stranger, err := f.b.AddUser(f.ctx, "eve@example.com", "Eve")
	is.NoErr(err)
	jobs := f.board(t, "Jobs")

	card, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: jobs.Columns[0].ID, Title: "Flyers"})
	is.NoErr(err)
	is.NoErr(f.b.AddCardAssignee(f.ctx, f.owner, proto.CardAssigneeInput{CardID: card.ID, UserID: bob.ID}))
	err = f.b.AddCardAssignee(f.ctx, f.owner, proto.CardAssigneeInput{CardID: card.ID, UserID: stranger.ID})
	is.True(errors.Is(err, proto.ErrBadRequest))
	err = f.b.AddCardAssignee(f.ctx, f.owner, proto.CardAssigneeInput{CardID: card.ID, UserID: bob.ID})
	is.True(errors.Is(err, proto.ErrConflict))

	first, err := f.b.AddComment(f.ctx, f.owner, proto.AddCommentInput{CardID: card.ID, Content: "Proof attached"})
	is.NoErr(err)
	is.Equal(first.User.Name, "Ada")
	_, err = f.b.AddComment(f.ctx, f.owner, proto.AddCommentInput{CardID: card.ID, Content: "Approved"})
	is.NoErr(err)

	got, err := f.b.GetCard(f.ctx, f.owner, proto.IDInput{ID: card.ID})
	is.NoErr(err)
	is.Equal(len(got.Assignees), 1)
	is.Equal(got.Assignees[0].ID, bob.ID)
	is.Equal(got.CommentCount, 2)
	is.Equal(len(got.Comments), 2)
	is.Equal(got.Comments[0].Content, "Proof attached")
	is.Equal(got.Creator.ID, f.owner.ID)
	is.Equal(len(got.Attachments), 0)

	// Bob is assigned but not on the board.
	_, err = f.b.GetCard(f.ctx, bob, proto.IDInput{ID: card.ID})
	is.True(errors.Is(err, proto.ErrBoardAccessDenied))
	_, err = f.b.GetCard(f.ctx, stranger, proto.IDInput{ID: card.ID})
	is.True(errors.Is(err, proto.ErrCardNotFound))

	is.NoErr(f.b.RemoveCardAssignee(f.ctx, f.owner, proto.CardAssigneeInput{CardID: card.ID, UserID: bob.ID}))
	is.NoErr(f.b.DeleteCard(f.ctx, f.owner, proto.IDInput{ID: card.ID}))
	_, err = f.b.GetCard(f.ctx, f.owner, proto.IDInput{ID: card.ID})
	is.True(errors.Is(err, proto.ErrCardNotFound))

	f.b.flush()
	page, err := f.b.ListActivity(f.ctx, f.owner, proto.ListActivityInput{BoardID: jobs.ID})
	is.NoErr(err)
	is.Equal(page.Items[0].Action, proto.ActionCardDeleted)
	is.Equal(*page.Items[0].CardID, card.ID)
	is.Equal(page.Items[1].Action, proto.ActionAssigneeRemoved)
}

func TestSearchCards(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	jobs := f.board(t, "Jobs")
	col := jobs.Columns[0].ID

	desc := "Glossy FINISH"
	flyers, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: col, Title: "Flyers", Description: &desc})
	is.NoErr(err)
	posters, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: col, Title: "Posters"})
	is.NoErr(err)
	_, err = f.b.AddComment(f.ctx, f.owner, proto.AddCommentInput{CardID: posters.ID, Content: "needs a matte finish"})
	is.NoErr(err)
	_, err = f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: col, Title: "100% recycled"})
	is.NoErr(err)

	ids, err := f.b.SearchCards(f.ctx, f.owner, proto.SearchCardsInput{BoardID: jobs.ID, Query: "finish"})
	is.NoErr(err)
	is.Equal(ids, []int64{flyers.ID, posters.ID})

	ids, err = f.b.SearchCards(f.ctx, f.owner, proto.SearchCardsInput{BoardID: jobs.ID, Query: "%"})
	is.NoErr(err)
	is.Equal(len(ids), 1)

	ids, err = f.b.SearchCards(f.ctx, f.owner, proto.SearchCardsInput{BoardID: jobs.ID, Query: "nothing"})
	is.NoErr(err)
	is.Equal(ids, []int64{})

	brochure, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: col, Title: "Broschüre"})
	is.NoErr(err)
	_, err = f.b.AddComment(f.ctx, f.owner, proto.AddCommentInput{CardID: brochure.ID, Content: "ÄRGER mit der Bindung"})
	is.NoErr(err)
	ids, err = f.b.SearchCards(f.ctx, f.owner, proto.SearchCardsInput{BoardID: jobs.ID, Query: "ärger"})
	is.NoErr(err)
	is.Equal(ids, []int64{brochure.ID})
	ids, err = f.b.SearchCards(f.ctx, f.owner, proto.SearchCardsInput{BoardID: jobs.ID, Query: "BROSCHÜRE"})
	is.NoErr(err)
	is.Equal(ids, []int64{brochure.ID})
}

func TestActivityPages(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	jobs := f.board(t, "Jobs")

	for i := 0; i < 5; i++ {
		_, err := f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: jobs.Columns[0].ID, Title: "Card"})
		is.NoErr(err)
	}
	f.b.flush()

	page, err := f.b.ListActivity(f.ctx, f.owner, proto.ListActivityInput{BoardID: jobs.ID, Limit: 2})
	is.NoErr(err)
	is.Equal(len(page.Items), 2)
	is.True(page.NextCursor != nil)
	is.Equal(*page.NextCursor, page.Items[1].ID-1)

	var all []proto.Activity
	all = append(all, page.Items...)
	for page.NextCursor != nil {
		page, err = f.b.ListActivity(f.ctx, f.owner, proto.ListActivityInput{BoardID: jobs.ID, Limit: 2, Cursor: page.NextCursor})
		is.NoErr(err)
		all = append(all, page.Items...)
	}
	is.Equal(len(all), 5)
	for i := 1; i < len(all); i++ {
		is.True(all[i].ID < all[i-1].ID)
	}

	_, err = f.b.ListActivity(f.ctx, f.owner, proto.ListActivityInput{BoardID: jobs.ID, Limit: 51})
	is.True(errors.Is(err, proto.ErrBadRequest))
}

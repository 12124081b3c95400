package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/realtime"
)

func nextEvent(t *testing.T, ch <-chan realtime.Event) realtime.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return realtime.Event{}
}

func TestSubscribeBoard(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	jobs := f.board(t, "Jobs")

	eve, err := f.b.AddUser(f.ctx, "eve@example.com", "Eve")
	is.NoErr(err)
	_, _, err = f.b.SubscribeBoard(f.ctx, eve, jobs.ID)
	is.True(errors.Is(err, proto.ErrBoardNotFound))

	f.b.flush()
	ch, cancel, err := f.b.SubscribeBoard(f.ctx, f.owner, jobs.ID)
	is.NoErr(err)
	defer cancel()

	_, err = f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: jobs.Columns[0].ID, Title: "Flyers"})
	is.NoErr(err)
	is.Equal(nextEvent(t, ch), realtime.Event{BoardID: jobs.ID, Entity: "card", Action: "created"})
}

func TestSubscribePortal(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	jobs := f.board(t, "Jobs")
	posters := f.board(t, "Posters")

	_, _, err := f.b.SubscribePortal(f.ctx, "NOPE2345")
	is.True(errors.Is(err, proto.ErrInvalidAccessCode))

	globex, err := f.b.CreateCustomer(f.ctx, f.owner, proto.CreateCustomerInput{Name: "Globex", Email: "buyer@globex.com"})
	is.NoErr(err)
	is.NoErr(f.b.AssignBoard(f.ctx, f.owner, proto.CustomerBoardInput{CustomerID: globex.ID, BoardID: jobs.ID}))
	is.NoErr(f.b.AssignBoard(f.ctx, f.owner, proto.CustomerBoardInput{CustomerID: globex.ID, BoardID: posters.ID}))
	f.b.flush()

	ch, cancel, err := f.b.SubscribePortal(f.ctx, globex.AccessCode)
	is.NoErr(err)

	_, err = f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: posters.Columns[0].ID, Title: "Posters"})
	is.NoErr(err)
	is.Equal(nextEvent(t, ch).BoardID, posters.ID)

	cancel()
	cancel()
	for range ch {
	}
}

// waitEvent reads events until one matches.
func waitEvent(t *testing.T, ch <-chan realtime.Event, match func(realtime.Event) bool) realtime.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatal("subscription closed")
			}
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestSubscribePortalFollowsShares(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	jobs := f.board(t, "Jobs")

	globex, err := f.b.CreateCustomer(f.ctx, f.owner, proto.CreateCustomerInput{Name: "Globex", Email: "buyer@globex.com"})
	is.NoErr(err)
	f.b.flush()

	// Nothing is shared yet, the stream still stays open.
	ch, cancel, err := f.b.SubscribePortal(f.ctx, globex.AccessCode)
	is.NoErr(err)
	defer cancel()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	is.NoErr(f.b.AssignBoard(f.ctx, f.owner, proto.CustomerBoardInput{CustomerID: globex.ID, BoardID: jobs.ID}))
	ev := waitEvent(t, ch, func(ev realtime.Event) bool { return ev.CustomerID == globex.ID })
	is.Equal(ev, realtime.Event{BoardID: jobs.ID, CustomerID: globex.ID, Entity: "customer", Action: "assigned"})

	_, err = f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: jobs.Columns[0].ID, Title: "Flyers"})
	is.NoErr(err)
	ev = waitEvent(t, ch, func(ev realtime.Event) bool { return ev.Entity == "card" })
	is.Equal(ev, realtime.Event{BoardID: jobs.ID, Entity: "card", Action: "created"})

	is.NoErr(f.b.UnassignBoard(f.ctx, f.owner, proto.CustomerBoardInput{CustomerID: globex.ID, BoardID: jobs.ID}))
	ev = waitEvent(t, ch, func(ev realtime.Event) bool { return ev.CustomerID == globex.ID })
	is.Equal(ev.Action, "unassigned")

	_, err = f.b.CreateCard(f.ctx, f.owner, proto.CreateCardInput{ColumnID: jobs.Columns[0].ID, Title: "Posters"})
	is.NoErr(err)
	f.b.flush()
	select {
	case ev := <-ch:
		is.True(ev.Entity != "card")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	for range ch {
	}
}

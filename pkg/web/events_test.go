package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/realtime"
)

// openStream opens an event stream and waits for its greeting.
func (s *server) openStream(t *testing.T, path string, cookie *http.Cookie) *bufio.Reader {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.srv.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Accept-Encoding", "identity")
	res := s.do(t, req, cookie)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("stream %s: %s", path, res.Status)
	}
	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}
	r := bufio.NewReader(res.Body)
	line, err := r.ReadString('\n')
	if err != nil || line != ": connected\n" {
		t.Fatalf("greeting %q: %v", line, err)
	}
	return r
}

// waitChange reads the stream until want arrives. Earlier events of the
// same board may still be in flight.
func waitChange(t *testing.T, r *bufio.Reader, want realtime.Event) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatal(err)
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev realtime.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatal(err)
		}
		if ev == want {
			return
		}
	}
}

func TestBoardEvents(t *testing.T) {
	is := is.New(t)
	s := setup(t)
	cookie := s.signIn(t, "ada@example.com")
	board, _ := s.card(t, cookie)

	is.Equal(s.get(t, "/api/boards/"+itoa(board.ID)+"/events", nil).StatusCode, http.StatusUnauthorized)
	is.Equal(s.get(t, "/api/boards/"+itoa(board.ID+100)+"/events", cookie).StatusCode, http.StatusNotFound)

	r := s.openStream(t, "/api/boards/"+itoa(board.ID)+"/events", cookie)
	code, _ := s.rpc(t, cookie, "card.create", proto.CreateCardInput{ColumnID: board.Columns[0].ID, Title: "Posters"}, nil)
	is.Equal(code, http.StatusOK)

	waitChange(t, r, realtime.Event{BoardID: board.ID, Entity: "card", Action: "created"})
}

func TestPortalEvents(t *testing.T) {
	is := is.New(t)
	s := setup(t)
	cookie := s.signIn(t, "ada@example.com")
	board, card := s.card(t, cookie)

	var customer proto.Customer
	s.rpc(t, cookie, "customer.create", proto.CreateCustomerInput{Name: "Globex", Email: "buyer@globex.com"}, &customer)
	s.rpc(t, cookie, "customer.assignBoard", proto.CustomerBoardInput{CustomerID: customer.ID, BoardID: board.ID}, nil)

	is.Equal(s.get(t, "/customer/NOPE2345/events", nil).StatusCode, http.StatusNotFound)

	r := s.openStream(t, "/customer/"+customer.AccessCode+"/events", nil)
	title := "Flyers v2"
	code, _ := s.rpc(t, cookie, "card.update", proto.UpdateCardInput{ID: card.ID, Title: &title}, nil)
	is.Equal(code, http.StatusOK)

	waitChange(t, r, realtime.Event{BoardID: board.ID, Entity: "card", Action: "updated"})
}

func TestPortalEventsFollowShares(t *testing.T) {
	is := is.New(t)
	s := setup(t)
	cookie := s.signIn(t, "ada@example.com")
	board, _ := s.card(t, cookie)

	var customer proto.Customer
	s.rpc(t, cookie, "customer.create", proto.CreateCustomerInput{Name: "Globex", Email: "buyer@globex.com"}, &customer)

	// The stream opens before anything is shared with the customer.
	r := s.openStream(t, "/customer/"+customer.AccessCode+"/events", nil)
	code, _ := s.rpc(t, cookie, "customer.assignBoard", proto.CustomerBoardInput{CustomerID: customer.ID, BoardID: board.ID}, nil)
	is.Equal(code, http.StatusOK)
	waitChange(t, r, realtime.Event{BoardID: board.ID, CustomerID: customer.ID, Entity: "customer", Action: "assigned"})

	code, _ = s.rpc(t, cookie, "card.create", proto.CreateCardInput{ColumnID: board.Columns[0].ID, Title: "Posters"}, nil)
	is.Equal(code, http.StatusOK)
	waitChange(t, r, realtime.Event{BoardID: board.ID, Entity: "card", Action: "created"})
}

package web

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/proto"
)

// card creates a board with a card through the API.
func (s *server) card(t *testing.T, cookie *http.Cookie) (proto.Board, proto.Card) {
	t.Helper()
	is := is.New(t)

	var board proto.Board
	code, _ := s.rpc(t, cookie, "board.create", proto.CreateBoardInput{Name: "Jobs"}, &board)
	is.Equal(code, http.StatusOK)
	var card proto.Card
	code, _ = s.rpc(t, cookie, "card.create", proto.CreateCardInput{ColumnID: board.Columns[0].ID, Title: "Flyers"}, &card)
	is.Equal(code, http.StatusOK)
	return board, card
}

func (s *server) upload(t *testing.T, cookie *http.Cookie, cardID int64, name, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, s.srv.URL+"/api/attachments/"+itoa(cardID)+"/"+name, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "text/plain")
	return s.do(t, req, cookie)
}

func TestAttachmentRoutes(t *testing.T) {
	is := is.New(t)
	s := setup(t)
	cookie := s.signIn(t, "ada@example.com")
	_, card := s.card(t, cookie)

	is.Equal(s.upload(t, nil, card.ID, "proof.txt", "hello").StatusCode, http.StatusUnauthorized)
	is.Equal(s.upload(t, cookie, card.ID+100, "proof.txt", "hello").StatusCode, http.StatusNotFound)

	res := s.upload(t, cookie, card.ID, "proof.txt", "hello")
	is.Equal(res.StatusCode, http.StatusCreated)
	var up proto.Upload
	decode(t, res, &up)
	is.Equal(up.Size, int64(5))
	is.Equal(up.MimeType, "text/plain")

	var a proto.Attachment
	code, rpcErr := s.rpc(t, cookie, "attachment.create", proto.CreateAttachmentInput{
		CardID:      card.ID,
		Name:        "proof.txt",
		URL:         up.URL,
		StoragePath: up.StoragePath,
		Size:        up.Size,
		MimeType:    up.MimeType,
	}, &a)
	is.Equal(code, http.StatusOK)
	is.True(rpcErr == nil)

	res = s.get(t, "/attachments/"+up.StoragePath, cookie)
	is.Equal(res.StatusCode, http.StatusOK)
	is.Equal(res.Header.Get("Content-Type"), "text/plain")
	is.Equal(res.Header.Get("Content-Disposition"), `attachment; filename=proof.txt`)
	body, err := io.ReadAll(res.Body)
	is.NoErr(err)
	is.Equal(string(body), "hello")

	is.Equal(s.get(t, "/attachments/"+up.StoragePath, nil).StatusCode, http.StatusUnauthorized)
	is.Equal(s.get(t, "/attachments/nope/proof.txt", cookie).StatusCode, http.StatusNotFound)
}

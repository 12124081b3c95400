package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/proto"
)

func TestRPCRequiresSession(t *testing.T) {
	is := is.New(t)
	s := setup(t)

	code, rpcErr := s.rpc(t, nil, "board.list", nil, nil)
	is.Equal(code, http.StatusUnauthorized)
	is.Equal(rpcErr.Code, CodeUnauthorized)

	code, rpcErr = s.rpc(t, nil, "board.nope", nil, nil)
	is.Equal(code, http.StatusNotFound)
	is.Equal(rpcErr.Code, CodeNotFound)
}

func TestRPCBoards(t *testing.T) {
	is := is.New(t)
	s := setup(t)
	cookie := s.signIn(t, "ada@example.com")

	var board proto.Board
	code, rpcErr := s.rpc(t, cookie, "board.create", proto.CreateBoardInput{Name: "Jobs"}, &board)
	is.Equal(code, http.StatusOK)
	is.True(rpcErr == nil)
	is.Equal(board.Name, "Jobs")
	is.Equal(len(board.Columns), len(proto.DefaultColumns))

	// Validation issues name the offending field.
	code, rpcErr = s.rpc(t, cookie, "board.create", proto.CreateBoardInput{}, nil)
	is.Equal(code, http.StatusBadRequest)
	is.Equal(rpcErr.Code, CodeBadRequest)
	is.Equal(rpcErr.Issues[0].Path, "name")

	// Malformed input is a bad request.
	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/rpc/board.create", strings.NewReader("{"))
	is.NoErr(err)
	is.Equal(s.do(t, req, cookie).StatusCode, http.StatusBadRequest)

	// Queries can be called with GET.
	input := url.QueryEscape(`{"id":` + itoa(board.ID) + `}`)
	res := s.get(t, "/api/rpc/board.get?input="+input, cookie)
	is.Equal(res.StatusCode, http.StatusOK)
	var env envelope
	decode(t, res, &env)
	is.True(env.Error == nil)

	// Mutations cannot.
	res = s.get(t, "/api/rpc/board.archive?input="+input, cookie)
	is.Equal(res.StatusCode, http.StatusBadRequest)

	var ok struct {
		Success bool `json:"success"`
	}
	code, _ = s.rpc(t, cookie, "board.archive", proto.IDInput{ID: board.ID}, &ok)
	is.Equal(code, http.StatusOK)
	is.True(ok.Success)

	var boards []proto.Board
	code, _ = s.rpc(t, cookie, "board.list", nil, &boards)
	is.Equal(code, http.StatusOK)
	is.Equal(len(boards), 0)

	code, rpcErr = s.rpc(t, cookie, "board.get", proto.IDInput{ID: board.ID + 100}, nil)
	is.Equal(code, http.StatusNotFound)
	is.Equal(rpcErr.Code, CodeNotFound)
}

func TestRPCForbidden(t *testing.T) {
	is := is.New(t)
	s := setup(t)
	ada := s.signIn(t, "ada@example.com")

	code, _ := s.rpc(t, ada, "invite.create", proto.CreateInviteInput{Email: "bob@example.com"}, nil)
	is.Equal(code, http.StatusOK)
	bob := s.signIn(t, "bob@example.com")

	code, rpcErr := s.rpc(t, bob, "customer.create", proto.CreateCustomerInput{Name: "Globex", Email: "buyer@globex.com"}, nil)
	is.Equal(code, http.StatusForbidden)
	is.Equal(rpcErr.Code, CodeForbidden)

	code, rpcErr = s.rpc(t, ada, "invite.create", proto.CreateInviteInput{Email: "bob@example.com"}, nil)
	is.Equal(code, http.StatusConflict)
	is.Equal(rpcErr.Code, CodeConflict)
}

func TestErrorStatus(t *testing.T) {
	is := is.New(t)

	for _, tc := range []struct {
		err  error
		want int
	}{
		{proto.ErrBoardNotFound, http.StatusNotFound},
		{proto.ErrAdminRequired, http.StatusForbidden},
		{proto.ErrNotAuthenticated, http.StatusUnauthorized},
		{proto.Invalid("name", "bad"), http.StatusBadRequest},
		{proto.ErrAlreadyMember, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	} {
		status, _ := errorStatus(tc.err)
		is.Equal(status, tc.want)
	}
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

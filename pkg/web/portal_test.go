package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/proto"
)

func TestPortalRoutes(t *testing.T) {
	is := is.New(t)
	s := setup(t)
	cookie := s.signIn(t, "ada@example.com")
	board, card := s.card(t, cookie)

	var customer proto.Customer
	code, _ := s.rpc(t, cookie, "customer.create", proto.CreateCustomerInput{Name: "Globex", Email: "buyer@globex.com"}, &customer)
	is.Equal(code, http.StatusOK)
	code, _ = s.rpc(t, cookie, "customer.assignBoard", proto.CustomerBoardInput{CustomerID: customer.ID, BoardID: board.ID}, nil)
	is.Equal(code, http.StatusOK)
	var contact proto.Contact
	code, _ = s.rpc(t, cookie, "customer.addContact", proto.AddContactInput{CustomerID: customer.ID, Name: "Jane", Email: "jane@globex.com"}, &contact)
	is.Equal(code, http.StatusOK)

	base := "/customer/" + customer.AccessCode

	res := s.get(t, "/customer/NOPE2345", nil)
	is.Equal(res.StatusCode, http.StatusNotFound)
	var env envelope
	decode(t, res, &env)
	is.Equal(env.Error.Message, proto.ErrInvalidAccessCode.Error())

	res = s.get(t, base, nil)
	is.Equal(res.StatusCode, http.StatusOK)
	var portal proto.Portal
	decode(t, res, &portal)
	is.Equal(portal.Name, "Globex")
	is.Equal(len(portal.Boards), 1)
	is.Equal(len(portal.Contacts), 1)

	res = s.get(t, base+"/cards/"+itoa(card.ID), nil)
	is.Equal(res.StatusCode, http.StatusOK)
	var got proto.Card
	decode(t, res, &got)
	is.Equal(got.Title, "Flyers")

	_, other := s.card(t, cookie)
	res = s.get(t, base+"/cards/"+itoa(other.ID), nil)
	is.Equal(res.StatusCode, http.StatusForbidden)
	var denied envelope
	decode(t, res, &denied)
	is.Equal(denied.Error.Code, "FORBIDDEN")

	res = s.post(t, base+"/cards/"+itoa(card.ID)+"/comments", nil, map[string]interface{}{
		"content":   "Looks good",
		"contactId": contact.ID,
	})
	is.Equal(res.StatusCode, http.StatusCreated)
	var comment proto.Comment
	decode(t, res, &comment)
	is.Equal(comment.Content, "Looks good")
	is.True(comment.User == nil)

	res = s.post(t, base+"/cards/"+itoa(card.ID)+"/comments", nil, map[string]interface{}{})
	is.Equal(res.StatusCode, http.StatusBadRequest)

	res = s.post(t, base+"/cards/"+itoa(card.ID)+"/comments", nil, map[string]interface{}{
		"content":   "Who am I",
		"contactId": contact.ID + 100,
	})
	is.Equal(res.StatusCode, http.StatusBadRequest)
	var invalid envelope
	decode(t, res, &invalid)
	is.Equal(invalid.Error.Message, proto.ErrInvalidContact.Error())

	data, err := json.Marshal(map[string]string{"name": "Jane Doe"})
	is.NoErr(err)
	req, err := http.NewRequest(http.MethodPatch, s.srv.URL+base+"/contacts/"+itoa(contact.ID), bytes.NewReader(data))
	is.NoErr(err)
	res = s.do(t, req, nil)
	is.Equal(res.StatusCode, http.StatusOK)
	var renamed proto.Contact
	decode(t, res, &renamed)
	is.Equal(renamed.Name, "Jane Doe")

	// The RPC portal procedures need no session.
	var viaRPC *proto.Portal
	code, _ = s.rpc(t, nil, "customer.getByAccessCode", proto.AccessCodeInput{AccessCode: customer.AccessCode}, &viaRPC)
	is.Equal(code, http.StatusOK)
	is.Equal(viaRPC.Name, "Globex")
	code, _ = s.rpc(t, nil, "customer.getByAccessCode", proto.AccessCodeInput{AccessCode: "NOPE2345"}, &viaRPC)
	is.Equal(code, http.StatusOK)
	is.True(viaRPC == nil)
}

func TestPortalAttachment(t *testing.T) {
	is := is.New(t)
	s := setup(t)
	cookie := s.signIn(t, "ada@example.com")
	board, card := s.card(t, cookie)

	var up proto.Upload
	decode(t, s.upload(t, cookie, card.ID, "proof.txt", "hello"), &up)
	var a proto.Attachment
	code, _ := s.rpc(t, cookie, "attachment.create", proto.CreateAttachmentInput{
		CardID:      card.ID,
		Name:        "proof.txt",
		URL:         up.URL,
		StoragePath: up.StoragePath,
		Size:        up.Size,
		MimeType:    up.MimeType,
	}, &a)
	is.Equal(code, http.StatusOK)

	var customer proto.Customer
	s.rpc(t, cookie, "customer.create", proto.CreateCustomerInput{Name: "Globex", Email: "buyer@globex.com"}, &customer)
	path := "/customer/" + customer.AccessCode + "/attachments/" + itoa(a.ID)

	// Not shared yet.
	is.Equal(s.get(t, path, nil).StatusCode, http.StatusNotFound)

	code, _ = s.rpc(t, cookie, "customer.assignBoard", proto.CustomerBoardInput{CustomerID: customer.ID, BoardID: board.ID}, nil)
	is.Equal(code, http.StatusOK)
	res := s.get(t, path, nil)
	is.Equal(res.StatusCode, http.StatusOK)
	body, err := io.ReadAll(res.Body)
	is.NoErr(err)
	is.Equal(string(body), "hello")
}

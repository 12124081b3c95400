package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/proto"
)

// PortalController registers the public customer routes. Every route is
// keyed by the access code in the path.
func PortalController(_ context.Context, r *mux.Router) {
	s := r.PathPrefix("/customer/{code}").Subrouter()
	s.HandleFunc("", getPortal).Methods(http.MethodGet)
	s.HandleFunc("/cards/{id:[0-9]+}", getPortalCard).Methods(http.MethodGet)
	s.HandleFunc("/cards/{id:[0-9]+}/comments", addPortalComment).Methods(http.MethodPost)
	s.HandleFunc("/contacts/{id:[0-9]+}", updateContactProfile).Methods(http.MethodPatch)
	s.HandleFunc("/attachments/{id:[0-9]+}", downloadPortalAttachment).Methods(http.MethodGet, http.MethodHead)
	s.HandleFunc("/events", portalEvents).Methods(http.MethodGet)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func getPortal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	p, err := be.GetPortal(ctx, proto.AccessCodeInput{AccessCode: mux.Vars(r)["code"]})
	if err != nil {
		renderError(w, r, err)
		return
	}
	if p == nil {
		renderError(w, r, proto.ErrInvalidAccessCode)
		return
	}
	renderJSON(w, http.StatusOK, p)
}

func getPortalCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	card, err := be.GetPortalCard(ctx, proto.PortalCardInput{
		AccessCode: mux.Vars(r)["code"],
		CardID:     pathID(r),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, card)
}

func addPortalComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var in proto.PortalCommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		renderError(w, r, err)
		return
	}
	in.AccessCode = mux.Vars(r)["code"]
	in.CardID = pathID(r)

	c, err := be.AddPortalComment(ctx, in)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusCreated, c)
}

func updateContactProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var in proto.PortalContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		renderError(w, r, err)
		return
	}
	in.AccessCode = mux.Vars(r)["code"]
	in.ContactID = pathID(r)

	c, err := be.UpdateContactProfile(ctx, in)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, c)
}

func downloadPortalAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	obj, a, err := be.OpenPortalAttachment(ctx, mux.Vars(r)["code"], pathID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	defer obj.Close() //nolint:errcheck
	serveObject(w, r, obj, a)
}

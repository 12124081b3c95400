package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "The total number of RPC calls",
	}, []string{"procedure", "code"})

	rpcSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portal",
		Subsystem: "rpc",
		Name:      "request_duration_seconds",
		Help:      "The time spent serving RPC calls",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})
)

// procedure is a callable RPC procedure.
type procedure struct {
	// query procedures may also be called with GET.
	query  bool
	// public procedures run without a session.
	public bool
	call   func(ctx context.Context, be *backend.Backend, user *proto.User, input []byte) (interface{}, error)
}

// success is the result of procedures that return nothing.
type success struct {
	Success bool `json:"success"`
}

// resultResponse is sent when a procedure succeeds.
type resultResponse struct {
	Result interface{} `json:"result"`
}

func asQuery(p procedure) procedure {
	p.query = true
	return p
}

// noInput wraps a procedure that takes no input.
func noInput[Out any](fn func(*backend.Backend, context.Context, proto.User) (Out, error)) procedure {
	return procedure{
		call: func(ctx context.Context, be *backend.Backend, user *proto.User, _ []byte) (interface{}, error) {
			return fn(be, ctx, *user)
		},
	}
}

// withInput wraps a procedure that takes an input and returns a result.
func withInput[In, Out any](fn func(*backend.Backend, context.Context, proto.User, In) (Out, error)) procedure {
	return procedure{
		call: func(ctx context.Context, be *backend.Backend, user *proto.User, input []byte) (interface{}, error) {
			var in In
			if err := unmarshalInput(input, &in); err != nil {
				return nil, err
			}
			return fn(be, ctx, *user, in)
		},
	}
}

// action wraps a procedure that only reports success.
func action[In any](fn func(*backend.Backend, context.Context, proto.User, In) error) procedure {
	return procedure{
		call: func(ctx context.Context, be *backend.Backend, user *proto.User, input []byte) (interface{}, error) {
			var in In
			if err := unmarshalInput(input, &in); err != nil {
				return nil, err
			}
			if err := fn(be, ctx, *user, in); err != nil {
				return nil, err
			}
			return success{Success: true}, nil
		},
	}
}

// public wraps a procedure that is keyed by a customer access code instead
// of a session.
func public[In, Out any](fn func(*backend.Backend, context.Context, In) (Out, error)) procedure {
	return procedure{
		public: true,
		call: func(ctx context.Context, be *backend.Backend, _ *proto.User, input []byte) (interface{}, error) {
			var in In
			if err := unmarshalInput(input, &in); err != nil {
				return nil, err
			}
			return fn(be, ctx, in)
		},
	}
}

// procedures maps "{router}.{procedure}" to its implementation.
var procedures = map[string]procedure{
	"organization.getCurrent":       asQuery(noInput((*backend.Backend).GetCurrentOrganization)),
	"organization.update":           withInput((*backend.Backend).UpdateOrganization),
	"organization.updateMemberRole": withInput((*backend.Backend).UpdateMemberRole),
	"organization.removeMember":     action((*backend.Backend).RemoveMember),

	"board.list":         asQuery(noInput((*backend.Backend).ListBoards)),
	"board.get":          asQuery(withInput((*backend.Backend).GetBoard)),
	"board.create":       withInput((*backend.Backend).CreateBoard),
	"board.update":       withInput((*backend.Backend).UpdateBoard),
	"board.archive":      action((*backend.Backend).ArchiveBoard),
	"board.delete":       action((*backend.Backend).DeleteBoard),
	"board.listMembers":  asQuery(withInput((*backend.Backend).ListBoardMembers)),
	"board.addMember":    action((*backend.Backend).AddBoardMember),
	"board.removeMember": action((*backend.Backend).RemoveBoardMember),

	"column.create":  withInput((*backend.Backend).CreateColumn),
	"column.update":  withInput((*backend.Backend).UpdateColumn),
	"column.delete":  action((*backend.Backend).DeleteColumn),
	"column.reorder": withInput((*backend.Backend).ReorderColumns),

	"card.get":            asQuery(withInput((*backend.Backend).GetCard)),
	"card.create":         withInput((*backend.Backend).CreateCard),
	"card.update":         withInput((*backend.Backend).UpdateCard),
	"card.move":           withInput((*backend.Backend).MoveCard),
	"card.delete":         action((*backend.Backend).DeleteCard),
	"card.addAssignee":    action((*backend.Backend).AddCardAssignee),
	"card.removeAssignee": action((*backend.Backend).RemoveCardAssignee),
	"card.search":         asQuery(withInput((*backend.Backend).SearchCards)),
	"card.addComment":     withInput((*backend.Backend).AddComment),

	"label.list":           asQuery(withInput((*backend.Backend).ListLabels)),
	"label.create":         withInput((*backend.Backend).CreateLabel),
	"label.update":         withInput((*backend.Backend).UpdateLabel),
	"label.delete":         action((*backend.Backend).DeleteLabel),
	"label.addToCard":      action((*backend.Backend).AddLabelToCard),
	"label.removeFromCard": action((*backend.Backend).RemoveLabelFromCard),

	"attachment.create": withInput((*backend.Backend).CreateAttachment),
	"attachment.delete": action((*backend.Backend).DeleteAttachment),

	"activity.listByBoard": asQuery(withInput((*backend.Backend).ListActivity)),

	"customer.list":                 asQuery(noInput((*backend.Backend).ListCustomers)),
	"customer.create":               withInput((*backend.Backend).CreateCustomer),
	"customer.update":               withInput((*backend.Backend).UpdateCustomer),
	"customer.delete":               action((*backend.Backend).DeleteCustomer),
	"customer.regenerateAccessCode": withInput((*backend.Backend).RegenerateAccessCode),
	"customer.assignBoard":          action((*backend.Backend).AssignBoard),
	"customer.unassignBoard":        action((*backend.Backend).UnassignBoard),
	"customer.listContacts":         asQuery(withInput((*backend.Backend).ListContacts)),
	"customer.addContact":           withInput((*backend.Backend).AddContact),
	"customer.updateContact":        withInput((*backend.Backend).UpdateContact),
	"customer.deleteContact":        action((*backend.Backend).DeleteContact),
	"customer.getByAccessCode":      asQuery(public((*backend.Backend).GetPortal)),
	"customer.updateContactProfile": public((*backend.Backend).UpdateContactProfile),
	"customer.getCard":              asQuery(public((*backend.Backend).GetPortalCard)),
	"customer.addComment":           public((*backend.Backend).AddPortalComment),

	"invite.list":   asQuery(noInput((*backend.Backend).ListInvites)),
	"invite.create": withInput((*backend.Backend).CreateInvite),
	"invite.delete": action((*backend.Backend).DeleteInvite),

	"user.me":          asQuery(noInput((*backend.Backend).Me)),
	"user.listByBoard": asQuery(withInput((*backend.Backend).ListUsersByBoard)),
	"user.update":      withInput((*backend.Backend).UpdateUser),
}

// RPCController registers the RPC endpoint.
func RPCController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/api/rpc/{procedure}", serveRPC).Methods(http.MethodGet, http.MethodPost)
}

func serveRPC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	be := backend.FromContext(ctx)
	name := mux.Vars(r)["procedure"]
	start := time.Now()

	p, ok := procedures[name]
	if !ok {
		rpcCounter.WithLabelValues("unknown", CodeNotFound).Inc()
		renderError(w, r, proto.Errorf(proto.ErrNotFound, "No procedure found on path %q", name))
		return
	}

	result, err := callProcedure(w, r, be, p)
	rpcSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		status, body := errorBody(r, err)
		rpcCounter.WithLabelValues(name, body.Code).Inc()
		logger.Debug("rpc failed", "procedure", name, "code", body.Code, "err", err)
		renderJSON(w, status, errorResponse{Error: body})
		return
	}

	rpcCounter.WithLabelValues(name, "OK").Inc()
	renderJSON(w, http.StatusOK, resultResponse{Result: result})
}

func callProcedure(w http.ResponseWriter, r *http.Request, be *backend.Backend, p procedure) (interface{}, error) {
	ctx := r.Context()
	var input []byte
	switch r.Method {
	case http.MethodGet:
		if !p.query {
			return nil, proto.NewError(proto.ErrBadRequest, "Mutations must be called with POST")
		}
		input = []byte(r.URL.Query().Get("input"))
	default:
		var raw json.RawMessage
		if err := decodeJSON(w, r, &raw); err != nil {
			return nil, err
		}
		input = raw
	}

	user := proto.UserFromContext(ctx)
	if !p.public && user == nil {
		return nil, proto.ErrNotAuthenticated
	}
	return p.call(ctx, be, user, input)
}

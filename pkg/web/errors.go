package web

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/pkg/proto"
)

// Error codes of the RPC envelope.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

// ErrorBody is the error half of a response envelope.
type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Issues  []proto.Issue `json:"issues,omitempty"`
}

// errorResponse is sent when a request fails.
type errorResponse struct {
	Error ErrorBody `json:"error"`
}

// errorStatus maps an error to its HTTP status and envelope code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, proto.ErrBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, proto.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, proto.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, proto.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, proto.ErrConflict):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// errorBody builds the envelope of err. Internal errors are logged and
// reported without detail.
func errorBody(r *http.Request, err error) (int, ErrorBody) {
	status, code := errorStatus(err)
	body := ErrorBody{Code: code, Message: err.Error()}
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).Error("internal error", "err", err)
		body.Message = "Internal server error"
		return status, body
	}

	var verr *proto.ValidationError
	if errors.As(err, &verr) {
		body.Issues = verr.Issues
	}
	return status, body
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(r, err)
	renderJSON(w, status, errorResponse{Error: body})
}

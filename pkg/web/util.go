package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/pkg/proto"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		io.WriteString(w, fmt.Sprintf("%d %s", code, http.StatusText(code))) //nolint:errcheck,gosec
	}
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, proto.NewError(proto.ErrNotFound, "Not found"))
}

func hdrNocache(w http.ResponseWriter) {
	w.Header().Set("Expires", "Fri, 01 Jan 1980 00:00:00 GMT")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Cache-Control", "no-cache, max-age=0, must-revalidate")
}

func renderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	hdrNocache(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding json", "err", err)
	}
}

// decodeJSON reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return proto.NewError(proto.ErrBadRequest, "Request body is too large")
		}
		return proto.Errorf(proto.ErrBadRequest, "Could not read request body: %v", err)
	}
	return unmarshalInput(body, v)
}

func unmarshalInput(data []byte, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return proto.Errorf(proto.ErrBadRequest, "Malformed JSON input: %v", err)
	}
	return nil
}

func renderMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: ErrorBody{
		Code:    "METHOD_NOT_SUPPORTED",
		Message: fmt.Sprintf("Method %s is not allowed", r.Method),
	}})
}

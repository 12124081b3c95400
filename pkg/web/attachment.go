package web

import (
	"context"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var uploadBytes = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "portal",
	Subsystem: "attachments",
	Name:      "uploaded_bytes_total",
	Help:      "The total number of attachment bytes stored",
})

// AttachmentController registers the attachment upload and download routes.
func AttachmentController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/api/attachments/{card:[0-9]+}/{filename}", withAuth(uploadAttachment)).Methods(http.MethodPut)
	r.HandleFunc("/attachments/{path:.+}", withAuth(downloadAttachment)).Methods(http.MethodGet, http.MethodHead)
}

// withAuth rejects anonymous requests.
func withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if proto.UserFromContext(r.Context()) == nil {
			renderError(w, r, proto.ErrNotAuthenticated)
			return
		}
		next(w, r)
	}
}

func uploadAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)
	vars := mux.Vars(r)

	cardID, err := strconv.ParseInt(vars["card"], 10, 64)
	if err != nil {
		renderError(w, r, proto.ErrCardNotFound)
		return
	}

	up, err := be.UploadAttachment(ctx, *user, cardID, vars["filename"],
		r.Header.Get("Content-Type"), r.ContentLength, r.Body)
	if err != nil {
		renderError(w, r, err)
		return
	}

	uploadBytes.Add(float64(up.Size))
	renderJSON(w, http.StatusCreated, up)
}

func downloadAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	obj, a, err := be.OpenAttachment(ctx, *user, mux.Vars(r)["path"])
	if err != nil {
		renderError(w, r, err)
		return
	}
	defer obj.Close() //nolint:errcheck
	serveObject(w, r, obj, a)
}

// serveObject writes a stored attachment with its recorded name and type.
func serveObject(w http.ResponseWriter, r *http.Request, obj storage.Object, a proto.Attachment) {
	modtime := a.CreatedAt
	if fi, err := obj.Stat(); err == nil {
		modtime = fi.ModTime()
	}
	if a.MimeType != "" {
		w.Header().Set("Content-Type", a.MimeType)
	}
	if cd := mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}); cd != "" {
		w.Header().Set("Content-Disposition", cd)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, a.Name, modtime.Truncate(time.Second), obj)
}

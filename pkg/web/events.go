package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/realtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// keepAliveInterval is how often an idle event stream sends a comment line.
var keepAliveInterval = 25 * time.Second

var streamGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "portal",
	Subsystem: "realtime",
	Name:      "streams",
	Help:      "The number of open event streams",
}, []string{"kind"})

// EventsController registers the board event stream.
func EventsController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/api/boards/{id:[0-9]+}/events", withAuth(boardEvents)).Methods(http.MethodGet)
}

func boardEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	ch, cancel, err := be.SubscribeBoard(ctx, *user, pathID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}
	defer cancel()
	streamEvents(w, r, "board", ch)
}

func portalEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	ch, cancel, err := be.SubscribePortal(ctx, mux.Vars(r)["code"])
	if err != nil {
		renderError(w, r, err)
		return
	}
	defer cancel()
	streamEvents(w, r, "portal", ch)
}

// streamEvents writes events as Server-Sent Events until the client goes
// away or the subscription ends.
func streamEvents(w http.ResponseWriter, r *http.Request, kind string, ch <-chan realtime.Event) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	flusher, ok := w.(http.Flusher)
	if !ok {
		renderError(w, r, fmt.Errorf("streaming is not supported"))
		return
	}

	streamGauge.WithLabelValues(kind).Inc()
	defer streamGauge.WithLabelValues(kind).Dec()

	hdrNocache(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n") //nolint:errcheck
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error("error encoding event", "err", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

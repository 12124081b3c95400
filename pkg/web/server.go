package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/printnow/portal/pkg/config"
)

// NewRouter returns a new HTTP router.
func NewRouter(ctx context.Context) http.Handler {
	logger := log.FromContext(ctx).WithPrefix("http")
	cfg := config.FromContext(ctx)
	router := mux.NewRouter()

	// Health routes
	HealthController(ctx, router)

	// Sign in and session routes
	AuthController(ctx, router)

	// API routes
	RPCController(ctx, router)
	AttachmentController(ctx, router)
	EventsController(ctx, router)

	// Customer portal routes
	PortalController(ctx, router)

	router.NotFoundHandler = http.HandlerFunc(renderNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(renderMethodNotAllowed)

	h := withUser(router)
	h = NewLoggingMiddleware(h, logger)
	// Context handler
	// Adds context to the request
	h = NewContextHandler(ctx)(h)
	if cfg != nil && len(cfg.HTTP.CORS.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(cfg.HTTP.CORS.AllowedOrigins),
			handlers.AllowedMethods(cfg.HTTP.CORS.AllowedMethods),
			handlers.AllowedHeaders(cfg.HTTP.CORS.AllowedHeaders),
			handlers.AllowCredentials(),
		)(h)
	}
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})),
	)(h)

	return h
}

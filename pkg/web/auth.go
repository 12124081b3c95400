package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/config"
	"github.com/printnow/portal/pkg/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "portal_session"

// loginFailedPath is where a failed sign in lands.
const loginFailedPath = "/login?error=auth_failed"

var (
	magicLinkCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "auth",
		Name:      "magic_links_total",
		Help:      "The total number of magic links requested",
	}, []string{"allowed"})

	signInCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "auth",
		Name:      "sign_ins_total",
		Help:      "The total number of magic link sign in attempts",
	}, []string{"result"})
)

// AuthController registers the sign in routes.
func AuthController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/api/auth/check-email", checkEmail).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/magic-link", requestMagicLink).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/callback", authCallback).Methods(http.MethodGet)
	r.HandleFunc("/.well-known/jwks.json", getJWKS).Methods(http.MethodGet)
}

// tokenFromRequest returns the session token of a request. The
// Authorization header wins over the cookie.
func tokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// withUser attaches the user of a valid session to the request context.
// Requests without a valid session continue anonymously.
func withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := log.FromContext(ctx)
		be := backend.FromContext(ctx)
		user, err := be.UserByToken(ctx, token)
		if err != nil {
			if !errors.Is(err, proto.ErrUnauthorized) {
				logger.Error("failed to authenticate", "err", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		logger.Debug("authenticated", "user", user.ID)
		ctx = proto.WithUserContext(ctx, &user)
		ctx = log.WithContext(ctx, logger.With("user", user.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type emailRequest struct {
	Email string `json:"email"`
	Next  string `json:"next"`
}

func checkEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderJSON(w, http.StatusBadRequest, map[string]bool{"allowed": false})
		return
	}
	allowed, err := be.CheckEmail(ctx, req.Email)
	if err != nil {
		status, _ := errorStatus(err)
		if status == http.StatusInternalServerError {
			log.FromContext(ctx).Error("failed to check email", "err", err)
		}
		renderJSON(w, status, map[string]bool{"allowed": false})
		return
	}
	renderJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}

func requestMagicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	if err := be.RequestMagicLink(ctx, req.Email, req.Next); err != nil {
		if errors.Is(err, proto.ErrEmailNotAllowed) {
			magicLinkCounter.WithLabelValues("false").Inc()
		}
		renderError(w, r, err)
		return
	}
	magicLinkCounter.WithLabelValues("true").Inc()
	renderJSON(w, http.StatusAccepted, success{Success: true})
}

func authCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	logger := log.FromContext(ctx)

	login, err := be.ConsumeMagicLink(ctx, r.URL.Query().Get("token"), r.UserAgent())
	if err != nil {
		signInCounter.WithLabelValues("failed").Inc()
		logger.Info("sign in failed", "err", err)
		http.Redirect(w, r, loginFailedPath, http.StatusSeeOther)
		return
	}

	signInCounter.WithLabelValues("ok").Inc()
	setSessionCookie(w, r, login.Token, login.ExpiresAt)
	http.Redirect(w, r, login.Redirect, http.StatusSeeOther)
}

func logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	if token := tokenFromRequest(r); token != "" {
		if err := be.Logout(ctx, token); err != nil && !errors.Is(err, proto.ErrUnauthorized) {
			renderError(w, r, err)
			return
		}
	}
	setSessionCookie(w, r, "", time.Unix(0, 0))
	renderJSON(w, http.StatusOK, success{Success: true})
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	cfg := config.FromContext(r.Context())
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg != nil && cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

func getJWKS(w http.ResponseWriter, r *http.Request) {
	be := backend.FromContext(r.Context())
	renderJSON(w, http.StatusOK, be.KeyPair().KeySet())
}

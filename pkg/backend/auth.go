package backend

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/printnow/portal/pkg/access"
	"github.com/printnow/portal/pkg/cache"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/db/models"
	"github.com/printnow/portal/pkg/jwk"
	"github.com/printnow/portal/pkg/mail"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/utils"
)

// DefaultRedirect is where users land after signing in.
const DefaultRedirect = "/boards"

// DefaultOrganizationName is the name of the organization created for users
// who sign up without an invite.
const DefaultOrganizationName = "My Organization"

// GenerateToken returns a random unique token.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// HashToken hashes the token using sha256.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SafeRedirect returns next if it is a path on this server and the default
// redirect otherwise.
func SafeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return DefaultRedirect
	}
	return next
}

// CheckEmail reports whether an email may sign in: it belongs to a user or
// has a pending invite.
func (d *Backend) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return false, proto.Invalid("email", "is required")
	}

	if _, err := d.store.FindUserByEmail(ctx, d.db, email); err == nil {
		return true, nil
	} else if !errors.Is(err, db.ErrRecordNotFound) {
		return false, dbErr(err, nil)
	}

	if _, err := d.store.FindInviteByEmail(ctx, d.db, email); err == nil {
		return true, nil
	} else if !errors.Is(err, db.ErrRecordNotFound) {
		return false, dbErr(err, nil)
	}

	return false, nil
}

type callbackQuery struct {
	Token string `url:"token"`
	Next  string `url:"next,omitempty"`
}

// RequestMagicLink emails a single use sign in link.
func (d *Backend) RequestMagicLink(ctx context.Context, email, next string) error {
	email = utils.NormalizeEmail(email)
	if err := utils.Validate(struct {
		Email string `json:"email" validate:"required,email"`
	}{email}); err != nil {
		return err //nolint:wrapcheck
	}

	ok, err := d.CheckEmail(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return proto.ErrEmailNotAllowed
	}

	token, err := GenerateToken()
	if err != nil {
		return err
	}
	next = SafeRedirect(next)
	expiresAt := d.now().UTC().Add(d.cfg.Auth.MagicLinkTTL)
	if err := d.store.CreateMagicLink(ctx, d.db, email, HashToken(token), next, expiresAt); err != nil {
		return dbErr(err, nil)
	}

	q, err := query.Values(callbackQuery{Token: token, Next: next})
	if err != nil {
		return fmt.Errorf("encode callback query: %w", err)
	}
	link := strings.TrimSuffix(d.cfg.HTTP.PublicURL, "/") + "/auth/callback?" + q.Encode()
	if err := d.mailer.Send(ctx, mail.MagicLink(d.cfg.Name, email, link)); err != nil {
		return fmt.Errorf("send magic link: %w", err)
	}

	d.logger.Debug("sent magic link", "email", email)
	return nil
}

// Login is the result of a successful sign in.
type Login struct {
	User      proto.User
	Token     string
	ExpiresAt time.Time
	Redirect  string
}

// ConsumeMagicLink exchanges a magic link token for a session. The first
// sign in of an email provisions its user.
func (d *Backend) ConsumeMagicLink(ctx context.Context, token, userAgent string) (Login, error) {
	var login Login
	if token == "" {
		return login, proto.ErrInvalidToken
	}

	var user models.User
	var sess models.Session
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		link, err := d.store.FindMagicLinkByHash(ctx, tx, HashToken(token))
		if err != nil {
			return dbErr(err, proto.ErrInvalidToken)
		}
		if err := d.store.DeleteMagicLink(ctx, tx, link.ID); err != nil {
			return dbErr(err, nil)
		}
		if !d.now().Before(link.ExpiresAt) {
			return proto.ErrTokenExpired
		}
		login.Redirect = SafeRedirect(link.Redirect)

		user, err = d.provisionUser(ctx, tx, link.Email, "")
		if err != nil {
			return err
		}

		sess, err = d.store.CreateSession(ctx, tx, uuid.NewString(), user.ID,
			userAgent, d.now().UTC().Add(d.cfg.Auth.SessionTTL))
		return dbErr(err, nil)
	})
	if errors.Is(err, proto.ErrTokenExpired) {
		// The expired link must still be gone.
		_ = d.db.TransactionContext(ctx, func(tx *db.Tx) error {
			link, ferr := d.store.FindMagicLinkByHash(ctx, tx, HashToken(token))
			if ferr != nil {
				return nil
			}
			return d.store.DeleteMagicLink(ctx, tx, link.ID) //nolint:wrapcheck
		})
	}
	if err != nil {
		return login, err //nolint:wrapcheck
	}

	login.User = toUser(user)
	login.ExpiresAt = sess.ExpiresAt.UTC()
	login.Token, err = d.issueToken(sess)
	if err != nil {
		return login, err
	}

	d.logger.Info("user signed in", "user", user.ID)
	return login, nil
}

// provisionUser returns the user of email, creating it on first sign in. A
// user without an organization joins the organization that invited them, or
// gets a new organization they own.
func (d *Backend) provisionUser(ctx context.Context, tx *db.Tx, email, name string) (models.User, error) {
	user, err := d.store.FindUserByEmail(ctx, tx, email)
	if errors.Is(err, db.ErrRecordNotFound) {
		if name == "" {
			name = defaultName(email)
		}
		user, err = d.store.CreateUser(ctx, tx, email, name)
	}
	if err != nil {
		return user, dbErr(err, nil)
	}

	_, err = d.store.FindFirstMembership(ctx, tx, user.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.ErrRecordNotFound) {
		return user, dbErr(err, nil)
	}

	invite, err := d.store.FindInviteByEmail(ctx, tx, user.Email)
	switch {
	case err == nil:
		if _, err := d.store.AddOrgMember(ctx, tx, invite.OrganizationID, user.ID, invite.Role); err != nil {
			return user, dbErr(err, nil)
		}
		boards, err := d.store.ListInviteBoards(ctx, tx, []int64{invite.ID})
		if err != nil {
			return user, dbErr(err, nil)
		}
		for _, b := range boards {
			if err := d.store.AddBoardMember(ctx, tx, b.BoardID, user.ID); err != nil {
				return user, dbErr(err, nil)
			}
		}
		if err := d.store.DeleteInvite(ctx, tx, invite.ID); err != nil {
			return user, dbErr(err, nil)
		}
	case errors.Is(err, db.ErrRecordNotFound):
		slug, err := randomSlug()
		if err != nil {
			return user, err
		}
		org, err := d.store.CreateOrg(ctx, tx, DefaultOrganizationName, slug)
		if err != nil {
			return user, dbErr(err, nil)
		}
		if _, err := d.store.AddOrgMember(ctx, tx, org.ID, user.ID, access.Owner); err != nil {
			return user, dbErr(err, nil)
		}
	default:
		return user, dbErr(err, nil)
	}

	return user, nil
}

// defaultName derives a display name from the local part of an email.
func defaultName(email string) string {
	return strings.SplitN(email, "@", 2)[0]
}

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSlug() (string, error) {
	s, err := randomString(slugAlphabet, 8)
	if err != nil {
		return "", err
	}
	return "org-" + s, nil
}

// randomString returns n characters drawn uniformly from alphabet.
func randomString(alphabet string, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random string: %w", err)
	}
	// Rejection sampling keeps the distribution uniform.
	limit := 256 - 256%len(alphabet)
	out := make([]byte, 0, n)
	for len(out) < n {
		for _, c := range buf {
			if int(c) >= limit {
				continue
			}
			out = append(out, alphabet[int(c)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("random string: %w", err)
		}
	}
	return string(out), nil
}

// claims are the claims of a session token. The token id is the session
// uuid.
type claims = jwt.RegisteredClaims

func (d *Backend) issueToken(sess models.Session) (string, error) {
	now := d.now()
	c := claims{
		Subject:   strconv.FormatInt(sess.UserID, 10),
		ID:        sess.UUID,
		Issuer:    d.cfg.HTTP.PublicURL,
		Audience:  jwt.ClaimStrings{d.cfg.HTTP.PublicURL},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwk.SigningMethod, c)
	token.Header["kid"] = d.keys.JWK().KeyID
	s, err := token.SignedString(d.keys.PrivateKey())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func (d *Backend) parseToken(token string, opts ...jwt.ParserOption) (*claims, error) {
	var c claims
	opts = append(opts,
		jwt.WithValidMethods([]string{jwk.SigningMethod.Alg()}),
		jwt.WithIssuer(d.cfg.HTTP.PublicURL),
		jwt.WithAudience(d.cfg.HTTP.PublicURL),
		jwt.WithTimeFunc(d.now),
	)
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return d.keys.PublicKey(), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, proto.ErrTokenExpired
		}
		return nil, proto.ErrInvalidToken
	}
	if c.ID == "" {
		return nil, proto.ErrInvalidToken
	}
	return &c, nil
}

type cachedSession struct {
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func sessionKey(id string) string {
	return "session:" + id
}

// UserByToken authenticates a session token.
func (d *Backend) UserByToken(ctx context.Context, token string) (proto.User, error) {
	c, err := d.parseToken(token)
	if err != nil {
		return proto.User{}, err
	}

	sess, ok := cache.GetJSON[cachedSession](ctx, d.cache, sessionKey(c.ID))
	if !ok {
		m, err := d.store.FindSessionByUUID(ctx, d.db, c.ID)
		if err != nil {
			return proto.User{}, dbErr(err, proto.ErrSessionNotFound)
		}
		sess = cachedSession{UserID: m.UserID, ExpiresAt: m.ExpiresAt}
		ttl := time.Until(m.ExpiresAt)
		if d.cfg.Cache.TTL > 0 && d.cfg.Cache.TTL < ttl {
			ttl = d.cfg.Cache.TTL
		}
		if ttl > 0 {
			cache.SetJSON(ctx, d.cache, sessionKey(c.ID), sess, ttl)
		}
	}

	if !d.now().Before(sess.ExpiresAt) {
		return proto.User{}, proto.ErrTokenExpired
	}
	if c.Subject != strconv.FormatInt(sess.UserID, 10) {
		return proto.User{}, proto.ErrInvalidToken
	}

	u, err := d.store.GetUserByID(ctx, d.db, sess.UserID)
	if err != nil {
		return proto.User{}, dbErr(err, proto.ErrSessionNotFound)
	}
	return toUser(u), nil
}

// Logout revokes the session of a token. Expired tokens are accepted.
func (d *Backend) Logout(ctx context.Context, token string) error {
	c, err := d.parseToken(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if d.cache != nil {
		d.cache.Delete(ctx, sessionKey(c.ID))
	}
	return dbErr(d.store.DeleteSession(ctx, d.db, c.ID), nil)
}

// CreateToken creates a session for an existing user and returns its token.
// It is used to script the API.
func (d *Backend) CreateToken(ctx context.Context, email, userAgent string, ttl time.Duration) (Login, error) {
	var login Login
	if ttl <= 0 {
		ttl = d.cfg.Auth.SessionTTL
	}
	u, err := d.store.FindUserByEmail(ctx, d.db, email)
	if err != nil {
		return login, dbErr(err, proto.ErrUserNotFound)
	}
	sess, err := d.store.CreateSession(ctx, d.db, uuid.NewString(), u.ID, userAgent, d.now().UTC().Add(ttl))
	if err != nil {
		return login, dbErr(err, nil)
	}
	login.User = toUser(u)
	login.ExpiresAt = sess.ExpiresAt.UTC()
	login.Token, err = d.issueToken(sess)
	return login, err
}

// ListSessions returns the sessions of a user, newest first.
func (d *Backend) ListSessions(ctx context.Context, email string) ([]proto.Session, error) {
	u, err := d.store.FindUserByEmail(ctx, d.db, email)
	if err != nil {
		return nil, dbErr(err, proto.ErrUserNotFound)
	}
	ms, err := d.store.ListSessionsByUser(ctx, d.db, u.ID)
	if err != nil {
		return nil, dbErr(err, nil)
	}
	sessions := make([]proto.Session, 0, len(ms))
	for _, m := range ms {
		sessions = append(sessions, proto.Session{
			ID:        m.UUID,
			UserAgent: m.UserAgent,
			ExpiresAt: m.ExpiresAt.UTC(),
			CreatedAt: m.CreatedAt.UTC(),
		})
	}
	return sessions, nil
}

// RevokeSessions signs a user out everywhere and returns how many sessions
// were revoked.
func (d *Backend) RevokeSessions(ctx context.Context, email string) (int, error) {
	u, err := d.store.FindUserByEmail(ctx, d.db, email)
	if err != nil {
		return 0, dbErr(err, proto.ErrUserNotFound)
	}
	var n int
	err = d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListSessionsByUser(ctx, tx, u.ID)
		if err != nil {
			return dbErr(err, nil)
		}
		for _, m := range ms {
			if err := d.store.DeleteSession(ctx, tx, m.UUID); err != nil {
				return dbErr(err, nil)
			}
			if d.cache != nil {
				d.cache.Delete(ctx, sessionKey(m.UUID))
			}
		}
		n = len(ms)
		return nil
	})
	return n, err //nolint:wrapcheck
}

// DeleteExpired removes expired magic links and sessions.
func (d *Backend) DeleteExpired(ctx context.Context) (links int64, sessions int64, err error) {
	now := d.now().UTC()
	if links, err = d.store.DeleteExpiredMagicLinks(ctx, d.db, now); err != nil {
		return 0, 0, dbErr(err, nil)
	}
	if sessions, err = d.store.DeleteExpiredSessions(ctx, d.db, now); err != nil {
		return links, 0, dbErr(err, nil)
	}
	return links, sessions, nil
}

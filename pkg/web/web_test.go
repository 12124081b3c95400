package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/cache/lru"
	"github.com/printnow/portal/pkg/config"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/mail"
	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/store"
	"github.com/printnow/portal/pkg/store/database"
	"github.com/printnow/portal/pkg/test"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) lastLink(tb testing.TB) *url.URL {
	tb.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		tb.Fatal("no mail sent")
	}
	for _, field := range strings.Fields(m.sent[len(m.sent)-1].Body) {
		if u, err := url.Parse(field); err == nil && u.Query().Get("token") != "" {
			return u
		}
	}
	tb.Fatal("no link in mail")
	return nil
}

type server struct {
	ctx    context.Context
	be     *backend.Backend
	mailer *captureMailer
	srv    *httptest.Server
	owner  proto.User
}

func setup(t *testing.T) *server {
	t.Helper()
	is := is.New(t)

	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	is.NoErr(cfg.Validate())
	ctx := config.WithContext(context.TODO(), cfg)
	ctx = log.WithContext(ctx, log.New(io.Discard))

	dbx := test.OpenDB(ctx, t)
	c, err := lru.NewCache(ctx)
	is.NoErr(err)
	datastore := database.New(ctx, dbx)
	m := &captureMailer{}
	be, err := backend.New(ctx, cfg, dbx, datastore, backend.WithMailer(m), backend.WithCache(c))
	is.NoErr(err)
	t.Cleanup(func() {
		if err := be.Close(); err != nil {
			t.Error(err)
		}
	})

	ctx = backend.WithContext(ctx, be)
	ctx = db.WithContext(ctx, dbx)
	ctx = store.WithContext(ctx, datastore)
	srv := httptest.NewServer(NewRouter(ctx))
	t.Cleanup(srv.Close)

	owner, err := be.AddUser(ctx, "ada@example.com", "Ada")
	is.NoErr(err)
	return &server{ctx: ctx, be: be, mailer: m, srv: srv, owner: owner}
}

// client returns an HTTP client that does not follow redirects.
func (s *server) client() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// signIn walks the magic link flow and returns the session cookie.
func (s *server) signIn(t *testing.T, email string) *http.Cookie {
	t.Helper()
	is := is.New(t)

	res := s.post(t, "/api/auth/magic-link", nil, map[string]string{"email": email})
	is.Equal(res.StatusCode, http.StatusAccepted)

	link := s.mailer.lastLink(t)
	res, err := s.client().Get(s.srv.URL + link.Path + "?" + link.RawQuery)
	is.NoErr(err)
	res.Body.Close() //nolint:errcheck
	is.Equal(res.StatusCode, http.StatusSeeOther)
	for _, c := range res.Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func (s *server) do(t *testing.T, req *http.Request, cookie *http.Cookie) *http.Response {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res, err := s.client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { res.Body.Close() }) //nolint:errcheck
	return res
}

func (s *server) post(t *testing.T, path string, cookie *http.Cookie, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, s.srv.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req, cookie)
}

func (s *server) get(t *testing.T, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.srv.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s.do(t, req, cookie)
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *ErrorBody      `json:"error"`
}

// rpc calls a procedure and decodes its result into out.
func (s *server) rpc(t *testing.T, cookie *http.Cookie, name string, in, out interface{}) (int, *ErrorBody) {
	t.Helper()
	res := s.post(t, "/api/rpc/"+name, cookie, in)
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	if env.Error == nil && out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			t.Fatalf("decode %s result: %v", name, err)
		}
	}
	return res.StatusCode, env.Error
}

func decode(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestHealth(t *testing.T) {
	is := is.New(t)
	s := setup(t)

	is.Equal(s.get(t, "/livez", nil).StatusCode, http.StatusOK)
	is.Equal(s.get(t, "/readyz", nil).StatusCode, http.StatusOK)

	res := s.get(t, "/nope", nil)
	is.Equal(res.StatusCode, http.StatusNotFound)
	var env envelope
	decode(t, res, &env)
	is.Equal(env.Error.Code, CodeNotFound)
}

func TestJWKS(t *testing.T) {
	is := is.New(t)
	s := setup(t)

	res := s.get(t, "/.well-known/jwks.json", nil)
	is.Equal(res.StatusCode, http.StatusOK)
	var set struct {
		Keys []map[string]interface{} `json:"keys"`
	}
	decode(t, res, &set)
	is.Equal(len(set.Keys), 1)
	is.Equal(set.Keys[0]["kty"], "OKP")
}

package backend

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/cache/lru"
	"github.com/printnow/portal/pkg/config"
	"github.com/printnow/portal/pkg/mail"
	"github.com/printnow/portal/pkg/proto"
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

// lastToken returns the token of the last magic link sent.
func (m *captureMailer) lastToken(tb testing.TB) (string, string) {
	tb.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		tb.Fatal("no mail sent")
	}
	msg := m.sent[len(m.sent)-1]
	for _, field := range strings.Fields(msg.Body) {
		u, err := url.Parse(field)
		if err != nil || u.Query().Get("token") == "" {
			continue
		}
		return u.Query().Get("token"), u.Query().Get("next")
	}
	tb.Fatalf("no link in %q", msg.Body)
	return "", ""
}

type fixture struct {
	ctx    context.Context
	b      *Backend
	mailer *captureMailer
	owner  proto.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	is := is.New(t)

	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	is.NoErr(cfg.Validate())
	ctx := config.WithContext(context.TODO(), cfg)

	dbx := test.OpenDB(ctx, t)
	c, err := lru.NewCache(ctx)
	is.NoErr(err)
	m := &captureMailer{}
	b, err := New(ctx, cfg, dbx, database.New(ctx, dbx), WithMailer(m), WithCache(c))
	is.NoErr(err)
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Error(err)
		}
	})

	owner, err := b.AddUser(ctx, "ada@example.com", "Ada")
	is.NoErr(err)
	return &fixture{ctx: ctx, b: b, mailer: m, owner: owner}
}

// join invites email to the owner's organization and signs them up.
func (f *fixture) join(t *testing.T, email string, role proto.CreateInviteInput) proto.User {
	t.Helper()
	is := is.New(t)
	role.Email = email
	_, err := f.b.CreateInvite(f.ctx, f.owner, role)
	is.NoErr(err)
	u, err := f.b.AddUser(f.ctx, email, "")
	is.NoErr(err)
	return u
}

// board creates a board owned by the fixture owner.
func (f *fixture) board(t *testing.T, name string) proto.Board {
	t.Helper()
	b, err := f.b.CreateBoard(f.ctx, f.owner, proto.CreateBoardInput{Name: name})
	is.New(t).NoErr(err)
	return b
}

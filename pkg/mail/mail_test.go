package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/config"
)

func TestMagicLink(t *testing.T) {
	is := is.New(t)
	msg := MagicLink("Portal", "ada@example.com", "https://portal.example.com/auth/callback?token=abc")
	is.Equal(msg.To, "ada@example.com")
	is.Equal(msg.Subject, "Sign in to Portal")
	is.True(strings.Contains(msg.Body, "https://portal.example.com/auth/callback?token=abc"))
}

func TestNewMsg(t *testing.T) {
	is := is.New(t)

	m, err := newMsg("Portal <noreply@example.com>", Message{To: "ada@example.com", Subject: "Hi", Body: "Hello"})
	is.NoErr(err)
	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	is.NoErr(err)
	out := buf.String()
	is.True(strings.Contains(out, "Subject: Hi"))
	is.True(strings.Contains(out, "<ada@example.com>"))
	is.True(strings.Contains(out, "Hello"))

	_, err = newMsg("noreply@example.com", Message{To: "not an address"})
	is.True(err != nil)
}

func TestNew(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	_, err := New(ctx, nil)
	is.Equal(err, config.ErrNilConfig)

	cfg := config.DefaultConfig()
	m, err := New(ctx, cfg)
	is.NoErr(err)
	_, ok := m.(*LogMailer)
	is.True(ok)

	cfg.Mail.Driver = "smtp"
	cfg.Mail.Host = "localhost"
	m, err = New(ctx, cfg)
	is.NoErr(err)
	_, ok = m.(*SMTPMailer)
	is.True(ok)

	cfg.Mail.Driver = "fax"
	_, err = New(ctx, cfg)
	is.True(err != nil)
}

func TestLogMailer(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	l := &LogMailer{logger: log.New(&buf)}
	is.NoErr(l.Send(context.TODO(), Message{To: "ada@example.com", Subject: "Sign in"}))
	is.True(strings.Contains(buf.String(), "ada@example.com"))
}

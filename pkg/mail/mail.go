// Package mail sends the emails Portal needs, which today is only the
// sign-in link.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/pkg/config"
	gomail "github.com/wneessen/go-mail"
)

// Message is an outgoing plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the mailer selected by the mail section of cfg.
func New(ctx context.Context, cfg *config.Config) (Mailer, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	logger := log.FromContext(ctx).WithPrefix("mail")
	switch cfg.Mail.Driver {
	case "", "log":
		return &LogMailer{logger: logger}, nil
	case "smtp":
		return NewSMTPMailer(cfg.Mail, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Mail.Driver)
	}
}

// MagicLink returns the sign-in message for a link.
func MagicLink(serverName, to, link string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\nUse the link below to sign in to %s:\n\n%s\n\n", serverName, link)
	b.WriteString("The link can be used once and expires shortly. ")
	b.WriteString("If you did not ask to sign in, you can ignore this email.\n")
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Sign in to %s", serverName),
		Body:    b.String(),
	}
}

func newMsg(from string, msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

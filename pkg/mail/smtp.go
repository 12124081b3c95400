package mail

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/pkg/config"
	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer sends messages through an SMTP relay.
type SMTPMailer struct {
	cfg    config.MailConfig
	logger *log.Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer returns a new SMTPMailer.
func NewSMTPMailer(cfg config.MailConfig, logger *log.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (s *SMTPMailer) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(s.cfg.Port))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return gomail.NewClient(s.cfg.Host, opts...) //nolint:wrapcheck
}

// Send implements Mailer.
func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	m, err := newMsg(s.cfg.From, msg)
	if err != nil {
		return err
	}

	c, err := s.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	s.logger.Debug("sent mail", "to", msg.To, "subject", msg.Subject)
	return nil
}

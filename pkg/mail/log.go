package mail

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogMailer writes messages to the log instead of sending them. It is meant
// for development setups without an SMTP relay.
type LogMailer struct {
	logger *log.Logger
}

var _ Mailer = (*LogMailer)(nil)

// Send implements Mailer.
func (l *LogMailer) Send(_ context.Context, msg Message) error {
	l.logger.Info("mail", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Sender delivers a single message and reports failure synchronously.
// The signup flow treats a delivery failure as a server error; retries,
// if any, live with the transport, not here.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpSender struct {
	addr   string // host:port
	from   string
	auth   smtp.Auth
	logger *slog.Logger
}

func NewSMTPSender(host string, port int, from, username, password string, logger *slog.Logger) Sender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &smtpSender{
		addr:   fmt.Sprintf("%s:%d", host, port),
		from:   from,
		auth:   auth,
		logger: logger,
	}
}

func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		s.logger.Error("mail delivery failed", "to", to, "error", err)
		return fmt.Errorf("send mail: %w", err)
	}
	s.logger.Info("mail sent", "to", to, "subject", subject)
	return nil
}

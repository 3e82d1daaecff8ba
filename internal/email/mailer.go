package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/frahmantamala/user-management/internal"
)

// Mailer is the delivery collaborator consumed by the password-reset flow.
// Delivery is fire-and-forget from the caller's perspective: failures are
// logged, never fatal to the reset request.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends plain-text mail over SMTP with STARTTLS.
type SMTPMailer struct {
	cfg    internal.SMTPConfig
	logger *slog.Logger
}

func NewSMTPMailer(cfg internal.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{cfg: cfg, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	headers := map[string]string{
		"From":         m.cfg.From,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
		"Date":         time.Now().Format(time.RFC1123Z),
	}

	var message bytes.Buffer
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, message.Bytes()); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// NoopMailer is used when SMTP is disabled; it logs instead of delivering.
type NoopMailer struct {
	logger *slog.Logger
}

func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopMailer{logger: logger}
}

func (m *NoopMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info("smtp disabled, skipping email delivery", "to", to, "subject", subject)
	return nil
}

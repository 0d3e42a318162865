package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay (Mailpit in development).
type SMTPMailer struct {
	Addr string
	From string
}

// Send delivers one message.
func (m SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s", m.From, to, subject, body)
	if err := smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("jobs: send mail to %s: %w", to, err)
	}
	return nil
}

// MailJob processes mail:send tasks.
type MailJob struct {
	mailer Mailer
	logger *slog.Logger
}

// NewMailJob constructs the mail job.
func NewMailJob(mailer Mailer, logger *slog.Logger) *MailJob {
	return &MailJob{mailer: mailer, logger: logger}
}

// Handle delivers the payload. Bad payloads are dropped rather than retried.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}
	if err := j.mailer.Send(payload.To, payload.Subject, payload.Body); err != nil {
		j.logger.Warn("send mail", slog.Any("error", err), slog.String("to", payload.To))
		return err
	}
	j.logger.Info("mail sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}

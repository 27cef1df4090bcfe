package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	mail "github.com/go-mail/mail"
)

// Mailer sends a single message. Satisfied by *mail.Dialer.
type Mailer interface {
	DialAndSend(m ...*mail.Message) error
}

// SendEmailJob delivers transactional email through SMTP.
type SendEmailJob struct {
	Dialer Mailer
	From   string
	Logger *slog.Logger
}

// NewSendEmailJob initialises the email handler.
func NewSendEmailJob(dialer Mailer, from string, logger *slog.Logger) *SendEmailJob {
	return &SendEmailJob{Dialer: dialer, From: from, Logger: logger}
}

// Handle delivers the message.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dialer == nil {
		return errors.New("send email: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	m := mail.NewMessage()
	m.SetHeader("From", j.From)
	m.SetHeader("To", payload.To)
	m.SetHeader("Subject", payload.Subject)
	m.SetBody("text/plain", payload.Body)

	if err := j.Dialer.DialAndSend(m); err != nil {
		j.logger().Error("delivery failed", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	j.logger().Info("email delivered", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}

func (j *SendEmailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeSendEmail))
	}
	return slog.Default().With(slog.String("job", TaskTypeSendEmail))
}

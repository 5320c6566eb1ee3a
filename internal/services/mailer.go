package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

var ErrMailRateLimited = errors.New("mail provider rate limit reached")

const defaultMailRetryAfter = 30 * time.Second

type Email struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// RateLimitError carries how long the provider asked us to back off.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrMailRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrMailRateLimited
}

// Mailer delivers transactional email through SendGrid. Without an API key
// messages are only logged, which is what development setups get.
type Mailer struct {
	client   *sendgrid.Client
	from     *mail.Email
	disabled bool
}

func NewMailer(apiKey, fromAddress, fromName string) *Mailer {
	if apiKey == "" {
		return &Mailer{disabled: true}
	}

	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

func (m *Mailer) Send(ctx context.Context, email Email) error {
	if m.disabled {
		logger.Log.Info("email delivery disabled, dropping message",
			zap.String("to", email.To),
			zap.String("subject", email.Subject),
		)
		return nil
	}

	message := mail.NewSingleEmail(m.from, email.Subject, mail.NewEmail(email.ToName, email.To), email.Text, email.HTML)

	res, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if res.StatusCode == http.StatusTooManyRequests {
		retryAfter := defaultMailRetryAfter
		if values := res.Headers["Retry-After"]; len(values) > 0 {
			if seconds, err := strconv.Atoi(values[0]); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mail provider responded with %d: %s", res.StatusCode, res.Body)
	}

	return nil
}

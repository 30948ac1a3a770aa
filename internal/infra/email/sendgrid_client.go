package email

import (
	"context"
	"errors"
	"fmt"

	"hr_contract_notifier/internal/domain/notification"
	"hr_contract_notifier/internal/infra/ratelimit"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrEmptyContent = errors.New("email requires an HTML or plain-text body")

// mailAPI is the subset of *sendgrid.Client used here.
type mailAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridClient sends transactional email through the SendGrid v3 API.
// A client built without an API key is valid but every send reports
// notification.ErrChannelNotConfigured.
type SendGridClient struct {
	api     mailAPI
	from    *mail.Email
	limiter *ratelimit.RateLimiter // nil sends unpaced
}

func NewSendGridClient(apiKey, fromAddress string, limiter *ratelimit.RateLimiter) *SendGridClient {
	c := &SendGridClient{from: mail.NewEmail("", fromAddress), limiter: limiter}
	if apiKey != "" {
		c.api = sendgrid.NewSendClient(apiKey)
	}
	return c
}

// Enabled reports whether an API key was supplied.
func (c *SendGridClient) Enabled() bool { return c.api != nil }

// SendEmail sends one message to one address. HTML is used when present,
// plain text otherwise. Any non-2xx response is a failure.
func (c *SendGridClient) SendEmail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if c.api == nil {
		return notification.ErrChannelNotConfigured
	}

	m := mail.NewV3Mail()
	m.SetFrom(c.from)
	m.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", to))
	m.AddPersonalizations(p)

	switch {
	case htmlBody != "":
		m.AddContent(mail.NewContent("text/html", htmlBody))
	case textBody != "":
		m.AddContent(mail.NewContent("text/plain", textBody))
	default:
		return ErrEmptyContent
	}

	if err := c.limiter.Allow(ctx); err != nil {
		return fmt.Errorf("sendgrid send throttled: %w", err)
	}
	resp, err := c.api.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

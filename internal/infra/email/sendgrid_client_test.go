package email

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr_contract_notifier/internal/domain/notification"
	"hr_contract_notifier/internal/infra/ratelimit"
)

type fakeMailAPI struct {
	sent []*mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeMailAPI) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, m)
	return f.resp, f.err
}

func newTestClient(api *fakeMailAPI) *SendGridClient {
	c := NewSendGridClient("", "no-reply@admin.com", nil)
	c.api = api
	return c
}

func TestSendEmail_NotConfigured(t *testing.T) {
	c := NewSendGridClient("", "no-reply@admin.com", nil)

	assert.False(t, c.Enabled())
	err := c.SendEmail(context.Background(), "hr@example.com", "s", "<p>x</p>", "")
	assert.ErrorIs(t, err, notification.ErrChannelNotConfigured)
}

func TestSendEmail_PrefersHTML(t *testing.T) {
	api := &fakeMailAPI{resp: &rest.Response{StatusCode: http.StatusAccepted}}
	c := newTestClient(api)

	require.NoError(t, c.SendEmail(context.Background(), "hr@example.com", "Subject", "<p>html</p>", "plain"))
	require.Len(t, api.sent, 1)

	m := api.sent[0]
	assert.Equal(t, "Subject", m.Subject)
	assert.Equal(t, "no-reply@admin.com", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	require.Len(t, m.Personalizations[0].To, 1)
	assert.Equal(t, "hr@example.com", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/html", m.Content[0].Type)
	assert.Equal(t, "<p>html</p>", m.Content[0].Value)
}

func TestSendEmail_PlainTextFallback(t *testing.T) {
	api := &fakeMailAPI{resp: &rest.Response{StatusCode: http.StatusAccepted}}
	c := newTestClient(api)

	require.NoError(t, c.SendEmail(context.Background(), "hr@example.com", "Subject", "", "plain"))
	require.Len(t, api.sent[0].Content, 1)
	assert.Equal(t, "text/plain", api.sent[0].Content[0].Type)
}

func TestSendEmail_EmptyBody(t *testing.T) {
	api := &fakeMailAPI{}
	c := newTestClient(api)

	assert.ErrorIs(t, c.SendEmail(context.Background(), "hr@example.com", "Subject", "", ""), ErrEmptyContent)
	assert.Empty(t, api.sent)
}

func TestSendEmail_Failures(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeMailAPI
	}{
		{"non-2xx", &fakeMailAPI{resp: &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}}},
		{"server error", &fakeMailAPI{resp: &rest.Response{StatusCode: http.StatusBadGateway}}},
		{"transport error", &fakeMailAPI{err: errors.New("dial tcp: timeout")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestClient(tt.api).SendEmail(context.Background(), "hr@example.com", "s", "<p>x</p>", "")
			assert.Error(t, err)
			assert.NotErrorIs(t, err, notification.ErrChannelNotConfigured)
		})
	}
}

func TestSendEmail_RateLimited(t *testing.T) {
	api := &fakeMailAPI{resp: &rest.Response{StatusCode: http.StatusAccepted}}
	c := newTestClient(api)
	c.limiter = ratelimit.NewRateLimiter(0.01, 1)

	require.NoError(t, c.SendEmail(context.Background(), "hr@example.com", "s", "<p>x</p>", ""))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := c.SendEmail(ctx, "boss@example.com", "s", "<p>x</p>", "")

	assert.ErrorContains(t, err, "throttled")
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, api.sent, 1)
}

package telegram

import (
	"context"
	"fmt"

	"hr_contract_notifier/internal/domain/notification"
	"hr_contract_notifier/internal/infra/ratelimit"

	"gopkg.in/telebot.v3"
)

// MessageSender is the part of the bot API the notifier needs. *TelebotAdapter implements it.
type MessageSender interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) error
}

// ChatNotifier posts notifications to the single destination chat configured
// for the HR team. A notifier without a client or destination reports
// notification.ErrChannelNotConfigured on every send.
type ChatNotifier struct {
	client        MessageSender
	destinationID int64
	limiter       *ratelimit.RateLimiter // nil sends unpaced
}

func NewChatNotifier(client MessageSender, destinationID int64, limiter *ratelimit.RateLimiter) *ChatNotifier {
	return &ChatNotifier{client: client, destinationID: destinationID, limiter: limiter}
}

// Enabled reports whether both a client and a destination chat are set.
func (n *ChatNotifier) Enabled() bool {
	return n.client != nil && n.destinationID != 0
}

// SendChat sends one HTML-formatted message and returns no later than ctx.
// The bot API call itself takes no context, so it runs in its own goroutine
// and is abandoned when ctx ends; the bot's HTTP client timeout reaps it.
func (n *ChatNotifier) SendChat(ctx context.Context, text string) error {
	if !n.Enabled() {
		return notification.ErrChannelNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.limiter.Allow(ctx); err != nil {
		return fmt.Errorf("telegram send to chat %d throttled: %w", n.destinationID, err)
	}

	done := make(chan error, 1)
	go func() { done <- n.send(text) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("telegram send to chat %d abandoned: %w", n.destinationID, ctx.Err())
	}
}

// send converts panics from the bot library to errors so nothing escapes the channel boundary.
func (n *ChatNotifier) send(text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("telegram client panicked: %v", r)
		}
	}()

	opts := &telebot.SendOptions{ParseMode: telebot.ModeHTML, DisableWebPagePreview: true}
	if err := n.client.SendMessage(n.destinationID, text, opts); err != nil {
		return fmt.Errorf("telegram send to chat %d failed: %w", n.destinationID, err)
	}
	return nil
}

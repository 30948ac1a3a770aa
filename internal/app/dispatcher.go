// internal/app/dispatcher.go
package app

import (
	"context"
	"errors"
	"time"

	"hr_contract_notifier/internal/domain/notification"
	"hr_contract_notifier/internal/domain/recipient"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EmailSender delivers one email to one address.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// ChatSender posts one message to the configured destination chat.
type ChatSender interface {
	SendChat(ctx context.Context, text string) error
}

// Channels is the set of delivery channels fixed at startup. A nil sender is
// treated as not configured.
type Channels struct {
	Email EmailSender
	Chat  ChatSender
}

// Dispatcher sends one composed message through every applicable channel.
// Each attempt is isolated: a failing channel never prevents the others.
type Dispatcher struct {
	channels    Channels
	sendTimeout time.Duration
	logger      *logrus.Entry
}

func NewDispatcher(channels Channels, sendTimeout time.Duration, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		channels:    channels,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Dispatch emails every recipient that accepts msg.Category and posts once to
// the chat channel. It never returns an error; failures are logged and
// recorded in the result.
func (d *Dispatcher) Dispatch(ctx context.Context, msg notification.Message, recipients []*recipient.Recipient) notification.DispatchResult {
	log := d.logger.WithFields(logrus.Fields{
		"dispatch_id": uuid.New().String(),
		"category":    msg.Category,
		"subject":     msg.Subject,
	})

	var result notification.DispatchResult
	var eligible []*recipient.Recipient
	for _, r := range recipients {
		if r != nil && r.Accepts(msg.Category) {
			eligible = append(eligible, r)
		}
	}

	emailDelivered := make([]bool, len(eligible))
	emailWarned := false
	for i, r := range eligible {
		res := d.attempt(ctx, notification.ChannelEmail, r.Email, func(ctx context.Context) error {
			if d.channels.Email == nil {
				return notification.ErrChannelNotConfigured
			}
			return d.channels.Email.SendEmail(ctx, r.Email, msg.Subject, msg.HTMLBody, msg.PlainBody)
		})
		result.Results = append(result.Results, res)

		switch res.Outcome {
		case notification.OutcomeDelivered:
			emailDelivered[i] = true
			log.WithField("to", r.Email).Info("Email notification sent")
		case notification.OutcomeNotConfigured:
			if !emailWarned {
				log.Warn("Email channel is not configured, skipping email delivery")
				emailWarned = true
			}
		default:
			log.WithField("to", r.Email).WithError(res.Err).Error("Failed to send email notification")
		}
	}

	chatRes := d.attempt(ctx, notification.ChannelChat, "", func(ctx context.Context) error {
		if d.channels.Chat == nil {
			return notification.ErrChannelNotConfigured
		}
		return d.channels.Chat.SendChat(ctx, msg.ChatText)
	})
	result.Results = append(result.Results, chatRes)
	switch chatRes.Outcome {
	case notification.OutcomeDelivered:
		log.Info("Chat notification sent")
	case notification.OutcomeNotConfigured:
		log.Warn("Chat channel is not configured, skipping chat delivery")
	default:
		log.WithError(chatRes.Err).Error("Failed to send chat notification")
	}

	// A recipient counts as delivered when any channel reached the team for them.
	chatDelivered := chatRes.Outcome == notification.OutcomeDelivered
	for _, ok := range emailDelivered {
		if ok || chatDelivered {
			result.Delivered++
		}
	}

	log.WithFields(logrus.Fields{
		"eligible_recipients": len(eligible),
		"delivered":           result.Delivered,
	}).Debug("Dispatch finished")
	return result
}

// attempt runs one send under the per-call timeout and classifies the result.
func (d *Dispatcher) attempt(ctx context.Context, ch notification.Channel, target string, send func(context.Context) error) (res notification.ChannelResult) {
	res = notification.ChannelResult{Channel: ch, Target: target}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = notification.OutcomeFailed
			res.Err = errors.New("channel send panicked")
			d.logger.WithField("channel", ch).WithField("panic", r).Error("Recovered from panic in channel send")
		}
		recordAttempt(ch, res.Outcome, time.Since(start).Seconds())
	}()

	callCtx := ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	err := send(callCtx)
	switch {
	case err == nil:
		res.Outcome = notification.OutcomeDelivered
	case errors.Is(err, notification.ErrChannelNotConfigured):
		res.Outcome = notification.OutcomeNotConfigured
		res.Err = err
	default:
		res.Outcome = notification.OutcomeFailed
		res.Err = err
	}
	return res
}

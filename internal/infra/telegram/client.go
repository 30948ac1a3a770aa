// internal/infra/telegram/client.go
package telegram

import (
	"net/http"
	"time"

	"gopkg.in/telebot.v3"
)

const pollTimeout = 10 * time.Second

// NewBot creates a telebot instance. With poll set to false the bot is created
// offline: it can send but never calls getMe or receives updates.
func NewBot(token string, poll bool, timeout time.Duration, onError func(error, telebot.Context)) (*telebot.Bot, error) {
	pref := telebot.Settings{
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
		OnError: onError,
	}
	if poll {
		// getUpdates holds the connection for the whole poll timeout.
		pref.Client.Timeout = timeout + pollTimeout
		pref.Poller = &telebot.LongPoller{Timeout: pollTimeout}
	} else {
		pref.Offline = true
	}
	return telebot.NewBot(pref)
}

// TelebotAdapter implements MessageSender using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to a user, group or channel chat.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := tba.bot.Send(telebot.ChatID(chatID), text, options)
	return err
}

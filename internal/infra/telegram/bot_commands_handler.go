// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const adminHelp = "Available admin commands:\n\n" +
	"`/add_recipient <email> [all|contracts|employees|performance] [name]`\n - Add a notification recipient.\n\n" +
	"`/remove_recipient <email>`\n - Delete a recipient permanently.\n\n" +
	"`/enable_recipient <email>`, `/disable_recipient <email>`\n - Resume or pause emails to a recipient.\n\n" +
	"`/list_recipients`\n - Show all recipients.\n\n" +
	"`/check_contracts [days]`\n - Run the expiry check now. Default threshold: %d days.\n\n" +
	"`/test_email <email>`\n - Send a test email.\n\n" +
	"`/help`\n - Show this message."

func RegisterBotCommands(
	b *telebot.Bot,
	adminTelegramID int64,
	defaultThreshold int,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")
	b.Handle("/start", startHandler(adminTelegramID, startHelpLogger))
	b.Handle("/help", helpHandler(adminTelegramID, defaultThreshold, startHelpLogger))
}

func startHandler(adminTelegramID int64, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := logger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			logCtx.Info("User identified as Admin")
			return c.Send(fmt.Sprintf("Hello, %s! Contract notifications are running. Use /help for the list of commands.", c.Sender().FirstName))
		}

		logCtx.Info("User is unknown")
		return c.Send("Hello! This bot posts HR contract notifications. Commands are available to the administrator only.")
	}
}

func helpHandler(adminTelegramID int64, defaultThreshold int, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := logger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID == adminTelegramID {
			logCtx.Info("User identified as Admin, sending admin help.")
			return c.Send(fmt.Sprintf(adminHelp, defaultThreshold), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}

		logCtx.Info("User is unknown, sending restricted help.")
		return c.Send("No commands are available to you. Contact the administrator to receive contract notifications.")
	}
}

package wire

import (
	"database/sql"
	"fmt"
	"time"

	"hr_contract_notifier/internal/app"
	"hr_contract_notifier/internal/domain/contract"
	"hr_contract_notifier/internal/domain/recipient"
	"hr_contract_notifier/internal/infra/config"
	idb "hr_contract_notifier/internal/infra/database"
	"hr_contract_notifier/internal/infra/email"
	"hr_contract_notifier/internal/infra/logger"
	"hr_contract_notifier/internal/infra/ratelimit"
	"hr_contract_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Wire bundles the repositories, channel clients and services built from one config.
type Wire struct {
	Contracts  contract.Repository
	Recipients recipient.Repository

	Email *email.SendGridClient
	Chat  *telegram.ChatNotifier
	Bot   *telebot.Bot // Receives admin commands; nil when CHAT_BOT_TOKEN is unset
	// SendBot is an offline bot bounded by CHANNEL_TIMEOUT that carries chat
	// notifications. It equals Bot unless Bot long-polls.
	SendBot *telebot.Bot

	Dispatcher    *app.Dispatcher
	Scanner       *app.ExpiryScanner
	Notifications *app.NotificationServiceImpl
	Queue         *app.LifecycleQueue
	Admin         *app.AdminService
}

// New constructs the dependency graph. Channel availability is decided here,
// once: missing credentials yield clients that report not configured.
// pollBot starts the bot in long-polling mode for admin commands; otherwise it
// is created offline and only sends.
func New(cfg *config.AppConfig, db *sql.DB, pollBot bool, now func() time.Time) (*Wire, error) {
	contractRepo := idb.NewPostgresContractRepository(db)
	recipientRepo := idb.NewPostgresRecipientRepository(db)

	emailClient := email.NewSendGridClient(cfg.EmailAPIKey, cfg.EmailFrom,
		ratelimit.NewRateLimiter(cfg.EmailRateLimit, cfg.EmailRateBurst))

	var bot, sendBot *telebot.Bot
	var chatClient telegram.MessageSender
	if cfg.ChatBotToken != "" {
		botLogger := logger.Component("telebot")
		onError := func(err error, c telebot.Context) {
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram bot error")
		}

		var err error
		sendBot, err = telegram.NewBot(cfg.ChatBotToken, false, cfg.ChannelTimeout, onError)
		if err != nil {
			return nil, fmt.Errorf("could not create Telegram bot: %w", err)
		}
		bot = sendBot
		if pollBot {
			// The poller's HTTP client outlives a long poll, too long for a notification send.
			if bot, err = telegram.NewBot(cfg.ChatBotToken, true, cfg.ChannelTimeout, onError); err != nil {
				return nil, fmt.Errorf("could not create Telegram bot: %w", err)
			}
		}
		chatClient = telegram.NewTelebotAdapter(sendBot)
	}
	chatNotifier := telegram.NewChatNotifier(chatClient, cfg.ChatDestinationID,
		ratelimit.NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateBurst))

	dispatcher := app.NewDispatcher(app.Channels{Email: emailClient, Chat: chatNotifier}, cfg.ChannelTimeout, logger.Component("dispatcher"))
	scanner := app.NewExpiryScanner(contractRepo, now)
	notifications := app.NewNotificationServiceImpl(contractRepo, recipientRepo, scanner, dispatcher, cfg.LifecycleTimeout, logger.Component("notification_service"))

	return &Wire{
		Contracts:     contractRepo,
		Recipients:    recipientRepo,
		Email:         emailClient,
		Chat:          chatNotifier,
		Bot:           bot,
		SendBot:       sendBot,
		Dispatcher:    dispatcher,
		Scanner:       scanner,
		Notifications: notifications,
		Queue:         app.NewLifecycleQueue(notifications, cfg.LifecycleQueueSize, logger.Component("lifecycle_queue")),
		Admin:         app.NewAdminService(recipientRepo, notifications, emailClient, cfg.AdminTelegramID),
	}, nil
}

// LogChannels reports which channels are live. Not-configured channels are warnings.
func (w *Wire) LogChannels(log *logrus.Entry) {
	if w.Email.Enabled() {
		log.Info("Email channel enabled")
	} else {
		log.Warn("Email channel disabled: EMAIL_API_KEY is not set")
	}
	if w.Chat.Enabled() {
		log.Info("Chat channel enabled")
	} else {
		log.Warn("Chat channel disabled: CHAT_BOT_TOKEN or CHAT_DESTINATION_ID is not set")
	}
}

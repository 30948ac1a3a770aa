package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hr_contract_notifier/internal/app"
	"hr_contract_notifier/internal/domain/notification"
	"hr_contract_notifier/internal/domain/recipient"
	idb "hr_contract_notifier/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgUnauthorized = "Error: you are not allowed to run this command."

// AdminHandlers serves the recipient directory and manual check commands.
type AdminHandlers struct {
	ctx              context.Context
	adminService     *app.AdminService
	adminTelegramID  int64
	defaultThreshold int
	baseLogger       *logrus.Entry
}

func NewAdminHandlers(ctx context.Context, adminService *app.AdminService, adminTelegramID int64, defaultThreshold int, baseLogger *logrus.Entry) *AdminHandlers {
	return &AdminHandlers{
		ctx:              ctx,
		adminService:     adminService,
		adminTelegramID:  adminTelegramID,
		defaultThreshold: defaultThreshold,
		baseLogger:       baseLogger,
	}
}

// RegisterAdminHandlers registers handlers for admin commands.
func RegisterAdminHandlers(b *telebot.Bot, h *AdminHandlers) {
	b.Handle("/add_recipient", h.AddRecipient)
	b.Handle("/remove_recipient", h.RemoveRecipient)
	b.Handle("/enable_recipient", h.EnableRecipient)
	b.Handle("/disable_recipient", h.DisableRecipient)
	b.Handle("/list_recipients", h.ListRecipients)
	b.Handle("/check_contracts", h.CheckContracts)
	b.Handle("/test_email", h.TestEmail)
}

// begin logs the command and rejects non-admin senders. The returned bool is
// false when the handler must stop.
func (h *AdminHandlers) begin(c telebot.Context, command string) (*logrus.Entry, bool) {
	handlerLogger := h.baseLogger.WithFields(logrus.Fields{
		"handler":   command,
		"sender_id": c.Sender().ID,
	})
	handlerLogger.Info("Command received")

	if c.Sender().ID != h.adminTelegramID {
		handlerLogger.Warn("Unauthorized access attempt")
		return handlerLogger, false
	}
	return handlerLogger, true
}

// replyError maps service errors to user-facing text.
func replyError(c telebot.Context, handlerLogger *logrus.Entry, err error, action string) error {
	logWithError := handlerLogger.WithError(err)
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized):
		logWithError.Warn("Admin not authorized (service level)")
		return c.Send(msgUnauthorized)
	case errors.Is(err, app.ErrInvalidEmail):
		logWithError.Warn("Invalid email address")
		return c.Send("Error: invalid email address.")
	case errors.Is(err, idb.ErrRecipientNotFound):
		logWithError.Warn("Recipient not found")
		return c.Send("Recipient not found.")
	case errors.Is(err, app.ErrRecipientAlreadyExists):
		logWithError.Warn("Recipient already exists")
		return c.Send("Error: a recipient with this email already exists.")
	case errors.Is(err, notification.ErrChannelNotConfigured):
		logWithError.Warn("Email channel is not configured")
		return c.Send("Email is not configured: EMAIL_API_KEY is not set.")
	default:
		logWithError.Error("Failed to " + action)
		return c.Send(fmt.Sprintf("An error occurred while trying to %s: %s", action, err.Error()))
	}
}

func (h *AdminHandlers) AddRecipient(c telebot.Context) error {
	handlerLogger, ok := h.begin(c, "/add_recipient")
	if !ok {
		return c.Send(msgUnauthorized)
	}

	args := c.Args()
	// Expected format: /add_recipient <email> [all|contracts|employees|performance] [name]
	if len(args) < 1 {
		handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
		return c.Send("Invalid format. Use: /add_recipient <email> [all|contracts|employees|performance] [name]")
	}

	var types, name string
	if len(args) > 1 {
		types = args[1]
	}
	if len(args) > 2 {
		name = strings.Join(args[2:], " ")
	}
	handlerLogger = handlerLogger.WithFields(logrus.Fields{
		"email":              args[0],
		"notification_types": types,
	})

	r, err := h.adminService.AddRecipient(h.ctx, c.Sender().ID, args[0], name, types)
	if err != nil {
		return replyError(c, handlerLogger, err, "add the recipient")
	}

	handlerLogger.WithField("recipient_id", r.ID).Info("Recipient added successfully")
	return c.Send(fmt.Sprintf("Recipient %s <%s> added, receives: %s.", r.DisplayName(), r.Email, r.NotificationTypes))
}

func (h *AdminHandlers) RemoveRecipient(c telebot.Context) error {
	handlerLogger, ok := h.begin(c, "/remove_recipient")
	if !ok {
		return c.Send(msgUnauthorized)
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Send("Invalid format. Use: /remove_recipient <email>")
	}
	handlerLogger = handlerLogger.WithField("email", args[0])

	removed, err := h.adminService.RemoveRecipient(h.ctx, c.Sender().ID, args[0])
	if err != nil {
		return replyError(c, handlerLogger, err, "remove the recipient")
	}

	handlerLogger.WithField("removed_recipient_id", removed.ID).Info("Recipient removed successfully")
	return c.Send(fmt.Sprintf("Recipient %s removed.", removed.Email))
}

func (h *AdminHandlers) EnableRecipient(c telebot.Context) error {
	return h.setActive(c, "/enable_recipient", true)
}

func (h *AdminHandlers) DisableRecipient(c telebot.Context) error {
	return h.setActive(c, "/disable_recipient", false)
}

func (h *AdminHandlers) setActive(c telebot.Context, command string, active bool) error {
	handlerLogger, ok := h.begin(c, command)
	if !ok {
		return c.Send(msgUnauthorized)
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Send(fmt.Sprintf("Invalid format. Use: %s <email>", command))
	}
	handlerLogger = handlerLogger.WithField("email", args[0])

	state := "disabled"
	if active {
		state = "enabled"
	}

	r, err := h.adminService.SetRecipientActive(h.ctx, c.Sender().ID, args[0], active)
	if errors.Is(err, app.ErrRecipientStateUnchanged) {
		handlerLogger.Info("Recipient already in requested state")
		return c.Send(fmt.Sprintf("Recipient %s is already %s.", r.Email, state))
	}
	if err != nil {
		return replyError(c, handlerLogger, err, "update the recipient")
	}

	handlerLogger.WithField("recipient_id", r.ID).Info("Recipient state updated")
	return c.Send(fmt.Sprintf("Recipient %s %s.", r.Email, state))
}

func (h *AdminHandlers) ListRecipients(c telebot.Context) error {
	handlerLogger, ok := h.begin(c, "/list_recipients")
	if !ok {
		return c.Send(msgUnauthorized)
	}

	recipients, err := h.adminService.ListRecipients(h.ctx, c.Sender().ID)
	if err != nil {
		return replyError(c, handlerLogger, err, "list recipients")
	}
	if len(recipients) == 0 {
		handlerLogger.Info("No recipients found")
		return c.Send("The recipient list is empty.")
	}
	handlerLogger.WithField("recipients_count", len(recipients)).Info("Successfully retrieved recipient list")
	return c.Send(formatRecipients(recipients))
}

func formatRecipients(recipients []*recipient.Recipient) string {
	var response strings.Builder
	response.WriteString("--- Notification recipients ---\n")
	for _, r := range recipients {
		status := "inactive"
		if r.IsActive {
			status = "active"
		}
		response.WriteString(fmt.Sprintf("%s <%s>, types: %s, status: %s\n", r.DisplayName(), r.Email, r.NotificationTypes, status))
	}
	return response.String()
}

func (h *AdminHandlers) CheckContracts(c telebot.Context) error {
	handlerLogger, ok := h.begin(c, "/check_contracts")
	if !ok {
		return c.Send(msgUnauthorized)
	}

	days := h.defaultThreshold
	if args := c.Args(); len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 0 {
			return c.Send("Error: the number of days must be a non-negative integer.")
		}
		days = parsed
	}
	handlerLogger = handlerLogger.WithField("threshold_days", days)

	summary, err := h.adminService.RunExpiryCheck(h.ctx, c.Sender().ID, days)
	if err != nil {
		return replyError(c, handlerLogger, err, "check expiring contracts")
	}

	handlerLogger.WithField("matched", summary.Matched).Info("Manual expiry check completed")
	if summary.Matched == 0 {
		return c.Send(fmt.Sprintf("No contracts expire within %d days.", days))
	}
	return c.Send(fmt.Sprintf("Checked contracts expiring within %d days: %d found, %d notified, %d recipient deliveries.",
		days, summary.Matched, summary.Notified, summary.Delivered))
}

func (h *AdminHandlers) TestEmail(c telebot.Context) error {
	handlerLogger, ok := h.begin(c, "/test_email")
	if !ok {
		return c.Send(msgUnauthorized)
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Send("Invalid format. Use: /test_email <email>")
	}
	handlerLogger = handlerLogger.WithField("email", args[0])

	if err := h.adminService.SendTestEmail(h.ctx, c.Sender().ID, args[0]); err != nil {
		return replyError(c, handlerLogger, err, "send the test email")
	}
	handlerLogger.Info("Test email sent")
	return c.Send(fmt.Sprintf("Test email sent to %s.", args[0]))
}

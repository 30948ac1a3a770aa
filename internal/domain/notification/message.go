package notification

import "hr_contract_notifier/internal/domain/recipient"

// Message is a composed notification ready for every channel.
type Message struct {
	Category  recipient.NotificationType // Matched against recipient filters
	Subject   string
	HTMLBody  string
	PlainBody string
	ChatText  string // Telegram HTML markup
}

package recipient

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// NotificationType is the category filter a recipient subscribes to.
type NotificationType string

const (
	TypeAll         NotificationType = "all"
	TypeContracts   NotificationType = "contracts"
	TypeEmployees   NotificationType = "employees"
	TypePerformance NotificationType = "performance"
)

// ParseNotificationType normalises s and validates it against the known filters.
func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeAll, TypeContracts, TypeEmployees, TypePerformance:
		return t, nil
	}
	return "", fmt.Errorf("unknown notification type %q", s)
}

// Recipient is an entry of the notification directory ('notification_recipients' table).
type Recipient struct {
	ID                int64
	Email             string
	Name              sql.NullString
	IsActive          bool
	NotificationTypes NotificationType
	CreatedAt         time.Time
	CreatedBy         sql.NullInt64
}

// Accepts reports whether the recipient should receive a message of the given category.
func (r *Recipient) Accepts(category NotificationType) bool {
	if !r.IsActive {
		return false
	}
	return r.NotificationTypes == TypeAll || r.NotificationTypes == category
}

// DisplayName returns the name when set, otherwise the email address.
func (r *Recipient) DisplayName() string {
	if r.Name.Valid && r.Name.String != "" {
		return r.Name.String
	}
	return r.Email
}

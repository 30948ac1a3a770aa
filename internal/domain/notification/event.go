// internal/domain/notification/event.go
package notification

import (
	"fmt"
	"time"

	"hr_contract_notifier/internal/domain/contract"
)

// EventKind identifies what happened to a contract.
type EventKind string

const (
	EventNew        EventKind = "new"
	EventUpdated    EventKind = "updated"
	EventTerminated EventKind = "terminated"
	EventExpiring   EventKind = "expiring" // Only raised by the periodic scan
)

// ParseLifecycleKind accepts the kinds a CRUD action may raise. 'expiring' is rejected.
func ParseLifecycleKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case EventNew, EventUpdated, EventTerminated:
		return k, nil
	}
	return "", fmt.Errorf("invalid lifecycle event kind %q", s)
}

// Event is the in-memory input of one compose+dispatch call. It is never persisted.
type Event struct {
	Kind          EventKind
	Contract      *contract.Contract
	Employee      *contract.Employee
	DaysRemaining int // Only meaningful for EventExpiring
}

// NewExpiringEvent builds an expiring event, deriving the days remaining from today.
func NewExpiringEvent(c *contract.Contract, e *contract.Employee, today time.Time) Event {
	return Event{
		Kind:          EventExpiring,
		Contract:      c,
		Employee:      e,
		DaysRemaining: c.DaysRemaining(today),
	}
}

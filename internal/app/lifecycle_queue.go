package app

import (
	"context"
	"sync"

	"hr_contract_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// LifecycleEvent is one queued request to notify about a contract change.
type LifecycleEvent struct {
	ContractID int64
	Kind       notification.EventKind
}

// LifecycleQueue decouples CRUD callers from notification delivery. Events are
// buffered and delivered one at a time by the goroutine running Run.
type LifecycleQueue struct {
	notifier NotificationService
	events   chan LifecycleEvent
	logger   *logrus.Entry

	mu     sync.RWMutex
	closed bool
}

func NewLifecycleQueue(notifier NotificationService, size int, logger *logrus.Entry) *LifecycleQueue {
	if size <= 0 {
		size = 1
	}
	return &LifecycleQueue{
		notifier: notifier,
		events:   make(chan LifecycleEvent, size),
		logger:   logger,
	}
}

// Enqueue never blocks. It returns false when the buffer is full, the queue has
// stopped, or kind is not a lifecycle kind.
func (q *LifecycleQueue) Enqueue(contractID int64, kind notification.EventKind) bool {
	if _, err := notification.ParseLifecycleKind(string(kind)); err != nil {
		q.logger.WithField("contract_id", contractID).WithError(err).Warn("Rejected lifecycle event")
		lifecycleEventsTotal.WithLabelValues(string(kind), "invalid").Inc()
		return false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}

	select {
	case q.events <- LifecycleEvent{ContractID: contractID, Kind: kind}:
		return true
	default:
		q.logger.WithFields(logrus.Fields{
			"contract_id": contractID,
			"event":       kind,
		}).Warn("Lifecycle queue is full, event dropped")
		lifecycleEventsTotal.WithLabelValues(string(kind), "dropped").Inc()
		return false
	}
}

// Len returns the number of events waiting for delivery.
func (q *LifecycleQueue) Len() int {
	return len(q.events)
}

// Run delivers queued events until ctx is done. Events still buffered at that
// point are discarded with a warning.
func (q *LifecycleQueue) Run(ctx context.Context) {
	q.logger.Info("Lifecycle queue worker started")
	for {
		select {
		case <-ctx.Done():
			q.stop()
			return
		case ev := <-q.events:
			q.notifier.NotifyContractEvent(ctx, ev.ContractID, ev.Kind)
		}
	}
}

func (q *LifecycleQueue) stop() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	if pending := len(q.events); pending > 0 {
		q.logger.WithField("pending", pending).Warn("Lifecycle queue stopped with undelivered events")
	}
	q.logger.Info("Lifecycle queue worker stopped")
}

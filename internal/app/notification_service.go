// internal/app/notification_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hr_contract_notifier/internal/domain/contract"
	"hr_contract_notifier/internal/domain/notification"
	"hr_contract_notifier/internal/domain/recipient"
	idb "hr_contract_notifier/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// NotificationService defines the operations that raise contract notifications.
type NotificationService interface {
	// CheckExpiringContracts scans for contracts expiring within thresholdDays
	// and dispatches one 'expiring' notification per match. It returns an error
	// only when the scan itself fails.
	CheckExpiringContracts(ctx context.Context, thresholdDays int) (CheckSummary, error)
	// NotifyContractEvent sends one lifecycle notification synchronously. It never
	// returns an error; false means nothing was delivered.
	NotifyContractEvent(ctx context.Context, contractID int64, kind notification.EventKind) bool
}

// CheckSummary reports what one expiry check did.
type CheckSummary struct {
	Threshold int
	Matched   int // Contracts inside the window
	Notified  int // Contracts for which a dispatch was attempted
	Delivered int // Sum of delivered recipient counts over all dispatches
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	contracts        contract.Repository
	recipients       recipient.Repository
	scanner          *ExpiryScanner
	dispatcher       *Dispatcher
	lifecycleTimeout time.Duration
	logger           *logrus.Entry
}

func NewNotificationServiceImpl(
	cr contract.Repository,
	rr recipient.Repository,
	scanner *ExpiryScanner,
	dispatcher *Dispatcher,
	lifecycleTimeout time.Duration,
	logger *logrus.Entry,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		contracts:        cr,
		recipients:       rr,
		scanner:          scanner,
		dispatcher:       dispatcher,
		lifecycleTimeout: lifecycleTimeout,
		logger:           logger,
	}
}

// CheckExpiringContracts runs one scan + dispatch cycle. There is no
// deduplication: a contract still inside the window is notified again on
// every call.
func (s *NotificationServiceImpl) CheckExpiringContracts(ctx context.Context, thresholdDays int) (CheckSummary, error) {
	summary := CheckSummary{Threshold: thresholdDays}
	log := s.logger.WithField("threshold_days", thresholdDays)

	expiring, err := s.scanner.Scan(ctx, thresholdDays)
	if err != nil {
		expiryChecksTotal.WithLabelValues("failure").Inc()
		return summary, err
	}
	expiryChecksTotal.WithLabelValues("success").Inc()
	expiringContracts.Set(float64(len(expiring)))
	summary.Matched = len(expiring)

	if len(expiring) == 0 {
		log.Info("No contracts expiring within the threshold")
		return summary, nil
	}
	log.WithField("matched", len(expiring)).Info("Found expiring contracts")

	recipients := s.loadRecipients(ctx)
	today := s.scanner.Today()

	for _, c := range expiring {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Expiry check interrupted")
			return summary, fmt.Errorf("expiry check interrupted: %w", err)
		}

		employee, err := s.contracts.GetEmployee(ctx, c.EmployeeID)
		if err != nil {
			log.WithFields(logrus.Fields{
				"contract_number": c.Number,
				"employee_id":     c.EmployeeID,
			}).WithError(err).Warn("Employee not found for expiring contract, skipping")
			continue
		}

		msg := Compose(notification.NewExpiringEvent(c, employee, today))
		result := s.dispatcher.Dispatch(ctx, msg, recipients)
		summary.Notified++
		summary.Delivered += result.Delivered
	}

	log.WithFields(logrus.Fields{
		"matched":   summary.Matched,
		"notified":  summary.Notified,
		"delivered": summary.Delivered,
	}).Info("Expiry check finished")
	return summary, nil
}

// NotifyContractEvent looks up the contract and its employee, then composes and
// dispatches one message within the lifecycle timeout.
func (s *NotificationServiceImpl) NotifyContractEvent(ctx context.Context, contractID int64, kind notification.EventKind) bool {
	log := s.logger.WithFields(logrus.Fields{
		"contract_id": contractID,
		"event":       kind,
	})

	if _, err := notification.ParseLifecycleKind(string(kind)); err != nil {
		log.WithError(err).Error("Invalid lifecycle notification kind")
		lifecycleEventsTotal.WithLabelValues(string(kind), "invalid").Inc()
		return false
	}

	if s.lifecycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lifecycleTimeout)
		defer cancel()
	}

	c, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, idb.ErrContractNotFound) {
			log.Error("Contract not found, notification not sent")
		} else {
			log.WithError(err).Error("Failed to load contract, notification not sent")
		}
		lifecycleEventsTotal.WithLabelValues(string(kind), "lookup_failed").Inc()
		return false
	}

	employee, err := s.contracts.GetEmployee(ctx, c.EmployeeID)
	if err != nil {
		log.WithFields(logrus.Fields{
			"contract_number": c.Number,
			"employee_id":     c.EmployeeID,
		}).WithError(err).Error("Employee not found for contract, notification not sent")
		lifecycleEventsTotal.WithLabelValues(string(kind), "lookup_failed").Inc()
		return false
	}

	msg := Compose(notification.Event{Kind: kind, Contract: c, Employee: employee})
	result := s.dispatcher.Dispatch(ctx, msg, s.loadRecipients(ctx))

	if !result.Succeeded() {
		log.WithField("contract_number", c.Number).Warn("Lifecycle notification was not delivered on any channel")
		lifecycleEventsTotal.WithLabelValues(string(kind), "undelivered").Inc()
		return false
	}
	log.WithFields(logrus.Fields{
		"contract_number": c.Number,
		"delivered":       result.Delivered,
	}).Info("Lifecycle notification sent")
	lifecycleEventsTotal.WithLabelValues(string(kind), "delivered").Inc()
	return true
}

// loadRecipients returns the active directory snapshot. A failed lookup is
// logged and yields no recipients so the chat channel is still attempted.
func (s *NotificationServiceImpl) loadRecipients(ctx context.Context) []*recipient.Recipient {
	recipients, err := s.recipients.ListActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load notification recipients, continuing with chat only")
		return nil
	}
	return recipients
}

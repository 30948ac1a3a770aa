package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hr_contract_notifier/internal/domain/notification"
)

var (
	// channelAttemptsTotal counts every channel attempt by outcome.
	channelAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_notifier_channel_attempts_total",
			Help: "Notification attempts per channel and outcome",
		},
		[]string{"channel", "outcome"}, // outcome: delivered|failed|not_configured
	)

	channelSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contract_notifier_channel_send_duration_seconds",
			Help:    "Channel send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"channel"},
	)

	expiryChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_notifier_expiry_checks_total",
			Help: "Expiry check runs by status",
		},
		[]string{"status"}, // status: success|failure
	)

	expiringContracts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contract_notifier_expiring_contracts",
			Help: "Contracts matched by the most recent expiry check",
		},
	)

	lifecycleEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contract_notifier_lifecycle_events_total",
			Help: "Lifecycle notifications by kind and result",
		},
		[]string{"kind", "result"}, // result: delivered|undelivered|lookup_failed|invalid|dropped
	)
)

func recordAttempt(ch notification.Channel, o notification.Outcome, seconds float64) {
	channelAttemptsTotal.WithLabelValues(string(ch), string(o)).Inc()
	if o != notification.OutcomeNotConfigured {
		channelSendDuration.WithLabelValues(string(ch)).Observe(seconds)
	}
}

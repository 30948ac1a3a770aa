package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr_contract_notifier/internal/app"
	"hr_contract_notifier/internal/domain/notification"
)

type countingService struct {
	mu         sync.Mutex
	thresholds []int
	err        error
	panics     bool
}

func (c *countingService) CheckExpiringContracts(_ context.Context, days int) (app.CheckSummary, error) {
	c.mu.Lock()
	c.thresholds = append(c.thresholds, days)
	c.mu.Unlock()
	if c.panics {
		panic("unexpected nil")
	}
	return app.CheckSummary{Threshold: days, Matched: 1, Notified: 1, Delivered: 1}, c.err
}

func (c *countingService) NotifyContractEvent(context.Context, int64, notification.EventKind) bool {
	return true
}

func (c *countingService) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.thresholds)
}

func newLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return logger.WithField("component", "scheduler"), hook
}

func TestGraceSchedule_DelayThenInterval(t *testing.T) {
	g := &graceSchedule{delay: time.Minute, interval: 24 * time.Hour}
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(time.Minute), g.Next(now))
	assert.Equal(t, now.Add(24*time.Hour), g.Next(now))
	assert.Equal(t, now.Add(48*time.Hour), g.Next(now.Add(24*time.Hour)))
}

func TestNewExpiryScheduler_Validation(t *testing.T) {
	log, _ := newLogger()

	_, err := NewExpiryScheduler(&countingService{}, log, Options{Interval: 0})
	assert.Error(t, err)

	_, err = NewExpiryScheduler(&countingService{}, log, Options{CronSpec: "not a cron"})
	assert.ErrorContains(t, err, "invalid expiry check cron spec")

	s, err := NewExpiryScheduler(&countingService{}, log, Options{CronSpec: "0 8 * * *"})
	require.NoError(t, err)
	next := s.schedule.Next(time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local))
	assert.Equal(t, time.Date(2024, 6, 2, 8, 0, 0, 0, time.Local), next)
}

func TestRunOnce_RepeatsWithoutDedup(t *testing.T) {
	log, _ := newLogger()
	svc := &countingService{}
	s, err := NewExpiryScheduler(svc, log, Options{ThresholdDays: 30, Interval: time.Hour})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		s.RunOnce(context.Background())
	}
	assert.Equal(t, []int{30, 30, 30}, svc.thresholds)
}

func TestRunOnce_ContainsFailures(t *testing.T) {
	log, hook := newLogger()
	svc := &countingService{err: errors.New("database unavailable")}
	s, err := NewExpiryScheduler(svc, log, Options{ThresholdDays: 30, Interval: time.Hour})
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	svc.panics = true
	assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
	assert.Equal(t, 2, svc.calls())
}

func TestStart_RunsAfterDelayAndStopsOnCancel(t *testing.T) {
	log, _ := newLogger()
	svc := &countingService{}
	s, err := NewExpiryScheduler(svc, log, Options{ThresholdDays: 7, StartupDelay: 10 * time.Millisecond, Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	require.Eventually(t, func() bool { return svc.calls() == 1 }, 3*time.Second, 10*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, []int{7}, svc.thresholds)
}

func TestStart_SecondCallDoesNotDuplicateJob(t *testing.T) {
	log, hook := newLogger()
	svc := &countingService{}
	s, err := NewExpiryScheduler(svc, log, Options{ThresholdDays: 7, StartupDelay: 10 * time.Millisecond, Interval: time.Hour})
	require.NoError(t, err)
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	s.Start(ctx)

	assert.Len(t, s.cronEngine.Entries(), 1)
	require.Eventually(t, func() bool { return svc.calls() == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return svc.calls() > 1 }, 200*time.Millisecond, 20*time.Millisecond)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "Expiry scheduler already started, ignoring Start" {
			warned = true
		}
	}
	assert.True(t, warned)
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hr_contract_notifier/internal/app" // For NotificationService interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const iterationTimeout = 30 * time.Minute

// graceSchedule fires once after delay, then every interval.
type graceSchedule struct {
	mu       sync.Mutex
	delay    time.Duration
	interval time.Duration
	started  bool
}

func (g *graceSchedule) Next(t time.Time) time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		g.started = true
		return t.Add(g.delay)
	}
	return t.Add(g.interval)
}

// Options configures when the expiry check runs.
type Options struct {
	ThresholdDays int
	StartupDelay  time.Duration
	Interval      time.Duration
	CronSpec      string // Standard 5-field spec; overrides StartupDelay and Interval when set
}

type ExpiryScheduler struct {
	cronEngine   *cron.Cron
	notifService app.NotificationService // Using the interface
	logger       *logrus.Entry
	threshold    int

	mu       sync.Mutex
	started  bool
	runCtx   context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewExpiryScheduler(notifService app.NotificationService, logger *logrus.Entry, opts Options) (*ExpiryScheduler, error) {
	var schedule cron.Schedule
	if opts.CronSpec != "" {
		parsed, err := cron.ParseStandard(opts.CronSpec)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry check cron spec %q: %w", opts.CronSpec, err)
		}
		schedule = parsed
	} else {
		if opts.Interval <= 0 {
			return nil, fmt.Errorf("expiry check interval must be positive, got %s", opts.Interval)
		}
		if opts.StartupDelay < 0 {
			opts.StartupDelay = 0
		}
		schedule = &graceSchedule{delay: opts.StartupDelay, interval: opts.Interval}
	}

	cronLogger := cron.PrintfLogger(logger)
	s := &ExpiryScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		notifService: notifService,
		logger:       logger,
		threshold:    opts.ThresholdDays,
		runCtx:       context.Background(),
	}

	s.cronEngine.Schedule(schedule, cron.FuncJob(func() {
		s.logger.Info("Cron job triggered for expiry check.")
		s.RunOnce(s.context())
	}))
	return s, nil
}

// Start starts the cron engine. The scheduler stops when ctx is cancelled or
// Stop is called. Only the first call has any effect.
func (s *ExpiryScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		s.logger.Warn("Expiry scheduler already started, ignoring Start")
		return
	}
	s.started = true
	s.runCtx, s.cancel = context.WithCancel(ctx)
	runCtx := s.runCtx
	s.mu.Unlock()

	s.logger.Info("Starting expiry scheduler...")
	s.cronEngine.Start()
	s.logger.WithField("threshold_days", s.threshold).Info("Expiry scheduler started.")

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
}

func (s *ExpiryScheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runCtx
}

// RunOnce executes a single iteration. Errors and panics are logged and never
// propagate, so the next scheduled iteration always runs.
func (s *ExpiryScheduler) RunOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("Recovered from panic in expiry check iteration")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, iterationTimeout)
	defer cancel()

	start := time.Now()
	summary, err := s.notifService.CheckExpiringContracts(ctx, s.threshold)
	if err != nil {
		s.logger.WithError(err).Error("Error during expiry check iteration")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"matched":   summary.Matched,
		"notified":  summary.Notified,
		"delivered": summary.Delivered,
		"duration":  time.Since(start).String(),
	}).Info("Expiry check iteration completed")
}

// Stop cancels the running iteration and waits for it to return. Safe to call more than once.
func (s *ExpiryScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping expiry scheduler...")
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()
		ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
		<-ctx.Done()               // Wait for graceful shutdown
		s.logger.Info("Expiry scheduler gracefully stopped.")
	})
}

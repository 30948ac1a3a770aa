package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hr_contract_notifier/internal/infra/config"
	idb "hr_contract_notifier/internal/infra/database"
	"hr_contract_notifier/internal/infra/httpapi"
	"hr_contract_notifier/internal/infra/logger"
	"hr_contract_notifier/internal/infra/scheduler"
	"hr_contract_notifier/internal/infra/telegram"
	"hr_contract_notifier/internal/wire"

	"github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("HR Contract Notifier starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":    cfg.Environment,
		"threshold_days": cfg.ExpiryThresholdDays,
		"admin_bot":      cfg.AdminBotEnabled(),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	w, err := wire.New(cfg, db, cfg.AdminBotEnabled(), nil)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not build application components")
	}
	w.LogChannels(mainLogger)

	// Lifecycle queue worker
	queueDone := make(chan struct{})
	go func() {
		w.Queue.Run(ctx)
		close(queueDone)
	}()

	// Initialize ExpiryScheduler
	expiryScheduler, err := scheduler.NewExpiryScheduler(w.Notifications, logger.Component("scheduler"), scheduler.Options{
		ThresholdDays: cfg.ExpiryThresholdDays,
		StartupDelay:  cfg.StartupDelay,
		Interval:      cfg.ScanInterval,
		CronSpec:      cfg.CronSpecExpiryCheck,
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create expiry scheduler")
	}
	expiryScheduler.Start(ctx)

	httpapi.Start(ctx, cfg.HTTPAddr, httpapi.NewHandler(w.Queue, db, logger.Component("http")), logger.Component("http"))

	if cfg.AdminBotEnabled() {
		botLogger := logger.Component("bot")
		telegram.RegisterBotCommands(w.Bot, cfg.AdminTelegramID, cfg.ExpiryThresholdDays, botLogger)
		telegram.RegisterAdminHandlers(w.Bot, telegram.NewAdminHandlers(ctx, w.Admin, cfg.AdminTelegramID, cfg.ExpiryThresholdDays, botLogger))
		mainLogger.Info("Admin command handlers registered.")

		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go w.Bot.Start()
	} else {
		mainLogger.Info("Admin bot disabled: ADMIN_TELEGRAM_ID or CHAT_BOT_TOKEN is not set")
	}

	mainLogger.Info("Application setup complete.")

	<-ctx.Done() // Block until a signal is received
	mainLogger.Info("Shutting down application...")

	if cfg.AdminBotEnabled() {
		w.Bot.Stop()
	}
	expiryScheduler.Stop()
	<-queueDone
	// db.Close() is handled by defer
	mainLogger.Info("Application shut down gracefully.")
}

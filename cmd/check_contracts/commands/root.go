package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"hr_contract_notifier/internal/app"
	"hr_contract_notifier/internal/infra/config"
	idb "hr_contract_notifier/internal/infra/database"
	"hr_contract_notifier/internal/infra/logger"
	"hr_contract_notifier/internal/wire"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func Execute() error {
	root := &cobra.Command{
		Use:   "check_contracts [days_threshold]",
		Short: "Notify HR about contracts expiring within the threshold",
		Long: "Runs one expiry check: finds active contracts whose end date falls within\n" +
			"days_threshold days from today and sends a notification for each one\n" +
			"by email and Telegram.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load configuration: %w", err)
			}
			logger.Init(cfg)
			log := logger.Component("check_contracts")

			days := parseThreshold(args, cfg.ExpiryThresholdDays, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("could not connect to database: %w", err)
			}
			defer db.Close()

			w, err := wire.New(cfg, db, false, nil)
			if err != nil {
				return err
			}
			w.LogChannels(log)

			return runCheck(ctx, w.Notifications, days, log)
		},
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// parseThreshold reads the optional positional threshold. An invalid value is
// logged and replaced by def.
func parseThreshold(args []string, def int, log *logrus.Entry) int {
	if len(args) == 0 {
		return def
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 0 {
		log.WithField("arg", args[0]).Warnf("Invalid days threshold, using default of %d days", def)
		return def
	}
	return days
}

func runCheck(ctx context.Context, svc app.NotificationService, days int, log *logrus.Entry) error {
	log.WithField("threshold_days", days).Info("Checking for contracts expiring soon")

	summary, err := svc.CheckExpiringContracts(ctx, days)
	if err != nil {
		log.WithError(err).Error("Expiry check failed")
		return fmt.Errorf("expiry check failed: %w", err)
	}

	log.WithFields(logrus.Fields{
		"matched":   summary.Matched,
		"notified":  summary.Notified,
		"delivered": summary.Delivered,
	}).Info("Contract expiry check completed")
	return nil
}

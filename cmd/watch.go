package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paidwatch/paidwatch/internal/api"
	"github.com/paidwatch/paidwatch/internal/clock/system"
	"github.com/paidwatch/paidwatch/internal/config"
	"github.com/paidwatch/paidwatch/internal/escalate"
	"github.com/paidwatch/paidwatch/internal/fetch"
	"github.com/paidwatch/paidwatch/internal/logging"
	"github.com/paidwatch/paidwatch/internal/notify"
	"github.com/paidwatch/paidwatch/internal/roster"
	"github.com/paidwatch/paidwatch/internal/seen"
	"github.com/paidwatch/paidwatch/internal/watcher"
)

// newWatchCmd creates the 'watch' subcommand, which runs the poll loop until
// interrupted.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Starts the roster watch loop",
		Long: `Polls the configured roster categories on a fixed interval, notifying
the configured sink once per newly observed watchlist match.`,

		RunE: runWatchCommand,
	}
	return cmd
}

func runWatchCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development || debugMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watchlist := roster.ParseWatchlist(cfg.Watch.Names)
	logger.Info("paidwatch starting",
		zap.String("watching", strings.Join(watchlist.Names(), ", ")),
		zap.Int("poll_interval_minutes", cfg.Poll.IntervalMinutes),
		zap.String("state_provider", cfg.State.Provider))

	store, closeStore, err := buildSeenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init seen store: %w", err)
	}
	defer closeStore()

	notifier := buildNotifier(cfg, logger)

	fetcher, err := fetch.NewClient(fetch.Config{
		SearchURL:   cfg.Source.SearchURL,
		UserAgent:   cfg.Source.UserAgent,
		Timeout:     cfg.SourceTimeout(),
		InsecureTLS: cfg.Source.InsecureTLS,
	}, logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}

	escalator := escalate.New(system.New(), notifier, cfg.EscalationCooldown(), logger)

	w := watcher.New(
		fetcher,
		store,
		notifier,
		escalator,
		watchlist,
		watcher.DefaultCategories,
		cfg.PollInterval(),
		logger,
	)

	if cfg.Server.Enabled {
		srv := api.NewServer(w, cfg.Server.Port, logger)
		go func() {
			if serr := srv.Run(ctx); serr != nil {
				logger.Error("Ops server failed", zap.Error(serr))
			}
		}()
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run watcher: %w", err)
	}

	logger.Info("Watch loop stopped.")
	return nil
}

// buildSeenStore selects the persistence provider from configuration.
func buildSeenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (watcher.SeenStore, func(), error) {
	switch cfg.State.Provider {
	case "postgres":
		logger.Info("Using Postgres seen store", zap.String("table", cfg.State.Postgres.Table))
		store, err := seen.NewPostgresStore(ctx, seen.PostgresConfig{
			DSN:   cfg.State.Postgres.DSN,
			Table: cfg.State.Postgres.Table,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "file":
		logger.Info("Using file seen store", zap.String("path", cfg.State.File))
		store, err := seen.NewFileStore(cfg.State.File, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown state provider: %s", cfg.State.Provider)
	}
}

// buildNotifier selects the sink: webhook when configured, log otherwise.
func buildNotifier(cfg config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.Notify.WebhookURL == "" {
		logger.Warn("No webhook configured; notifications will be logged only")
		return notify.NewLogNotifier(logger)
	}
	n, err := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, logger)
	if err != nil {
		logger.Warn("Webhook misconfigured; falling back to log notifications", zap.Error(err))
		return notify.NewLogNotifier(logger)
	}
	logger.Info("Webhook notifications configured")
	return n
}

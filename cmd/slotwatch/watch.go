package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slotwatch/slotwatch/internal/api"
	"github.com/slotwatch/slotwatch/internal/api/handler"
	"github.com/slotwatch/slotwatch/internal/config"
	"github.com/slotwatch/slotwatch/internal/metrics"
	"github.com/slotwatch/slotwatch/internal/notify"
	"github.com/slotwatch/slotwatch/internal/provider"
	"github.com/slotwatch/slotwatch/internal/queue"
	"github.com/slotwatch/slotwatch/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// newLogger builds the process-wide zap logger.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// watchCmd starts the watcher.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Start watching the configured services",
	Long: `Start the watcher.

For every configured service a poller fetches the current set of free
slots on its own interval and notifies the service's sinks when the set
changes. Poll and delivery failures are reported through the admin
channel. When a listen address is configured, an ops HTTP server exposes
health, status, and Prometheus metrics endpoints.

The watcher runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  slotwatch watch -c config.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = watchCmd.MarkFlagRequired("config")
	watchCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
}

func runWatch(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Info("config loaded",
		zap.Int("services", len(cfg.Services)),
		zap.Int("sinks", len(cfg.Sinks)),
	)

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	adminQ := queue.NewFIFO()
	m := metrics.New(reg, adminQ.Len)
	sender := notify.NewAdminSender(adminQ)

	registry, err := notify.NewRegistry(cfg.Sinks)
	if err != nil {
		return fmt.Errorf("failed to build sinks: %w", err)
	}
	adminSub, err := registry.Resolve(cfg.AdminNotify)
	if err != nil {
		return fmt.Errorf("failed to resolve admin sinks: %w", err)
	}
	admin := notify.NewAdmin(adminSub, adminQ, logger, m.AdminRelayHook())

	// ---- pollers ----
	hooks := m.WorkerHooks()
	workers := make([]*worker.Worker, 0, len(cfg.Services))
	statuses := make([]handler.ServiceStatus, 0, len(cfg.Services))
	for _, svc := range cfg.Services {
		prov, err := provider.New(svc)
		if err != nil {
			return fmt.Errorf("service %q: %w", svc.Title, err)
		}
		sub, err := registry.Resolve(svc.Notify)
		if err != nil {
			return fmt.Errorf("service %q: %w", svc.Title, err)
		}
		workers = append(workers, worker.New(
			svc.Title, svc.Interval, prov, sub, sender,
			logger.With(zap.String("service", svc.Title)),
			hooks,
		))
		statuses = append(statuses, handler.ServiceStatus{
			Title:    svc.Title,
			Source:   prov.Source(),
			Interval: svc.Interval,
			Sinks:    svc.Notify,
		})
	}

	coord := worker.NewCoordinator(worker.NewPool(workers), admin, sender, logger)
	coord.Start(context.Background())
	sender.Send("app", fmt.Sprintf("slotwatch started, watching %d services", len(workers)))

	// ---- ops HTTP server (optional) ----
	var srv *http.Server
	if cfg.Listen != "" {
		srv = &http.Server{
			Addr:    cfg.Listen,
			Handler: api.NewRouter(statuses, adminQ.Len, reg, version, logger),
		}
		// Start server in a goroutine so it does not block the shutdown listener.
		go func() {
			logger.Info("ops server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("ops server error", zap.Error(err))
			}
		}()
	}

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("ops server shutdown error", zap.Error(err))
		}
	}

	// 2. Stop the pollers, then flush the admin channel, in that order.
	coord.Shutdown()

	logger.Info("watcher stopped cleanly")
	return nil
}

// Package cmd implements the annwatch command line interface.
package cmd

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

	"github.com/yang208115/annwatch/internal/api"
	"github.com/yang208115/annwatch/internal/app"
	"github.com/yang208115/annwatch/internal/config"
	"github.com/yang208115/annwatch/internal/logging"
)

var (
	cfgFile    string
	daemonMode bool
)

var rootCmd = &cobra.Command{
	Use:   "annwatch",
	Short: "Watch a government announcement page for new notices",
	Long: `annwatch fetches a government announcement listing page, extracts the
notices matching the configured keywords, and reports anything not seen
before. By default it performs a single check; with --daemon it keeps
checking on an interval until interrupted.`,
	SilenceUsage: true,
	RunE:         runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (optional, defaults apply)")
	rootCmd.Flags().BoolVar(&daemonMode, "daemon", false, "run the periodic watch loop instead of a single check")
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Storage.LogFile)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	reg := prometheus.NewRegistry()
	a, err := app.New(cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Checker.Run(ctx); err != nil {
		return err
	}

	if !daemonMode {
		// A failed cycle is recovered within the cycle; only the daemon's
		// failure ceiling and a failed self-check exit non-zero.
		if err := a.Watcher.RunOnce(ctx); err != nil {
			logger.Error("check cycle failed", zap.Error(err))
		}
		return nil
	}

	if cfg.Server.Enabled {
		shutdown := startStatusServer(a, reg, cfg.Server.Port, logger)
		defer shutdown()
	}

	return a.Watcher.Run(ctx)
}

// startStatusServer serves the status endpoints in the background and
// returns the function that stops them.
func startStatusServer(a *app.App, reg *prometheus.Registry, port int, logger *zap.Logger) func() {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           api.New(a.Store, reg, logger.Named("api")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("status server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("status server shutdown", zap.Error(err))
		}
	}
}

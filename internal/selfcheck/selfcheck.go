// Package selfcheck runs the startup health checks: configuration sanity,
// writable storage paths, target reachability and the notification channel.
package selfcheck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/config"
	"github.com/yang208115/annwatch/internal/watch"
)

type check struct {
	name string
	run  func(ctx context.Context) error
	// warnOnly checks log their failure but never fail the run.
	warnOnly bool
}

// Runner executes the startup checks in order.
type Runner struct {
	cfg      config.Config
	fetcher  watch.Fetcher
	notifier watch.Notifier
	clock    watch.Clock
	logger   *zap.Logger
}

// New builds a Runner.
func New(cfg config.Config, fetcher watch.Fetcher, notifier watch.Notifier, clk watch.Clock, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, fetcher: fetcher, notifier: notifier, clock: clk, logger: logger}
}

// Run executes every check and returns an error naming the ones that
// failed. Warn-only checks (the notification probe) never fail the run.
func (r *Runner) Run(ctx context.Context) error {
	checks := []check{
		{name: "config", run: r.checkConfig},
		{name: "data directory", run: func(context.Context) error { return r.checkWritableDir(r.cfg.Storage.DataFile) }},
		{name: "log directory", run: func(context.Context) error { return r.checkWritableDir(r.cfg.Storage.LogFile) }},
		{name: "target reachability", run: r.checkTarget},
		{name: "notification channel", run: r.checkNotification, warnOnly: true},
	}

	var failed []string
	for _, c := range checks {
		if err := c.run(ctx); err != nil {
			if c.warnOnly {
				r.logger.Warn("self-check degraded",
					zap.String("check", c.name), zap.Error(err))
				continue
			}
			r.logger.Error("self-check failed",
				zap.String("check", c.name), zap.Error(err))
			failed = append(failed, c.name)
			continue
		}
		r.logger.Info("self-check passed", zap.String("check", c.name))
	}

	if len(failed) > 0 {
		return fmt.Errorf("self-check failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (r *Runner) checkConfig(context.Context) error {
	return r.cfg.Validate()
}

// checkWritableDir proves the parent directory of path accepts writes by
// creating and removing a probe file. An empty path is not configured and
// passes trivially.
func (r *Runner) checkWritableDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		return fmt.Errorf("write probe in %s: %w", dir, err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("remove probe in %s: %w", dir, err)
	}
	return nil
}

// checkTarget fetches the listing page, retrying per the configured probe
// policy before giving up.
func (r *Runner) checkTarget(ctx context.Context) error {
	attempts := r.cfg.HTTP.Retries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		_, err := r.fetcher.Fetch(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts {
			if err := r.clock.Sleep(ctx, r.cfg.ProbeDelay()); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("target unreachable after %d attempts: %w", attempts, lastErr)
}

func (r *Runner) checkNotification(context.Context) error {
	if !r.notifier.NotifySystem("自检", "通知渠道工作正常") {
		return fmt.Errorf("desktop notification did not deliver")
	}
	return nil
}

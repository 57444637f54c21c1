// Package app wires the watcher components from configuration.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/clock/system"
	"github.com/yang208115/annwatch/internal/config"
	"github.com/yang208115/annwatch/internal/daemon"
	collyfetcher "github.com/yang208115/annwatch/internal/fetcher/colly"
	"github.com/yang208115/annwatch/internal/metrics"
	"github.com/yang208115/annwatch/internal/notify"
	"github.com/yang208115/annwatch/internal/parser"
	"github.com/yang208115/annwatch/internal/selfcheck"
	"github.com/yang208115/annwatch/internal/store"
	"github.com/yang208115/annwatch/internal/watch"
)

// App holds the assembled components of one watcher process.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Clock    watch.Clock
	Fetcher  watch.Fetcher
	Parser   watch.Parser
	Store    watch.Store
	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
	Watcher  *daemon.Watcher
	Checker  *selfcheck.Runner
}

// New assembles the application. A nil registerer falls back to the default
// Prometheus registry.
func New(cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clk := system.New()

	fetcher := collyfetcher.New(collyfetcher.Config{
		URL:     cfg.Target.URL,
		Timeout: cfg.Timeout(),
		Headers: cfg.HTTP.Headers,
	}, logger.Named("fetcher"))

	classifier := parser.NewKeywordClassifier(cfg.Watch.Keywords)
	p, err := parser.New(cfg.Target.URL, classifier, cfg.Watch.DateFormat, clk, logger.Named("parser"))
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.Storage.DataFile, logger.Named("store"))
	notifier := buildNotifier(cfg, logger.Named("notify"))
	m := metrics.New(reg)

	watcher := daemon.New(fetcher, p, st, notifier, clk, m, daemon.Config{
		Interval:         cfg.CheckInterval(),
		MaxAnnouncements: cfg.Watch.MaxAnnouncements,
		DateFormat:       cfg.Watch.DateFormat,
	}, logger.Named("daemon"))

	checker := selfcheck.New(cfg, fetcher, notifier, clk, logger.Named("selfcheck"))

	return &App{
		Config:   cfg,
		Logger:   logger,
		Clock:    clk,
		Fetcher:  fetcher,
		Parser:   p,
		Store:    st,
		Notifier: notifier,
		Metrics:  m,
		Watcher:  watcher,
		Checker:  checker,
	}, nil
}

// Close flushes buffered log entries.
func (a *App) Close() {
	_ = a.Logger.Sync()
}

func buildNotifier(cfg config.Config, logger *zap.Logger) *notify.Notifier {
	var desktop notify.Deliverer
	if cfg.Notify.DesktopEnabled {
		desktop = notify.NewDesktopDeliverer("annwatch")
	}

	var extras []notify.Deliverer
	if cfg.Notify.EmailEnabled {
		extras = append(extras, notify.NewEmailDeliverer(notify.EmailConfig{
			Server:   cfg.Notify.SMTPServer,
			Port:     cfg.Notify.SMTPPort,
			User:     cfg.Notify.SMTPUser,
			Password: cfg.Notify.SMTPPassword,
			From:     cfg.Notify.EmailFrom,
			To:       cfg.Notify.EmailTo,
		}))
	}
	if cfg.Notify.WebhookEnabled {
		extras = append(extras, notify.NewWebhookDeliverer(cfg.Notify.WebhookURL, cfg.Timeout()))
	}

	return notify.New(desktop, extras, logger)
}

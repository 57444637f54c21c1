// Package daemon drives the periodic check loop: fetch the listing page,
// parse it, diff against persisted state, notify on anything new, and
// persist the merged state.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/diff"
	"github.com/yang208115/annwatch/internal/metrics"
	"github.com/yang208115/annwatch/internal/store"
	"github.com/yang208115/annwatch/internal/watch"
)

const (
	// maxConsecutiveFailures is the ceiling after which the loop gives up
	// instead of backing off again.
	maxConsecutiveFailures = 5

	// Network failures back off linearly per consecutive failure, capped.
	networkBackoffStep = 60 * time.Second
	networkBackoffCap  = 300 * time.Second

	// Everything else gets a flat delay before the next attempt.
	runtimeBackoff = 60 * time.Second
)

// Config carries the loop parameters.
type Config struct {
	// Interval between successful checks.
	Interval time.Duration
	// MaxAnnouncements bounds the persisted history; oldest entries are
	// evicted first.
	MaxAnnouncements int
	// DateFormat renders the last-check timestamp in the state file.
	DateFormat string
}

// Watcher owns one watch loop over a single listing page.
type Watcher struct {
	fetcher  watch.Fetcher
	parser   watch.Parser
	store    watch.Store
	notifier watch.Notifier
	clock    watch.Clock
	metrics  *metrics.Metrics
	cfg      Config
	logger   *zap.Logger
}

// New wires a Watcher from its collaborators.
func New(
	fetcher watch.Fetcher,
	parser watch.Parser,
	st watch.Store,
	notifier watch.Notifier,
	clk watch.Clock,
	m *metrics.Metrics,
	cfg Config,
	logger *zap.Logger,
) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		fetcher:  fetcher,
		parser:   parser,
		store:    st,
		notifier: notifier,
		clock:    clk,
		metrics:  m,
		cfg:      cfg,
		logger:   logger,
	}
}

// RunOnce performs a single check cycle. Fetch failures abort the cycle and
// are returned; a failed state save is logged but does not fail the cycle,
// since the next fetch re-derives everything except the dedupe history.
func (w *Watcher) RunOnce(ctx context.Context) error {
	markup, err := w.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	current := w.parser.Parse(markup)
	if len(current) == 0 {
		w.logger.Warn("page yielded no matching announcements")
	}

	state := w.store.Load()
	fresh := diff.NewAnnouncements(current, state)
	if len(fresh) > 0 {
		w.notifier.Notify(fresh)
		if w.metrics != nil {
			w.metrics.NewAnnouncements.Add(float64(len(fresh)))
		}
	} else {
		w.logger.Info("no new announcements")
	}

	state.Announcements = store.Evict(append(state.Announcements, fresh...), w.cfg.MaxAnnouncements)
	state.LastCheck = w.clock.Now().Format(w.cfg.DateFormat)
	state.TotalCount = len(state.Announcements)

	if err := w.store.Save(state); err != nil {
		w.logger.Error("failed to persist state", zap.Error(err))
	}

	if w.metrics != nil {
		w.metrics.CheckCycles.Inc()
		w.metrics.StoredTotal.Set(float64(len(state.Announcements)))
		w.metrics.LastCheckTime.Set(float64(w.clock.Now().Unix()))
	}
	return nil
}

// Run executes check cycles until the context is cancelled or the
// consecutive-failure ceiling is hit. Cancellation is a clean shutdown
// returning nil; the ceiling returns watch.ErrTooManyFailures.
func (w *Watcher) Run(ctx context.Context) error {
	w.notifier.NotifySystem("通知监控", "开始监控公告更新")
	w.logger.Info("watch loop started",
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("max_announcements", w.cfg.MaxAnnouncements),
	)

	consecutive := 0
	for {
		if ctx.Err() != nil {
			return w.shutdown()
		}

		if err := w.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return w.shutdown()
			}

			consecutive++
			kind := failureKind(err)
			w.logger.Error("check cycle failed",
				zap.Int("consecutive_failures", consecutive),
				zap.String("kind", kind),
				zap.Error(err),
			)
			if w.metrics != nil {
				w.metrics.CheckFailures.WithLabelValues(kind).Inc()
			}

			if consecutive >= maxConsecutiveFailures {
				w.logger.Error("failure ceiling reached, giving up",
					zap.Int("consecutive_failures", consecutive))
				return watch.ErrTooManyFailures
			}

			delay := backoffFor(err, consecutive)
			w.logger.Info("backing off before retry", zap.Duration("delay", delay))
			if err := w.clock.Sleep(ctx, delay); err != nil {
				return w.shutdown()
			}
			continue
		}

		consecutive = 0
		if err := w.clock.Sleep(ctx, w.cfg.Interval); err != nil {
			return w.shutdown()
		}
	}
}

func (w *Watcher) shutdown() error {
	w.notifier.NotifySystem("监控停止", "公告监控已停止")
	w.logger.Info("watch loop stopped")
	return nil
}

// backoffFor picks the retry delay: network failures escalate with the
// consecutive count, everything else waits a flat interval.
func backoffFor(err error, consecutive int) time.Duration {
	if watch.IsNetworkError(err) {
		delay := networkBackoffStep * time.Duration(consecutive)
		if delay > networkBackoffCap {
			delay = networkBackoffCap
		}
		return delay
	}
	return runtimeBackoff
}

func failureKind(err error) string {
	if watch.IsNetworkError(err) {
		return "network"
	}
	return "runtime"
}

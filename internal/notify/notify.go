// Package notify formats and dispatches operator alerts for newly seen
// announcements. Delivery channels sit behind the Deliverer interface; the
// log record of each announcement is written before any dispatch so a
// failed channel never hides a new notice.
package notify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/watch"
)

// titleCap bounds the single-announcement message body.
const titleCap = 100

// Deliverer pushes a short message through one outbound channel.
type Deliverer interface {
	Name() string
	Deliver(title, message string) error
}

// Notifier fans alerts out to the configured channels. The desktop channel
// is the primary one; its outcome is the return value of Notify. Extra
// channels (email, webhook) are best-effort.
type Notifier struct {
	desktop Deliverer // nil when disabled
	extras  []Deliverer
	logger  *zap.Logger
}

// New builds a Notifier.
func New(desktop Deliverer, extras []Deliverer, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{desktop: desktop, extras: extras, logger: logger}
}

// Notify reports the new records. An empty input is a no-op returning
// false. The returned flag reflects desktop delivery only; log visibility
// does not depend on it.
func (n *Notifier) Notify(newRecords []watch.Announcement) bool {
	if len(newRecords) == 0 {
		return false
	}

	n.logger.Info("new announcements detected", zap.Int("count", len(newRecords)))
	for _, record := range newRecords {
		n.logger.Info("new announcement",
			zap.String("title", record.Title),
			zap.String("url", record.URL),
		)
	}

	title := fmt.Sprintf("新通知 (%d条)", len(newRecords))
	var message string
	if len(newRecords) == 1 {
		message = truncateRunes(newRecords[0].Title, titleCap)
	} else {
		message = fmt.Sprintf("发现%d条新通知，请查看日志获取详情", len(newRecords))
	}

	delivered := n.deliverDesktop(title, message)
	for _, extra := range n.extras {
		if err := extra.Deliver(title, message); err != nil {
			n.logger.Warn("notification channel failed",
				zap.String("channel", extra.Name()), zap.Error(err))
		}
	}
	return delivered
}

// NotifySystem sends a plain operational notice (startup, shutdown) through
// the desktop channel only.
func (n *Notifier) NotifySystem(title, message string) bool {
	return n.deliverDesktop(title, message)
}

func (n *Notifier) deliverDesktop(title, message string) bool {
	if n.desktop == nil {
		return false
	}
	if err := n.desktop.Deliver(title, message); err != nil {
		n.logger.Warn("desktop notification failed", zap.Error(err))
		return false
	}
	return true
}

// truncateRunes shortens s to at most max runes, multibyte-safe.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

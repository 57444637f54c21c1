// Package system provides a real clock implementation.
package system

import (
	"context"
	"time"
)

// Clock implements watch.Clock using the wall clock.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current local time. Stored timestamps follow the host
// timezone, matching the persisted file format.
func (Clock) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func (Clock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

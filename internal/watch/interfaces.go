package watch

import (
	"context"
	"time"
)

// Fetcher retrieves the raw markup of the listing page. A failed fetch
// returns a *FetchError; retry policy belongs to the caller, not here.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Parser extracts announcement candidates from raw markup. It never fails:
// malformed markup or zero candidates yields an empty slice.
type Parser interface {
	Parse(markup []byte) []Announcement
}

// Store loads and persists the seen-announcement state.
//
// Load degrades to an empty state on a missing or unreadable file. Save
// failures are returned for the caller to log; the next cycle fetches
// regardless of the save outcome.
type Store interface {
	Load() State
	Save(state State) error
}

// Notifier reports newly seen announcements to the operator. Notify returns
// the desktop delivery flag; an empty input is a no-op returning false.
type Notifier interface {
	Notify(newRecords []Announcement) bool
	NotifySystem(title, message string) bool
}

// Clock abstracts time and interruptible sleeping for the daemon loop.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

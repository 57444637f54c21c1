// Package watch holds the domain types, component interfaces and error
// taxonomy shared by the announcement watcher pipeline.
package watch

// Announcement is one detected notice entry on the listing page.
//
// ID is a content-derived fingerprint of (title, resolved URL) and is the
// sole uniqueness key. Persisted records are never mutated, only appended
// and eventually evicted.
type Announcement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	ScrapedAt string `json:"scraped_at"`
	IsNew     bool   `json:"is_new"`
}

// State is the persisted collection of previously seen announcements,
// ordered oldest to newest. It is owned exclusively by the Store for the
// process lifetime; callers only hold per-cycle snapshots.
type State struct {
	Announcements []Announcement `json:"announcements"`
	LastCheck     string         `json:"last_check"`
	TotalCount    int            `json:"total_count"`
}

// NewState returns an empty baseline state.
func NewState() State {
	return State{Announcements: []Announcement{}}
}

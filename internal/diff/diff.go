// Package diff computes the newly seen subset of parsed announcements.
package diff

import "github.com/yang208115/annwatch/internal/watch"

// NewAnnouncements returns the records in current whose identifier is not
// present in the existing state, preserving the order of current. It is a
// pure function: no I/O, no mutation of either input.
func NewAnnouncements(current []watch.Announcement, existing watch.State) []watch.Announcement {
	seen := make(map[string]struct{}, len(existing.Announcements))
	for _, a := range existing.Announcements {
		seen[a.ID] = struct{}{}
	}

	var fresh []watch.Announcement
	for _, a := range current {
		if _, ok := seen[a.ID]; !ok {
			fresh = append(fresh, a)
		}
	}
	return fresh
}

// Package store persists the seen-announcement state as a JSON file.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/watch"
)

// FileStore owns the persisted state file. Writes go through a temp file
// and a rename so a concurrently launched single-shot invocation never
// observes a torn document.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// New builds a FileStore rooted at path.
func New(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Load reads the persisted state. A missing file or an undecodable document
// yields a fresh empty state instead of failing the cycle.
func (s *FileStore) Load() watch.State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("state file not found, starting fresh", zap.String("path", s.path))
		} else {
			s.logger.Warn("state file unreadable, starting fresh",
				zap.String("path", s.path), zap.Error(err))
		}
		return watch.NewState()
	}

	var state watch.State
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("state file undecodable, starting fresh",
			zap.String("path", s.path), zap.Error(err))
		return watch.NewState()
	}
	if state.Announcements == nil {
		state.Announcements = []watch.Announcement{}
	}
	return state
}

// Save persists the state atomically, creating parent directories as
// needed. Failures are returned for the caller to log; they are not fatal
// to the watch loop.
func (s *FileStore) Save(state watch.State) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &watch.StoreError{Op: "write", Path: s.path, Err: err}
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &watch.StoreError{Op: "write", Path: s.path, Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &watch.StoreError{Op: "write", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &watch.StoreError{Op: "write", Path: s.path, Err: err}
	}

	s.logger.Debug("state saved",
		zap.String("path", s.path),
		zap.Int("announcements", len(state.Announcements)),
	)
	return nil
}

// Evict keeps only the last max entries by insertion order, dropping the
// oldest first.
func Evict(announcements []watch.Announcement, max int) []watch.Announcement {
	if max <= 0 || len(announcements) <= max {
		return announcements
	}
	return announcements[len(announcements)-max:]
}

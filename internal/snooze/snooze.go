// Package snooze persists per-project reminder suppression in a JSON file
// mapping project keys to the time reminders may resume.
package snooze

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dori/airtrack/internal/fsutil"
	"github.com/rs/zerolog"
)

// Options are the durations offered when snoozing, in minutes
var Options = []int{15, 30, 60, 120, 240}

// DefaultMinutes is the pre-selected snooze option
const DefaultMinutes = 30

// timestamps without a zone, as written by older versions
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Store maps project keys to wake times. Every change rewrites the file.
type Store struct {
	path    string
	log     zerolog.Logger
	mu      sync.Mutex
	entries map[string]time.Time
}

// Open loads path if it exists. A file that cannot be parsed is logged and
// treated as empty; it is overwritten on the next change.
func Open(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		log:     log,
		entries: make(map[string]time.Time),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snooze file: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Error().Err(err).Str("path", path).Msg("snooze file unreadable, starting empty")
		return s, nil
	}
	for key, v := range raw {
		until, err := parseTimestamp(v)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping snooze entry")
			continue
		}
		s.entries[key] = until
	}
	return s, nil
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Snooze suppresses key until now+d and persists the map
func (s *Store) Snooze(key string, d time.Duration, now time.Time) (time.Time, error) {
	if d <= 0 {
		return time.Time{}, fmt.Errorf("snooze duration must be positive")
	}
	until := now.Add(d)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.entries[key]
	s.entries[key] = until
	if err := s.saveLocked(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return time.Time{}, err
	}
	return until, nil
}

// Suppressed reports whether key is snoozed at now. An expired entry is
// removed and the file rewritten.
func (s *Store) Suppressed(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.entries[key]
	if !ok {
		return false
	}
	if now.Before(until) {
		return true
	}

	delete(s.entries, key)
	if err := s.saveLocked(); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to persist expired snooze")
	}
	return false
}

// Until returns the wake time for key, if any
func (s *Store) Until(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.entries[key]
	return t, ok
}

// Remove drops key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.saveLocked()
}

// Clear drops every entry
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]time.Time)
	return s.saveLocked()
}

// Rekey moves entries whose key appears in mapping to the mapped key.
// Used once at startup to convert name_date_time keys to row ids.
func (s *Store) Rekey(mapping map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for old, until := range s.entries {
		next, ok := mapping[old]
		if !ok || next == old {
			continue
		}
		delete(s.entries, old)
		if cur, exists := s.entries[next]; !exists || until.After(cur) {
			s.entries[next] = until
		}
		moved++
	}
	if moved == 0 {
		return 0, nil
	}
	return moved, s.saveLocked()
}

// Entries returns a copy of the map
func (s *Store) Entries() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Len returns the number of stored entries, expired or not
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) saveLocked() error {
	raw := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		raw[k] = v.Format(time.RFC3339)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := fsutil.WriteAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to save snooze data: %w", err)
	}
	return nil
}

func parseTimestamp(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

package snooze

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snooze_data.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestSnoozeSuppressesUntilExpiry(t *testing.T) {
	s := openTemp(t)
	now := time.Date(2025, 1, 1, 9, 1, 0, 0, time.UTC)

	until, err := s.Snooze("p1", 30*time.Minute, now)
	if err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	if !until.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("until = %v", until)
	}

	if !s.Suppressed("p1", now.Add(29*time.Minute)) {
		t.Fatal("should be suppressed before expiry")
	}
	if s.Suppressed("p1", until) {
		t.Fatal("should not be suppressed at expiry")
	}
	if _, ok := s.Until("p1"); ok {
		t.Fatal("expired entry should be evicted")
	}
	if s.Suppressed("other", now) {
		t.Fatal("unknown key is never suppressed")
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snooze_data.json")
	s, _ := Open(path, zerolog.Nop())
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	if _, err := s.Snooze("p1", time.Hour, now); err != nil {
		t.Fatal(err)
	}

	// File is a plain object of key -> ISO-8601 timestamp
	var raw map[string]string
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("file is not a JSON object: %v", err)
	}
	if raw["p1"] != "2025-01-01T10:00:00Z" {
		t.Fatalf("stored timestamp = %q", raw["p1"])
	}

	reopened, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	until, ok := reopened.Until("p1")
	if !ok || !until.Equal(now.Add(time.Hour)) {
		t.Fatalf("reloaded until = %v, %v", until, ok)
	}
}

func TestEvictionIsPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snooze_data.json")
	s, _ := Open(path, zerolog.Nop())
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s.Snooze("p1", 15*time.Minute, now)

	s.Suppressed("p1", now.Add(time.Hour))

	reopened, _ := Open(path, zerolog.Nop())
	if reopened.Len() != 0 {
		t.Fatalf("expired entry still on disk: %v", reopened.Entries())
	}
}

func TestAcceptsNaiveTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snooze_data.json")
	content := `{"Foo_2025-01-01_09:00": "2025-01-01T09:30:00.123456", "bad": "tomorrow"}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	until, ok := s.Until("Foo_2025-01-01_09:00")
	if !ok {
		t.Fatal("naive timestamp was not loaded")
	}
	want := time.Date(2025, 1, 1, 9, 30, 0, 123456000, time.Local)
	if !until.Equal(want) {
		t.Fatalf("until = %v, want %v", until, want)
	}
	if s.Len() != 1 {
		t.Fatalf("bad entry should be skipped, got %d entries", s.Len())
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snooze_data.json")
	os.WriteFile(path, []byte("{not json"), 0o600)

	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Len() != 0 {
		t.Fatal("expected empty store")
	}
}

func TestRemoveClearRekey(t *testing.T) {
	s := openTemp(t)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	s.Snooze("Foo_2025-01-01_09:00", time.Hour, now)
	s.Snooze("Bar__", time.Hour, now)

	moved, err := s.Rekey(map[string]string{"Foo_2025-01-01_09:00": "id-foo"})
	if err != nil || moved != 1 {
		t.Fatalf("Rekey = %d, %v", moved, err)
	}
	if _, ok := s.Until("id-foo"); !ok {
		t.Fatal("entry not moved to new key")
	}

	if err := s.Remove("id-foo"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("missing"); err != nil {
		t.Fatalf("Remove(missing) = %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
	if err := s.Clear(); err != nil || s.Len() != 0 {
		t.Fatalf("Clear = %v, len %d", err, s.Len())
	}
}

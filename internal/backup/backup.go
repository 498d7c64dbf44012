// Package backup copies the data, password and snooze files into
// timestamped files under the backups directory.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dori/airtrack/internal/fsutil"
	"github.com/rs/zerolog"
)

// TimestampLayout is the suffix format of every backup file
const TimestampLayout = "20060102_150405"

// Sources are the files a backup captures. Missing files are skipped.
type Sources struct {
	Data     string
	Password string
	Snooze   string
}

// Backup describes one backup run
type Backup struct {
	Time  time.Time
	Files []string
}

type Manager struct {
	dir string
	src Sources
	log zerolog.Logger

	mu   sync.Mutex
	last time.Time
}

func NewManager(dir string, src Sources, log zerolog.Logger) *Manager {
	m := &Manager{dir: dir, src: src, log: log}
	if list, err := m.List(); err == nil && len(list) > 0 {
		m.last = list[0].Time
	}
	return m
}

// Dir returns the backups directory
func (m *Manager) Dir() string {
	return m.dir
}

// Create copies every existing source into the backups directory
func (m *Manager) Create(now time.Time) (Backup, error) {
	ts := now.Format(TimestampLayout)
	targets := []struct{ src, dst string }{
		{m.src.Data, filepath.Join(m.dir, "backup_"+ts+".xlsx")},
		{m.src.Password, filepath.Join(m.dir, "security", "password_backup_"+ts+".txt")},
		{m.src.Snooze, filepath.Join(m.dir, "snooze_backup_"+ts+".json")},
	}

	b := Backup{Time: now}
	for _, t := range targets {
		if t.src == "" || !fsutil.Exists(t.src) {
			continue
		}
		if err := fsutil.CopyFile(t.src, t.dst); err != nil {
			return b, fmt.Errorf("failed to back up %s: %w", filepath.Base(t.src), err)
		}
		b.Files = append(b.Files, t.dst)
	}
	if len(b.Files) == 0 {
		return b, fmt.Errorf("nothing to back up")
	}

	m.mu.Lock()
	m.last = now
	m.mu.Unlock()

	m.log.Info().Int("files", len(b.Files)).Str("timestamp", ts).Msg("backup created")
	return b, nil
}

// PreserveCorrupted copies a file that failed to load to
// corrupted_backup_TS with the original extension
func (m *Manager) PreserveCorrupted(path string, now time.Time) (string, error) {
	dst := filepath.Join(m.dir, "corrupted_backup_"+now.Format(TimestampLayout)+filepath.Ext(path))
	if err := fsutil.CopyFile(path, dst); err != nil {
		return "", fmt.Errorf("failed to preserve corrupted file: %w", err)
	}
	m.log.Warn().Str("path", path).Str("backup", dst).Msg("corrupted file preserved")
	return dst, nil
}

// Last returns the time of the newest backup, zero if none
func (m *Manager) Last() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Due reports whether interval has passed since the last backup
func (m *Manager) Due(now time.Time, interval time.Duration) bool {
	last := m.Last()
	return last.IsZero() || now.Sub(last) >= interval
}

// List returns backups newest first. Each entry holds the data copy and
// the password and snooze copies taken at the same time, when present.
func (m *Manager) List() ([]Backup, error) {
	matches, err := filepath.Glob(filepath.Join(m.dir, "backup_*.xlsx"))
	if err != nil {
		return nil, err
	}
	var out []Backup
	for _, path := range matches {
		ts := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "backup_"), ".xlsx")
		t, err := time.ParseInLocation(TimestampLayout, ts, time.Local)
		if err != nil {
			continue
		}
		b := Backup{Time: t, Files: []string{path}}
		for _, sibling := range []string{
			filepath.Join(m.dir, "security", "password_backup_"+ts+".txt"),
			filepath.Join(m.dir, "snooze_backup_"+ts+".json"),
		} {
			if fsutil.Exists(sibling) {
				b.Files = append(b.Files, sibling)
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

// AutoOptions configures Run
type AutoOptions struct {
	Interval time.Duration // time between backups
	Check    time.Duration // how often to look
	Enabled  func() bool
	Before   func() error // flushes the data file first
	After    func(Backup)
	Now      func() time.Time
}

// Run performs automatic backups until ctx is cancelled. Failures are
// logged and retried on the next check.
func (m *Manager) Run(ctx context.Context, opts AutoOptions) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ticker := time.NewTicker(opts.Check)
	defer ticker.Stop()

	m.log.Debug().Dur("interval", opts.Interval).Dur("check", opts.Check).Msg("auto-backup started")

	for {
		select {
		case <-ctx.Done():
			m.log.Debug().Msg("auto-backup stopped")
			return
		case <-ticker.C:
			m.tick(opts)
		}
	}
}

func (m *Manager) tick(opts AutoOptions) {
	if opts.Enabled != nil && !opts.Enabled() {
		return
	}
	now := opts.Now()
	if !m.Due(now, opts.Interval) {
		return
	}
	if opts.Before != nil {
		if err := opts.Before(); err != nil {
			m.log.Error().Err(err).Msg("auto-backup: flush failed")
			return
		}
	}
	b, err := m.Create(now)
	if err != nil {
		m.log.Error().Err(err).Msg("auto-backup failed")
		return
	}
	if opts.After != nil {
		opts.After(b)
	}
}

// Prune deletes every backup beyond the newest keep and returns how many
// backups were removed
func (m *Manager) Prune(keep int) (int, error) {
	list, err := m.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, b := range list[min(keep, len(list)):] {
		for _, f := range b.Files {
			if err := os.Remove(f); err != nil {
				return removed, err
			}
		}
		removed++
	}
	return removed, nil
}

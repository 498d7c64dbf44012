package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dori/airtrack/internal/backup"
	"github.com/dori/airtrack/internal/fsutil"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/sheet"
	"github.com/dori/airtrack/internal/snooze"
)

// AddProject validates and stores a new project
func (a *App) AddProject(p model.Project) (model.Project, error) {
	added, err := a.Data.Add(p)
	if err != nil {
		return model.Project{}, err
	}
	a.record(model.Event{Kind: model.EventProjectAdded, ProjectID: added.ID, ProjectName: added.Name})
	return added, nil
}

// UpdateProject saves p. Moving the deadline or re-activating a project
// lets its reminder fire again.
func (a *App) UpdateProject(p model.Project) (model.Project, error) {
	prev, err := a.Data.Update(p)
	if err != nil {
		return model.Project{}, err
	}
	current, err := a.Data.Get(p.ID)
	if err != nil {
		return model.Project{}, err
	}
	if prev.DueChanged(current) || prev.Status != current.Status {
		a.Reminders.Forget(current.ID)
	}
	a.record(model.Event{Kind: model.EventProjectUpdated, ProjectID: current.ID, ProjectName: current.Name})
	return current, nil
}

// DeleteProject removes a project along with its reminder state
func (a *App) DeleteProject(id string) (model.Project, error) {
	removed, err := a.Data.Delete(id)
	if err != nil {
		return model.Project{}, err
	}
	a.Reminders.Forget(id)
	if err := a.Snoozes.Remove(id); err != nil {
		a.Log.Error().Err(err).Str("project", removed.Name).Msg("failed to drop snooze entry")
	}
	a.record(model.Event{Kind: model.EventProjectDeleted, ProjectID: removed.ID, ProjectName: removed.Name})
	return removed, nil
}

// SetProjectReminder turns one project's reminder on or off
func (a *App) SetProjectReminder(id string, enabled bool) error {
	if err := a.Data.SetReminder(id, enabled); err != nil {
		return err
	}
	if enabled {
		a.Reminders.Forget(id)
	}
	return nil
}

// DeleteAll clears the dataset together with seen and snooze state
func (a *App) DeleteAll() error {
	removed, err := a.Data.Clear()
	if err != nil {
		return err
	}
	a.Reminders.Reset()
	if err := a.Snoozes.Clear(); err != nil {
		a.Log.Error().Err(err).Msg("failed to clear snooze data")
	}

	events := make([]model.Event, 0, len(removed)+1)
	for _, p := range removed {
		events = append(events, model.Event{Kind: model.EventProjectDeleted, ProjectID: p.ID, ProjectName: p.Name})
	}
	events = append(events, model.Event{Kind: model.EventDataCleared, Detail: fmt.Sprintf("%d projects", len(removed))})
	a.recordAll(events)
	return nil
}

// SnoozeProject suppresses reminders for id for minutes. The project
// becomes eligible to fire again once the snooze expires.
func (a *App) SnoozeProject(id string, minutes int) (time.Time, error) {
	p, err := a.Data.Get(id)
	if err != nil {
		return time.Time{}, err
	}
	until, err := a.Snoozes.Snooze(id, time.Duration(minutes)*time.Minute, a.now())
	if err != nil {
		return time.Time{}, err
	}
	a.Reminders.Forget(id)
	a.record(model.Event{
		Kind: model.EventReminderSnoozed, ProjectID: id, ProjectName: p.Name,
		Detail: fmt.Sprintf("%dm", minutes),
	})
	return until, nil
}

// DismissReminder closes a reminder without snoozing it
func (a *App) DismissReminder(p model.Project) {
	a.record(model.Event{Kind: model.EventReminderDismissed, ProjectID: p.ID, ProjectName: p.Name})
}

// TestReminder sends a sample reminder through every channel
func (a *App) TestReminder() {
	now := a.now()
	p := model.NewProject("Test Project")
	p.DueDate = now.Format(model.DateLayout)
	p.DueTime = now.Format(model.TimeLayout)

	a.Notifier.Notify(p)
	a.sinkMu.RLock()
	sink := a.sink
	a.sinkMu.RUnlock()
	if sink != nil {
		sink.Notify(p)
	}
}

// Import replaces the dataset with the rows in path. On any error the
// dataset is left as it was.
func (a *App) Import(path string) (int, error) {
	format, err := sheet.FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	rows, err := sheet.Import(f, format)
	if err != nil {
		return 0, err
	}
	if err := a.Data.Replace(rows); err != nil {
		return 0, err
	}

	// ids are new, old seen/snooze state no longer refers to anything
	a.Reminders.Reset()
	if err := a.Snoozes.Clear(); err != nil {
		a.Log.Error().Err(err).Msg("failed to clear snooze data after import")
	}
	a.record(model.Event{Kind: model.EventDataImported, Detail: filepath.Base(path)})
	return len(rows), nil
}

// Export writes the dataset to path; the format follows the extension
func (a *App) Export(path string) error {
	format, err := sheet.FormatFromPath(path)
	if err != nil {
		return err
	}
	rows := a.Data.Snapshot()
	now := a.now()
	err = fsutil.WriteAtomicFunc(path, 0o644, func(w io.Writer) error {
		return sheet.Export(w, format, rows, now)
	})
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	a.record(model.Event{Kind: model.EventDataExported, Detail: filepath.Base(path)})
	return nil
}

// DefaultExportPath returns dir/Airdrop_..._TS.ext for format
func (a *App) DefaultExportPath(dir string, format sheet.Format) string {
	return filepath.Join(dir, sheet.DefaultExportName(format, a.now()))
}

// Backup saves the dataset and copies data, password and snooze files
func (a *App) Backup() (backup.Backup, error) {
	if err := a.Data.Save(); err != nil {
		return backup.Backup{}, err
	}
	b, err := a.Backups.Create(a.now())
	if err != nil {
		return b, err
	}
	a.record(model.Event{Kind: model.EventBackupCreated, Detail: "manual"})
	a.pruneBackups()
	return b, nil
}

// Stats returns dashboard numbers for now
func (a *App) Stats() model.Stats {
	return a.Data.Stats(a.now())
}

// RecentEvents returns the history log, newest first
func (a *App) RecentEvents(limit int) ([]model.Event, error) {
	return a.History.RecentEvents(limit)
}

// ProjectEvents returns the history of one project, newest first
func (a *App) ProjectEvents(id string, limit int) ([]model.Event, error) {
	return a.History.ProjectEvents(id, limit)
}

// RemindersFiredToday counts reminders delivered since local midnight
func (a *App) RemindersFiredToday() (int, error) {
	now := a.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return a.History.CountEvents(model.EventReminderFired, midnight)
}

// LockNow marks the app locked, e.g. after the idle timeout
func (a *App) LockNow() {
	a.Lock.Lock(a.now())
	a.record(model.Event{Kind: model.EventLocked})
}

// Unlock verifies password and clears the locked state
func (a *App) Unlock(password string) error {
	if err := a.Gate.Verify(password); err != nil {
		return err
	}
	a.Lock.Unlock(a.now())
	a.record(model.Event{Kind: model.EventUnlocked})
	return nil
}

// ChangePassword replaces the password after checking the current one
func (a *App) ChangePassword(current, next string) error {
	if err := a.Gate.Change(current, next); err != nil {
		return err
	}
	a.record(model.Event{Kind: model.EventPasswordChanged})
	return nil
}

// ResetPassword sets a new password using the security answer
func (a *App) ResetPassword(answer, next string) error {
	if err := a.Recovery.Reset(a.Gate, answer, next); err != nil {
		return err
	}
	a.record(model.Event{Kind: model.EventPasswordChanged, Detail: "recovery"})
	return nil
}

// Settings returns a copy of the runtime-adjustable settings
func (a *App) Settings() Settings {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()
	return Settings{
		RemindersEnabled: a.Config.Reminders.Enabled,
		SnoozeMinutes:    a.Config.Reminders.SnoozeMinutes,
		DesktopNotify:    a.Config.Reminders.Desktop,
		AutoBackup:       a.Config.Backup.Enabled,
		Theme:            a.Config.UI.Theme,
	}
}

// Settings are the options the UI can change
type Settings struct {
	RemindersEnabled bool
	SnoozeMinutes    int
	DesktopNotify    bool
	AutoBackup       bool
	Theme            string
}

// UpdateSettings writes s to the settings file and applies it once the
// write succeeds
func (a *App) UpdateSettings(s Settings) error {
	if !slices.Contains(snooze.Options, s.SnoozeMinutes) {
		return fmt.Errorf("snooze must be one of %v minutes", snooze.Options)
	}

	a.settingsMu.Lock()
	next := *a.Config
	next.Reminders.Enabled = s.RemindersEnabled
	next.Reminders.SnoozeMinutes = s.SnoozeMinutes
	next.Reminders.Desktop = s.DesktopNotify
	next.Backup.Enabled = s.AutoBackup
	next.UI.Theme = s.Theme
	if err := next.SaveSettings(); err != nil {
		a.settingsMu.Unlock()
		return err
	}
	*a.Config = next
	a.settingsMu.Unlock()

	a.Reminders.SetEnabled(s.RemindersEnabled)
	a.Notifier.SetEnabled(s.DesktopNotify)
	return nil
}

// AutoBackupEnabled is read by the backup goroutine
func (a *App) AutoBackupEnabled() bool {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()
	return a.Config.Backup.Enabled
}

// CheckIdle locks the app when the idle threshold has passed. Without a
// stored password there is nothing to unlock with, so it never locks.
func (a *App) CheckIdle() bool {
	if !a.Gate.IsSet() {
		return false
	}
	if !a.Lock.Check(a.now()) {
		return false
	}
	a.record(model.Event{Kind: model.EventLocked, Detail: "idle"})
	return true
}

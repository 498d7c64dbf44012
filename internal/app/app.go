package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dori/airtrack/internal/autolock"
	"github.com/dori/airtrack/internal/backup"
	"github.com/dori/airtrack/internal/config"
	"github.com/dori/airtrack/internal/dataset"
	"github.com/dori/airtrack/internal/db"
	"github.com/dori/airtrack/internal/logging"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/notify"
	"github.com/dori/airtrack/internal/reminder"
	"github.com/dori/airtrack/internal/security"
	"github.com/dori/airtrack/internal/snooze"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// ShutdownTimeout bounds how long Close waits for background loops
const ShutdownTimeout = 2 * time.Second

// App holds the application state and dependencies
type App struct {
	Config    *config.Config
	Paths     config.Paths
	Log       zerolog.Logger
	Data      *dataset.Dataset
	Snoozes   *snooze.Store
	Reminders *reminder.Poller
	History   *db.DB
	Backups   *backup.Manager
	Notifier  *notify.Notifier
	Lock      *autolock.Tracker
	Gate      *security.Gate
	Recovery  *security.Recovery

	lockFile *flock.Flock
	now      func() time.Time

	sinkMu sync.RWMutex
	sink   reminder.Notifier // the UI, set by Start

	settingsMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new application instance. It takes the single-instance
// lock, opens the history database, loads the dataset and snooze file.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	paths := cfg.Paths()
	if err := paths.Ensure(); err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Paths:    paths,
		Log:      log,
		Notifier: notify.NewNotifier(logging.Component(log, "notify")),
		Gate:     security.NewGate(paths.PasswordFile),
		Recovery: security.NewRecovery(paths.RecoveryFile),
		now:      time.Now,
	}
	if !cfg.Reminders.Desktop {
		app.Notifier.SetEnabled(false)
	}

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	if err := app.open(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) open() error {
	history, err := db.Open(a.Paths.HistoryDB, logging.Component(a.Log, "history"))
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	a.History = history
	a.pruneHistory()

	a.Backups = backup.NewManager(a.Paths.BackupDir, backup.Sources{
		Data:     a.Paths.DataFile,
		Password: a.Paths.PasswordFile,
		Snooze:   a.Paths.SnoozeFile,
	}, logging.Component(a.Log, "backup"))

	data, err := dataset.Open(a.Paths.DataFile, a.Backups, logging.Component(a.Log, "dataset"))
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	a.Data = data

	snoozes, err := snooze.Open(a.Paths.SnoozeFile, logging.Component(a.Log, "snooze"))
	if err != nil {
		return fmt.Errorf("failed to load snooze data: %w", err)
	}
	a.Snoozes = snoozes
	a.migrateSnoozeKeys()

	a.Reminders = reminder.New(a.Data, a.Snoozes, reminder.NotifierFunc(a.deliver), reminder.Options{
		Interval: a.Config.ReminderInterval(),
		Log:      logging.Component(a.Log, "reminder"),
	})
	a.Reminders.SetEnabled(a.Config.Reminders.Enabled)

	a.Lock = autolock.New(a.Config.IdleThreshold(), a.now())
	return nil
}

// Start launches the reminder poller and the auto-backup loop. ui receives
// due projects; it must hand them to the UI goroutine rather than act on
// them directly.
func (a *App) Start(ctx context.Context, ui reminder.Notifier) {
	a.sinkMu.Lock()
	a.sink = ui
	a.sinkMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.Reminders.Run(ctx)
	}()
	go func() {
		defer a.wg.Done()
		a.Backups.Run(ctx, backup.AutoOptions{
			Interval: a.Config.BackupInterval(),
			Check:    a.Config.BackupCheckInterval(),
			Enabled:  a.AutoBackupEnabled,
			Before:   a.Data.Save,
			After: func(b backup.Backup) {
				a.record(model.Event{Kind: model.EventBackupCreated, Detail: "automatic"})
				a.pruneBackups()
				if err := a.Notifier.SendSimple("Airdrop Tracker", "Automatic backup saved"); err != nil {
					a.Log.Warn().Err(err).Msg("desktop notification failed")
				}
			},
		})
	}()
}

// deliver runs on the poller goroutine
func (a *App) deliver(p model.Project) {
	a.record(model.Event{Kind: model.EventReminderFired, ProjectID: p.ID, ProjectName: p.Name})
	a.Notifier.Notify(p)

	a.sinkMu.RLock()
	sink := a.sink
	a.sinkMu.RUnlock()
	if sink != nil {
		sink.Notify(p)
	}
}

// migrateSnoozeKeys converts snooze entries keyed by name_date_time to
// row ids
func (a *App) migrateSnoozeKeys() {
	mapping := make(map[string]string)
	for _, p := range a.Data.Snapshot() {
		mapping[p.CompositeKey()] = p.ID
	}
	moved, err := a.Snoozes.Rekey(mapping)
	if err != nil {
		a.Log.Error().Err(err).Msg("failed to migrate snooze keys")
		return
	}
	if moved > 0 {
		a.Log.Info().Int("entries", moved).Msg("migrated snooze keys to project ids")
	}
}

// record appends to the history log. Failures are logged only.
func (a *App) record(e model.Event) {
	if a.History == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = a.now()
	}
	if _, err := a.History.RecordEvent(e); err != nil {
		a.Log.Error().Err(err).Str("kind", string(e.Kind)).Msg("failed to record event")
	}
}

// recordAll appends events in one transaction
func (a *App) recordAll(events []model.Event) {
	if a.History == nil || len(events) == 0 {
		return
	}
	now := a.now()
	for i := range events {
		if events[i].CreatedAt.IsZero() {
			events[i].CreatedAt = now
		}
	}
	if err := a.History.RecordEvents(events); err != nil {
		a.Log.Error().Err(err).Int("count", len(events)).Msg("failed to record events")
	}
}

func (a *App) pruneHistory() {
	retention := a.Config.HistoryRetention()
	if retention == 0 {
		return
	}
	n, err := a.History.PruneEvents(a.now().Add(-retention))
	if err != nil {
		a.Log.Error().Err(err).Msg("failed to prune history")
		return
	}
	if n > 0 {
		a.Log.Info().Int64("removed", n).Msg("pruned old history events")
	}
}

func (a *App) pruneBackups() {
	if a.Config.Backup.Keep == 0 {
		return
	}
	n, err := a.Backups.Prune(a.Config.Backup.Keep)
	if err != nil {
		a.Log.Error().Err(err).Msg("failed to prune backups")
		return
	}
	if n > 0 {
		a.Log.Info().Int("removed", n).Msg("pruned old backups")
	}
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Paths.LockFile)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of airtrack is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close stops background loops, waiting at most ShutdownTimeout, then
// releases resources. It never blocks shutdown on a stuck goroutine.
func (a *App) Close() error {
	var errs []error

	if a.cancel != nil {
		a.cancel()
		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(ShutdownTimeout):
			a.Log.Warn().Dur("timeout", ShutdownTimeout).Msg("background tasks did not stop in time")
		}
	}

	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	return errors.Join(errs...)
}

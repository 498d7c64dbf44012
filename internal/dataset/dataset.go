// Package dataset holds the in-memory project table and mirrors it to the
// xlsx data file on every change.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/dori/airtrack/internal/fsutil"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/sheet"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("project not found")

// Preserver copies a file that failed to load somewhere safe
type Preserver interface {
	PreserveCorrupted(path string, now time.Time) (string, error)
}

// Dataset is safe for concurrent use. Readers always work on a copy
// returned by Snapshot; writers build the next table, persist it and only
// then swap it in, so a failed save leaves the previous state intact.
type Dataset struct {
	path string
	log  zerolog.Logger
	now  func() time.Time

	mu        sync.RWMutex
	rows      []model.Project
	recovered string
}

// Open loads path. A missing file yields an empty dataset. A file that
// cannot be parsed is handed to preserver and replaced by an empty dataset;
// Recovered reports where the original bytes went.
func Open(path string, preserver Preserver, log zerolog.Logger) (*Dataset, error) {
	d := &Dataset{path: path, log: log, now: time.Now}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	rows, err := sheet.ReadXLSX(bytes.NewReader(data))
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("data file is corrupted, starting with an empty dataset")
		if preserver != nil {
			backup, perr := preserver.PreserveCorrupted(path, d.now())
			if perr != nil {
				return nil, fmt.Errorf("data file is corrupted and could not be preserved: %w", perr)
			}
			d.recovered = backup
		}
		return d, nil
	}

	d.rows = assignIDs(rows)
	return d, nil
}

// Path returns the data file location
func (d *Dataset) Path() string {
	return d.path
}

// Recovered returns the backup path of a corrupted file found by Open
func (d *Dataset) Recovered() string {
	return d.recovered
}

// Snapshot returns a copy of every row in table order
func (d *Dataset) Snapshot() []model.Project {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.rows)
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rows)
}

// Get returns the project with id
func (d *Dataset) Get(id string) (model.Project, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := d.indexLocked(id)
	if i < 0 {
		return model.Project{}, ErrNotFound
	}
	return d.rows[i], nil
}

// Stats aggregates the current rows
func (d *Dataset) Stats(now time.Time) model.Stats {
	return model.ComputeStats(d.Snapshot(), now)
}

// Add validates p, gives it a new id and appends it
func (d *Dataset) Add(p model.Project) (model.Project, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}
	p.ID = uuid.New().String()

	err := d.mutate(func(rows []model.Project) ([]model.Project, error) {
		return append(rows, p), nil
	})
	if err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// Update replaces the row with p.ID and returns the previous version
func (d *Dataset) Update(p model.Project) (model.Project, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}

	var prev model.Project
	err := d.mutate(func(rows []model.Project) ([]model.Project, error) {
		i := slices.IndexFunc(rows, func(r model.Project) bool { return r.ID == p.ID })
		if i < 0 {
			return nil, ErrNotFound
		}
		prev = rows[i]
		rows[i] = p
		return rows, nil
	})
	return prev, err
}

// Delete removes the row with id and returns it
func (d *Dataset) Delete(id string) (model.Project, error) {
	var removed model.Project
	err := d.mutate(func(rows []model.Project) ([]model.Project, error) {
		i := slices.IndexFunc(rows, func(r model.Project) bool { return r.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		removed = rows[i]
		return slices.Delete(rows, i, i+1), nil
	})
	return removed, err
}

// SetReminder toggles the reminder flag of one row
func (d *Dataset) SetReminder(id string, enabled bool) error {
	return d.mutate(func(rows []model.Project) ([]model.Project, error) {
		i := slices.IndexFunc(rows, func(r model.Project) bool { return r.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		rows[i].ReminderEnabled = enabled
		return rows, nil
	})
}

// Replace swaps the whole table, as done by import. Every row must
// validate; the error names the first bad row.
func (d *Dataset) Replace(rows []model.Project) error {
	next := make([]model.Project, len(rows))
	for i, p := range rows {
		p.Normalize()
		if err := p.Validate(); err != nil {
			return fmt.Errorf("row %d (%q): %w", i+2, p.Name, err)
		}
		next[i] = p
	}
	next = assignIDs(next)
	return d.mutate(func([]model.Project) ([]model.Project, error) {
		return next, nil
	})
}

// Clear deletes every row and returns the rows it removed
func (d *Dataset) Clear() ([]model.Project, error) {
	var removed []model.Project
	err := d.mutate(func(rows []model.Project) ([]model.Project, error) {
		removed = rows
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Save writes the current rows again. Used before backups.
func (d *Dataset) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveLocked(d.rows)
}

// WriteTo encodes the current rows in the data file layout
func (d *Dataset) WriteTo(w io.Writer) error {
	return sheet.WriteXLSX(w, d.Snapshot(), sheet.StorageColumns)
}

func (d *Dataset) mutate(fn func(rows []model.Project) ([]model.Project, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next, err := fn(slices.Clone(d.rows))
	if err != nil {
		return err
	}
	if err := d.saveLocked(next); err != nil {
		return err
	}
	d.rows = next
	return nil
}

func (d *Dataset) saveLocked(rows []model.Project) error {
	err := fsutil.WriteAtomicFunc(d.path, 0o600, func(w io.Writer) error {
		return sheet.WriteXLSX(w, rows, sheet.StorageColumns)
	})
	if err != nil {
		return fmt.Errorf("failed to save data file: %w", err)
	}
	return nil
}

func (d *Dataset) indexLocked(id string) int {
	return slices.IndexFunc(d.rows, func(r model.Project) bool { return r.ID == id })
}

// assignIDs gives rows without an id (or with a duplicate) a fresh one
func assignIDs(rows []model.Project) []model.Project {
	seen := make(map[string]bool, len(rows))
	for i := range rows {
		if rows[i].ID == "" || seen[rows[i].ID] {
			rows[i].ID = uuid.New().String()
		}
		seen[rows[i].ID] = true
	}
	return rows
}

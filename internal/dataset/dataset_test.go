package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dori/airtrack/internal/backup"
	"github.com/dori/airtrack/internal/model"
	"github.com/rs/zerolog"
)

func openTemp(t *testing.T) (*Dataset, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "airdrop_data.xlsx")
	backups := backup.NewManager(filepath.Join(dir, "backups"), backup.Sources{Data: path}, zerolog.Nop())
	d, err := Open(path, backups, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return d, dir
}

func foo() model.Project {
	p := model.NewProject("Foo")
	p.DueDate = "2025-01-01"
	p.DueTime = "09:00"
	p.EstimatedReward = 12.5
	return p
}

func TestOpenMissingFile(t *testing.T) {
	d, _ := openTemp(t)
	if d.Len() != 0 || d.Recovered() != "" {
		t.Fatalf("expected empty dataset, got %d rows", d.Len())
	}
}

func TestAddPersistsAndReloads(t *testing.T) {
	d, _ := openTemp(t)

	added, err := d.Add(foo())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Fatal("Add should assign an id")
	}

	reloaded, err := Open(d.Path(), nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	got, err := reloaded.Get(added.ID)
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if got != added {
		t.Fatalf("reloaded %+v, want %+v", got, added)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	d, _ := openTemp(t)
	p := foo()
	p.Status = "Paused"
	if _, err := d.Add(p); !errors.Is(err, model.ErrInvalidStatus) {
		t.Fatalf("err = %v", err)
	}
	if d.Len() != 0 {
		t.Fatal("invalid row was added")
	}
}

func TestUpdateDeleteSetReminder(t *testing.T) {
	d, _ := openTemp(t)
	added, _ := d.Add(foo())

	next := added
	next.Name = "Foo v2"
	prev, err := d.Update(next)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if prev.Name != "Foo" {
		t.Fatalf("prev = %+v", prev)
	}

	if err := d.SetReminder(added.ID, false); err != nil {
		t.Fatal(err)
	}
	got, _ := d.Get(added.ID)
	if got.Name != "Foo v2" || got.ReminderEnabled {
		t.Fatalf("after update: %+v", got)
	}

	removed, err := d.Delete(added.ID)
	if err != nil || removed.ID != added.ID {
		t.Fatalf("Delete = %+v, %v", removed, err)
	}
	if _, err := d.Delete(added.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v", err)
	}
	if _, err := d.Update(next); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update missing = %v", err)
	}
}

func TestClearReturnsRemovedRows(t *testing.T) {
	d, _ := openTemp(t)
	a, _ := d.Add(foo())
	b, _ := d.Add(model.NewProject("Bar"))

	removed, err := d.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 2 || removed[0].ID != a.ID || removed[1].ID != b.ID {
		t.Fatalf("removed = %+v", removed)
	}
	if d.Len() != 0 {
		t.Fatalf("rows left: %d", d.Len())
	}

	removed, err = d.Clear()
	if err != nil || len(removed) != 0 {
		t.Fatalf("second clear = %v, %v", removed, err)
	}
}

func TestFailedSaveLeavesStateUnchanged(t *testing.T) {
	d, dir := openTemp(t)
	added, _ := d.Add(foo())

	// Make the data file's directory unwritable by replacing the path
	// with one whose parent is a regular file.
	blocker := filepath.Join(dir, "blocker")
	os.WriteFile(blocker, []byte("x"), 0o600)
	d.path = filepath.Join(blocker, "airdrop_data.xlsx")

	if _, err := d.Add(model.NewProject("Bar")); err == nil {
		t.Fatal("expected save error")
	}
	if _, err := d.Clear(); err == nil {
		t.Fatal("expected save error")
	}
	rows := d.Snapshot()
	if len(rows) != 1 || rows[0].ID != added.ID {
		t.Fatalf("state changed after failed save: %+v", rows)
	}
}

func TestCorruptedFileRecovery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airdrop_data.xlsx")
	garbage := []byte("this is not a spreadsheet")
	if err := os.WriteFile(path, garbage, 0o600); err != nil {
		t.Fatal(err)
	}
	backups := backup.NewManager(filepath.Join(dir, "backups"), backup.Sources{Data: path}, zerolog.Nop())

	d, err := Open(path, backups, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Len() != 0 {
		t.Fatalf("expected empty dataset, got %d rows", d.Len())
	}

	saved := d.Recovered()
	if saved == "" {
		t.Fatal("no backup reported")
	}
	matched, _ := filepath.Match("corrupted_backup_*_*.xlsx", filepath.Base(saved))
	if !matched {
		t.Fatalf("backup name = %q", filepath.Base(saved))
	}
	data, err := os.ReadFile(saved)
	if err != nil || string(data) != string(garbage) {
		t.Fatalf("backup bytes = %q, %v", data, err)
	}
}

func TestReplaceAssignsIDsAndValidates(t *testing.T) {
	d, _ := openTemp(t)
	d.Add(foo())

	bad := []model.Project{model.NewProject("Ok"), {Name: "Bad", Status: "Nope"}}
	if err := d.Replace(bad); err == nil {
		t.Fatal("expected validation error")
	}
	if d.Len() != 1 {
		t.Fatal("failed import must not change the dataset")
	}

	good := []model.Project{{Name: "A", Status: model.StatusMonitoring}, {Name: "B"}}
	if err := d.Replace(good); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	rows := d.Snapshot()
	if len(rows) != 2 || rows[0].ID == "" || rows[0].ID == rows[1].ID {
		t.Fatalf("ids not assigned: %+v", rows)
	}
	if rows[1].Status != model.StatusActive || rows[1].Progress != model.Progress0 {
		t.Fatalf("defaults not applied: %+v", rows[1])
	}
}

func TestStats(t *testing.T) {
	d, _ := openTemp(t)
	d.Add(foo())
	p := model.NewProject("Done")
	p.Status = model.StatusCompleted
	p.EstimatedReward = 7.5
	d.Add(p)

	s := d.Stats(time.Date(2025, 1, 2, 0, 0, 0, 0, time.Local))
	if s.Total != 2 || s.Active() != 1 || s.Completed() != 1 || s.TotalReward != 20 || s.Overdue != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestConcurrentSnapshotsDuringWrites(t *testing.T) {
	d, _ := openTemp(t)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			d.Add(model.NewProject("P"))
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				for _, p := range d.Snapshot() {
					_ = p.Name
				}
			}
		}()
	}
	wg.Wait()

	if d.Len() != 10 {
		t.Fatalf("Len = %d", d.Len())
	}
}

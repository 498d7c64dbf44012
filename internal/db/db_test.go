package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dori/airtrack/internal/model"
	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsCreateEventsTable(t *testing.T) {
	db := openTestDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='events'`).Scan(&name)
	if err != nil {
		t.Fatalf("events table missing: %v", err)
	}

	v, err := db.SchemaVersion(context.Background())
	if err != nil || v != 1 {
		t.Fatalf("SchemaVersion = %d, %v", v, err)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.RecordEvent(model.Event{Kind: model.EventBackupCreated}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer db.Close()
	events, err := db.RecentEvents(10)
	if err != nil || len(events) != 1 {
		t.Fatalf("events after reopen = %v, %v", events, err)
	}
}

func TestRecordAndQueryEvents(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	fired, err := db.RecordEvent(model.Event{
		Kind: model.EventReminderFired, ProjectID: "p1", ProjectName: "Foo", CreatedAt: base,
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if fired.ID == "" {
		t.Fatal("RecordEvent should assign an id")
	}

	err = db.RecordEvents([]model.Event{
		{Kind: model.EventReminderSnoozed, ProjectID: "p1", ProjectName: "Foo", Detail: "30m", CreatedAt: base.Add(time.Minute)},
		{Kind: model.EventDataExported, Detail: "csv", CreatedAt: base.Add(2 * time.Minute)},
	})
	if err != nil {
		t.Fatalf("RecordEvents: %v", err)
	}

	recent, err := db.RecentEvents(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 || recent[0].Kind != model.EventDataExported || recent[0].ProjectID != "" {
		t.Fatalf("recent = %+v", recent)
	}

	forProject, err := db.ProjectEvents("p1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(forProject) != 2 || forProject[0].Detail != "30m" {
		t.Fatalf("project events = %+v", forProject)
	}

	n, err := db.CountEvents(model.EventReminderFired, base)
	if err != nil || n != 1 {
		t.Fatalf("CountEvents = %d, %v", n, err)
	}

	pruned, err := db.PruneEvents(base.Add(90 * time.Second))
	if err != nil || pruned != 2 {
		t.Fatalf("PruneEvents = %d, %v", pruned, err)
	}
}

// TestNestedQueriesNoDeadlock guards against issuing a query while a rows
// cursor is still open on the single allowed connection.
func TestNestedQueriesNoDeadlock(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		if _, err := db.RecordEvent(model.Event{Kind: model.EventReminderFired, ProjectID: "p1"}); err != nil {
			t.Fatal(err)
		}
	}

	done := make(chan error, 1)
	go func() {
		events, err := db.RecentEvents(10)
		if err != nil {
			done <- err
			return
		}
		for _, e := range events {
			if _, err := db.ProjectEvents(e.ProjectID, 1); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("nested query failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock: nested queries did not complete")
	}
}

func TestTransactionRollsBack(t *testing.T) {
	db := openTestDB(t)
	err := db.RecordEvents([]model.Event{
		{ID: "dup", Kind: model.EventLocked},
		{ID: "dup", Kind: model.EventUnlocked},
	})
	if err == nil {
		t.Fatal("expected primary key violation")
	}
	events, _ := db.RecentEvents(10)
	if len(events) != 0 {
		t.Fatalf("partial batch committed: %+v", events)
	}
}

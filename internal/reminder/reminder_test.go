package reminder

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/snooze"
	"github.com/rs/zerolog"
)

type staticSource struct {
	mu   sync.Mutex
	rows []model.Project
}

func (s *staticSource) Snapshot() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Project(nil), s.rows...)
}

type recorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *recorder) Notify(p model.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, p.CompositeKey())
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func fooProject() model.Project {
	return model.Project{
		ID: "id-foo", Name: "Foo", Status: model.StatusActive,
		DueDate: "2025-01-01", DueTime: "09:00", Progress: model.Progress0,
		ReminderEnabled: true,
	}
}

func newPoller(t *testing.T, rows ...model.Project) (*Poller, *recorder, *snooze.Store) {
	t.Helper()
	store, err := snooze.Open(filepath.Join(t.TempDir(), "snooze_data.json"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	p := New(&staticSource{rows: rows}, store, rec, Options{Location: time.UTC, Log: zerolog.Nop()})
	return p, rec, store
}

func at(h, m int) time.Time {
	return time.Date(2025, 1, 1, h, m, 0, 0, time.UTC)
}

func TestExampleFooFiresOnce(t *testing.T) {
	p, rec, _ := newPoller(t, fooProject())

	p.Check(at(9, 1))

	if len(rec.keys) != 1 || rec.keys[0] != "Foo_2025-01-01_09:00" {
		t.Fatalf("notifications = %v", rec.keys)
	}
}

func TestNotDueYet(t *testing.T) {
	p, rec, _ := newPoller(t, fooProject())
	p.Check(at(8, 59))
	if rec.count() != 0 {
		t.Fatal("fired before due time")
	}
	p.Check(at(9, 0))
	if rec.count() != 1 {
		t.Fatal("should fire exactly at due time")
	}
}

func TestSeenSetIsIdempotent(t *testing.T) {
	p, rec, _ := newPoller(t, fooProject())
	for i := 0; i < 5; i++ {
		p.Check(at(9, 1+i))
	}
	if rec.count() != 1 {
		t.Fatalf("notified %d times", rec.count())
	}
	if !p.Seen("id-foo") {
		t.Fatal("project should be marked seen")
	}

	p.Forget("id-foo")
	p.Check(at(10, 0))
	if rec.count() != 2 {
		t.Fatal("Forget should allow the reminder to fire again")
	}
}

func TestSnoozeSuppression(t *testing.T) {
	p, rec, store := newPoller(t, fooProject())
	overdue := at(9, 5)
	if _, err := store.Snooze("id-foo", 30*time.Minute, overdue); err != nil {
		t.Fatal(err)
	}

	p.Check(overdue)
	p.Check(overdue.Add(29 * time.Minute))
	if rec.count() != 0 {
		t.Fatal("fired while snoozed")
	}

	p.Check(overdue.Add(30 * time.Minute))
	if rec.count() != 1 {
		t.Fatalf("expected one notification after snooze, got %d", rec.count())
	}
	if store.Len() != 0 {
		t.Fatal("expired snooze should have been evicted")
	}
}

func TestSkipsIneligibleRows(t *testing.T) {
	disabled := fooProject()
	disabled.ID, disabled.ReminderEnabled = "disabled", false

	completed := fooProject()
	completed.ID, completed.Status = "completed", model.StatusCompleted

	noTime := fooProject()
	noTime.ID, noTime.DueTime = "no-time", ""

	malformed := fooProject()
	malformed.ID, malformed.DueDate = "malformed", "2025-13-45"

	p, rec, _ := newPoller(t, disabled, completed, noTime, malformed)
	if got := p.Check(at(12, 0)); len(got) != 0 || rec.count() != 0 {
		t.Fatalf("unexpected notifications: %v", rec.keys)
	}
}

func TestDisabledPoller(t *testing.T) {
	p, rec, _ := newPoller(t, fooProject())
	p.SetEnabled(false)
	p.Check(at(10, 0))
	if rec.count() != 0 {
		t.Fatal("disabled poller fired")
	}
	p.SetEnabled(true)
	p.Check(at(10, 0))
	if rec.count() != 1 {
		t.Fatal("re-enabled poller did not fire")
	}
}

func TestRunChecksImmediatelyAndStops(t *testing.T) {
	store, _ := snooze.Open(filepath.Join(t.TempDir(), "s.json"), zerolog.Nop())
	fired := make(chan model.Project, 1)
	p := New(&staticSource{rows: []model.Project{fooProject()}}, store,
		NotifierFunc(func(pr model.Project) { fired <- pr }),
		Options{Interval: time.Hour, Location: time.UTC, Now: func() time.Time { return at(9, 1) }, Log: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case pr := <-fired:
		if pr.ID != "id-foo" {
			t.Fatalf("fired %q", pr.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not check immediately")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Fanout{a, nil, b}.Notify(fooProject())
	if a.count() != 1 || b.count() != 1 {
		t.Fatal("fanout did not reach every notifier")
	}
}

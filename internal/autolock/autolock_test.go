package autolock

import (
	"testing"
	"time"
)

var start = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestLocksAfterIdleThreshold(t *testing.T) {
	tr := New(10*time.Minute, start)

	if tr.Check(start.Add(9 * time.Minute)) {
		t.Fatal("locked before threshold")
	}
	if !tr.Check(start.Add(10 * time.Minute)) {
		t.Fatal("did not lock at threshold")
	}
	if !tr.Locked() {
		t.Fatal("Locked() should be true")
	}
	if tr.Check(start.Add(30 * time.Minute)) {
		t.Fatal("already locked, must not lock twice")
	}

	tr.Unlock(start.Add(31 * time.Minute))
	if tr.Check(start.Add(40 * time.Minute)) {
		t.Fatal("timer should restart after unlock")
	}
}

func TestTouchResetsIdle(t *testing.T) {
	tr := New(10*time.Minute, start)
	tr.Touch(start.Add(8 * time.Minute))
	if tr.Check(start.Add(15 * time.Minute)) {
		t.Fatal("input at 8m should push the lock to 18m")
	}
	if got := tr.Idle(start.Add(15 * time.Minute)); got != 7*time.Minute {
		t.Fatalf("Idle = %v", got)
	}
}

func TestMinimizedIgnoresInputAndNeverLocks(t *testing.T) {
	tr := New(10*time.Minute, start)
	tr.SetMinimized(true, start.Add(time.Minute))

	tr.Touch(start.Add(5 * time.Minute))
	if got := tr.Idle(start.Add(5 * time.Minute)); got != 5*time.Minute {
		t.Fatalf("input while minimized was recorded, idle = %v", got)
	}
	if tr.Check(start.Add(time.Hour)) {
		t.Fatal("must not lock while minimized")
	}

	tr.SetMinimized(false, start.Add(time.Hour))
	if tr.Check(start.Add(time.Hour + 9*time.Minute)) {
		t.Fatal("restore should count as activity")
	}
	if !tr.Check(start.Add(time.Hour + 10*time.Minute)) {
		t.Fatal("should lock once idle again after restore")
	}
}

func TestDefaults(t *testing.T) {
	if New(0, start).Threshold() != DefaultIdle {
		t.Fatal("zero threshold should fall back to the default")
	}
}

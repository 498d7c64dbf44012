package notify

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dori/airtrack/internal/model"
	"github.com/rs/zerolog"
)

func TestBuildArgs(t *testing.T) {
	args := buildArgs(Notification{
		Title:   "Title",
		Body:    "Body",
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "icon",
	})
	want := []string{"-u", "critical", "-t", "15000", "-i", "icon", "-a", "airtrack", "Title", "Body"}
	if !slices.Equal(args, want) {
		t.Fatalf("args = %v\nwant   %v", args, want)
	}

	args = buildArgs(Notification{Title: "Only"})
	if !slices.Equal(args, []string{"-u", "normal", "-a", "airtrack", "Only"}) {
		t.Fatalf("minimal args = %v", args)
	}

	args = buildArgs(Notification{Title: "Quiet", Urgency: UrgencyLow})
	if args[0] != "-u" || args[1] != "low" {
		t.Fatalf("low urgency args = %v", args)
	}
}

func TestReminderNotification(t *testing.T) {
	n := ReminderNotification(model.Project{
		Name: "Foo", DueDate: "2025-01-01", DueTime: "09:00",
		EstimatedReward: 1234.5, Link: "https://foo.example",
	})
	if n.Title != "Airdrop due: Foo" || n.Urgency != UrgencyCritical {
		t.Fatalf("notification = %+v", n)
	}
	for _, part := range []string{"2025-01-01 09:00 (Wednesday)", "Rp 1,234.50", "https://foo.example"} {
		if !strings.Contains(n.Body, part) {
			t.Errorf("body %q missing %q", n.Body, part)
		}
	}
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	n := NewNotifier(zerolog.Nop())
	n.command = "/nonexistent/notify-send"
	n.SetEnabled(false)
	if err := n.SendSimple("x", "y"); err != nil {
		t.Fatalf("disabled notifier returned %v", err)
	}

	n.available = true
	n.SetEnabled(true)
	if err := n.SendSimple("x", "y"); err == nil {
		t.Fatal("expected exec error for missing binary")
	}
	// Notify swallows the error
	n.Notify(model.Project{Name: "Foo"})
}

func TestCannotEnableWithoutBinary(t *testing.T) {
	n := NewNotifier(zerolog.Nop())
	n.available = false
	n.SetEnabled(true)
	if n.IsEnabled() {
		t.Fatal("notifier enabled without notify-send")
	}
}

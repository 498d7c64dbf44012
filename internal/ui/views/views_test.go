package views

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/snooze"
)

func TestParseRewardInput(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"1500", 1500},
		{"Rp 1,500", 1500},
		{" Rp 1,234.56 ", 1234.56},
	}
	for _, tt := range tests {
		got, err := parseRewardInput(tt.in)
		if err != nil {
			t.Fatalf("parseRewardInput(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseRewardInput(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := parseRewardInput("lots"); !errors.Is(err, model.ErrInvalidReward) {
		t.Errorf("expected ErrInvalidReward, got %v", err)
	}
}

func TestFormProject(t *testing.T) {
	f := newProjectForm(nil)
	if _, err := f.project(); !errors.Is(err, model.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	f.inputs[fieldName].SetValue("  Foo ")
	f.inputs[fieldDueDate].SetValue("2025-01-01")
	f.inputs[fieldDueTime].SetValue("9am")
	if _, err := f.project(); !errors.Is(err, model.ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}

	f.inputs[fieldDueTime].SetValue("09:00")
	f.inputs[fieldReward].SetValue("Rp 2,000")
	p, err := f.project()
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	if p.Name != "Foo" || p.Status != model.StatusActive || p.EstimatedReward != 2000 || !p.ReminderEnabled {
		t.Errorf("unexpected project: %+v", p)
	}
}

func TestFormKeepsIDWhenEditing(t *testing.T) {
	orig := model.Project{
		ID:              "abc",
		Name:            "Foo",
		Status:          model.StatusMonitoring,
		Progress:        model.Progress75,
		ReminderEnabled: false,
	}
	f := newProjectForm(&orig)
	p, err := f.project()
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	if p.ID != "abc" || p.Status != model.StatusMonitoring || p.Progress != model.Progress75 || p.ReminderEnabled {
		t.Errorf("edit lost fields: %+v", p)
	}
}

func TestFormSelectorKeys(t *testing.T) {
	f := newProjectForm(nil)
	f.setFocus(fieldStatus)

	f, _, _ = f.update(tea.KeyMsg{Type: tea.KeyRight})
	if model.Statuses[f.status] != model.StatusCompleted {
		t.Errorf("status = %s, want Completed", model.Statuses[f.status])
	}

	f, _, submit := f.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !submit {
		t.Error("ctrl+s should submit")
	}
}

func TestPopupQueue(t *testing.T) {
	p := NewReminderPopup(nil)
	if p.Active() {
		t.Fatal("new popup should be inactive")
	}

	p = p.Push(model.Project{ID: "a", Name: "A"})
	p = p.Push(model.Project{ID: "b", Name: "B"})
	p = p.Push(model.Project{ID: "a", Name: "A"})
	if p.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", p.Pending())
	}
	if cur, _ := p.Current(); cur.ID != "a" {
		t.Errorf("expected a first, got %s", cur.ID)
	}
	if p.SnoozeMinutes() != snooze.DefaultMinutes {
		t.Errorf("default snooze = %d, want %d", p.SnoozeMinutes(), snooze.DefaultMinutes)
	}

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if p.SnoozeMinutes() != snooze.Options[0] {
		t.Errorf("snooze = %d after pressing 1", p.SnoozeMinutes())
	}

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	if cmd == nil {
		t.Error("dismiss should return a command")
	}
	if cur, _ := p.Current(); cur.ID != "b" {
		t.Errorf("expected b after dismiss, got %s", cur.ID)
	}
	if p.SnoozeMinutes() != snooze.DefaultMinutes {
		t.Error("next reminder should start at the default duration")
	}

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.Active() {
		t.Error("queue should be empty")
	}
}

func TestBar(t *testing.T) {
	for _, ratio := range []float64{-1, 0, 0.01, 0.5, 1, 2} {
		if w := lipgloss.Width(bar(ratio, 10)); w != 10 {
			t.Errorf("bar(%v, 10) width = %d", ratio, w)
		}
	}
}

package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/airtrack/internal/model"
)

// View represents the current active view
type View int

const (
	ViewProjects View = iota
	ViewDashboard
	ViewReminders
	ViewData
	ViewAbout
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewProjects:
		return "Projects"
	case ViewDashboard:
		return "Dashboard"
	case ViewReminders:
		return "Reminders"
	case ViewData:
		return "Data"
	case ViewAbout:
		return "About"
	default:
		return "Unknown"
	}
}

// ReminderDueMsg carries a due project from the reminder goroutine
type ReminderDueMsg struct {
	Project model.Project
}

// lockCheckMsg drives the idle check
type lockCheckMsg struct {
	at time.Time
}

func lockCheck(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return lockCheckMsg{at: t}
	})
}

// Sender is the part of *tea.Program the notifier needs
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramNotifier hands reminders to the UI goroutine. It is safe to call
// from any goroutine.
type ProgramNotifier struct {
	Program Sender
}

// Notify implements reminder.Notifier
func (n ProgramNotifier) Notify(p model.Project) {
	n.Program.Send(ReminderDueMsg{Project: p})
}

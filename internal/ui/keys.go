package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the global keybindings. View-local keys are handled by
// the views themselves.
type KeyMap struct {
	// Views
	ProjectsView  key.Binding
	DashboardView key.Binding
	RemindersView key.Binding
	DataView      key.Binding
	AboutView     key.Binding
	NextView      key.Binding
	PrevView      key.Binding

	// General
	Help       key.Binding
	ThemeCycle key.Binding
	Lock       key.Binding
	Suspend    key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ProjectsView: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "projects"),
		),
		DashboardView: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "dashboard"),
		),
		RemindersView: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "reminders"),
		),
		DataView: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "data"),
		),
		AboutView: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "about"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
		Lock: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "lock"),
		),
		Suspend: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("C-z", "suspend"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ProjectsView, k.DashboardView, k.RemindersView, k.DataView, k.AboutView},
		{k.NextView, k.PrevView},
		{k.ThemeCycle, k.Lock, k.Suspend},
		{k.Help, k.Quit},
	}
}

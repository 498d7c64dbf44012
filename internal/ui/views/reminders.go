package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/snooze"
	"github.com/dori/airtrack/internal/ui/theme"
)

// historyLimit is how many history entries the reminders view shows
const historyLimit = 12

const (
	settingReminders = iota
	settingSnooze
	settingDesktop
	settingBackup
	settingTest
	settingCount
)

type remindersLoadedMsg struct {
	settings app.Settings
	events   []model.Event
	err      error
}

// RemindersView holds the reminder and backup settings plus the history log
type RemindersView struct {
	app    *app.App
	width  int
	height int

	settings app.Settings
	events   []model.Event
	cursor   int
}

// NewRemindersView creates the settings view
func NewRemindersView(a *app.App) RemindersView {
	return RemindersView{app: a, settings: a.Settings()}
}

// Init loads settings and history
func (v RemindersView) Init() tea.Cmd {
	return v.load
}

// SetSize sets the view dimensions
func (v RemindersView) SetSize(width, height int) RemindersView {
	v.width = width
	v.height = height
	return v
}

func (v RemindersView) load() tea.Msg {
	events, err := v.app.RecentEvents(historyLimit)
	return remindersLoadedMsg{settings: v.app.Settings(), events: events, err: err}
}

// Update handles messages
func (v RemindersView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case remindersLoadedMsg:
		v.settings = msg.settings
		v.events = msg.events
		if msg.err != nil {
			return v, errorCmd(fmt.Errorf("failed to load history: %w", msg.err))
		}
		return v, nil

	case DataChangedMsg, SettingsChangedMsg:
		return v, v.load

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < settingCount-1 {
				v.cursor++
			}
		case "enter", " ":
			return v.activate(1)
		case "right", "l":
			return v.activate(1)
		case "left", "h":
			return v.activate(-1)
		case "r":
			return v, v.load
		}
	}
	return v, nil
}

// activate toggles or cycles the setting under the cursor
func (v RemindersView) activate(step int) (tea.Model, tea.Cmd) {
	s := v.settings
	switch v.cursor {
	case settingReminders:
		s.RemindersEnabled = !s.RemindersEnabled
	case settingSnooze:
		i := indexOf(snooze.Options, s.SnoozeMinutes)
		s.SnoozeMinutes = snooze.Options[(i+step+len(snooze.Options))%len(snooze.Options)]
	case settingDesktop:
		s.DesktopNotify = !s.DesktopNotify
	case settingBackup:
		s.AutoBackup = !s.AutoBackup
	case settingTest:
		a := v.app
		return v, func() tea.Msg {
			a.TestReminder()
			return StatusMsg{Text: "Test reminder sent"}
		}
	}
	v.settings = s
	return v, saveSettings(v.app, s)
}

func saveSettings(a *app.App, s app.Settings) tea.Cmd {
	return func() tea.Msg {
		if err := a.UpdateSettings(s); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save settings: %w", err)}
		}
		return SettingsChangedMsg{}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// View renders the settings and history
func (v RemindersView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	var b strings.Builder
	b.WriteString(styles.Title.Render("Reminders & Settings"))
	b.WriteString("\n")

	items := [settingCount][2]string{
		{"Reminders", onOff(v.settings.RemindersEnabled)},
		{"Snooze duration", fmt.Sprintf("%d minutes", v.settings.SnoozeMinutes)},
		{"Desktop notifications", onOff(v.settings.DesktopNotify)},
		{"Automatic backup", onOff(v.settings.AutoBackup)},
		{"Send test reminder", ""},
	}
	labelStyle := lipgloss.NewStyle().Width(26)
	valueStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	for i, item := range items {
		line := labelStyle.Render(item[0]) + valueStyle.Render(item[1])
		if i == v.cursor {
			line = styles.RowSelected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if v.settings.DesktopNotify && !v.app.Notifier.Available() {
		b.WriteString(styles.Label.Render("  notify-send not found, desktop notifications are unavailable"))
		b.WriteString("\n")
	}
	if v.app.Gate.IsSet() {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  Auto-lock after %s idle", v.app.Lock.Threshold())))
	} else {
		b.WriteString(styles.Label.Render("  Auto-lock is off until a password is set"))
	}
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Render("History"))
	b.WriteString("\n")
	if len(v.events) == 0 {
		b.WriteString(styles.Label.Render("No events yet."))
		b.WriteString("\n")
	}
	for _, e := range v.events {
		when := styles.Label.Render(e.CreatedAt.Local().Format("01-02 15:04"))
		kind := lipgloss.NewStyle().Foreground(t.Info).Width(10).Render(e.Kind.Label())
		detail := e.ProjectName
		if e.Detail != "" {
			if detail != "" {
				detail += " "
			}
			detail += "(" + e.Detail + ")"
		}
		b.WriteString(fmt.Sprintf("%s  %s %s\n", when, kind, truncate(detail, max(v.width-30, 10))))
	}

	b.WriteString("\n")
	b.WriteString(hint("j/k", "navigate", "enter", "toggle", "←/→", "change", "r", "refresh"))
	return b.String()
}

// IsInputMode returns whether the view is in input mode
func (v RemindersView) IsInputMode() bool {
	return false
}

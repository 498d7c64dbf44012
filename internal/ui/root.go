package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/logging"
	"github.com/dori/airtrack/internal/security"
	"github.com/dori/airtrack/internal/ui/theme"
	"github.com/dori/airtrack/internal/ui/views"
)

var viewOrder = []View{ViewProjects, ViewDashboard, ViewReminders, ViewData, ViewAbout}

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView   View
	projectsView  views.ProjectsView
	dashboardView views.DashboardView
	remindersView views.RemindersView
	dataView      views.DataView
	aboutView     views.AboutView
	helpVisible   bool

	popup    views.ReminderPopup
	lockView views.LockView
	locked   bool

	// Status message
	statusMsg string
	errorMsg  string

	// set when the program quits because of a wrong unlock password
	quitErr error
}

// NewRootModel creates a new root model
func NewRootModel(a *app.App) RootModel {
	h := help.New()
	h.ShowAll = true

	if th, ok := theme.ByName(a.Settings().Theme); ok {
		theme.SetTheme(th)
	}

	return RootModel{
		app:           a,
		keys:          DefaultKeyMap(),
		help:          h,
		currentView:   ViewProjects,
		projectsView:  views.NewProjectsView(a),
		dashboardView: views.NewDashboardView(a),
		remindersView: views.NewRemindersView(a),
		dataView:      views.NewDataView(a),
		aboutView:     views.NewAboutView(logging.Component(a.Log, "ui")),
		popup:         views.NewReminderPopup(a),
		lockView:      views.NewLockView(a),
	}
}

// Err reports why the program quit, if it was not a normal exit
func (m RootModel) Err() error {
	return m.quitErr
}

// Init loads every view and starts the idle check
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(
		m.projectsView.Init(),
		m.dashboardView.Init(),
		m.remindersView.Init(),
		lockCheck(m.app.Config.LockCheckInterval()),
	)
}

func (m RootModel) isInputMode() bool {
	switch m.currentView {
	case ViewProjects:
		return m.projectsView.IsInputMode()
	case ViewDashboard:
		return m.dashboardView.IsInputMode()
	case ViewReminders:
		return m.remindersView.IsInputMode()
	case ViewData:
		return m.dataView.IsInputMode()
	case ViewAbout:
		return m.aboutView.IsInputMode()
	}
	return false
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (1 line) and footer (3 lines)
		contentHeight := m.height - 4
		m.projectsView = m.projectsView.SetSize(m.width, contentHeight)
		m.dashboardView = m.dashboardView.SetSize(m.width, contentHeight)
		m.remindersView = m.remindersView.SetSize(m.width, contentHeight)
		m.dataView = m.dataView.SetSize(m.width, contentHeight)
		m.aboutView = m.aboutView.SetSize(m.width, contentHeight)
		m.popup = m.popup.SetSize(m.width, contentHeight)
		m.lockView = m.lockView.SetSize(m.width, m.height)
		return m, nil

	case lockCheckMsg:
		next := lockCheck(m.app.Config.LockCheckInterval())
		if !m.locked && m.app.CheckIdle() {
			lockCmd := m.lock()
			return m, tea.Batch(next, lockCmd)
		}
		return m, next

	case tea.ResumeMsg:
		m.app.Lock.SetMinimized(false, time.Now())
		return m, nil

	case ReminderDueMsg:
		m.popup = m.popup.Push(msg.Project)
		return m, nil

	case views.UnlockedMsg:
		m.locked = false
		m.statusMsg = "Unlocked"
		return m, nil

	case views.WrongPasswordMsg:
		m.quitErr = security.ErrIncorrectPassword
		return m, tea.Quit

	case views.ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case views.StatusMsg:
		m.statusMsg = msg.Text
		return m, nil

	case views.DataChangedMsg:
		if msg.Status != "" {
			m.statusMsg = msg.Status
		}
		return m, m.broadcast(msg)

	case views.SettingsChangedMsg:
		m.statusMsg = "Settings saved"
		return m, m.broadcast(msg)

	case tea.MouseMsg:
		if !m.locked {
			m.app.Lock.Touch(time.Now())
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.broadcast(msg)
}

func (m *RootModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return *m, tea.Quit
	}

	if m.locked {
		var cmd tea.Cmd
		m.lockView, cmd = m.lockView.Update(msg)
		return *m, cmd
	}

	m.app.Lock.Touch(time.Now())
	m.statusMsg = ""
	m.errorMsg = ""

	if key.Matches(msg, m.keys.Suspend) {
		m.app.Lock.SetMinimized(true, time.Now())
		return *m, tea.Suspend
	}
	if key.Matches(msg, m.keys.Lock) {
		if !m.app.Gate.IsSet() {
			m.errorMsg = "Set a password first (airtrack passwd)"
			return *m, nil
		}
		m.app.LockNow()
		return *m, m.lock()
	}

	if m.popup.Active() {
		var cmd tea.Cmd
		m.popup, cmd = m.popup.Update(msg)
		return *m, cmd
	}

	inputMode := m.isInputMode()

	switch {
	case key.Matches(msg, m.keys.Quit):
		// 'q' only quits when not typing
		if !inputMode {
			return *m, tea.Quit
		}
	case key.Matches(msg, m.keys.ThemeCycle):
		return *m, m.cycleTheme()
	}

	if !inputMode {
		if m.helpVisible {
			if msg.String() == "esc" || key.Matches(msg, m.keys.Help) {
				m.helpVisible = false
			}
			return *m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = true
			return *m, nil
		case key.Matches(msg, m.keys.ProjectsView):
			return *m, m.switchTo(ViewProjects)
		case key.Matches(msg, m.keys.DashboardView):
			return *m, m.switchTo(ViewDashboard)
		case key.Matches(msg, m.keys.RemindersView):
			return *m, m.switchTo(ViewReminders)
		case key.Matches(msg, m.keys.DataView):
			return *m, m.switchTo(ViewData)
		case key.Matches(msg, m.keys.AboutView):
			return *m, m.switchTo(ViewAbout)
		case key.Matches(msg, m.keys.NextView):
			return *m, m.switchTo(viewOrder[(int(m.currentView)+1)%len(viewOrder)])
		case key.Matches(msg, m.keys.PrevView):
			return *m, m.switchTo(viewOrder[(int(m.currentView)-1+len(viewOrder))%len(viewOrder)])
		}
	}

	// Delegate to current view
	var cmd tea.Cmd
	var updated tea.Model
	switch m.currentView {
	case ViewProjects:
		updated, cmd = m.projectsView.Update(msg)
		m.projectsView = updated.(views.ProjectsView)
	case ViewDashboard:
		updated, cmd = m.dashboardView.Update(msg)
		m.dashboardView = updated.(views.DashboardView)
	case ViewReminders:
		updated, cmd = m.remindersView.Update(msg)
		m.remindersView = updated.(views.RemindersView)
	case ViewData:
		updated, cmd = m.dataView.Update(msg)
		m.dataView = updated.(views.DataView)
	case ViewAbout:
		updated, cmd = m.aboutView.Update(msg)
		m.aboutView = updated.(views.AboutView)
	}
	return *m, cmd
}

// broadcast hands a non-key message to every view. Views ignore messages
// that are not theirs; load results arrive even after a view switch.
func (m *RootModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var updated tea.Model
	var cmd tea.Cmd

	updated, cmd = m.projectsView.Update(msg)
	m.projectsView = updated.(views.ProjectsView)
	cmds = append(cmds, cmd)

	updated, cmd = m.dashboardView.Update(msg)
	m.dashboardView = updated.(views.DashboardView)
	cmds = append(cmds, cmd)

	updated, cmd = m.remindersView.Update(msg)
	m.remindersView = updated.(views.RemindersView)
	cmds = append(cmds, cmd)

	updated, cmd = m.dataView.Update(msg)
	m.dataView = updated.(views.DataView)
	cmds = append(cmds, cmd)

	if m.currentView == ViewAbout {
		updated, cmd = m.aboutView.Update(msg)
		m.aboutView = updated.(views.AboutView)
		cmds = append(cmds, cmd)
	}

	if m.locked {
		m.lockView, cmd = m.lockView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *RootModel) switchTo(v View) tea.Cmd {
	m.currentView = v
	switch v {
	case ViewProjects:
		return m.projectsView.Init()
	case ViewDashboard:
		return m.dashboardView.Init()
	case ViewReminders:
		return m.remindersView.Init()
	}
	return nil
}

// lock shows the lock screen
func (m *RootModel) lock() tea.Cmd {
	m.locked = true
	m.helpVisible = false
	var cmd tea.Cmd
	m.lockView, cmd = m.lockView.Reset()
	return cmd
}

// cycleTheme switches to the next theme and saves the choice
func (m *RootModel) cycleTheme() tea.Cmd {
	next := theme.Next(theme.Current.Theme.Name)
	theme.SetTheme(next)
	m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)

	a := m.app
	return func() tea.Msg {
		s := a.Settings()
		s.Theme = next.Name
		if err := a.UpdateSettings(s); err != nil {
			return views.ErrorMsg{Err: fmt.Errorf("failed to save theme: %w", err)}
		}
		return nil
	}
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.locked {
		return m.lockView.View()
	}

	styles := theme.Current.Styles
	var sections []string

	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	var content string
	switch {
	case m.popup.Active():
		content = m.popup.View()
	case m.helpVisible:
		content = m.renderHelp()
	default:
		switch m.currentView {
		case ViewProjects:
			content = m.projectsView.View()
		case ViewDashboard:
			content = m.dashboardView.View()
		case ViewReminders:
			content = m.remindersView.View()
		case ViewData:
			content = m.dataView.View()
		case ViewAbout:
			content = m.aboutView.View()
		default:
			content = styles.Panel.Render("View not implemented")
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("airtrack")

	tabStyle := lipgloss.NewStyle().Foreground(t.Subtle).Padding(0, 1)
	activeTab := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Underline(true).Padding(0, 1)
	var tabs []string
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.currentView {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}

	var right []string
	if n := m.popup.Pending(); n > 0 {
		right = append(right, lipgloss.NewStyle().Foreground(t.Warning).Bold(true).
			Render(fmt.Sprintf("⏰ %d", n)))
	}
	if !m.app.Reminders.Enabled() {
		right = append(right, tabStyle.Render("reminders off"))
	}
	right = append(right, tabStyle.Render(fmt.Sprintf("theme: %s", t.Name)))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, append([]string{title}, tabs...)...)
	rightSide := strings.Join(right, " ")

	gap := max(m.width-lipgloss.Width(leftSide)-lipgloss.Width(rightSide), 0)
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var lines []string
	if m.errorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg))
	} else if m.statusMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg))
	} else {
		lines = append(lines, "")
	}

	if m.popup.Active() {
		lines = append(lines, key("s", "snooze")+sep+key("d", "dismiss")+sep+key("←/→", "duration"))
	} else {
		lines = append(lines, key("1-5", "views")+sep+
			key("tab", "next")+sep+
			key("C-l", "lock")+sep+
			key("C-t", "theme")+sep+
			key("?", "help")+sep+
			key("q", "quit"))
	}
	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).MarginTop(1)
	keyStyle := lipgloss.NewStyle().Foreground(t.Foreground).Bold(true).Width(12)
	descStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	var b strings.Builder
	b.WriteString(titleStyle.Render("airtrack Help"))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Projects", [][2]string{
			{"a", "Add project"},
			{"enter / e", "Edit project"},
			{"d", "Delete project"},
			{"r", "Toggle reminder"},
			{"s", "Snooze reminder"},
			{"/", "Filter by name, status or notes"},
		}},
		{"Reminder popup", [][2]string{
			{"←/→ 1-5", "Choose snooze duration"},
			{"s / enter", "Snooze"},
			{"d / esc", "Dismiss"},
		}},
		{"Lock screen", [][2]string{
			{"enter", "Unlock"},
			{"ctrl+r", "Reset password with the security question"},
		}},
	}
	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, kv := range s.keys {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))
	return b.String()
}

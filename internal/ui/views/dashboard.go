package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/ui/theme"
)

// upcomingLimit is how many deadlines the dashboard lists
const upcomingLimit = 6

type dashboardLoadedMsg struct {
	stats      model.Stats
	upcoming   []model.Project
	lastBackup time.Time
	firedToday int
	now        time.Time
}

// DashboardView shows totals, the status breakdown and the next deadlines
type DashboardView struct {
	app    *app.App
	width  int
	height int

	stats      model.Stats
	upcoming   []model.Project
	lastBackup time.Time
	firedToday int
	now        time.Time
}

// NewDashboardView creates a new dashboard view
func NewDashboardView(a *app.App) DashboardView {
	return DashboardView{app: a}
}

// Init loads the numbers
func (v DashboardView) Init() tea.Cmd {
	return v.load
}

// SetSize sets the view dimensions
func (v DashboardView) SetSize(width, height int) DashboardView {
	v.width = width
	v.height = height
	return v
}

func (v DashboardView) load() tea.Msg {
	now := time.Now()
	rows := v.app.Data.Snapshot()
	fired, err := v.app.RemindersFiredToday()
	if err != nil {
		v.app.Log.Warn().Err(err).Msg("failed to count reminders")
	}
	return dashboardLoadedMsg{
		stats:      model.ComputeStats(rows, now),
		upcoming:   upcoming(rows, now, upcomingLimit),
		lastBackup: v.app.Backups.Last(),
		firedToday: fired,
		now:        now,
	}
}

// upcoming returns the active projects with a due timestamp, soonest
// first, overdue ones included
func upcoming(rows []model.Project, now time.Time, limit int) []model.Project {
	type dated struct {
		p  model.Project
		at time.Time
	}
	var list []dated
	for _, p := range rows {
		if p.Status != model.StatusActive {
			continue
		}
		at, err := p.DueAt(now.Location())
		if err != nil {
			continue
		}
		list = append(list, dated{p, at})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].at.Before(list[j].at) })

	out := make([]model.Project, 0, min(limit, len(list)))
	for i := 0; i < len(list) && i < limit; i++ {
		out = append(out, list[i].p)
	}
	return out
}

// Update handles messages
func (v DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		v.stats = msg.stats
		v.upcoming = msg.upcoming
		v.lastBackup = msg.lastBackup
		v.firedToday = msg.firedToday
		v.now = msg.now
		return v, nil

	case DataChangedMsg:
		return v, v.load

	case tea.KeyMsg:
		if msg.String() == "r" {
			return v, v.load
		}
	}
	return v, nil
}

// View renders the dashboard
func (v DashboardView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	sections = append(sections, titleStyle.Render("Dashboard"), "")

	// Summary cards (side by side)
	cardStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 2).
		Width(20)
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	card := func(value, label string, color lipgloss.Color) string {
		return cardStyle.Render(valueStyle.Foreground(color).Render(value) + "\n" + labelStyle.Render(label))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprintf("%d", v.stats.Total), "Total Projects", t.Primary),
		card(fmt.Sprintf("%d", v.stats.Active()), "Active", t.StatusActive),
		card(fmt.Sprintf("%d", v.stats.Completed()), "Completed", t.StatusCompleted),
		card(fmt.Sprintf("%d", v.stats.Overdue), "Overdue", t.Error),
		card(model.FormatReward(v.stats.TotalReward), "Total Reward", t.Success),
	)
	sections = append(sections, cards, "")

	breakdown := lipgloss.JoinHorizontal(lipgloss.Top,
		v.renderStatusBreakdown(),
		"    ",
		v.renderProgressBreakdown(),
	)
	sections = append(sections, breakdown, "")
	sections = append(sections, v.renderUpcoming(), "")

	backup := "never"
	if !v.lastBackup.IsZero() {
		backup = v.lastBackup.Format("2006-01-02 15:04")
	}
	sections = append(sections, labelStyle.Render(
		fmt.Sprintf("Last backup: %s   Reminders today: %d", backup, v.firedToday)))
	sections = append(sections, hint("r", "refresh"))

	return strings.Join(sections, "\n")
}

// renderStatusBreakdown draws one bar per status
func (v DashboardView) renderStatusBreakdown() string {
	t := theme.Current.Theme
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)

	lines := []string{headerStyle.Render("By Status")}
	total := max(v.stats.Total, 1)
	for _, st := range model.Statuses {
		n := v.stats.ByStatus[st]
		label := lipgloss.NewStyle().Foreground(t.StatusColor(st)).Width(12).Render(string(st))
		fill := lipgloss.NewStyle().Foreground(t.StatusColor(st)).
			Render(strings.Repeat("█", n*24/total))
		lines = append(lines, fmt.Sprintf("%s %s %d", label, fill, n))
	}
	if v.stats.Other > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Subtle).
			Render(fmt.Sprintf("%-12s %d", "Other", v.stats.Other)))
	}
	return strings.Join(lines, "\n")
}

// renderProgressBreakdown draws one bar per progress step
func (v DashboardView) renderProgressBreakdown() string {
	t := theme.Current.Theme
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)

	lines := []string{headerStyle.Render("By Progress")}
	total := max(v.stats.Total, 1)
	for _, pr := range model.Progresses {
		n := v.stats.ByProgress[pr]
		lines = append(lines, fmt.Sprintf("%-5s %s %d", pr, bar(float64(n)/float64(total), 20), n))
	}
	return strings.Join(lines, "\n")
}

// renderUpcoming lists the nearest deadlines
func (v DashboardView) renderUpcoming() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)

	lines := []string{headerStyle.Render("Upcoming Deadlines")}
	if len(v.upcoming) == 0 {
		lines = append(lines, styles.Label.Render("Nothing scheduled."))
		return strings.Join(lines, "\n")
	}
	for _, p := range v.upcoming {
		style := styles.DueDate
		when := p.FormatDue()
		if p.IsOverdue(v.now) {
			style = styles.RowOverdue
			when += " overdue"
		}
		lines = append(lines, fmt.Sprintf("%s  %s", pad(p.Name, 30), style.Render(when)))
	}
	return strings.Join(lines, "\n")
}

// IsInputMode returns whether the view is in input mode
func (v DashboardView) IsInputMode() bool {
	return false
}

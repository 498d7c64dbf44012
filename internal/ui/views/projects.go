package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/ui/theme"
)

// ProjectsMode is the input mode of the projects view
type ProjectsMode int

const (
	ProjectsModeNormal ProjectsMode = iota
	ProjectsModeForm
	ProjectsModeSearch
	ProjectsModeConfirmDelete
)

type projectsLoadedMsg struct {
	rows    []model.Project
	snoozed map[string]time.Time
}

// ProjectsView is the main table of airdrop projects
type ProjectsView struct {
	app    *app.App
	width  int
	height int

	all          []model.Project
	rows         []model.Project // after the search filter
	snoozed      map[string]time.Time
	cursor       int
	scrollOffset int

	mode     ProjectsMode
	form     projectForm
	search   textinput.Model
	filter   string
	deleteID string
}

// NewProjectsView creates the projects table
func NewProjectsView(a *app.App) ProjectsView {
	ti := textinput.New()
	ti.Placeholder = "Filter by name, status or notes..."
	ti.CharLimit = 128
	return ProjectsView{
		app:    a,
		search: ti,
	}
}

// Init loads the rows
func (v ProjectsView) Init() tea.Cmd {
	return v.load
}

func (v ProjectsView) load() tea.Msg {
	return projectsLoadedMsg{
		rows:    v.app.Data.Snapshot(),
		snoozed: v.app.Snoozes.Entries(),
	}
}

// IsInputMode is true while the form, search or a confirmation is open
func (v ProjectsView) IsInputMode() bool {
	return v.mode != ProjectsModeNormal
}

// SetSize updates the view dimensions
func (v ProjectsView) SetSize(width, height int) ProjectsView {
	v.width = width
	v.height = height
	v.search.Width = width - 4
	return v
}

func (v ProjectsView) visibleRows() int {
	// header row + hint line + filter line
	return max(v.height-4, 1)
}

func (v *ProjectsView) ensureCursorVisible() {
	visible := v.visibleRows()
	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}
	v.scrollOffset = max(0, min(v.scrollOffset, len(v.rows)-visible))
}

func (v *ProjectsView) applyFilter() {
	if v.filter == "" {
		v.rows = v.all
	} else {
		needle := strings.ToLower(v.filter)
		v.rows = nil
		for _, p := range v.all {
			hay := strings.ToLower(p.Name + " " + string(p.Status) + " " + p.Notes)
			if strings.Contains(hay, needle) {
				v.rows = append(v.rows, p)
			}
		}
	}
	if v.cursor >= len(v.rows) {
		v.cursor = max(0, len(v.rows)-1)
	}
	v.ensureCursorVisible()
}

func (v ProjectsView) selected() (model.Project, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return model.Project{}, false
	}
	return v.rows[v.cursor], true
}

// Update handles messages for the projects view
func (v ProjectsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		v.all = msg.rows
		v.snoozed = msg.snoozed
		v.applyFilter()
		return v, nil

	case DataChangedMsg:
		return v, v.load

	case tea.KeyMsg:
		switch v.mode {
		case ProjectsModeForm:
			return v.handleForm(msg)
		case ProjectsModeSearch:
			return v.handleSearch(msg)
		case ProjectsModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleNormal(msg)
		}
	}

	if v.mode == ProjectsModeSearch {
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v ProjectsView) handleNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.rows)-1 {
			v.cursor++
		}
	case "g":
		v.cursor = 0
	case "G":
		v.cursor = max(0, len(v.rows)-1)
	case "pgup", "ctrl+u":
		v.cursor = max(0, v.cursor-v.visibleRows())
	case "pgdown", "ctrl+d":
		v.cursor = max(0, min(len(v.rows)-1, v.cursor+v.visibleRows()))

	case "a":
		v.form = newProjectForm(nil)
		v.mode = ProjectsModeForm
		return v, textinput.Blink

	case "enter", "e":
		p, ok := v.selected()
		if !ok {
			return v, nil
		}
		v.form = newProjectForm(&p)
		v.mode = ProjectsModeForm
		return v, textinput.Blink

	case "d", "delete":
		if p, ok := v.selected(); ok {
			v.deleteID = p.ID
			v.mode = ProjectsModeConfirmDelete
		}

	case "r":
		if p, ok := v.selected(); ok {
			return v, v.toggleReminder(p)
		}

	case "s":
		if p, ok := v.selected(); ok {
			return v, v.snooze(p)
		}

	case "/":
		v.mode = ProjectsModeSearch
		v.search.SetValue(v.filter)
		return v, v.search.Focus()

	case "esc":
		if v.filter != "" {
			v.filter = ""
			v.applyFilter()
		}
	}
	v.ensureCursorVisible()
	return v, nil
}

func (v ProjectsView) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		v.mode = ProjectsModeNormal
		return v, nil
	}

	form, cmd, submit := v.form.update(msg)
	v.form = form
	if !submit {
		return v, cmd
	}

	p, err := v.form.project()
	if err != nil {
		v.form.err = err.Error()
		return v, nil
	}
	v.mode = ProjectsModeNormal
	if v.form.editing != nil {
		return v, v.update(p)
	}
	return v, v.add(p)
}

func (v ProjectsView) handleSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.filter = strings.TrimSpace(v.search.Value())
		v.search.Blur()
		v.mode = ProjectsModeNormal
		v.applyFilter()
		return v, nil
	case "esc":
		v.search.Blur()
		v.mode = ProjectsModeNormal
		return v, nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	return v, cmd
}

func (v ProjectsView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = ProjectsModeNormal
		id := v.deleteID
		v.deleteID = ""
		return v, v.delete(id)
	case "n", "N", "esc":
		v.mode = ProjectsModeNormal
		v.deleteID = ""
	}
	return v, nil
}

func (v ProjectsView) add(p model.Project) tea.Cmd {
	return func() tea.Msg {
		added, err := v.app.AddProject(p)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to add project: %w", err)}
		}
		return changed("Added %s", added.Name)
	}
}

func (v ProjectsView) update(p model.Project) tea.Cmd {
	return func() tea.Msg {
		saved, err := v.app.UpdateProject(p)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to save project: %w", err)}
		}
		return changed("Saved %s", saved.Name)
	}
}

func (v ProjectsView) delete(id string) tea.Cmd {
	return func() tea.Msg {
		removed, err := v.app.DeleteProject(id)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to delete project: %w", err)}
		}
		return changed("Deleted %s", removed.Name)
	}
}

func (v ProjectsView) toggleReminder(p model.Project) tea.Cmd {
	return func() tea.Msg {
		if err := v.app.SetProjectReminder(p.ID, !p.ReminderEnabled); err != nil {
			return ErrorMsg{Err: err}
		}
		state := "on"
		if p.ReminderEnabled {
			state = "off"
		}
		return changed("Reminder %s for %s", state, p.Name)
	}
}

func (v ProjectsView) snooze(p model.Project) tea.Cmd {
	minutes := v.app.Settings().SnoozeMinutes
	return func() tea.Msg {
		until, err := v.app.SnoozeProject(p.ID, minutes)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return changed("Snoozed %s until %s", p.Name, until.Format("15:04"))
	}
}

// column widths for the table; name and notes share what is left
const (
	colStatus   = 11
	colDue      = 24
	colProgress = 10
	colReward   = 16
	colReminder = 9
)

// View renders the projects view
func (v ProjectsView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}
	if v.mode == ProjectsModeForm {
		return v.form.view(v.width)
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles
	var b strings.Builder

	switch {
	case v.mode == ProjectsModeSearch:
		b.WriteString(lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("/"))
		b.WriteString(v.search.View())
	case v.filter != "":
		b.WriteString(lipgloss.NewStyle().Foreground(t.Info).Italic(true).
			Render(fmt.Sprintf("filter: %q (%d of %d)", v.filter, len(v.rows), len(v.all))))
		b.WriteString(styles.Label.Render(" (esc to clear)"))
	default:
		b.WriteString(styles.Label.Render(fmt.Sprintf("%d projects", len(v.all))))
	}
	b.WriteString("\n")

	flexible := max(v.width-colStatus-colDue-colProgress-colReward-colReminder-8, 20)
	colName := flexible * 3 / 5
	colNotes := flexible - colName

	header := strings.Join([]string{
		pad("Project", colName), pad("Status", colStatus), pad("Due", colDue),
		pad("Progress", colProgress), pad("Reward", colReward), pad("Reminder", colReminder),
		pad("Notes", colNotes),
	}, " ")
	b.WriteString(styles.TableHeader.Render(header))
	b.WriteString("\n")

	if len(v.rows) == 0 {
		b.WriteString("\n")
		if v.filter != "" {
			b.WriteString(styles.Label.Render("No projects match the filter."))
		} else {
			b.WriteString(styles.Label.Render("No projects yet. Press a to add one."))
		}
		b.WriteString("\n")
	}

	now := time.Now()
	end := min(v.scrollOffset+v.visibleRows(), len(v.rows))
	for i := v.scrollOffset; i < end; i++ {
		p := v.rows[i]
		b.WriteString(v.renderRow(p, i == v.cursor, now, colName, colNotes))
		b.WriteString("\n")
	}

	if v.mode == ProjectsModeConfirmDelete {
		name := ""
		for _, p := range v.all {
			if p.ID == v.deleteID {
				name = p.Name
			}
		}
		b.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Bold(true).
			Render(fmt.Sprintf("Delete %q? (y/n)", name)))
	} else {
		b.WriteString(hint("a", "add", "enter", "edit", "d", "delete", "r", "reminder", "s", "snooze", "/", "filter"))
	}
	return b.String()
}

func (v ProjectsView) renderRow(p model.Project, isCursor bool, now time.Time, colName, colNotes int) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	rowStyle := styles.RowNormal
	if p.IsOverdue(now) {
		rowStyle = styles.RowOverdue
	}
	if isCursor {
		rowStyle = styles.RowSelected
	}

	due := p.FormatDue()
	if due == "" {
		due = "-"
	}

	reminder := "on"
	if !p.ReminderEnabled {
		reminder = "off"
	}
	if until, ok := v.snoozed[p.ID]; ok && until.After(now) {
		reminder = "zz " + until.Format("15:04")
	}

	status := lipgloss.NewStyle().Foreground(t.StatusColor(p.Status)).Bold(true).
		Render(pad(string(p.Status), colStatus))
	if isCursor {
		status = lipgloss.NewStyle().Foreground(t.StatusColor(p.Status)).Background(t.Highlight).Bold(true).
			Render(pad(string(p.Status), colStatus))
	}

	sep := rowStyle.Render(" ")
	return rowStyle.Render(pad(p.Name, colName)) + sep +
		status + sep +
		rowStyle.Render(pad(due, colDue)) + sep +
		rowStyle.Render(pad(string(p.Progress), colProgress)) + sep +
		rowStyle.Render(pad(model.FormatReward(p.EstimatedReward), colReward)) + sep +
		rowStyle.Render(pad(reminder, colReminder)) + sep +
		rowStyle.Render(pad(p.NotesPreview(), colNotes))
}

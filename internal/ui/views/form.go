package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/ui/theme"
)

// Form fields in tab order. Status and Progress are selectors, the rest
// are text inputs.
const (
	fieldName = iota
	fieldStatus
	fieldDueDate
	fieldDueTime
	fieldProgress
	fieldReward
	fieldLink
	fieldNotes
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Project Name", "Status", "Due Date", "Due Time",
	"Progress", "Estimated Reward", "Project Link", "Notes",
}

// projectForm edits one project. editing holds the original row when the
// form was opened on an existing project.
type projectForm struct {
	inputs   [fieldCount]textinput.Model
	status   int
	progress int
	reminder bool
	focus    int
	editing  *model.Project
	err      string
}

func newProjectForm(p *model.Project) projectForm {
	f := projectForm{reminder: true}
	placeholders := [fieldCount]string{
		fieldName:    "Project name",
		fieldDueDate: "YYYY-MM-DD",
		fieldDueTime: "HH:MM",
		fieldReward:  "0",
		fieldLink:    "https://",
		fieldNotes:   "Notes",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Prompt = ""
		f.inputs[i] = ti
	}
	f.inputs[fieldDueDate].CharLimit = 10
	f.inputs[fieldDueTime].CharLimit = 5
	f.inputs[fieldNotes].CharLimit = 2000

	if p != nil {
		orig := *p
		f.editing = &orig
		f.inputs[fieldName].SetValue(p.Name)
		f.inputs[fieldDueDate].SetValue(p.DueDate)
		f.inputs[fieldDueTime].SetValue(p.DueTime)
		if p.EstimatedReward != 0 {
			f.inputs[fieldReward].SetValue(strconv.FormatFloat(p.EstimatedReward, 'f', -1, 64))
		}
		f.inputs[fieldLink].SetValue(p.Link)
		f.inputs[fieldNotes].SetValue(p.Notes)
		f.status = indexOf(model.Statuses, p.Status)
		f.progress = indexOf(model.Progresses, p.Progress)
		f.reminder = p.ReminderEnabled
	}
	f.inputs[fieldName].Focus()
	return f
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func (f projectForm) isSelector() bool {
	return f.focus == fieldStatus || f.focus == fieldProgress
}

// setFocus moves focus to field i, blurring the previous input
func (f *projectForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	if f.isSelector() {
		return nil
	}
	return f.inputs[f.focus].Focus()
}

// update handles a key in the form. It reports submit when the user asked
// to save.
func (f projectForm) update(msg tea.KeyMsg) (projectForm, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "down":
		return f, f.setFocus(f.focus + 1), false
	case "shift+tab", "up":
		return f, f.setFocus(f.focus - 1), false
	case "ctrl+s":
		return f, nil, true
	case "enter":
		if f.focus == fieldCount-1 {
			return f, nil, true
		}
		return f, f.setFocus(f.focus + 1), false
	case "ctrl+r":
		f.reminder = !f.reminder
		return f, nil, false
	}

	if f.isSelector() {
		step := 0
		switch msg.String() {
		case "left", "h":
			step = -1
		case "right", "l", " ":
			step = 1
		}
		if f.focus == fieldStatus {
			f.status = (f.status + step + len(model.Statuses)) % len(model.Statuses)
		} else {
			f.progress = (f.progress + step + len(model.Progresses)) % len(model.Progresses)
		}
		return f, nil, false
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

// project builds the project from the form, keeping the id of the row
// being edited
func (f projectForm) project() (model.Project, error) {
	reward, err := parseRewardInput(f.inputs[fieldReward].Value())
	if err != nil {
		return model.Project{}, err
	}
	p := model.Project{
		Name:            f.inputs[fieldName].Value(),
		Status:          model.Statuses[f.status],
		DueDate:         f.inputs[fieldDueDate].Value(),
		DueTime:         f.inputs[fieldDueTime].Value(),
		Progress:        model.Progresses[f.progress],
		EstimatedReward: reward,
		Link:            f.inputs[fieldLink].Value(),
		Notes:           f.inputs[fieldNotes].Value(),
		ReminderEnabled: f.reminder,
	}
	if f.editing != nil {
		p.ID = f.editing.ID
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// parseRewardInput accepts "1500", "1,500.50" and "Rp 1,500"
func parseRewardInput(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidReward, s)
	}
	return v, nil
}

func (f projectForm) view(width int) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	title := "Add Project"
	if f.editing != nil {
		title = "Edit Project"
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.Subtle).Width(18)
	activeLabel := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Width(18)

	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	for i := 0; i < fieldCount; i++ {
		label := labelStyle
		if i == f.focus {
			label = activeLabel
		}
		b.WriteString(label.Render(fieldLabels[i]))

		switch i {
		case fieldStatus:
			st := model.Statuses[f.status]
			b.WriteString(selector(string(st), i == f.focus, t.StatusColor(st)))
		case fieldProgress:
			b.WriteString(selector(string(model.Progresses[f.progress]), i == f.focus, t.ProgressFill))
		default:
			in := f.inputs[i]
			in.Width = max(width-24, 10)
			b.WriteString(in.View())
		}
		b.WriteString("\n")
	}

	reminder := "off"
	if f.reminder {
		reminder = "on"
	}
	b.WriteString(labelStyle.Render("Reminder"))
	b.WriteString(reminder)
	b.WriteString("\n\n")

	if f.err != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(hint("tab", "next", "←/→", "choose", "ctrl+r", "reminder", "ctrl+s", "save", "esc", "cancel"))

	return styles.Panel.Width(min(width-2, 90)).Render(b.String())
}

func selector(value string, focused bool, color lipgloss.Color) string {
	style := lipgloss.NewStyle().Foreground(color).Bold(true)
	if focused {
		return "‹ " + style.Render(value) + " ›"
	}
	return "  " + style.Render(value)
}

package views

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/dataset"
	"github.com/dori/airtrack/internal/model"
	"github.com/dori/airtrack/internal/snooze"
	"github.com/dori/airtrack/internal/ui/theme"
)

// ReminderPopup shows due projects one at a time. Reminders that arrive
// while a popup is open wait in the queue.
type ReminderPopup struct {
	app    *app.App
	width  int
	height int

	queue  []model.Project
	choice int // index into snooze.Options
}

// NewReminderPopup creates an empty popup queue
func NewReminderPopup(a *app.App) ReminderPopup {
	return ReminderPopup{app: a}
}

// SetSize sets the area the popup is centered in
func (p ReminderPopup) SetSize(width, height int) ReminderPopup {
	p.width = width
	p.height = height
	return p
}

// Push queues a due project. A project already waiting is not queued twice.
func (p ReminderPopup) Push(proj model.Project) ReminderPopup {
	for _, q := range p.queue {
		if q.ID == proj.ID && proj.ID != "" {
			return p
		}
	}
	if len(p.queue) == 0 {
		p.choice = p.defaultChoice()
	}
	p.queue = append(p.queue, proj)
	return p
}

func (p ReminderPopup) defaultChoice() int {
	minutes := snooze.DefaultMinutes
	if p.app != nil {
		minutes = p.app.Settings().SnoozeMinutes
	}
	return indexOf(snooze.Options, minutes)
}

// Active reports whether a reminder is on screen
func (p ReminderPopup) Active() bool {
	return len(p.queue) > 0
}

// Pending is the number of reminders including the visible one
func (p ReminderPopup) Pending() int {
	return len(p.queue)
}

// Current returns the reminder on screen
func (p ReminderPopup) Current() (model.Project, bool) {
	if len(p.queue) == 0 {
		return model.Project{}, false
	}
	return p.queue[0], true
}

// SnoozeMinutes is the duration currently selected in the popup
func (p ReminderPopup) SnoozeMinutes() int {
	return snooze.Options[p.choice]
}

func (p ReminderPopup) pop() ReminderPopup {
	p.queue = p.queue[1:]
	if len(p.queue) > 0 {
		p.choice = p.defaultChoice()
	}
	return p
}

// Update handles keys while a reminder is shown
func (p ReminderPopup) Update(msg tea.Msg) (ReminderPopup, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !p.Active() {
		return p, nil
	}
	current := p.queue[0]

	switch key.String() {
	case "left", "h":
		p.choice = (p.choice - 1 + len(snooze.Options)) % len(snooze.Options)
	case "right", "l":
		p.choice = (p.choice + 1) % len(snooze.Options)
	case "1", "2", "3", "4", "5":
		if i := int(key.String()[0] - '1'); i < len(snooze.Options) {
			p.choice = i
		}
	case "s", "enter":
		minutes := p.SnoozeMinutes()
		p = p.pop()
		return p, p.snooze(current, minutes)
	case "d", "esc", "x":
		p = p.pop()
		return p, p.dismiss(current)
	}
	return p, nil
}

func (p ReminderPopup) snooze(proj model.Project, minutes int) tea.Cmd {
	a := p.app
	return func() tea.Msg {
		until, err := a.SnoozeProject(proj.ID, minutes)
		if errors.Is(err, dataset.ErrNotFound) {
			// test reminders and rows deleted since the popup opened
			return StatusMsg{Text: fmt.Sprintf("%s is no longer in the list", proj.Name)}
		}
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to snooze: %w", err)}
		}
		return changed("Snoozed %s until %s", proj.Name, until.Format("15:04"))
	}
}

func (p ReminderPopup) dismiss(proj model.Project) tea.Cmd {
	a := p.app
	return func() tea.Msg {
		a.DismissReminder(proj)
		return StatusMsg{Text: "Dismissed reminder for " + proj.Name}
	}
}

// View renders the popup centered over the screen
func (p ReminderPopup) View() string {
	proj, ok := p.Current()
	if !ok {
		return ""
	}
	t := theme.Current.Theme
	styles := theme.Current.Styles

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Warning).Bold(true).Render("⏰ Airdrop Reminder"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(proj.Name))
	b.WriteString("\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(styles.Label.Width(10).Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Due", proj.FormatDue())
	row("Progress", string(proj.Progress))
	if proj.EstimatedReward != 0 {
		row("Reward", styles.Reward.Render(model.FormatReward(proj.EstimatedReward)))
	}
	row("Link", proj.Link)
	row("Notes", proj.NotesPreview())
	b.WriteString("\n")

	var opts []string
	for i, m := range snooze.Options {
		label := fmt.Sprintf(" %s ", snoozeLabel(m))
		if i == p.choice {
			opts = append(opts, styles.RowSelected.Render(label))
		} else {
			opts = append(opts, styles.Label.Render(label))
		}
	}
	b.WriteString("Snooze for: " + strings.Join(opts, ""))
	b.WriteString("\n\n")
	b.WriteString(hint("←/→", "duration", "s", "snooze", "d", "dismiss"))
	if n := len(p.queue) - 1; n > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Label.Render(fmt.Sprintf("%d more waiting", n)))
	}

	box := styles.Popup.Render(b.String())
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}

func snoozeLabel(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh", minutes/60)
}

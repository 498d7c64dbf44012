package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
)

const aboutMarkdown = `# airtrack

Track airdrop campaigns, their deadlines and expected rewards, and get
reminded when a deadline passes.

## Reminders

Every minute airtrack looks for **Active** projects whose due date and
time have passed. Each one is announced once per session. Snoozing hides
a project's reminder for 15 minutes to 4 hours; when the snooze runs out
the reminder comes back.

## Security

The app is protected by a password, stored as a salted PBKDF2-SHA512
hash. After a period without input the screen locks and asks for the
password again. A security question lets you set a new password if you
forget it.

## Files

| File | Contents |
|------|----------|
| ` + "`airdrop_data.xlsx`" + ` | your projects |
| ` + "`snooze_data.json`" + ` | active snoozes |
| ` + "`history.db`" + ` | reminder and change history |
| ` + "`backups/`" + ` | daily and manual backups |

Exports go to Excel, CSV or a PDF report. Imports accept Excel and CSV
with the same column names.

## Command line

` + "```" + `
airtrack add "Layer Zero" --due 2025-01-01 --time 09:00
airtrack list --overdue
airtrack export report.pdf
airtrack history --project "Layer Zero"
airtrack recovery setup
` + "```" + `
`

// AboutView renders the about page as markdown
type AboutView struct {
	log      zerolog.Logger
	width    int
	height   int
	viewport viewport.Model
}

// NewAboutView creates the about page
func NewAboutView(log zerolog.Logger) AboutView {
	return AboutView{log: log, viewport: viewport.New(0, 0)}
}

// Init has nothing to load
func (v AboutView) Init() tea.Cmd {
	return nil
}

// SetSize re-renders the markdown for the new width
func (v AboutView) SetSize(width, height int) AboutView {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = height
	v.viewport.SetContent(v.render())
	return v
}

func (v AboutView) render() string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(min(max(v.width-4, 40), 100)),
	)
	if err != nil {
		v.log.Warn().Err(err).Msg("markdown renderer unavailable")
		return aboutMarkdown
	}
	out, err := renderer.Render(aboutMarkdown)
	if err != nil {
		v.log.Warn().Err(err).Msg("failed to render about page")
		return aboutMarkdown
	}
	return strings.TrimRight(out, "\n")
}

// Update scrolls the page
func (v AboutView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the about page
func (v AboutView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}
	return v.viewport.View()
}

// IsInputMode returns whether the view is in input mode
func (v AboutView) IsInputMode() bool {
	return false
}

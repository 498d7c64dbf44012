package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/ui/theme"
)

// Messages the views send up to the root model. They live here rather
// than in package ui to avoid an import cycle.

// StatusMsg is shown in the footer until the next keypress
type StatusMsg struct {
	Text string
}

// ErrorMsg is shown in the footer in the error color
type ErrorMsg struct {
	Err error
}

// DataChangedMsg tells every view to reload from the dataset. Status, if
// set, is shown in the footer.
type DataChangedMsg struct {
	Status string
}

// SettingsChangedMsg is sent after settings were saved
type SettingsChangedMsg struct{}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

// changed reports a mutation; meant to be returned from a command
func changed(format string, args ...any) tea.Msg {
	return DataChangedMsg{Status: fmt.Sprintf(format, args...)}
}

// truncate shortens s to width cells, ending in "…" when cut
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// pad left-aligns s in a cell of width
func pad(s string, width int) string {
	s = truncate(s, width)
	if gap := width - lipgloss.Width(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// bar renders a horizontal bar of width cells, filled by ratio
func bar(ratio float64, width int) string {
	t := theme.Current.Theme
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	if filled == 0 && ratio > 0 {
		filled = 1
	}
	return lipgloss.NewStyle().Foreground(t.ProgressFill).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(t.ProgressTrack).Render(strings.Repeat("░", width-filled))
}

// hint formats a key and its description for the in-view hint line
func hint(pairs ...string) string {
	styles := theme.Current.Styles
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, styles.HelpKey.Render(pairs[i])+styles.HelpDesc.Render(" "+pairs[i+1]))
	}
	return strings.Join(parts, styles.HelpSeparator.Render(" • "))
}

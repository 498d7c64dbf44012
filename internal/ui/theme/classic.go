package theme

import "github.com/charmbracelet/lipgloss"

// Classic uses the status fills of the exported spreadsheet, so the table
// on screen matches the xlsx file
var Classic = Theme{
	Name: "classic",

	Background: lipgloss.Color("#1B1B1B"),
	Foreground: lipgloss.Color("#F5F5DC"),
	Subtle:     lipgloss.Color("#808080"),
	Highlight:  lipgloss.Color("#333333"),
	Border:     lipgloss.Color("#808080"),

	Primary:   lipgloss.Color("#4FC3F7"),
	Secondary: lipgloss.Color("#F5F5DC"),
	Info:      lipgloss.Color("#4FC3F7"),

	Success: lipgloss.Color("#81C784"),
	Warning: lipgloss.Color("#FFA500"),
	Error:   lipgloss.Color("#E57373"),

	StatusActive:     lipgloss.Color("#4FC3F7"),
	StatusCompleted:  lipgloss.Color("#81C784"),
	StatusMonitoring: lipgloss.Color("#FFA500"),
	StatusDropped:    lipgloss.Color("#E57373"),

	ProgressFill:  lipgloss.Color("#81C784"),
	ProgressTrack: lipgloss.Color("#333333"),
}

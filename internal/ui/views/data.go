package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/airtrack/internal/app"
	"github.com/dori/airtrack/internal/sheet"
	"github.com/dori/airtrack/internal/ui/theme"
)

// DataMode is the input mode of the data view
type DataMode int

const (
	DataModeMenu DataMode = iota
	DataModePath
	DataModeConfirm
)

type dataAction int

const (
	actionExportXLSX dataAction = iota
	actionExportCSV
	actionExportPDF
	actionImport
	actionBackup
	actionDeleteAll
	actionCount
)

var dataActionLabels = [actionCount]string{
	"Export to Excel (.xlsx)",
	"Export to CSV",
	"Export PDF report",
	"Import from Excel or CSV",
	"Back up now",
	"Delete all data",
}

// DataView offers export, import, backup and delete-all
type DataView struct {
	app    *app.App
	width  int
	height int

	cursor int
	mode   DataMode
	input  textinput.Model
	path   string // import path waiting for confirmation
}

// NewDataView creates the data management view
func NewDataView(a *app.App) DataView {
	ti := textinput.New()
	ti.CharLimit = 1024
	return DataView{app: a, input: ti}
}

// Init has nothing to load
func (v DataView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v DataView) SetSize(width, height int) DataView {
	v.width = width
	v.height = height
	v.input.Width = width - 8
	return v
}

// IsInputMode is true while a path is typed or a confirmation is open
func (v DataView) IsInputMode() bool {
	return v.mode != DataModeMenu
}

func (v DataView) action() dataAction {
	return dataAction(v.cursor)
}

// exportFormat maps the export actions to a file format
func (a dataAction) exportFormat() (sheet.Format, bool) {
	switch a {
	case actionExportXLSX:
		return sheet.FormatXLSX, true
	case actionExportCSV:
		return sheet.FormatCSV, true
	case actionExportPDF:
		return sheet.FormatPDF, true
	}
	return "", false
}

// Update handles messages
func (v DataView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.mode == DataModePath {
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	switch v.mode {
	case DataModePath:
		return v.handlePath(keyMsg)
	case DataModeConfirm:
		return v.handleConfirm(keyMsg)
	}

	switch keyMsg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < int(actionCount)-1 {
			v.cursor++
		}
	case "enter":
		return v.start()
	}
	return v, nil
}

// start opens the path prompt or confirmation for the selected action
func (v DataView) start() (tea.Model, tea.Cmd) {
	act := v.action()
	if format, ok := act.exportFormat(); ok {
		dir, err := os.Getwd()
		if err != nil {
			dir = v.app.Paths.DataDir
		}
		v.input.SetValue(v.app.DefaultExportPath(dir, format))
		v.input.CursorEnd()
		v.mode = DataModePath
		return v, v.input.Focus()
	}

	switch act {
	case actionImport:
		v.input.SetValue("")
		v.input.Placeholder = "path/to/file.xlsx"
		v.mode = DataModePath
		return v, v.input.Focus()
	case actionBackup:
		return v, v.backup()
	case actionDeleteAll:
		v.mode = DataModeConfirm
	}
	return v, nil
}

func (v DataView) handlePath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.input.Blur()
		v.mode = DataModeMenu
		return v, nil
	case "enter":
		path := expandHome(strings.TrimSpace(v.input.Value()))
		if path == "" {
			return v, nil
		}
		v.input.Blur()
		if v.action() == actionImport {
			v.path = path
			v.mode = DataModeConfirm
			return v, nil
		}
		v.mode = DataModeMenu
		return v, v.export(path)
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v DataView) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = DataModeMenu
		if v.action() == actionImport {
			return v, v.importFile(v.path)
		}
		return v, v.deleteAll()
	case "n", "N", "esc":
		v.mode = DataModeMenu
		v.path = ""
	}
	return v, nil
}

func (v DataView) export(path string) tea.Cmd {
	a := v.app
	return func() tea.Msg {
		if err := a.Export(path); err != nil {
			return ErrorMsg{Err: err}
		}
		return StatusMsg{Text: "Exported to " + path}
	}
}

func (v DataView) importFile(path string) tea.Cmd {
	a := v.app
	return func() tea.Msg {
		n, err := a.Import(path)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("import failed, data unchanged: %w", err)}
		}
		return changed("Imported %d projects from %s", n, filepath.Base(path))
	}
}

func (v DataView) backup() tea.Cmd {
	a := v.app
	return func() tea.Msg {
		b, err := a.Backup()
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("backup failed: %w", err)}
		}
		return changed("Backup created (%d files) in %s", len(b.Files), a.Backups.Dir())
	}
}

func (v DataView) deleteAll() tea.Cmd {
	a := v.app
	return func() tea.Msg {
		if err := a.DeleteAll(); err != nil {
			return ErrorMsg{Err: err}
		}
		return changed("All data deleted")
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// View renders the data view
func (v DataView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	var b strings.Builder
	b.WriteString(styles.Title.Render("Data"))
	b.WriteString("\n")

	for i, label := range dataActionLabels {
		style := styles.RowNormal
		if dataAction(i) == actionDeleteAll {
			style = lipgloss.NewStyle().Foreground(t.Error)
		}
		if i == v.cursor {
			b.WriteString(styles.RowSelected.Render("> " + label))
		} else {
			b.WriteString(style.Render("  " + label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.Label.Render("Data file: " + v.app.Data.Path()))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render("Backups:   " + v.app.Backups.Dir()))
	b.WriteString("\n\n")

	switch v.mode {
	case DataModePath:
		prompt := "Save to:"
		if v.action() == actionImport {
			prompt = "Import from:"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render(prompt))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(v.input.View()))
		b.WriteString("\n")
		b.WriteString(hint("enter", "confirm", "esc", "cancel"))
	case DataModeConfirm:
		warn := lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
		if v.action() == actionImport {
			b.WriteString(warn.Render(fmt.Sprintf("Replace all current projects with %s? (y/n)", filepath.Base(v.path))))
		} else {
			b.WriteString(warn.Render("Delete ALL projects and snoozes? This cannot be undone. (y/n)"))
		}
	default:
		b.WriteString(hint("j/k", "navigate", "enter", "run"))
	}
	return b.String()
}

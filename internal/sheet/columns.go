// Package sheet encodes the project table as xlsx, CSV and PDF.
package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dori/airtrack/internal/model"
)

const (
	ColID       = "ID"
	ColName     = "Project Name"
	ColStatus   = "Status"
	ColDueDate  = "Due Date"
	ColDueTime  = "Due Time"
	ColProgress = "Progress"
	ColReward   = "Estimated Reward"
	ColLink     = "Project Link"
	ColNotes    = "Notes"
	ColReminder = "Reminder Enabled"
)

// ExportColumns is the header used for every export. The reserved
// columns (ID, Reminder Enabled) never leave the data file.
var ExportColumns = []string{
	ColName, ColStatus, ColDueDate, ColDueTime, ColProgress,
	ColReward, ColLink, ColNotes,
}

// StorageColumns is the header of the application's own data file
var StorageColumns = append(append([]string{ColID}, ExportColumns...), ColReminder)

var ErrMissingName = errors.New("missing \"Project Name\" column")

// RowError points at the offending data row, counting the header as row 1
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// cellValue returns the typed value written for col
func cellValue(p *model.Project, col string) any {
	switch col {
	case ColID:
		return p.ID
	case ColName:
		return p.Name
	case ColStatus:
		return string(p.Status)
	case ColDueDate:
		return p.DueDate
	case ColDueTime:
		return p.DueTime
	case ColProgress:
		return string(p.Progress)
	case ColReward:
		return p.EstimatedReward
	case ColLink:
		return p.Link
	case ColNotes:
		return p.Notes
	case ColReminder:
		return p.ReminderEnabled
	}
	return ""
}

// cellText is the plain-text form used by CSV and width calculation
func cellText(p *model.Project, col string) string {
	switch v := cellValue(p, col).(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}
	return ""
}

// decodeRows turns a header row plus records into projects. Missing
// columns fall back to defaults: reminder enabled, zero reward, empty text.
func decodeRows(records [][]string) ([]model.Project, error) {
	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	if _, ok := index[ColName]; !ok {
		return nil, ErrMissingName
	}

	projects := make([]model.Project, 0, len(records)-1)
	for r, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		p := model.Project{
			ID:       get(ColID),
			Name:     get(ColName),
			Status:   model.Status(get(ColStatus)),
			DueDate:  get(ColDueDate),
			DueTime:  get(ColDueTime),
			Progress: model.Progress(get(ColProgress)),
			Link:     get(ColLink),
			Notes:    rawCell(rec, index, ColNotes),
		}

		reward, err := parseReward(get(ColReward))
		if err != nil {
			return nil, &RowError{Row: r + 2, Column: ColReward, Err: err}
		}
		p.EstimatedReward = reward

		enabled, err := parseBool(get(ColReminder), true)
		if err != nil {
			return nil, &RowError{Row: r + 2, Column: ColReminder, Err: err}
		}
		p.ReminderEnabled = enabled

		projects = append(projects, p)
	}
	return projects, nil
}

// notes keep their inner whitespace
func rawCell(rec []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseReward(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "Rp"))
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, model.ErrInvalidReward
	}
	return v, nil
}

func parseBool(s string, def bool) (bool, error) {
	switch strings.ToLower(s) {
	case "":
		return def, nil
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

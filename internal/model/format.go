package model

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// NotesPreviewLen is how many characters of notes the table shows
const NotesPreviewLen = 47

// FormatReward renders a reward as "Rp 1,234.56"
func FormatReward(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "Rp " + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDue renders "2025-01-01 09:00 (Wednesday)". Missing parts are
// shown as-is and unparsable dates are returned without the weekday.
func (p *Project) FormatDue() string {
	if p.DueDate == "" {
		return p.DueTime
	}
	s := p.DueDate
	if p.DueTime != "" {
		s += " " + p.DueTime
	}
	d, err := time.Parse(DateLayout, p.DueDate)
	if err != nil {
		return s
	}
	return s + " (" + d.Weekday().String() + ")"
}

// NotesPreview shortens notes for table cells
func (p *Project) NotesPreview() string {
	notes := strings.ReplaceAll(p.Notes, "\n", " ")
	if utf8.RuneCountInString(notes) <= NotesPreviewLen+3 {
		return notes
	}
	r := []rune(notes)
	return string(r[:NotesPreviewLen]) + "..."
}

package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Status represents where an airdrop campaign stands
type Status string

const (
	StatusActive     Status = "Active"
	StatusCompleted  Status = "Completed"
	StatusMonitoring Status = "Monitoring"
	StatusDropped    Status = "Dropped"
)

// Statuses lists every status in display order
var Statuses = []Status{StatusActive, StatusCompleted, StatusMonitoring, StatusDropped}

// Progress is one of the fixed percentage steps
type Progress string

const (
	Progress0   Progress = "0%"
	Progress25  Progress = "25%"
	Progress50  Progress = "50%"
	Progress75  Progress = "75%"
	Progress100 Progress = "100%"
)

// Progresses lists every progress step in ascending order
var Progresses = []Progress{Progress0, Progress25, Progress50, Progress75, Progress100}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrNameRequired    = errors.New("project name is required")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidProgress = errors.New("invalid progress")
	ErrInvalidDate     = errors.New("due date must be YYYY-MM-DD")
	ErrInvalidTime     = errors.New("due time must be HH:MM")
	ErrInvalidReward   = errors.New("estimated reward must be a number")
	ErrNoDueTimestamp  = errors.New("due date and due time are both required")
)

// Project is one tracked airdrop
type Project struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Status          Status   `json:"status"`
	DueDate         string   `json:"due_date,omitempty"`
	DueTime         string   `json:"due_time,omitempty"`
	Progress        Progress `json:"progress"`
	EstimatedReward float64  `json:"estimated_reward"`
	Link            string   `json:"link,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	ReminderEnabled bool     `json:"reminder_enabled"`
}

// NewProject returns a project with the defaults used by the add form
func NewProject(name string) Project {
	return Project{
		Name:            name,
		Status:          StatusActive,
		Progress:        Progress0,
		ReminderEnabled: true,
	}
}

// ParseStatus matches s case-insensitively against the known statuses
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ParseProgress accepts "50%" as well as a bare "50"
func ParseProgress(s string) (Progress, error) {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasSuffix(s, "%") {
		s += "%"
	}
	for _, p := range Progresses {
		if s == string(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidProgress, s)
}

// Percent returns the numeric value of the progress step
func (p Progress) Percent() int {
	n, err := strconv.Atoi(strings.TrimSuffix(string(p), "%"))
	if err != nil {
		return 0
	}
	return n
}

// CompositeKey joins name, due date and due time. Older snooze files are
// keyed this way.
func (p *Project) CompositeKey() string {
	return p.Name + "_" + p.DueDate + "_" + p.DueTime
}

// HasDueTimestamp reports whether both due date and due time are set
func (p *Project) HasDueTimestamp() bool {
	return p.DueDate != "" && p.DueTime != ""
}

// DueAt combines due date and due time in loc
func (p *Project) DueAt(loc *time.Location) (time.Time, error) {
	if !p.HasDueTimestamp() {
		return time.Time{}, ErrNoDueTimestamp
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, p.DueDate+" "+p.DueTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse due %q %q: %w", p.DueDate, p.DueTime, err)
	}
	return t, nil
}

// IsOverdue returns true for an Active project whose due timestamp has passed
func (p *Project) IsOverdue(now time.Time) bool {
	if p.Status != StatusActive {
		return false
	}
	due, err := p.DueAt(now.Location())
	if err != nil {
		return false
	}
	return !now.Before(due)
}

// Normalize trims string fields and fills in defaults for empty enums
func (p *Project) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.DueDate = strings.TrimSpace(p.DueDate)
	p.DueTime = strings.TrimSpace(p.DueTime)
	p.Link = strings.TrimSpace(p.Link)
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Progress == "" {
		p.Progress = Progress0
	}
}

// Validate checks the fields a user can type
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return err
	}
	if _, err := ParseProgress(string(p.Progress)); err != nil {
		return err
	}
	if p.DueDate != "" {
		if _, err := time.Parse(DateLayout, p.DueDate); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, p.DueDate)
		}
	}
	if p.DueTime != "" {
		if _, err := time.Parse(TimeLayout, p.DueTime); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTime, p.DueTime)
		}
	}
	if math.IsNaN(p.EstimatedReward) || math.IsInf(p.EstimatedReward, 0) {
		return ErrInvalidReward
	}
	return nil
}

// DueChanged reports whether other has a different due timestamp. A moved
// deadline makes the reminder eligible to fire again.
func (p *Project) DueChanged(other Project) bool {
	return p.DueDate != other.DueDate || p.DueTime != other.DueTime
}

package notify

import (
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dori/airtrack/internal/model"
	"github.com/rs/zerolog"
)

// Urgency levels for notifications. The zero value is normal.
type Urgency int

const (
	UrgencyNormal Urgency = iota
	UrgencyLow
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Notifier sends desktop notifications through notify-send. It is a
// secondary channel next to the in-app reminder popup and may be called
// from the reminder goroutine.
type Notifier struct {
	enabled   atomic.Bool
	available bool
	command   string
	log       zerolog.Logger
}

// NewNotifier creates a notifier. It starts disabled when notify-send is
// not on PATH.
func NewNotifier(log zerolog.Logger) *Notifier {
	n := &Notifier{command: "notify-send", log: log}
	_, err := exec.LookPath(n.command)
	n.available = err == nil
	n.enabled.Store(n.available)
	return n
}

// Available reports whether notify-send was found
func (n *Notifier) Available() bool {
	return n.available
}

// SetEnabled enables or disables notifications. Enabling has no effect
// when notify-send is unavailable.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled && n.available)
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled.Load()
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.IsEnabled() {
		return nil
	}
	return exec.Command(n.command, buildArgs(notification)...).Run()
}

// SendSimple sends a simple notification with title and body
func (n *Notifier) SendSimple(title, body string) error {
	return n.Send(Notification{
		Title:   title,
		Body:    body,
		Urgency: UrgencyNormal,
		Timeout: 5 * time.Second,
	})
}

// SendReminder announces that a project's deadline has passed
func (n *Notifier) SendReminder(p model.Project) error {
	return n.Send(ReminderNotification(p))
}

// Notify implements reminder.Notifier. Failures are logged only.
func (n *Notifier) Notify(p model.Project) {
	if err := n.SendReminder(p); err != nil {
		n.log.Warn().Err(err).Str("project", p.Name).Msg("desktop notification failed")
	}
}

// ReminderNotification builds the popup for an overdue project
func ReminderNotification(p model.Project) Notification {
	body := "Due " + p.FormatDue()
	if p.EstimatedReward > 0 {
		body += "\nEstimated reward: " + model.FormatReward(p.EstimatedReward)
	}
	if p.Link != "" {
		body += "\n" + p.Link
	}
	return Notification{
		Title:   "Airdrop due: " + p.Name,
		Body:    body,
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "appointment-soon-symbolic",
	}
}

func buildArgs(notification Notification) []string {
	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "airtrack", notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}
	return args
}

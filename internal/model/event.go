package model

import "time"

// EventKind categorizes history entries
type EventKind string

const (
	EventReminderFired     EventKind = "reminder_fired"
	EventReminderSnoozed   EventKind = "reminder_snoozed"
	EventReminderDismissed EventKind = "reminder_dismissed"
	EventProjectAdded      EventKind = "project_added"
	EventProjectUpdated    EventKind = "project_updated"
	EventProjectDeleted    EventKind = "project_deleted"
	EventDataImported      EventKind = "data_imported"
	EventDataExported      EventKind = "data_exported"
	EventDataCleared       EventKind = "data_cleared"
	EventBackupCreated     EventKind = "backup_created"
	EventLocked            EventKind = "locked"
	EventUnlocked          EventKind = "unlocked"
	EventPasswordChanged   EventKind = "password_changed"
)

// Event is one row of the history log
type Event struct {
	ID          string    `json:"id"`
	Kind        EventKind `json:"kind"`
	ProjectID   string    `json:"project_id,omitempty"`
	ProjectName string    `json:"project_name,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Label is a short human description for the history list
func (k EventKind) Label() string {
	switch k {
	case EventReminderFired:
		return "reminder"
	case EventReminderSnoozed:
		return "snoozed"
	case EventReminderDismissed:
		return "dismissed"
	case EventProjectAdded:
		return "added"
	case EventProjectUpdated:
		return "updated"
	case EventProjectDeleted:
		return "deleted"
	case EventDataImported:
		return "import"
	case EventDataExported:
		return "export"
	case EventDataCleared:
		return "cleared"
	case EventBackupCreated:
		return "backup"
	case EventLocked:
		return "locked"
	case EventUnlocked:
		return "unlocked"
	case EventPasswordChanged:
		return "password"
	}
	return string(k)
}

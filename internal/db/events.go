package db

import (
	"database/sql"
	"time"

	"github.com/dori/airtrack/internal/model"
	"github.com/google/uuid"
)

// RecordEvent appends e, filling in ID and CreatedAt when unset
func (db *DB) RecordEvent(e model.Event) (model.Event, error) {
	prepare(&e)
	_, err := db.Exec(`
		INSERT INTO events (id, kind, project_id, project_name, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Kind, nullable(e.ProjectID), e.ProjectName, e.Detail, e.CreatedAt)
	if err != nil {
		return model.Event{}, err
	}
	return e, nil
}

// RecordEvents appends a batch in one transaction
func (db *DB) RecordEvents(events []model.Event) error {
	return db.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO events (id, kind, project_id, project_name, detail, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range events {
			e := &events[i]
			prepare(e)
			if _, err := stmt.Exec(e.ID, e.Kind, nullable(e.ProjectID), e.ProjectName, e.Detail, e.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentEvents returns the newest events first
func (db *DB) RecentEvents(limit int) ([]model.Event, error) {
	rows, err := db.Query(`
		SELECT id, kind, project_id, project_name, detail, created_at
		FROM events
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ProjectEvents returns the newest events for one project
func (db *DB) ProjectEvents(projectID string, limit int) ([]model.Event, error) {
	rows, err := db.Query(`
		SELECT id, kind, project_id, project_name, detail, created_at
		FROM events
		WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// CountEvents returns how many events of kind were recorded since t
func (db *DB) CountEvents(kind model.EventKind, since time.Time) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ? AND created_at >= ?`, kind, since).Scan(&n)
	return n, err
}

// PruneEvents deletes events older than before
func (db *DB) PruneEvents(before time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM events WHERE created_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		var e model.Event
		var projectID sql.NullString
		if err := rows.Scan(&e.ID, &e.Kind, &projectID, &e.ProjectName, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ProjectID = projectID.String
		events = append(events, e)
	}
	return events, rows.Err()
}

func prepare(e *model.Event) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

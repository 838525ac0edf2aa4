package repository

import (
	"context"
	"database/sql"
	"time"
)

// HistoryEntry is one history log record.
type HistoryEntry struct {
	ID       int64
	Type     string
	Severity int
	Message  string
	Job      string
	Username string
	LoggedAt time.Time
}

// HistoryRepo handles the system history log.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Append(ctx context.Context, e HistoryEntry) error {
	if e.Type == "" {
		e.Type = "*INFO"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO history_log(entry_type, severity, message, job, username)
	VALUES (?, ?, ?, ?, ?)`,
		e.Type, e.Severity, e.Message, e.Job, e.Username)
	return err
}

// Recent returns the newest entries first.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, entry_type, severity, message, job, username, logged_at
	FROM history_log ORDER BY logged_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Severity, &e.Message, &e.Job, &e.Username, &e.LoggedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

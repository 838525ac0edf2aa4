package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ScheduleRepo handles job schedule entries.
type ScheduleRepo struct {
	db *sql.DB
}

func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

func (r *ScheduleRepo) Add(ctx context.Context, e ScheduleEntry) error {
	e.Name = strings.ToUpper(strings.TrimSpace(e.Name))
	if e.Name == "" {
		return fmt.Errorf("schedule entry name is required")
	}
	if e.Command == "" {
		return fmt.Errorf("schedule entry command is required")
	}
	if e.Status == "" {
		e.Status = "*SCD"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO job_schedule(name, command, schedule, description, status)
	VALUES (?, ?, ?, ?, ?)`,
		e.Name, e.Command, e.Schedule, e.Description, e.Status)
	return err
}

func (r *ScheduleRepo) Remove(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM job_schedule WHERE name = ?`, strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule entry %s not found", name)
	}
	return nil
}

func (r *ScheduleRepo) Get(ctx context.Context, name string) (*ScheduleEntry, error) {
	var e ScheduleEntry
	err := r.db.QueryRowContext(ctx, `
	SELECT name, command, schedule, description, status, last_run, created_at
	FROM job_schedule WHERE name = ?`, strings.ToUpper(strings.TrimSpace(name))).
		Scan(&e.Name, &e.Command, &e.Schedule, &e.Description, &e.Status, &e.LastRun, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ScheduleRepo) List(ctx context.Context) ([]ScheduleEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT name, command, schedule, description, status, last_run, created_at
	FROM job_schedule ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScheduleEntry
	for rows.Next() {
		var e ScheduleEntry
		if err := rows.Scan(&e.Name, &e.Command, &e.Schedule, &e.Description,
			&e.Status, &e.LastRun, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SetStatus holds (*HLD) or releases (*SCD) an entry.
func (r *ScheduleRepo) SetStatus(ctx context.Context, name, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE job_schedule SET status = ? WHERE name = ?`,
		status, strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule entry %s not found", name)
	}
	return nil
}

func (r *ScheduleRepo) RecordRun(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_schedule SET last_run = CURRENT_TIMESTAMP WHERE name = ?`,
		strings.ToUpper(strings.TrimSpace(name)))
	return err
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SubsystemRepo handles subsystem descriptions and their job queue entries.
type SubsystemRepo struct {
	db *sql.DB
}

func NewSubsystemRepo(db *sql.DB) *SubsystemRepo {
	return &SubsystemRepo{db: db}
}

func (r *SubsystemRepo) Create(ctx context.Context, s Subsystem) error {
	s.Name = strings.ToUpper(strings.TrimSpace(s.Name))
	if s.Name == "" {
		return fmt.Errorf("subsystem name is required")
	}
	if s.Status == "" {
		s.Status = "ACTIVE"
	}
	if s.MaxJobs <= 0 {
		s.MaxJobs = 10
	}
	// The subsystem row and its queue entries land together or not at all.
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO subsystems(name, description, status, max_jobs) VALUES (?, ?, ?, ?)`,
			s.Name, s.Description, s.Status, s.MaxJobs)
		if err != nil {
			return err
		}
		for _, q := range s.Queues {
			if q.Sequence <= 0 {
				q.Sequence = 10
			}
			if q.MaxActive <= 0 {
				q.MaxActive = 5
			}
			_, err := tx.ExecContext(ctx, `
			INSERT INTO subsystem_queues(subsystem, job_queue, sequence, max_active)
			VALUES (?, ?, ?, ?)`,
				s.Name, q.JobQueue, q.Sequence, q.MaxActive)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SubsystemRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM subsystems WHERE name = ?`, strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subsystem %s not found", name)
	}
	return nil
}

func (r *SubsystemRepo) Get(ctx context.Context, name string) (*Subsystem, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	var s Subsystem
	err := r.db.QueryRowContext(ctx,
		`SELECT name, description, status, max_jobs FROM subsystems WHERE name = ?`, name).
		Scan(&s.Name, &s.Description, &s.Status, &s.MaxJobs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	queues, err := r.Queues(ctx, name)
	if err != nil {
		return nil, err
	}
	s.Queues = queues
	return &s, nil
}

func (r *SubsystemRepo) List(ctx context.Context) ([]Subsystem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description, status, max_jobs FROM subsystems ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subsystem
	for rows.Next() {
		var s Subsystem
		if err := rows.Scan(&s.Name, &s.Description, &s.Status, &s.MaxJobs); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		queues, err := r.Queues(ctx, out[i].Name)
		if err != nil {
			return nil, err
		}
		out[i].Queues = queues
	}
	return out, nil
}

func (r *SubsystemRepo) SetStatus(ctx context.Context, name, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subsystems SET status = ? WHERE name = ?`,
		status, strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subsystem %s not found", name)
	}
	return nil
}

func (r *SubsystemRepo) AddQueue(ctx context.Context, q SubsystemQueue) error {
	if q.Sequence <= 0 {
		q.Sequence = 10
	}
	if q.MaxActive <= 0 {
		q.MaxActive = 5
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO subsystem_queues(subsystem, job_queue, sequence, max_active)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(subsystem, job_queue) DO UPDATE SET
	 sequence=excluded.sequence,
	 max_active=excluded.max_active;`,
		strings.ToUpper(strings.TrimSpace(q.Subsystem)), q.JobQueue, q.Sequence, q.MaxActive)
	return err
}

func (r *SubsystemRepo) RemoveQueue(ctx context.Context, subsystem, queue string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM subsystem_queues WHERE subsystem = ? AND job_queue = ?`,
		strings.ToUpper(strings.TrimSpace(subsystem)), queue)
	return err
}

func (r *SubsystemRepo) Queues(ctx context.Context, subsystem string) ([]SubsystemQueue, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT subsystem, job_queue, sequence, max_active FROM subsystem_queues
	WHERE subsystem = ? ORDER BY sequence`,
		strings.ToUpper(strings.TrimSpace(subsystem)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SubsystemQueue
	for rows.Next() {
		var q SubsystemQueue
		if err := rows.Scan(&q.Subsystem, &q.JobQueue, &q.Sequence, &q.MaxActive); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

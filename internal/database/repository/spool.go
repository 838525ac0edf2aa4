package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SpoolRepo handles output queues and spooled files.
type SpoolRepo struct {
	db *sql.DB
}

func NewSpoolRepo(db *sql.DB) *SpoolRepo {
	return &SpoolRepo{db: db}
}

func (r *SpoolRepo) CreateOutputQueue(ctx context.Context, q OutputQueue) error {
	q.Name = strings.ToUpper(strings.TrimSpace(q.Name))
	if q.Name == "" {
		return fmt.Errorf("output queue name is required")
	}
	if q.Library == "" {
		q.Library = "QGPL"
	}
	if q.Status == "" {
		q.Status = "RLS"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO output_queues(name, library, description, status) VALUES (?, ?, ?, ?)`,
		q.Name, q.Library, q.Description, q.Status)
	return err
}

func (r *SpoolRepo) ListOutputQueues(ctx context.Context) ([]OutputQueue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, library, description, status FROM output_queues ORDER BY library, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OutputQueue
	for rows.Next() {
		var q OutputQueue
		if err := rows.Scan(&q.Name, &q.Library, &q.Description, &q.Status); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *SpoolRepo) SetOutputQueueStatus(ctx context.Context, name, library, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE output_queues SET status = ? WHERE name = ? AND library = ?`,
		status, strings.ToUpper(strings.TrimSpace(name)), library)
	return err
}

func (r *SpoolRepo) CreateSpooledFile(ctx context.Context, f SpooledFile) (int64, error) {
	if f.Name == "" {
		return 0, fmt.Errorf("spooled file name is required")
	}
	if f.OutputQueue == "" {
		f.OutputQueue = "QPRINT"
	}
	if f.Status == "" {
		f.Status = "RDY"
	}
	if f.Pages <= 0 {
		f.Pages = 1
	}
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO spooled_files(name, job_name, username, output_queue, status, pages, content)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(f.Name), f.JobName, strings.ToUpper(f.Username),
		f.OutputQueue, f.Status, f.Pages, f.Content)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSpooledFiles returns spooled files, optionally restricted to one user.
func (r *SpoolRepo) ListSpooledFiles(ctx context.Context, user string) ([]SpooledFile, error) {
	user = strings.ToUpper(strings.TrimSpace(user))
	var (
		rows *sql.Rows
		err  error
	)
	const cols = `id, name, job_name, username, output_queue, status, pages, content, created_at`
	if user == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+cols+` FROM spooled_files ORDER BY created_at DESC, id DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+cols+` FROM spooled_files WHERE username = ? ORDER BY created_at DESC, id DESC`, user)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SpooledFile
	for rows.Next() {
		var f SpooledFile
		if err := rows.Scan(&f.ID, &f.Name, &f.JobName, &f.Username,
			&f.OutputQueue, &f.Status, &f.Pages, &f.Content, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *SpoolRepo) GetSpooledFile(ctx context.Context, id int64) (*SpooledFile, error) {
	var f SpooledFile
	err := r.db.QueryRowContext(ctx, `
	SELECT id, name, job_name, username, output_queue, status, pages, content, created_at
	FROM spooled_files WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.JobName, &f.Username, &f.OutputQueue,
			&f.Status, &f.Pages, &f.Content, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *SpoolRepo) DeleteSpooledFile(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spooled_files WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("spooled file %d not found", id)
	}
	return nil
}

func (r *SpoolRepo) SetSpooledFileStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE spooled_files SET status = ? WHERE id = ?`, status, id)
	return err
}

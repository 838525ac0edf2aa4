package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ObjectRepo handles data areas and job descriptions.
type ObjectRepo struct {
	db *sql.DB
}

func NewObjectRepo(db *sql.DB) *ObjectRepo {
	return &ObjectRepo{db: db}
}

func (r *ObjectRepo) CreateDataArea(ctx context.Context, d DataArea) error {
	d.Name = strings.ToUpper(strings.TrimSpace(d.Name))
	if d.Name == "" {
		return fmt.Errorf("data area name is required")
	}
	if d.Library == "" {
		d.Library = "QGPL"
	}
	if d.DataType == "" {
		d.DataType = "*CHAR"
	}
	if d.Length <= 0 {
		d.Length = 32
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO data_areas(name, library, data_type, length, value, description)
	VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name, d.Library, d.DataType, d.Length, d.Value, d.Description)
	return err
}

func (r *ObjectRepo) DeleteDataArea(ctx context.Context, name, library string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM data_areas WHERE name = ? AND library = ?`,
		strings.ToUpper(strings.TrimSpace(name)), library)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("data area %s not found", name)
	}
	return nil
}

func (r *ObjectRepo) GetDataArea(ctx context.Context, name, library string) (*DataArea, error) {
	var d DataArea
	err := r.db.QueryRowContext(ctx, `
	SELECT name, library, data_type, length, value, description, locked_by
	FROM data_areas WHERE name = ? AND library = ?`,
		strings.ToUpper(strings.TrimSpace(name)), library).
		Scan(&d.Name, &d.Library, &d.DataType, &d.Length, &d.Value, &d.Description, &d.LockedBy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ObjectRepo) ListDataAreas(ctx context.Context) ([]DataArea, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT name, library, data_type, length, value, description, locked_by
	FROM data_areas ORDER BY library, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DataArea
	for rows.Next() {
		var d DataArea
		if err := rows.Scan(&d.Name, &d.Library, &d.DataType, &d.Length,
			&d.Value, &d.Description, &d.LockedBy); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *ObjectRepo) ChangeDataArea(ctx context.Context, name, library, value string) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE data_areas SET value = ? WHERE name = ? AND library = ? AND locked_by IS NULL`,
		value, strings.ToUpper(strings.TrimSpace(name)), library)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("data area %s not found or locked", name)
	}
	return nil
}

func (r *ObjectRepo) CreateJobDescription(ctx context.Context, jd JobDescription) error {
	jd.Name = strings.ToUpper(strings.TrimSpace(jd.Name))
	if jd.Name == "" {
		return fmt.Errorf("job description name is required")
	}
	if jd.Library == "" {
		jd.Library = "QGPL"
	}
	if jd.JobQueue == "" {
		jd.JobQueue = "QBATCH"
	}
	if jd.Priority == 0 {
		jd.Priority = 5
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO job_descriptions(name, library, description, job_queue, priority, hold)
	VALUES (?, ?, ?, ?, ?, ?)`,
		jd.Name, jd.Library, jd.Description, jd.JobQueue, jd.Priority, jd.Hold)
	return err
}

func (r *ObjectRepo) DeleteJobDescription(ctx context.Context, name, library string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM job_descriptions WHERE name = ? AND library = ?`,
		strings.ToUpper(strings.TrimSpace(name)), library)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("job description %s not found", name)
	}
	return nil
}

func (r *ObjectRepo) ListJobDescriptions(ctx context.Context) ([]JobDescription, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT name, library, description, job_queue, priority, hold
	FROM job_descriptions ORDER BY library, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JobDescription
	for rows.Next() {
		var jd JobDescription
		if err := rows.Scan(&jd.Name, &jd.Library, &jd.Description,
			&jd.JobQueue, &jd.Priority, &jd.Hold); err != nil {
			return nil, err
		}
		out = append(out, jd)
	}
	return out, rows.Err()
}

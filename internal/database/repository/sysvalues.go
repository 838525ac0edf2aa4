package repository

import (
	"context"
	"database/sql"
	"strings"
)

// SystemValueRepo handles system values.
type SystemValueRepo struct {
	db *sql.DB
}

func NewSystemValueRepo(db *sql.DB) *SystemValueRepo {
	return &SystemValueRepo{db: db}
}

func (r *SystemValueRepo) Get(ctx context.Context, name string) (*SystemValue, error) {
	var v SystemValue
	err := r.db.QueryRowContext(ctx, `
	SELECT name, value, category, updated_by, updated_at FROM system_values WHERE name = ?`,
		strings.ToUpper(strings.TrimSpace(name))).
		Scan(&v.Name, &v.Value, &v.Category, &v.UpdatedBy, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *SystemValueRepo) Set(ctx context.Context, name, value, updatedBy string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO system_values(name, value, updated_by, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(name) DO UPDATE SET
	 value=excluded.value,
	 updated_by=excluded.updated_by,
	 updated_at=CURRENT_TIMESTAMP;`,
		strings.ToUpper(strings.TrimSpace(name)), value, updatedBy)
	return err
}

func (r *SystemValueRepo) List(ctx context.Context) ([]SystemValue, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT name, value, category, updated_by, updated_at FROM system_values ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SystemValue
	for rows.Next() {
		var v SystemValue
		if err := rows.Scan(&v.Name, &v.Value, &v.Category, &v.UpdatedBy, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

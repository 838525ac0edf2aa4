package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// AuthListRepo handles authorization lists.
type AuthListRepo struct {
	db *sql.DB
}

func NewAuthListRepo(db *sql.DB) *AuthListRepo {
	return &AuthListRepo{db: db}
}

func (r *AuthListRepo) Create(ctx context.Context, l AuthorizationList) error {
	l.Name = strings.ToUpper(strings.TrimSpace(l.Name))
	if l.Name == "" {
		return fmt.Errorf("authorization list name is required")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO authorization_lists(name, description) VALUES (?, ?)`,
		l.Name, l.Description)
	return err
}

func (r *AuthListRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM authorization_lists WHERE name = ?`,
		strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("authorization list %s not found", name)
	}
	return nil
}

func (r *AuthListRepo) List(ctx context.Context) ([]AuthorizationList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, description FROM authorization_lists ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AuthorizationList
	for rows.Next() {
		var l AuthorizationList
		if err := rows.Scan(&l.Name, &l.Description); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *AuthListRepo) AddEntry(ctx context.Context, e AuthorizationEntry) error {
	if e.Authority == "" {
		e.Authority = "*USE"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO authorization_entries(autl_name, username, authority)
	VALUES (?, ?, ?)
	ON CONFLICT(autl_name, username) DO UPDATE SET authority=excluded.authority;`,
		strings.ToUpper(strings.TrimSpace(e.ListName)),
		strings.ToUpper(strings.TrimSpace(e.Username)), e.Authority)
	return err
}

func (r *AuthListRepo) RemoveEntry(ctx context.Context, list, user string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM authorization_entries WHERE autl_name = ? AND username = ?`,
		strings.ToUpper(strings.TrimSpace(list)), strings.ToUpper(strings.TrimSpace(user)))
	return err
}

func (r *AuthListRepo) Entries(ctx context.Context, list string) ([]AuthorizationEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT autl_name, username, authority FROM authorization_entries
	WHERE autl_name = ? ORDER BY username`,
		strings.ToUpper(strings.TrimSpace(list)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AuthorizationEntry
	for rows.Next() {
		var e AuthorizationEntry
		if err := rows.Scan(&e.ListName, &e.Username, &e.Authority); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

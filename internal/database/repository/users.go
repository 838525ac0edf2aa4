package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// UserRepo handles user profiles.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `username, password_hash, salt, user_class, status, description, signon_attempts, last_signon, created_at`

func scanUser(row interface{ Scan(...any) error }) (UserProfile, error) {
	var u UserProfile
	err := row.Scan(&u.Username, &u.PasswordHash, &u.Salt, &u.UserClass, &u.Status,
		&u.Description, &u.SignonAttempts, &u.LastSignon, &u.CreatedAt)
	return u, err
}

func (r *UserRepo) Get(ctx context.Context, username string) (*UserProfile, error) {
	username = strings.ToUpper(strings.TrimSpace(username))
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]UserProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Create(ctx context.Context, u UserProfile) error {
	u.Username = strings.ToUpper(strings.TrimSpace(u.Username))
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if len(u.Username) > 10 {
		return fmt.Errorf("username must be 10 characters or less")
	}
	if u.UserClass == "" {
		u.UserClass = "*USER"
	}
	if u.Status == "" {
		u.Status = "*ENABLED"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO users(username, password_hash, salt, user_class, status, description)
	VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.Salt, u.UserClass, u.Status, u.Description)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, username string) error {
	username = strings.ToUpper(strings.TrimSpace(username))
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user %s not found", username)
	}
	return nil
}

func (r *UserRepo) SetPassword(ctx context.Context, username, hash, salt string) error {
	username = strings.ToUpper(strings.TrimSpace(username))
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, salt = ? WHERE username = ?`,
		hash, salt, username)
	return err
}

func (r *UserRepo) SetStatus(ctx context.Context, username, status string) error {
	username = strings.ToUpper(strings.TrimSpace(username))
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = ? WHERE username = ?`, status, username)
	return err
}

// RecordSignon resets the failed-attempt counter and stamps last_signon.
func (r *UserRepo) RecordSignon(ctx context.Context, username string) error {
	username = strings.ToUpper(strings.TrimSpace(username))
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET signon_attempts = 0, last_signon = CURRENT_TIMESTAMP WHERE username = ?`,
		username)
	return err
}

// RecordFailedSignon increments the failed-attempt counter.
func (r *UserRepo) RecordFailedSignon(ctx context.Context, username string) error {
	username = strings.ToUpper(strings.TrimSpace(username))
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET signon_attempts = signon_attempts + 1 WHERE username = ?`,
		username)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"time"
)

// NotificationRepo records outbound notifications for throttling.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Record(ctx context.Context, fingerprint, channel, message string, success bool) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO notification_log(fingerprint, channel, message, success)
	VALUES (?, ?, ?, ?)`, fingerprint, channel, message, success)
	return err
}

// LastSuccess returns when a notification with this fingerprint last
// went out successfully, or nil if it never did.
func (r *NotificationRepo) LastSuccess(ctx context.Context, fingerprint string) (*time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `
	SELECT sent_at FROM notification_log
	WHERE fingerprint = ? AND success = 1
	ORDER BY sent_at DESC LIMIT 1`, fingerprint).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// MessageRepo handles message queues and their messages.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) CreateQueue(ctx context.Context, q MessageQueue) error {
	q.Name = strings.ToUpper(strings.TrimSpace(q.Name))
	if q.Name == "" {
		return fmt.Errorf("queue name is required")
	}
	if q.Library == "" {
		q.Library = "QGPL"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO message_queues(name, library, description) VALUES (?, ?, ?)`,
		q.Name, q.Library, q.Description)
	return err
}

func (r *MessageRepo) DeleteQueue(ctx context.Context, name, library string) error {
	name = strings.ToUpper(strings.TrimSpace(name))
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM message_queues WHERE name = ? AND library = ?`, name, library)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("message queue %s not found", name)
	}
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE queue_name = ? AND library = ?`, name, library)
	return err
}

func (r *MessageRepo) ListQueues(ctx context.Context) ([]MessageQueue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, library, description, created_at FROM message_queues ORDER BY library, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MessageQueue
	for rows.Next() {
		var q MessageQueue
		if err := rows.Scan(&q.Name, &q.Library, &q.Description, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *MessageRepo) Send(ctx context.Context, m Message) error {
	if m.Queue == "" {
		return fmt.Errorf("queue name is required")
	}
	if m.Library == "" {
		m.Library = "QGPL"
	}
	if m.Status == "" {
		m.Status = "*NEW"
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO messages(queue_name, library, severity, msg_text, sender, status)
	VALUES (?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(m.Queue), m.Library, m.Severity, m.Text, m.Sender, m.Status)
	return err
}

func (r *MessageRepo) Messages(ctx context.Context, queue, library string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, queue_name, library, severity, msg_text, sender, status, reply, sent_at
	FROM messages WHERE queue_name = ? AND library = ?
	ORDER BY sent_at DESC, id DESC LIMIT ?`,
		strings.ToUpper(strings.TrimSpace(queue)), library, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Queue, &m.Library, &m.Severity, &m.Text,
			&m.Sender, &m.Status, &m.Reply, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageRepo) MarkOld(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET status = '*OLD' WHERE id = ?`, id)
	return err
}

func (r *MessageRepo) Reply(ctx context.Context, id int64, reply string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET reply = ?, status = '*ANSWERED' WHERE id = ?`, reply, id)
	return err
}

func (r *MessageRepo) ClearQueue(ctx context.Context, queue, library string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE queue_name = ? AND library = ?`,
		strings.ToUpper(strings.TrimSpace(queue)), library)
	return err
}

package repository

import (
	"context"
	"database/sql"

	"github.com/unrumbo/ride-reservation/internal/model"
)

// NotificationRepo stores per-user notifications.  Rows mirror what is
// published to the message queue so the web client can list them even
// when the broker is down.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification and populates its generated ID.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (user_id, kind, message, target_url, is_read, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		n.UserID, string(n.Kind), n.Message, n.TargetURL, n.Read, n.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	const q = `SELECT id, user_id, kind, message, target_url, is_read, created_at
	           FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Message, &n.TargetURL, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Kind = model.NotificationKind(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks one of the user's notifications as read.  The user
// filter prevents marking someone else's row.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	const q = `UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, q, notificationID, userID)
	return err
}

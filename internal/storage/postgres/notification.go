package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/notification"
)

const (
	createNotificationSQL = `INSERT INTO notifications (id, user_id, message, is_read)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	listNotificationsSQL = `SELECT id, user_id, message, is_read, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	// The user_id predicate scopes the update to the owner; marking someone
	// else's notification reports not found.
	markReadSQL = `UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, message, is_read, created_at`

	markAllReadSQL = `UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE`
)

var _ notification.Repository = (*NotificationRepository)(nil)

// NotificationRepository implements notification.Repository backed by
// PostgreSQL.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a NotificationRepository that uses the
// given pool.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create appends a notification to the user's feed.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	err := r.pool.QueryRow(ctx, createNotificationSQL,
		n.ID, n.UserID, n.Message, n.Read,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating notification %q: %w", n.ID, err)
	}
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	rows, err := r.pool.Query(ctx, listNotificationsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications for %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanNotification)
}

// MarkRead flags one of the user's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) (*notification.Notification, error) {
	rows, err := r.pool.Query(ctx, markReadSQL, id, userID)
	if err != nil {
		return nil, fmt.Errorf("marking notification %q read: %w", id, err)
	}

	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotFound
		}
		return nil, fmt.Errorf("marking notification %q read: %w", id, err)
	}
	return &n, nil
}

// MarkAllRead flags every unread notification of the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, markAllReadSQL, userID); err != nil {
		return fmt.Errorf("marking notifications read for %q: %w", userID, err)
	}
	return nil
}

func scanNotification(row pgx.CollectableRow) (notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Read, &n.CreatedAt)
	return n, err
}

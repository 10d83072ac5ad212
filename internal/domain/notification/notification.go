// Package notification holds the per-user notification feed. Records are
// append-only; the only mutation is marking them read.
package notification

import (
	"context"
	"fmt"
	"time"
)

// ErrNotFound is returned when a notification does not exist or belongs to
// another user.
var ErrNotFound = fmt.Errorf("notification not found")

// Notification is one entry in a user's feed.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// Repository defines persistence operations for notifications.
// ListByUser returns newest first. MarkRead is scoped to the owning user and
// returns ErrNotFound for anyone else's notification.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}

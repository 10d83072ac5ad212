// Package review holds product reviews and the purchase-gated creation rules.
package review

import (
	"context"
	"fmt"
	"time"
)

// Sentinel errors for review operations.
var (
	ErrNotFound      = fmt.Errorf("review not found")
	ErrDuplicate     = fmt.Errorf("product already reviewed by this user")
	ErrNotPurchased  = fmt.Errorf("only purchased products can be reviewed")
	ErrInvalidRating = fmt.Errorf("rating must be between 1 and 5")
)

// Review is one user's rating of one product. At most one review exists per
// (product, user) pair, enforced at the store level.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Repository defines persistence operations for reviews. ListByProduct and
// ListByUser return newest first.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Review, error)
	Exists(ctx context.Context, productID, userID string) (bool, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	ListByUser(ctx context.Context, userID string) ([]Review, error)
	AverageRating(ctx context.Context, productID string) (float64, bool, error)
}

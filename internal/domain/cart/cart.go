// Package cart holds the per-user shopping cart and its mutation rules.
//
// Concurrency model: mutations to one user's cart are read-modify-write with
// last-writer-wins semantics. Two sessions editing the same cart may overwrite
// each other; checkout correctness does not depend on the cart because stock
// is validated and reserved only at order time.
package cart

import (
	"context"
	"fmt"
	"time"
)

// Sentinel errors for cart operations.
var (
	ErrNotFound     = fmt.Errorf("cart not found")
	ErrLineNotFound = fmt.Errorf("item not in cart")
)

// Line is one (product, quantity) pair in a cart. Quantity is always >= 1;
// a quantity that would drop to zero removes the line instead.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is a user's mutable collection of lines. A product appears at most
// once; re-adding merges quantities. The cart is created lazily on first add
// and emptied, not deleted, on successful checkout.
type Cart struct {
	UserID    string
	Lines     []Line
	UpdatedAt time.Time
}

// Repository defines persistence operations for carts.
//
// Save upserts the full cart document (lines included); Clear resets the
// lines to empty while keeping the cart record.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, userID string) error
}

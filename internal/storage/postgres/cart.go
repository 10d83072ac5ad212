package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/cart"
)

const (
	getCartSQL = `SELECT user_id, lines, updated_at FROM carts WHERE user_id = $1`

	// Upsert keeps one cart row per user; Save replaces the full document.
	saveCartSQL = `INSERT INTO carts (user_id, lines, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET lines = EXCLUDED.lines, updated_at = now()`

	clearCartSQL = `UPDATE carts SET lines = '[]', updated_at = now() WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. The lines
// live in a JSONB column, so the whole cart is read and written as one
// document.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetByUser returns the user's cart, or cart.ErrNotFound if the user never
// had one.
func (r *CartRepository) GetByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	var (
		c     cart.Cart
		lines []byte
	)
	err := r.pool.QueryRow(ctx, getCartSQL, userID).Scan(&c.UserID, &lines, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart for %q: %w", userID, err)
	}

	if err := json.Unmarshal(lines, &c.Lines); err != nil {
		return nil, fmt.Errorf("decoding cart lines for %q: %w", userID, err)
	}
	return &c, nil
}

// Save upserts the cart document.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	encoded, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding cart lines: %w", err)
	}

	if _, err := r.pool.Exec(ctx, saveCartSQL, c.UserID, encoded); err != nil {
		return fmt.Errorf("saving cart for %q: %w", c.UserID, err)
	}
	return nil
}

// Clear empties the cart's lines while keeping the cart record.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, clearCartSQL, userID); err != nil {
		return fmt.Errorf("clearing cart for %q: %w", userID, err)
	}
	return nil
}

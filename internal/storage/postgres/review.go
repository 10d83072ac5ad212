package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/review"
)

const (
	createReviewSQL = `INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	updateReviewSQL = `UPDATE reviews SET rating = $2, comment = $3 WHERE id = $1`
	deleteReviewSQL = `DELETE FROM reviews WHERE id = $1`

	reviewColumns = `id, product_id, user_id, rating, comment, created_at`

	getReviewByIDSQL = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	reviewExistsSQL = `SELECT EXISTS (
		SELECT 1 FROM reviews WHERE product_id = $1 AND user_id = $2
	)`

	listReviewsByProductSQL = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE product_id = $1 ORDER BY created_at DESC`

	listReviewsByUserSQL = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE user_id = $1 ORDER BY created_at DESC`

	averageRatingSQL = `SELECT AVG(rating)::float8, COUNT(*) FROM reviews WHERE product_id = $1`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL. The
// (product_id, user_id) unique constraint is the authoritative duplicate
// guard.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create persists a new review. A constraint violation on the (product, user)
// pair maps to review.ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	err := r.pool.QueryRow(ctx, createReviewSQL,
		rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&rv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return review.ErrDuplicate
		}
		return fmt.Errorf("creating review %q: %w", rv.ID, err)
	}
	return nil
}

// Update sets the review's rating and comment.
func (r *ReviewRepository) Update(ctx context.Context, rv *review.Review) error {
	tag, err := r.pool.Exec(ctx, updateReviewSQL, rv.ID, rv.Rating, rv.Comment)
	if err != nil {
		return fmt.Errorf("updating review %q: %w", rv.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return review.ErrNotFound
	}
	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, deleteReviewSQL, id); err != nil {
		return fmt.Errorf("deleting review %q: %w", id, err)
	}
	return nil
}

// GetByID returns a review by identifier.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*review.Review, error) {
	rows, err := r.pool.Query(ctx, getReviewByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting review %q: %w", id, err)
	}

	rv, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, review.ErrNotFound
		}
		return nil, fmt.Errorf("getting review %q: %w", id, err)
	}
	return &rv, nil
}

// Exists reports whether the user already reviewed the product.
func (r *ReviewRepository) Exists(ctx context.Context, productID, userID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, reviewExistsSQL, productID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking review existence: %w", err)
	}
	return exists, nil
}

// ListByProduct returns a product's reviews, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for product %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanReview)
}

// ListByUser returns a user's reviews, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanReview)
}

// AverageRating returns the mean rating for a product and whether any
// reviews exist.
func (r *ReviewRepository) AverageRating(ctx context.Context, productID string) (float64, bool, error) {
	var (
		avg   *float64
		count int
	)
	if err := r.pool.QueryRow(ctx, averageRatingSQL, productID).Scan(&avg, &count); err != nil {
		return 0, false, fmt.Errorf("averaging ratings for %q: %w", productID, err)
	}
	if count == 0 || avg == nil {
		return 0, false, nil
	}
	return *avg, true, nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var rv review.Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	return rv, err
}

package review

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Purchased reports whether a user has a delivered order containing the
// product. Satisfied by the order repository.
type Purchased interface {
	HasDelivered(ctx context.Context, userID, productID string) (bool, error)
}

// seenCapacity sizes the duplicate pre-check filter. At 1% false positive
// rate a false hit only costs the store existence query we would have run
// anyway.
const (
	seenCapacity = 1_000_000
	seenFPRate   = 0.01
)

// Service implements review creation, update, and deletion with the
// purchase gate and the one-review-per-product-per-user invariant.
type Service struct {
	reviews   Repository
	purchases Purchased

	// seen is a negative cache over (product, user) pairs that have reviewed.
	// "Definitely not present" skips nothing here correctness-wise; it lets a
	// later duplicate attempt short-circuit before the store round-trip.
	// The store unique constraint stays authoritative.
	mu   sync.Mutex
	seen *bloom.BloomFilter
}

// NewService creates a review Service.
func NewService(reviews Repository, purchases Purchased) *Service {
	return &Service{
		reviews:   reviews,
		purchases: purchases,
		seen:      bloom.NewWithEstimates(seenCapacity, seenFPRate),
	}
}

func pairKey(productID, userID string) []byte {
	return []byte(productID + "\x00" + userID)
}

// Create validates the rating, rejects duplicates, verifies a delivered
// purchase, and persists the review.
func (s *Service) Create(ctx context.Context, userID, productID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	key := pairKey(productID, userID)
	s.mu.Lock()
	maybeSeen := s.seen.Test(key)
	s.mu.Unlock()

	if maybeSeen {
		// Possible duplicate; the store decides.
		exists, err := s.reviews.Exists(ctx, productID, userID)
		if err != nil {
			return nil, errors.Wrap(err, "check existing review")
		}
		if exists {
			return nil, ErrDuplicate
		}
	}

	purchased, err := s.purchases.HasDelivered(ctx, userID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "check purchase")
	}
	if !purchased {
		return nil, ErrNotPurchased
	}

	r := &Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, errors.Wrap(err, "create review")
	}

	s.mu.Lock()
	s.seen.Add(key)
	s.mu.Unlock()

	return r, nil
}

// Update changes the rating and comment of the user's own review.
func (s *Service) Update(ctx context.Context, userID, reviewID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	r, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrNotFound
	}

	r.Rating = rating
	r.Comment = comment
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, errors.Wrap(err, "update review")
	}
	return r, nil
}

// Delete removes the user's own review. The bloom filter is deliberately not
// reset; a later re-create just pays one extra existence query.
func (s *Service) Delete(ctx context.Context, userID, reviewID string) error {
	r, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if r.UserID != userID {
		return ErrNotFound
	}
	return s.reviews.Delete(ctx, reviewID)
}

// ListByProduct returns a product's reviews, newest first.
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

// ListByUser returns the user's reviews, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

// AverageRating returns the mean rating for a product and whether any
// reviews exist.
func (s *Service) AverageRating(ctx context.Context, productID string) (float64, bool, error) {
	return s.reviews.AverageRating(ctx, productID)
}

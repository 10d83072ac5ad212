package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memReviewRepo struct {
	byID map[string]*Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{byID: make(map[string]*Review)}
}

func (m *memReviewRepo) Create(_ context.Context, r *Review) error {
	for _, existing := range m.byID {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return ErrDuplicate
		}
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memReviewRepo) Update(_ context.Context, r *Review) error {
	if _, ok := m.byID[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memReviewRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memReviewRepo) GetByID(_ context.Context, id string) (*Review, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReviewRepo) Exists(_ context.Context, productID, userID string) (bool, error) {
	for _, r := range m.byID {
		if r.ProductID == productID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReviewRepo) ListByProduct(_ context.Context, productID string) ([]Review, error) {
	var out []Review
	for _, r := range m.byID {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReviewRepo) ListByUser(_ context.Context, userID string) ([]Review, error) {
	var out []Review
	for _, r := range m.byID {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReviewRepo) AverageRating(_ context.Context, productID string) (float64, bool, error) {
	sum, n := 0, 0
	for _, r := range m.byID {
		if r.ProductID == productID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false, nil
	}
	return float64(sum) / float64(n), true, nil
}

// mockPurchases marks specific (user, product) pairs as delivered.
type mockPurchases struct {
	delivered map[[2]string]bool
}

func (m *mockPurchases) HasDelivered(_ context.Context, userID, productID string) (bool, error) {
	return m.delivered[[2]string{userID, productID}], nil
}

func newPurchases(pairs ...[2]string) *mockPurchases {
	delivered := make(map[[2]string]bool, len(pairs))
	for _, p := range pairs {
		delivered[p] = true
	}
	return &mockPurchases{delivered: delivered}
}

func TestCreate_InvalidRating(t *testing.T) {
	svc := NewService(newMemReviewRepo(), newPurchases())

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Create(context.Background(), "u1", "p1", rating, "nope")
		require.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
}

func TestCreate_RequiresDeliveredPurchase(t *testing.T) {
	svc := NewService(newMemReviewRepo(), newPurchases())

	_, err := svc.Create(context.Background(), "u1", "p1", 5, "great")
	require.ErrorIs(t, err, ErrNotPurchased)
}

func TestCreate_Success(t *testing.T) {
	svc := NewService(newMemReviewRepo(), newPurchases([2]string{"u1", "p1"}))

	r, err := svc.Create(context.Background(), "u1", "p1", 4, "solid")
	require.NoError(t, err)
	assert.Equal(t, "p1", r.ProductID)
	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, 4, r.Rating)
	assert.NotEmpty(t, r.ID)
}

func TestCreate_Duplicate(t *testing.T) {
	svc := NewService(newMemReviewRepo(), newPurchases([2]string{"u1", "p1"}))

	_, err := svc.Create(context.Background(), "u1", "p1", 4, "solid")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "u1", "p1", 5, "changed my mind")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCreate_DuplicateSurvivesServiceRestart(t *testing.T) {
	// A fresh service has an empty filter, so the store constraint must catch
	// the duplicate on its own.
	repo := newMemReviewRepo()
	svc := NewService(repo, newPurchases([2]string{"u1", "p1"}))
	_, err := svc.Create(context.Background(), "u1", "p1", 4, "solid")
	require.NoError(t, err)

	restarted := NewService(repo, newPurchases([2]string{"u1", "p1"}))
	_, err = restarted.Create(context.Background(), "u1", "p1", 5, "again")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	svc := NewService(newMemReviewRepo(), newPurchases([2]string{"u1", "p1"}))
	r, err := svc.Create(context.Background(), "u1", "p1", 3, "ok")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "u1", r.ID, 5, "better than I thought")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	_, err = svc.Update(context.Background(), "u2", r.ID, 1, "sabotage")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_OwnerOnly(t *testing.T) {
	repo := newMemReviewRepo()
	svc := NewService(repo, newPurchases([2]string{"u1", "p1"}))
	r, err := svc.Create(context.Background(), "u1", "p1", 3, "ok")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "u2", r.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), "u1", r.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), r.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAverageRating(t *testing.T) {
	svc := NewService(newMemReviewRepo(), newPurchases(
		[2]string{"u1", "p1"},
		[2]string{"u2", "p1"},
	))

	_, _, err := svc.AverageRating(context.Background(), "p1")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "u1", "p1", 4, "good")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "u2", "p1", 2, "meh")
	require.NoError(t, err)

	avg, ok, err := svc.AverageRating(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, avg, 0.0001)

	_, ok, err = svc.AverageRating(context.Background(), "unrated")
	require.NoError(t, err)
	assert.False(t, ok)
}

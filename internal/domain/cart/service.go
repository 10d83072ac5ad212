package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrInvalidQuantity is returned when adding a non-positive quantity.
var ErrInvalidQuantity = fmt.Errorf("quantity must be greater than 0")

// Service implements the cart mutation rules.
type Service struct {
	carts Repository
}

// NewService creates a cart Service.
func NewService(carts Repository) *Service {
	return &Service{carts: carts}
}

// Get returns the user's cart, or nil if the user never added anything.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// AddItem merges qty into an existing line for the product, or appends a new
// line. The cart is created on first use. Stock is deliberately not checked
// here; availability is only enforced at checkout.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		c = &Cart{UserID: userID}
	} else if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	merged := false
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: qty})
	}

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// UpdateItem sets (not increments) the quantity of an existing line.
// A quantity <= 0 removes the line entirely.
func (s *Service) UpdateItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrLineNotFound
	}

	if qty <= 0 {
		c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	} else {
		c.Lines[idx].Quantity = qty
	}

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// RemoveItem deletes the product's line if present. Removal is idempotent:
// a missing line or a missing cart is not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Cart{UserID: userID}, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(c.Lines) {
		return c, nil
	}
	c.Lines = kept

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

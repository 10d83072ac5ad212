// Package catalog holds the product and category entities and their
// repository contracts. Products are read-mostly; the only mutation the
// rest of the system performs is the stock adjustment during checkout.
package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = fmt.Errorf("product not found")

// Product is a sellable catalog entry. Price is a non-negative decimal with
// two minor units; Stock is the number of sellable units and is never
// observable below zero.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	Image       string
	Stock       int
}

// ListFilter narrows the products listing. Zero values mean "no filter".
type ListFilter struct {
	// CategoryID restricts results to one category.
	CategoryID string
	// Search is a case-insensitive substring match on the product name.
	Search string
	// Limit caps the number of results; 0 means unlimited.
	Limit int
}

// Repository defines persistence operations for products.
//
// DecrementStock is the conditional primitive the checkout orchestrator is
// built on: it must atomically apply "stock = stock - qty" only when
// stock >= qty and report whether it did. IncrementStock is its compensating
// inverse.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
	IncrementStock(ctx context.Context, id string, qty int) error
}

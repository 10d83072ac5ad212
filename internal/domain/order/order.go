// Package order holds the order entity, its status lifecycle, and the
// checkout orchestrator that converts a cart into an order while reconciling
// product stock.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state.
type Status string

// The closed set of order statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// transitions encodes the allowed lifecycle:
// pending -> processing -> shipped -> delivered, with cancellation possible
// while the order is still pending or processing. Everything else is
// rejected, including any transition out of a terminal state.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether from -> to is an allowed status change.
func (from Status) CanTransition(to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Item is a cart line frozen into an order. PriceAtTime is copied from the
// product at checkout so later catalog price changes never affect placed
// orders.
type Item struct {
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	PriceAtTime decimal.Decimal `json:"price_at_time"`
}

// Address is the shipping destination captured with the order.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is an immutable snapshot of a checkout. Total always equals the sum
// of quantity * price_at_time over the items.
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	Total           decimal.Decimal
	ShippingAddress Address
	Status          Status
	CreatedAt       time.Time
}

// Repository defines persistence operations for orders.
//
// Delete exists solely as the compensating action for a checkout that fails
// after the order row is written; orders are never deleted otherwise.
// HasDelivered reports whether the user has a delivered order containing the
// product, which gates review creation.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	HasDelivered(ctx context.Context, userID, productID string) (bool, error)
}

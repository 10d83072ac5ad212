package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/notification"
)

// Sentinel errors for checkout and status updates.
var (
	ErrEmptyCart = fmt.Errorf("cart is empty")
	ErrNotFound  = fmt.Errorf("order not found")
)

// ProductNotFoundError indicates a cart line references a product that no
// longer resolves.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError indicates a product cannot cover the requested
// quantity. It names the product for display.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError indicates a disallowed order status change.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// CheckoutResult is a placed order together with the resolved products for
// display.
type CheckoutResult struct {
	Order    *Order
	Products []catalog.Product
}

// Service is the checkout orchestrator. It owns the cart -> order transition
// and the order lifecycle, composed from the injected repository contracts.
type Service struct {
	carts         cart.Repository
	products      catalog.Repository
	orders        Repository
	notifications notification.Repository
}

// NewService creates an order Service with the required repositories.
func NewService(
	carts cart.Repository,
	products catalog.Repository,
	orders Repository,
	notifications notification.Repository,
) *Service {
	return &Service{
		carts:         carts,
		products:      products,
		orders:        orders,
		notifications: notifications,
	}
}

// Checkout converts the user's cart into a durable order.
//
// All validation happens before any mutation: the cart is loaded, every
// referenced product is batch-resolved, and stock is pre-checked per line.
// The mutating tail (stock decrements, order insert, cart clear) is
// all-or-nothing: stock is taken with atomic conditional decrements, and any
// failure after the first decrement compensates by re-incrementing applied
// decrements and deleting a persisted order row. The conditional decrement is
// also the serialization point for concurrent checkouts, so stock can never
// go negative even when the pre-check raced.
func (s *Service) Checkout(ctx context.Context, userID string, address Address) (*CheckoutResult, error) {
	c, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, cart.ErrNotFound) {
		return nil, ErrEmptyCart
	} else if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		ids[i] = line.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	// Fail fast before touching anything.
	products := make([]catalog.Product, 0, len(c.Lines))
	for _, line := range c.Lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if p.Stock < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   line.Quantity,
				Available:   p.Stock,
			}
		}
		products = append(products, p)
	}

	// Freeze prices and compute the total.
	items := make([]Item, len(c.Lines))
	total := decimal.Zero
	for i, line := range c.Lines {
		price := products[i].Price
		items[i] = Item{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			PriceAtTime: price,
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	total = total.Round(2)

	// Reserve stock. A line that loses the race to a concurrent checkout
	// rolls back every decrement already applied.
	applied := 0
	for i, item := range items {
		ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.releaseStock(ctx, items[:applied])
			return nil, errors.Wrapf(err, "decrement stock for %s", item.ProductID)
		}
		if !ok {
			s.releaseStock(ctx, items[:applied])
			return nil, &InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: products[i].Name,
				Requested:   item.Quantity,
				Available:   products[i].Stock,
			}
		}
		applied++
	}

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		Total:           total,
		ShippingAddress: address,
		Status:          StatusPending,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		s.releaseStock(ctx, items)
		return nil, errors.Wrap(err, "create order")
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		// Undo the whole checkout rather than leave a placed order whose
		// cart would buy everything a second time.
		if delErr := s.orders.Delete(ctx, o.ID); delErr != nil {
			zctx.From(ctx).Error("compensating order delete failed",
				zap.String("order_id", o.ID), zap.Error(delErr))
		}
		s.releaseStock(ctx, items)
		return nil, errors.Wrap(err, "clear cart")
	}

	s.notify(ctx, userID, fmt.Sprintf("Your order %s has been placed.", o.ID))

	return &CheckoutResult{Order: o, Products: products}, nil
}

// releaseStock re-increments stock for already-applied decrements. Failures
// are logged, not returned: the caller is already propagating the original
// error and a missed increment is recoverable by an operator, unlike a
// silently oversold product.
func (s *Service) releaseStock(ctx context.Context, items []Item) {
	for _, item := range items {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			zctx.From(ctx).Error("stock rollback failed",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

// notify appends to the user's feed. Notification failures never fail the
// order.
func (s *Service) notify(ctx context.Context, userID, message string) {
	n := &notification.Notification{
		ID:      uuid.New().String(),
		UserID:  userID,
		Message: message,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		zctx.From(ctx).Warn("create notification failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

// Get returns the order if it exists and belongs to the user. Other users'
// orders are reported as not found rather than forbidden, so order IDs leak
// nothing.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListByUser returns the user's orders.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus moves the user's order along the lifecycle. Disallowed
// transitions fail with InvalidTransitionError. A transition to delivered
// notifies the user.
func (s *Service) UpdateStatus(ctx context.Context, userID, orderID string, status Status) (*Order, error) {
	o, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(status) {
		return nil, &InvalidTransitionError{From: o.Status, To: status}
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = status

	if status == StatusDelivered {
		s.notify(ctx, userID, fmt.Sprintf("Your order %s has been delivered.", o.ID))
	}
	return o, nil
}

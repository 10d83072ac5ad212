package api

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/order"
)

func (c *opContext) me(_ json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	u, err := c.userRepo.GetByID(c.req.Context(), userID)
	if err != nil {
		return nil, err
	}
	return newUserView(u), nil
}

func (c *opContext) product(raw json.RawMessage) (any, error) {
	var in productInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, failf(CodeValidation, "product id is required")
	}

	ctx := c.req.Context()
	p, err := c.products.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, failf(CodeNotFound, "product %s not found", in.ID)
		}
		return nil, err
	}

	view := newProductView(*p)
	if avg, ok, err := c.reviews.AverageRating(ctx, p.ID); err == nil && ok {
		view.AverageRating = &avg
	}
	return view, nil
}

func (c *opContext) listProducts(raw json.RawMessage) (any, error) {
	var in productsInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.Limit < 0 {
		return nil, failf(CodeValidation, "limit must not be negative")
	}

	products, err := c.products.List(c.req.Context(), catalog.ListFilter{
		CategoryID: in.Category,
		Search:     in.Search,
		Limit:      in.Limit,
	})
	if err != nil {
		return nil, err
	}

	views := make([]*productView, len(products))
	for i, p := range products {
		views[i] = newProductView(p)
	}
	return views, nil
}

func (c *opContext) listCategories(_ json.RawMessage) (any, error) {
	categories, err := c.categories.List(c.req.Context())
	if err != nil {
		return nil, err
	}
	views := make([]categoryView, len(categories))
	for i, cat := range categories {
		views[i] = newCategoryView(cat)
	}
	return views, nil
}

func (c *opContext) getCart(_ json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}

	ctx := c.req.Context()
	crt, err := c.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if crt == nil {
		// No cart until the first add.
		return nil, nil
	}

	ids := make([]string, len(crt.Lines))
	for i, l := range crt.Lines {
		ids[i] = l.ProductID
	}
	resolved, err := c.resolveProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := cartView{UserID: crt.UserID, Lines: make([]cartLineView, len(crt.Lines))}
	for i, l := range crt.Lines {
		var pv *productView
		if p, ok := resolved[l.ProductID]; ok {
			pv = newProductView(p)
		}
		view.Lines[i] = cartLineView{Product: pv, Quantity: l.Quantity}
	}
	return view, nil
}

func (c *opContext) getOrder(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in orderInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	ctx := c.req.Context()
	o, err := c.orders.Get(ctx, userID, in.ID)
	if err != nil {
		return nil, err
	}

	resolved, err := c.resolveOrderProducts(ctx, o.Items)
	if err != nil {
		return nil, err
	}
	return newOrderView(o, resolved), nil
}

func (c *opContext) listOrders(_ json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}

	ctx := c.req.Context()
	orders, err := c.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// One batch lookup across every order's items.
	var ids []string
	for _, o := range orders {
		for _, item := range o.Items {
			ids = append(ids, item.ProductID)
		}
	}
	resolved, err := c.resolveProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = newOrderView(&orders[i], resolved)
	}
	return views, nil
}

func (c *opContext) productReviews(raw json.RawMessage) (any, error) {
	var in productReviewsInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	reviews, err := c.reviews.ListByProduct(c.req.Context(), in.ProductID)
	if err != nil {
		return nil, err
	}
	views := make([]reviewView, len(reviews))
	for i := range reviews {
		views[i] = newReviewView(&reviews[i])
	}
	return views, nil
}

func (c *opContext) userReviews(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in userReviewsInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	// Users may only list their own reviews.
	if in.UserID != userID {
		return nil, failf(CodeUnauthorized, "cannot view another user's reviews")
	}

	reviews, err := c.reviews.ListByUser(c.req.Context(), userID)
	if err != nil {
		return nil, err
	}
	views := make([]reviewView, len(reviews))
	for i := range reviews {
		views[i] = newReviewView(&reviews[i])
	}
	return views, nil
}

func (c *opContext) listNotifications(_ json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}

	notifications, err := c.notifications.ListByUser(c.req.Context(), userID)
	if err != nil {
		return nil, err
	}
	views := make([]notificationView, len(notifications))
	for i, n := range notifications {
		views[i] = newNotificationView(n)
	}
	return views, nil
}

// resolveProducts batch-fetches the given product IDs into a lookup map.
// Missing IDs are simply absent; views render them as null products.
func (c *opContext) resolveProducts(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	products, err := c.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolve products")
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (c *opContext) resolveOrderProducts(ctx context.Context, items []order.Item) (map[string]catalog.Product, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	return c.resolveProducts(ctx, ids)
}

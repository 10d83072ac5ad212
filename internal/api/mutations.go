package api

import (
	"encoding/json"
	"net/mail"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/user"
)

// minPasswordLength is the weakest password the API accepts.
const minPasswordLength = 8

func (c *opContext) register(raw json.RawMessage) (any, error) {
	var in registerInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, failf(CodeValidation, "name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, failf(CodeValidation, "invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, failf(CodeValidation, "password must be at least %d characters", minPasswordLength)
	}

	u, err := c.users.Register(c.req.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	token, err := c.tokens.Issue(u.ID)
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	return authView{Token: token, User: newUserView(u)}, nil
}

func (c *opContext) login(raw json.RawMessage) (any, error) {
	var in loginInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.Email == "" || in.Password == "" {
		return nil, failf(CodeValidation, "email and password are required")
	}

	u, err := c.users.Login(c.req.Context(), in.Email, in.Password)
	if err != nil {
		// An unknown email and a wrong password answer identically, so the
		// endpoint cannot be used to enumerate registered addresses.
		if errors.Is(err, user.ErrNotFound) || errors.Is(err, user.ErrWrongPassword) {
			return nil, failf(CodeUnauthenticated, "invalid email or password")
		}
		return nil, err
	}
	token, err := c.tokens.Issue(u.ID)
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	return authView{Token: token, User: newUserView(u)}, nil
}

func (c *opContext) addToCart(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in addToCartInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, failf(CodeValidation, "productId is required")
	}

	crt, err := c.carts.AddItem(c.req.Context(), userID, in.ProductID, in.Quantity)
	if err != nil {
		return nil, err
	}
	return c.cartToView(crt)
}

func (c *opContext) updateCartItem(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in updateCartItemInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, failf(CodeValidation, "productId is required")
	}

	crt, err := c.carts.UpdateItem(c.req.Context(), userID, in.ProductID, in.Quantity)
	if err != nil {
		return nil, err
	}
	return c.cartToView(crt)
}

func (c *opContext) removeFromCart(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in removeFromCartInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, failf(CodeValidation, "productId is required")
	}

	crt, err := c.carts.RemoveItem(c.req.Context(), userID, in.ProductID)
	if err != nil {
		return nil, err
	}
	return c.cartToView(crt)
}

func (c *opContext) createOrder(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in createOrderInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.Address.Street == "" || in.Address.City == "" || in.Address.Country == "" {
		return nil, failf(CodeValidation, "shipping address requires street, city, and country")
	}

	result, err := c.orders.Checkout(c.req.Context(), userID, order.Address{
		Street:     in.Address.Street,
		City:       in.Address.City,
		Province:   in.Address.Province,
		PostalCode: in.Address.PostalCode,
		Country:    in.Address.Country,
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]catalog.Product, len(result.Products))
	for _, p := range result.Products {
		byID[p.ID] = p
	}
	return newOrderView(result.Order, byID), nil
}

func (c *opContext) updateOrderStatus(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in updateOrderStatusInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(in.Status)
	if err != nil {
		return nil, failf(CodeValidation, "%s", err)
	}

	ctx := c.req.Context()
	o, err := c.orders.UpdateStatus(ctx, userID, in.OrderID, status)
	if err != nil {
		return nil, err
	}
	products, err := c.resolveOrderProducts(ctx, o.Items)
	if err != nil {
		return nil, err
	}
	return newOrderView(o, products), nil
}

func (c *opContext) createReview(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in createReviewInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, failf(CodeValidation, "productId is required")
	}

	r, err := c.reviews.Create(c.req.Context(), userID, in.ProductID, in.Rating, in.Comment)
	if err != nil {
		return nil, err
	}
	return newReviewView(r), nil
}

func (c *opContext) updateReview(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in updateReviewInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	r, err := c.reviews.Update(c.req.Context(), userID, in.ReviewID, in.Rating, in.Comment)
	if err != nil {
		return nil, err
	}
	return newReviewView(r), nil
}

func (c *opContext) deleteReview(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in deleteReviewInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	if err := c.reviews.Delete(c.req.Context(), userID, in.ReviewID); err != nil {
		return nil, err
	}
	return true, nil
}

func (c *opContext) markNotificationRead(raw json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}
	var in markNotificationReadInput
	if err := decodeInput(raw, &in); err != nil {
		return nil, err
	}

	n, err := c.notifications.MarkRead(c.req.Context(), userID, in.NotificationID)
	if err != nil {
		return nil, err
	}
	return newNotificationView(*n), nil
}

func (c *opContext) markAllNotificationsRead(_ json.RawMessage) (any, error) {
	userID, err := requireIdentity(c.req.Context())
	if err != nil {
		return nil, err
	}

	ctx := c.req.Context()
	if err := c.notifications.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}
	notifications, err := c.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]notificationView, len(notifications))
	for i, n := range notifications {
		views[i] = newNotificationView(n)
	}
	return views, nil
}

// cartToView resolves the cart's products and builds the response view.
func (c *opContext) cartToView(crt *cart.Cart) (any, error) {
	ids := make([]string, len(crt.Lines))
	for i, l := range crt.Lines {
		ids[i] = l.ProductID
	}
	resolved, err := c.resolveProducts(c.req.Context(), ids)
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

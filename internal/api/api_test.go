package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/storefront/internal/auth"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/notification"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/review"
	"github.com/xenking/storefront/internal/domain/user"

	"github.com/shopspring/decimal"
)

// --- In-memory repositories ---

type memUsers struct {
	byID map[string]*user.User
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

type memProducts struct {
	byID map[string]*catalog.Product
}

func (m *memProducts) List(_ context.Context, _ catalog.ListFilter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProducts) DecrementStock(_ context.Context, id string, qty int) (bool, error) {
	p, ok := m.byID[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (m *memProducts) IncrementStock(_ context.Context, id string, qty int) error {
	if p, ok := m.byID[id]; ok {
		p.Stock += qty
	}
	return nil
}

type memCategories struct {
	list []catalog.Category
}

func (m *memCategories) List(_ context.Context) ([]catalog.Category, error) {
	return m.list, nil
}

func (m *memCategories) GetByID(_ context.Context, id string) (*catalog.Category, error) {
	for _, c := range m.list {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, catalog.ErrNotFound
}

type memCarts struct {
	byUser map[string]*cart.Cart
}

func (m *memCarts) GetByUser(_ context.Context, userID string) (*cart.Cart, error) {
	c, ok := m.byUser[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	return &cp, nil
}

func (m *memCarts) Save(_ context.Context, c *cart.Cart) error {
	m.byUser[c.UserID] = c
	return nil
}

func (m *memCarts) Clear(_ context.Context, userID string) error {
	if c, ok := m.byUser[userID]; ok {
		c.Lines = nil
	}
	return nil
}

type memOrders struct {
	byID map[string]*order.Order
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id string, status order.Status) error {
	o, ok := m.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *memOrders) HasDelivered(_ context.Context, userID, productID string) (bool, error) {
	for _, o := range m.byID {
		if o.UserID != userID || o.Status != order.StatusDelivered {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

type memReviews struct {
	byID map[string]*review.Review
}

func (m *memReviews) Create(_ context.Context, r *review.Review) error {
	for _, existing := range m.byID {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return review.ErrDuplicate
		}
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memReviews) Update(_ context.Context, r *review.Review) error {
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memReviews) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memReviews) GetByID(_ context.Context, id string) (*review.Review, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, review.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReviews) Exists(_ context.Context, productID, userID string) (bool, error) {
	for _, r := range m.byID {
		if r.ProductID == productID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReviews) ListByProduct(_ context.Context, productID string) ([]review.Review, error) {
	var out []review.Review
	for _, r := range m.byID {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReviews) ListByUser(_ context.Context, userID string) ([]review.Review, error) {
	var out []review.Review
	for _, r := range m.byID {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReviews) AverageRating(_ context.Context, productID string) (float64, bool, error) {
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

type memNotifications struct {
	entries []*notification.Notification
}

func (m *memNotifications) Create(_ context.Context, n *notification.Notification) error {
	cp := *n
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memNotifications) ListByUser(_ context.Context, userID string) ([]notification.Notification, error) {
	var out []notification.Notification
	for _, n := range m.entries {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(_ context.Context, userID, id string) (*notification.Notification, error) {
	for _, n := range m.entries {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, notification.ErrNotFound
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.entries {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

// --- Harness ---

func newTestServer(products ...catalog.Product) *Server {
	productRepo := &memProducts{byID: make(map[string]*catalog.Product, len(products))}
	for i := range products {
		productRepo.byID[products[i].ID] = &products[i]
	}
	userRepo := &memUsers{byID: make(map[string]*user.User)}
	cartRepo := &memCarts{byUser: make(map[string]*cart.Cart)}
	orderRepo := &memOrders{byID: make(map[string]*order.Order)}
	reviewRepo := &memReviews{byID: make(map[string]*review.Review)}
	notificationRepo := &memNotifications{}

	return NewServer(
		auth.NewTokens([]byte("test-secret")),
		user.NewService(userRepo, bcrypt.MinCost),
		userRepo,
		productRepo,
		&memCategories{list: []catalog.Category{{ID: "c1", Name: "Widgets"}}},
		cart.NewService(cartRepo),
		order.NewService(cartRepo, productRepo, orderRepo, notificationRepo),
		review.NewService(reviewRepo, orderRepo),
		notificationRepo,
	)
}

type apiResponse struct {
	Status int
	Data   json.RawMessage
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
}

func do(t *testing.T, srv *Server, token, operation string, input any) apiResponse {
	t.Helper()

	body, err := json.Marshal(map[string]any{"operation": operation, "input": input})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return apiResponse{Status: rec.Code, Data: out.Data, Errors: out.Errors}
}

func decodeData(t *testing.T, resp apiResponse, dst any) {
	t.Helper()
	require.Empty(t, resp.Errors)
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func registerUser(t *testing.T, srv *Server, email string) string {
	t.Helper()
	resp := do(t, srv, "", "register", map[string]any{
		"name": "Test User", "email": email, "password": "hunter22x",
	})
	var av authView
	decodeData(t, resp, &av)
	return av.Token
}

func testProduct(id string, price string, stock int) catalog.Product {
	return catalog.Product{
		ID:         id,
		Name:       "Widget " + id,
		Price:      decimal.RequireFromString(price),
		CategoryID: "c1",
		Stock:      stock,
	}
}

func shippingInput() map[string]any {
	return map[string]any{
		"street": "123 Main St", "city": "Toronto", "province": "ON",
		"postalCode": "M5V 1A1", "country": "Canada",
	}
}

// --- Transport tests ---

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServeHTTP_MalformedEnvelope(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed request envelope")
}

func TestServeHTTP_UnknownOperation(t *testing.T) {
	srv := newTestServer()

	resp := do(t, srv, "", "fabricateMoney", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "VALIDATION", resp.Errors[0].Code)
}

// --- Auth tests ---

func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer()

	resp := do(t, srv, "", "register", map[string]any{
		"name": "Alice", "email": "alice@example.com", "password": "hunter22x",
	})
	var av authView
	decodeData(t, resp, &av)
	assert.NotEmpty(t, av.Token)
	assert.Equal(t, "alice@example.com", av.User.Email)

	resp = do(t, srv, "", "login", map[string]any{
		"email": "alice@example.com", "password": "hunter22x",
	})
	var login authView
	decodeData(t, resp, &login)
	assert.Equal(t, av.User.ID, login.User.ID)

	resp = do(t, srv, login.Token, "me", nil)
	var me userView
	decodeData(t, resp, &me)
	assert.Equal(t, "Alice", me.Name)
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer()

	for name, input := range map[string]map[string]any{
		"missing name":   {"email": "a@example.com", "password": "hunter22x"},
		"bad email":      {"name": "A", "email": "not-an-email", "password": "hunter22x"},
		"short password": {"name": "A", "email": "a@example.com", "password": "short"},
	} {
		resp := do(t, srv, "", "register", input)
		require.Len(t, resp.Errors, 1, name)
		assert.Equal(t, "VALIDATION", resp.Errors[0].Code, name)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer()
	registerUser(t, srv, "alice@example.com")

	resp := do(t, srv, "", "register", map[string]any{
		"name": "Mallory", "email": "alice@example.com", "password": "hunter22x",
	})
	assert.Equal(t, http.StatusConflict, resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "CONFLICT", resp.Errors[0].Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := newTestServer()
	registerUser(t, srv, "alice@example.com")

	wrongPassword := do(t, srv, "", "login", map[string]any{
		"email": "alice@example.com", "password": "nope-wrong",
	})
	unknownEmail := do(t, srv, "", "login", map[string]any{
		"email": "nobody@example.com", "password": "nope-wrong",
	})

	// Unknown email and wrong password are indistinguishable, so login
	// cannot be used to probe which addresses are registered.
	for _, resp := range []apiResponse{wrongPassword, unknownEmail} {
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "UNAUTHENTICATED", resp.Errors[0].Code)
	}
	assert.Equal(t, wrongPassword.Errors[0].Message, unknownEmail.Errors[0].Message)
}

func TestAuthenticatedOpsRejectAnonymous(t *testing.T) {
	srv := newTestServer()

	for _, op := range []string{"me", "cart", "orders", "notifications", "addToCart", "createOrder"} {
		resp := do(t, srv, "", op, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Status, op)
		require.Len(t, resp.Errors, 1, op)
		assert.Equal(t, "UNAUTHENTICATED", resp.Errors[0].Code, op)
	}
}

func TestInvalidTokenIsAnonymous(t *testing.T) {
	srv := newTestServer()

	resp := do(t, srv, "garbage-token", "me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

// --- Catalog tests ---

func TestProducts(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5), testProduct("p2", "25.50", 3))

	resp := do(t, srv, "", "products", nil)
	var products []productView
	decodeData(t, resp, &products)
	assert.Len(t, products, 2)

	resp = do(t, srv, "", "product", map[string]any{"id": "p2"})
	var p productView
	decodeData(t, resp, &p)
	assert.Equal(t, "25.50", p.Price)
	assert.Nil(t, p.AverageRating)

	resp = do(t, srv, "", "product", map[string]any{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestCategories(t *testing.T) {
	srv := newTestServer()

	resp := do(t, srv, "", "categories", nil)
	var categories []categoryView
	decodeData(t, resp, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "Widgets", categories[0].Name)
}

// --- Cart tests ---

func TestCartFlow(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5))
	token := registerUser(t, srv, "alice@example.com")

	// Empty cart reads as null.
	resp := do(t, srv, token, "cart", nil)
	require.Empty(t, resp.Errors)
	assert.Equal(t, "null", string(resp.Data))

	resp = do(t, srv, token, "addToCart", map[string]any{"productId": "p1", "quantity": 2})
	var cv cartView
	decodeData(t, resp, &cv)
	require.Len(t, cv.Lines, 1)
	assert.Equal(t, 2, cv.Lines[0].Quantity)
	require.NotNil(t, cv.Lines[0].Product)
	assert.Equal(t, "10.00", cv.Lines[0].Product.Price)

	resp = do(t, srv, token, "updateCartItem", map[string]any{"productId": "p1", "quantity": 4})
	decodeData(t, resp, &cv)
	assert.Equal(t, 4, cv.Lines[0].Quantity)

	resp = do(t, srv, token, "removeFromCart", map[string]any{"productId": "p1"})
	decodeData(t, resp, &cv)
	assert.Empty(t, cv.Lines)
}

func TestAddToCart_InvalidQuantity(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5))
	token := registerUser(t, srv, "alice@example.com")

	resp := do(t, srv, token, "addToCart", map[string]any{"productId": "p1", "quantity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
}

// --- Order and review tests ---

func TestCheckoutFlow(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5))
	token := registerUser(t, srv, "alice@example.com")

	resp := do(t, srv, token, "addToCart", map[string]any{"productId": "p1", "quantity": 2})
	require.Empty(t, resp.Errors)

	resp = do(t, srv, token, "createOrder", map[string]any{"address": shippingInput()})
	var ov orderView
	decodeData(t, resp, &ov)
	assert.Equal(t, "20.00", ov.Total)
	assert.Equal(t, "pending", ov.Status)
	require.Len(t, ov.Items, 1)
	assert.Equal(t, "10.00", ov.Items[0].PriceAtTime)

	// Cart is cleared and the order shows up in the listing.
	resp = do(t, srv, token, "cart", nil)
	var cv cartView
	decodeData(t, resp, &cv)
	assert.Empty(t, cv.Lines)

	resp = do(t, srv, token, "orders", nil)
	var list []orderView
	decodeData(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, ov.ID, list[0].ID)

	// Placement notification exists.
	resp = do(t, srv, token, "notifications", nil)
	var feed []notificationView
	decodeData(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.False(t, feed[0].Read)
}

func TestCheckout_EmptyCart(t *testing.T) {
	srv := newTestServer()
	token := registerUser(t, srv, "alice@example.com")

	resp := do(t, srv, token, "createOrder", map[string]any{"address": shippingInput()})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 1))
	token := registerUser(t, srv, "alice@example.com")

	resp := do(t, srv, token, "addToCart", map[string]any{"productId": "p1", "quantity": 3})
	require.Empty(t, resp.Errors)

	resp = do(t, srv, token, "createOrder", map[string]any{"address": shippingInput()})
	assert.Equal(t, http.StatusConflict, resp.Status)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "CONFLICT", resp.Errors[0].Code)
}

func TestCheckout_MissingAddress(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5))
	token := registerUser(t, srv, "alice@example.com")

	resp := do(t, srv, token, "createOrder", map[string]any{
		"address": map[string]any{"street": "123 Main St"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
}

func TestReviewFlow(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5))
	token := registerUser(t, srv, "alice@example.com")

	// Reviewing before delivery is rejected.
	resp := do(t, srv, token, "createReview", map[string]any{
		"productId": "p1", "rating": 5, "comment": "great",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	// Buy it, walk the order to delivered.
	resp = do(t, srv, token, "addToCart", map[string]any{"productId": "p1", "quantity": 1})
	require.Empty(t, resp.Errors)
	resp = do(t, srv, token, "createOrder", map[string]any{"address": shippingInput()})
	var ov orderView
	decodeData(t, resp, &ov)

	for _, status := range []string{"processing", "shipped", "delivered"} {
		resp = do(t, srv, token, "updateOrderStatus", map[string]any{
			"orderId": ov.ID, "status": status,
		})
		require.Empty(t, resp.Errors, status)
	}

	// Now the review goes through, and shows up in listings plus the average.
	resp = do(t, srv, token, "createReview", map[string]any{
		"productId": "p1", "rating": 4, "comment": "solid",
	})
	var rv reviewView
	decodeData(t, resp, &rv)
	assert.Equal(t, 4, rv.Rating)

	resp = do(t, srv, token, "productReviews", map[string]any{"productId": "p1"})
	var reviews []reviewView
	decodeData(t, resp, &reviews)
	require.Len(t, reviews, 1)

	resp = do(t, srv, "", "product", map[string]any{"id": "p1"})
	var p productView
	decodeData(t, resp, &p)
	require.NotNil(t, p.AverageRating)
	assert.InDelta(t, 4.0, *p.AverageRating, 0.0001)

	// A second review of the same product is a conflict.
	resp = do(t, srv, token, "createReview", map[string]any{
		"productId": "p1", "rating": 1, "comment": "double dipping",
	})
	assert.Equal(t, http.StatusConflict, resp.Status)
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5))
	token := registerUser(t, srv, "alice@example.com")

	resp := do(t, srv, token, "addToCart", map[string]any{"productId": "p1", "quantity": 1})
	require.Empty(t, resp.Errors)
	resp = do(t, srv, token, "createOrder", map[string]any{"address": shippingInput()})
	var ov orderView
	decodeData(t, resp, &ov)

	resp = do(t, srv, token, "updateOrderStatus", map[string]any{
		"orderId": ov.ID, "status": "delivered",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)

	resp = do(t, srv, token, "updateOrderStatus", map[string]any{
		"orderId": ov.ID, "status": "teleported",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
}

func TestOrderIsolation(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5))
	alice := registerUser(t, srv, "alice@example.com")
	bob := registerUser(t, srv, "bob@example.com")

	resp := do(t, srv, alice, "addToCart", map[string]any{"productId": "p1", "quantity": 1})
	require.Empty(t, resp.Errors)
	resp = do(t, srv, alice, "createOrder", map[string]any{"address": shippingInput()})
	var ov orderView
	decodeData(t, resp, &ov)

	// Bob cannot see Alice's order.
	resp = do(t, srv, bob, "order", map[string]any{"id": ov.ID})
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

// --- Notification tests ---

func TestNotifications_MarkRead(t *testing.T) {
	srv := newTestServer(testProduct("p1", "10.00", 5))
	token := registerUser(t, srv, "alice@example.com")

	resp := do(t, srv, token, "addToCart", map[string]any{"productId": "p1", "quantity": 1})
	require.Empty(t, resp.Errors)
	resp = do(t, srv, token, "createOrder", map[string]any{"address": shippingInput()})
	require.Empty(t, resp.Errors)

	resp = do(t, srv, token, "notifications", nil)
	var feed []notificationView
	decodeData(t, resp, &feed)
	require.Len(t, feed, 1)

	resp = do(t, srv, token, "markNotificationRead", map[string]any{
		"notificationId": feed[0].ID,
	})
	var nv notificationView
	decodeData(t, resp, &nv)
	assert.True(t, nv.Read)

	// Another user cannot mark it.
	other := registerUser(t, srv, "bob@example.com")
	resp = do(t, srv, other, "markNotificationRead", map[string]any{
		"notificationId": feed[0].ID,
	})
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = do(t, srv, token, "markAllNotificationsRead", nil)
	decodeData(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.True(t, feed[0].Read)
}

// Package api exposes the storefront operations over a single HTTP endpoint.
//
// The protocol is a JSON envelope multiplexed by operation name:
//
//	POST /api/query
//	{"operation": "addToCart", "input": {"productId": "...", "quantity": 2}}
//
// Responses are {"data": ...} on success or {"errors": [{"code", "message"}]}
// on failure. Each operation has its own typed input struct decoded and
// validated here, before anything reaches the domain services.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/auth"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/notification"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/review"
	"github.com/xenking/storefront/internal/domain/user"
)

// maxBodyBytes caps the request envelope size.
const maxBodyBytes = 1 << 20

// Server dispatches operations to the domain services.
type Server struct {
	tokens        *auth.Tokens
	users         *user.Service
	userRepo      user.Repository
	products      catalog.Repository
	categories    catalog.CategoryRepository
	carts         *cart.Service
	orders        *order.Service
	reviews       *review.Service
	notifications notification.Repository

	ops map[string]opFunc
}

// opFunc handles one operation: raw is the decoded "input" field.
type opFunc func(ctx *opContext, raw json.RawMessage) (any, error)

// opContext bundles what every operation handler needs.
type opContext struct {
	*Server
	req *http.Request
}

// NewServer constructs the API server with the required services.
func NewServer(
	tokens *auth.Tokens,
	users *user.Service,
	userRepo user.Repository,
	products catalog.Repository,
	categories catalog.CategoryRepository,
	carts *cart.Service,
	orders *order.Service,
	reviews *review.Service,
	notifications notification.Repository,
) *Server {
	s := &Server{
		tokens:        tokens,
		users:         users,
		userRepo:      userRepo,
		products:      products,
		categories:    categories,
		carts:         carts,
		orders:        orders,
		reviews:       reviews,
		notifications: notifications,
	}
	s.ops = map[string]opFunc{
		// Queries.
		"me":             (*opContext).me,
		"product":        (*opContext).product,
		"products":       (*opContext).listProducts,
		"categories":     (*opContext).listCategories,
		"cart":           (*opContext).getCart,
		"order":          (*opContext).getOrder,
		"orders":         (*opContext).listOrders,
		"productReviews": (*opContext).productReviews,
		"userReviews":    (*opContext).userReviews,
		"notifications":  (*opContext).listNotifications,

		// Mutations.
		"register":                 (*opContext).register,
		"login":                    (*opContext).login,
		"addToCart":                (*opContext).addToCart,
		"updateCartItem":           (*opContext).updateCartItem,
		"removeFromCart":           (*opContext).removeFromCart,
		"createOrder":              (*opContext).createOrder,
		"updateOrderStatus":        (*opContext).updateOrderStatus,
		"createReview":             (*opContext).createReview,
		"updateReview":             (*opContext).updateReview,
		"deleteReview":             (*opContext).deleteReview,
		"markNotificationRead":     (*opContext).markNotificationRead,
		"markAllNotificationsRead": (*opContext).markAllNotificationsRead,
	}
	return s
}

// envelope is the request wire shape.
type envelope struct {
	Operation string          `json:"operation"`
	Input     json.RawMessage `json:"input"`
}

// ServeHTTP handles the single /api/query endpoint.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, failf(CodeValidation, "method %s not allowed", r.Method))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, failf(CodeValidation, "read request body"))
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeError(w, failf(CodeValidation, "malformed request envelope"))
		return
	}

	op, ok := s.ops[env.Operation]
	if !ok {
		writeError(w, failf(CodeValidation, "unknown operation %q", env.Operation))
		return
	}

	ctx := s.resolveIdentity(r)
	r = r.WithContext(ctx)

	result, err := op(&opContext{Server: s, req: r}, env.Input)
	if err != nil {
		oe := toOpError(err)
		if oe.Code == CodeInternal {
			zctx.From(ctx).Error("operation failed",
				zap.String("operation", env.Operation),
				zap.Error(err))
		}
		writeError(w, oe)
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		zctx.From(ctx).Error("encode response",
			zap.String("operation", env.Operation),
			zap.Error(err))
		writeError(w, failf(CodeInternal, "internal error"))
		return
	}
	writeData(w, raw)
}

// decodeInput strictly decodes the operation input into dst.
func decodeInput(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return failf(CodeValidation, "malformed input: %s", err)
	}
	return nil
}

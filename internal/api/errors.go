package api

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/notification"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/review"
	"github.com/xenking/storefront/internal/domain/user"
)

// Code is a stable, machine-readable failure category surfaced to clients.
type Code string

// The error taxonomy. Every operation failure maps to exactly one code.
const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeValidation      Code = "VALIDATION"
	CodeInternal        Code = "INTERNAL"
)

// opError is a user-displayable failure with a taxonomy code.
type opError struct {
	Code    Code
	Message string
}

func (e *opError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func failf(code Code, format string, args ...any) *opError {
	return &opError{Code: code, Message: fmt.Sprintf(format, args...)}
}

var errUnauthenticated = &opError{Code: CodeUnauthenticated, Message: "not authenticated"}

// toOpError classifies a service error into the taxonomy. Unrecognized errors
// become INTERNAL and keep only a generic message; details stay in the log.
func toOpError(err error) *opError {
	var oe *opError
	if errors.As(err, &oe) {
		return oe
	}

	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, review.ErrNotFound),
		errors.Is(err, notification.ErrNotFound):
		return &opError{Code: CodeNotFound, Message: err.Error()}

	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, review.ErrDuplicate):
		return &opError{Code: CodeConflict, Message: err.Error()}

	case errors.Is(err, user.ErrWrongPassword):
		return &opError{Code: CodeUnauthenticated, Message: err.Error()}

	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrNotPurchased):
		return &opError{Code: CodeValidation, Message: err.Error()}
	}

	var insufficientStock *order.InsufficientStockError
	if errors.As(err, &insufficientStock) {
		return &opError{Code: CodeConflict, Message: insufficientStock.Error()}
	}
	var productNotFound *order.ProductNotFoundError
	if errors.As(err, &productNotFound) {
		return &opError{Code: CodeNotFound, Message: productNotFound.Error()}
	}
	var invalidTransition *order.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		return &opError{Code: CodeValidation, Message: invalidTransition.Error()}
	}

	return &opError{Code: CodeInternal, Message: "internal error"}
}

// httpStatus picks the transport status for a code. The envelope carries the
// real taxonomy; the status is advisory for generic HTTP tooling.
func httpStatus(code Code) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeData writes {"data": <raw>} where raw is pre-encoded JSON.
func writeData(w http.ResponseWriter, raw []byte) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.FieldStart("data")
		e.Raw(raw)
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.Bytes())
}

// writeError writes {"errors":[{"code":..., "message":...}]}.
func writeError(w http.ResponseWriter, oe *opError) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.FieldStart("errors")
		e.Arr(func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.FieldStart("code")
				e.Str(string(oe.Code))
				e.FieldStart("message")
				e.Str(oe.Message)
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(oe.Code))
	_, _ = w.Write(e.Bytes())
}

package api

import (
	"context"
	"net/http"
	"strings"
)

// identityKey is the context key for the authenticated user ID.
type identityKey struct{}

// withIdentity stores the user ID in the context.
func withIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// identityFrom returns the authenticated user ID, if any.
func identityFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey{}).(string)
	return id, ok && id != ""
}

// requireIdentity returns the user ID or an Unauthenticated failure. Every
// operation that needs a user goes through this single gate.
func requireIdentity(ctx context.Context) (string, error) {
	id, ok := identityFrom(ctx)
	if !ok {
		return "", errUnauthenticated
	}
	return id, nil
}

// resolveIdentity decodes the bearer credential on the request, if present.
// An absent or invalid token yields an anonymous context rather than a
// transport failure; individual operations decide whether identity is
// required.
func (s *Server) resolveIdentity(r *http.Request) context.Context {
	ctx := r.Context()

	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return ctx
	}

	userID, err := s.tokens.Verify(raw)
	if err != nil {
		return ctx
	}
	return withIdentity(ctx, userID)
}

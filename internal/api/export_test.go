package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// WithUID stamps an authenticated user id onto the request, standing in
// for AuthMiddleware in handler tests.
func WithUID(r *http.Request, uid uuid.UUID) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), uidContextKey, uid))
}

package middleware

import (
	"context"
	"net/http"

	"github.com/23041450154/ruang-dengar-imadiksi/internal/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Session resolves the caller's identity from the session cookie and
// places it in the request context. Requests without a valid cookie pass
// through with no identity; handlers decide whether that is a 401.
func Session(secret []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := auth.FromRequest(secret, r); id != nil {
				ctx := context.WithValue(r.Context(), identityContextKey, id)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext retrieves the verified identity from the request
// context, or nil when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	id, ok := ctx.Value(identityContextKey).(*auth.Identity)
	if !ok {
		return nil
	}
	return id
}

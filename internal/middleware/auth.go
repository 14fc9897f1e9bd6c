package middleware

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/storefront/internal/auth"
)

// Session resolves the request's auth state once and stores it in the
// context, so pages and RPC handlers read it without re-validating the token.
func Session(provider *auth.SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := provider.Resolve(r)
			next.ServeHTTP(w, r.WithContext(auth.WithState(r.Context(), state)))
		})
	}
}

// RequireAuth returns a Connect interceptor that rejects calls without a
// signed-in session. It relies on Session having run first, and falls back to
// validating the Authorization header itself when it hasn't.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if state, ok := auth.StateFromContext(ctx); ok && state.SignedIn {
				return next(ctx, req)
			}

			token := auth.BearerToken(req.Header().Get("Authorization"))
			if token == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(auth.WithState(ctx, claims.State()), req)
		}
	}
}

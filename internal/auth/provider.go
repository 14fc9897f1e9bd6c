package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/storefront/internal/models"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "storefront_session"

// State is the binary authentication state shown by the navigation bar.
type State struct {
	SignedIn    bool
	UserID      string
	Email       string
	DisplayName string
}

// SignedOut is the zero State.
var SignedOut = State{}

// Label is the name to show for a signed-in user.
func (s State) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

// Provider is the capability the web layer needs from an identity provider:
// the current auth state of a request and where the sign-in / sign-out
// affordances point. Any identity vendor can satisfy it.
type Provider interface {
	State(r *http.Request) State
	SignInURL() string
	SignOutURL() string
}

type stateKey struct{}

// WithState stores a resolved State in the context.
func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// StateFromContext returns the State stored by WithState, if any.
func StateFromContext(ctx context.Context) (State, bool) {
	s, ok := ctx.Value(stateKey{}).(State)
	return s, ok
}

// SessionProvider is the built-in Provider: a JWT in an HttpOnly cookie
// (or a Bearer Authorization header for API clients).
type SessionProvider struct {
	jwt          *JWTManager
	secureCookie bool
}

var _ Provider = (*SessionProvider)(nil)

// NewSessionProvider creates a cookie session provider.
func NewSessionProvider(jwtManager *JWTManager) *SessionProvider {
	return &SessionProvider{jwt: jwtManager}
}

// WithSecureCookie marks session cookies Secure (HTTPS only).
func (p *SessionProvider) WithSecureCookie(secure bool) *SessionProvider {
	p.secureCookie = secure
	return p
}

// SignInURL is where the sign-in trigger points.
func (p *SessionProvider) SignInURL() string { return "/signin" }

// SignOutURL is where the sign-out form posts.
func (p *SessionProvider) SignOutURL() string { return "/signout" }

// State returns the request's auth state, preferring one already resolved by
// middleware.
func (p *SessionProvider) State(r *http.Request) State {
	if s, ok := StateFromContext(r.Context()); ok {
		return s
	}
	return p.Resolve(r)
}

// Resolve validates the request's token. Missing or invalid tokens are
// treated as signed out.
func (p *SessionProvider) Resolve(r *http.Request) State {
	claims, err := p.jwt.Validate(tokenFromRequest(r))
	if err != nil {
		return SignedOut
	}
	return claims.State()
}

// StartSession issues a token for the user and sets the session cookie.
func (p *SessionProvider) StartSession(w http.ResponseWriter, user *models.User) (string, error) {
	token, err := p.jwt.Generate(user)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(p.jwt.TokenDuration() / time.Second),
		HttpOnly: true,
		Secure:   p.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// EndSession clears the session cookie. Tokens are stateless, so nothing is
// revoked server side.
func (p *SessionProvider) EndSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenFromRequest prefers the Authorization header over the cookie.
func tokenFromRequest(r *http.Request) string {
	if token := BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

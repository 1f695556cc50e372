// Package auth resolves whether a browser holds a live backend session and
// guards routes accordingly.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"mykharche/internal/api"
	"mykharche/internal/cache"
	"mykharche/internal/core"
	applog "mykharche/internal/log"
)

// CheckFunc asks the backend whether token is a live session.
type CheckFunc func(ctx context.Context, token string) error

// APICheck checks tokens against the backend's isUserLoggedIn endpoint.
func APICheck(c *api.Client) CheckFunc {
	return func(ctx context.Context, token string) error {
		return c.Session(token).IsUserLoggedIn(ctx)
	}
}

// Gate resolves tokens to an AuthState. Definite answers are cached per token.
type Gate struct {
	check  CheckFunc
	states cache.Cache[core.AuthState]
	logger *applog.Logger
}

// NewGate builds a gate. states may be nil to disable caching.
func NewGate(check CheckFunc, states cache.Cache[core.AuthState], logger *applog.Logger) *Gate {
	return &Gate{
		check:  check,
		states: states,
		logger: logger.WithComponent(applog.ComponentAuth),
	}
}

// Resolve maps a token to its state:
// no token or a 401/403/404 is Unauthenticated, 2xx is Authenticated,
// anything else (transport failure, 5xx) is Unknown.
func (g *Gate) Resolve(ctx context.Context, token string) core.AuthState {
	if token == "" {
		return core.AuthUnauthenticated
	}

	key := cacheKey(token)
	if g.states != nil {
		if state, ok := g.states.Get(key); ok {
			return state
		}
	}

	err := g.check(ctx, token)
	var state core.AuthState
	switch {
	case err == nil:
		state = core.AuthAuthenticated
	case api.IsUnauthorized(err):
		state = core.AuthUnauthenticated
	default:
		state = core.AuthUnknown
		g.logger.WarnContext(ctx, "Session check inconclusive",
			applog.FieldUpstream, api.StatusOf(err),
			applog.FieldError, err)
	}

	if state != core.AuthUnknown && g.states != nil {
		g.states.Set(key, state)
	}
	g.logger.DebugContext(ctx, "Session resolved", applog.FieldAuthState, state.String())
	return state
}

// Forget drops the cached state for token, used on logout.
func (g *Gate) Forget(token string) {
	if token != "" && g.states != nil {
		g.states.Delete(cacheKey(token))
	}
}

// Remember records a freshly issued token as authenticated.
func (g *Gate) Remember(token string) {
	if token != "" && g.states != nil {
		g.states.Set(cacheKey(token), core.AuthAuthenticated)
	}
}

// cacheKey keeps raw tokens out of the cache.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type contextKey string

const (
	stateKey contextKey = "auth_state"
	tokenKey contextKey = "auth_token"
)

// StateFrom returns the state resolved by the guard middleware.
func StateFrom(ctx context.Context) core.AuthState {
	if s, ok := ctx.Value(stateKey).(core.AuthState); ok {
		return s
	}
	return core.AuthUnknown
}

// TokenFrom returns the bearer token seen by the guard middleware.
func TokenFrom(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}

func withSession(ctx context.Context, token string, state core.AuthState) context.Context {
	ctx = context.WithValue(ctx, tokenKey, token)
	return context.WithValue(ctx, stateKey, state)
}

// RequireAuth redirects to /login only for Unauthenticated. Unknown renders normally.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		state := g.Resolve(r.Context(), token)
		if state == core.AuthUnauthenticated {
			Redirect(w, r, "/login")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), token, state)))
	})
}

// RedirectIfAuthenticated sends signed-in users from the auth pages to the dashboard.
func (g *Gate) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		state := g.Resolve(r.Context(), token)
		if state == core.AuthAuthenticated {
			Redirect(w, r, "/dashboard")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), token, state)))
	})
}

// Redirect answers HTMX requests with HX-Redirect and everything else with 303.
func Redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

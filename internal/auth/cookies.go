package auth

import (
	"net/http"
	"time"
)

const (
	TokenCookie    = "token"
	ForLoginCookie = "forLogin"

	SessionMaxAge  = 24 * time.Hour
	RememberMaxAge = 5 * 24 * time.Hour
	forLoginMaxAge = 10 * time.Minute
)

// Cookies writes the auth cookies with a fixed Secure flag.
type Cookies struct {
	Secure bool
}

// SetToken stores the session token for a day, or five days with remember-me.
func (c Cookies) SetToken(w http.ResponseWriter, token string, remember bool) {
	maxAge := SessionMaxAge
	if remember {
		maxAge = RememberMaxAge
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) ClearToken(w http.ResponseWriter) {
	c.clear(w, TokenCookie)
}

// SetForLogin marks the pending Google flow as a login rather than a signup.
func (c Cookies) SetForLogin(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ForLoginCookie,
		Value:    "1",
		Path:     "/",
		MaxAge:   int(forLoginMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeForLogin reads and destroys the forLogin marker.
func (c Cookies) TakeForLogin(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(ForLoginCookie)
	c.clear(w, ForLoginCookie)
	return err == nil && cookie.Value == "1"
}

func (c Cookies) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the token cookie value, empty when absent.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

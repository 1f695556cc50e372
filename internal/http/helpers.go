package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mykharche/internal/auth"
	"mykharche/internal/services"
)

const (
	drawerCookie = "drawer"
	drawerMaxAge = 30 * 24 * time.Hour
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// drawerID returns the browser's drawer id, issuing one on first use.
func (s *Server) drawerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(drawerCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     drawerCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(drawerMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// existingDrawerID returns the drawer cookie without issuing a new one.
func existingDrawerID(r *http.Request) string {
	if c, err := r.Cookie(drawerCookie); err == nil {
		return c.Value
	}
	return ""
}

// backend binds the API client to the request's session token.
func (s *Server) backend(r *http.Request) services.Backend {
	return s.api.Session(auth.TokenFrom(r.Context()))
}

// redirectWithToast carries toast to the next page in the flash cookie.
func (s *Server) redirectWithToast(w http.ResponseWriter, r *http.Request, to string, toast *services.Toast) {
	if toast != nil {
		s.setFlash(w, toast)
	}
	auth.Redirect(w, r, to)
}

// withQuery appends query to path, dropping the resume marker.
func withQuery(path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		if k != "resume" {
			q[k] = v
		}
	}
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// localPath accepts only same-site absolute paths.
func localPath(p, fallback string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	return p
}

func formatAmount(d decimal.Decimal) string {
	return d.String()
}

// formatDay renders a date the way the expense list headline reads it, e.g. "Fri Mar 15 2024".
func formatDay(t time.Time) string {
	return t.Format("Mon Jan 02 2006")
}

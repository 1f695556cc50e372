package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	applog "mykharche/internal/log"
	"mykharche/internal/services"
)

const (
	toastCookie = "toast"
	toastMaxAge = 60
)

// setFlash stores a toast for the next page render.
func (s *Server) setFlash(w http.ResponseWriter, t *services.Toast) {
	raw, err := json.Marshal(t)
	if err != nil {
		s.logger.Warn("Failed to encode toast", applog.FieldError, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     toastCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   toastMaxAge,
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash reads and clears the pending toast. Malformed cookies are dropped.
func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) *services.Toast {
	c, err := r.Cookie(toastCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     toastCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var t services.Toast
	if err := json.Unmarshal(raw, &t); err != nil || t.Message == "" {
		return nil
	}
	if t.Status != services.ToastSuccess {
		t.Status = services.ToastError
	}
	return &t
}

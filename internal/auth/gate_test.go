package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mykharche/internal/api"
	"mykharche/internal/cache"
	"mykharche/internal/core"
	applog "mykharche/internal/log"
)

type stubCheck struct {
	err   error
	calls int
}

func (s *stubCheck) check(context.Context, string) error {
	s.calls++
	return s.err
}

func newGate(s *stubCheck) *Gate {
	return NewGate(s.check, cache.NewLRUCache[core.AuthState](16, time.Minute), applog.Discard())
}

func TestGate_Resolve(t *testing.T) {
	tests := []struct {
		name  string
		token string
		err   error
		want  core.AuthState
	}{
		{"no token", "", nil, core.AuthUnauthenticated},
		{"live session", "t", nil, core.AuthAuthenticated},
		{"401", "t", &api.Error{Status: http.StatusUnauthorized}, core.AuthUnauthenticated},
		{"403", "t", &api.Error{Status: http.StatusForbidden}, core.AuthUnauthenticated},
		{"404", "t", &api.Error{Status: http.StatusNotFound}, core.AuthUnauthenticated},
		{"500", "t", &api.Error{Status: http.StatusInternalServerError}, core.AuthUnknown},
		{"transport", "t", errors.New("connection refused"), core.AuthUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubCheck{err: tt.err}
			if got := newGate(s).Resolve(context.Background(), tt.token); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
			if tt.token == "" && s.calls != 0 {
				t.Error("backend called without a token")
			}
		})
	}
}

func TestGate_CachesDefiniteStates(t *testing.T) {
	s := &stubCheck{}
	g := newGate(s)
	ctx := context.Background()

	g.Resolve(ctx, "t")
	g.Resolve(ctx, "t")
	if s.calls != 1 {
		t.Errorf("checked %d times, want 1", s.calls)
	}

	g.Forget("t")
	g.Resolve(ctx, "t")
	if s.calls != 2 {
		t.Errorf("checked %d times after Forget, want 2", s.calls)
	}
}

func TestGate_DoesNotCacheUnknown(t *testing.T) {
	s := &stubCheck{err: &api.Error{Status: http.StatusBadGateway}}
	g := newGate(s)
	ctx := context.Background()

	g.Resolve(ctx, "t")
	s.err = nil
	if got := g.Resolve(ctx, "t"); got != core.AuthAuthenticated {
		t.Errorf("Resolve() = %v, want authenticated after recovery", got)
	}
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		err        error
		wantStatus int
		wantNext   bool
	}{
		{"authenticated", "t", nil, http.StatusOK, true},
		{"unknown renders", "t", errors.New("timeout"), http.StatusOK, true},
		{"unauthenticated redirects", "t", &api.Error{Status: http.StatusUnauthorized}, http.StatusSeeOther, false},
		{"no cookie redirects", "", nil, http.StatusSeeOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGate(&stubCheck{err: tt.err})
			called := false
			h := g.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if TokenFrom(r.Context()) != tt.token {
					t.Errorf("token in context = %q", TokenFrom(r.Context()))
				}
			}))

			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.token})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != tt.wantNext {
				t.Errorf("next called = %v, want %v", called, tt.wantNext)
			}
			if !tt.wantNext && rec.Header().Get("Location") != "/login" {
				t.Errorf("Location = %q", rec.Header().Get("Location"))
			}
		})
	}
}

func TestRedirectIfAuthenticated(t *testing.T) {
	g := newGate(&stubCheck{})
	h := g.RedirectIfAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "t"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("got %d to %q", rec.Code, rec.Header().Get("Location"))
	}

	g = newGate(&stubCheck{err: errors.New("down")})
	h = g.RedirectIfAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Errorf("unknown state redirected: %d", rec.Code)
	}
}

func TestRedirect_HTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	Redirect(rec, req, "/login")
	if rec.Header().Get("HX-Redirect") != "/login" {
		t.Errorf("HX-Redirect = %q", rec.Header().Get("HX-Redirect"))
	}
}

func TestCookies_TokenMaxAge(t *testing.T) {
	for remember, want := range map[bool]int{false: 86400, true: 432000} {
		rec := httptest.NewRecorder()
		Cookies{}.SetToken(rec, "abc", remember)
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].MaxAge != want || !cookies[0].HttpOnly {
			t.Errorf("remember=%v cookies = %+v", remember, cookies)
		}
	}
}

func TestCookies_TakeForLogin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/googleRedirect", nil)
	req.AddCookie(&http.Cookie{Name: ForLoginCookie, Value: "1"})
	rec := httptest.NewRecorder()

	if !(Cookies{}).TakeForLogin(rec, req) {
		t.Error("forLogin not read")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("forLogin not destroyed: %+v", cookies)
	}
}

package http

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"mykharche/internal/api"
	"mykharche/internal/auth"
	applog "mykharche/internal/log"
	"mykharche/internal/middleware/ratelimit"
	"mykharche/internal/middleware/security"
	"mykharche/internal/middleware/trace"
	"mykharche/internal/services"
	appweb "mykharche/web"
)

// Deps are the collaborators a Server is built from.
type Deps struct {
	API      *api.Client
	Gate     *auth.Gate
	Drawers  *services.DrawerService
	Entries  *services.EntryService
	Limiter  *ratelimit.Limiter
	Detector *security.Detector
	Headers  security.HeadersConfig
	Cookies  auth.Cookies
	Logger   *applog.Logger

	// Ready reports draft storage health for /readyz. Optional.
	Ready func(ctx context.Context) error
	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server

	api      *api.Client
	gate     *auth.Gate
	drawers  *services.DrawerService
	entries  *services.EntryService
	limiter  *ratelimit.Limiter
	detector *security.Detector
	trace    *trace.Middleware
	cookies  auth.Cookies
	views    *renderer
	ready    func(ctx context.Context) error
	now      func() time.Time
	started  time.Time
	logger   *applog.Logger

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires every route.
func NewServer(addr string, deps Deps) (*Server, error) {
	logger := deps.Logger.WithComponent(applog.ComponentHTTP)

	views, err := newRenderer(appweb.TemplatesFS, deps.Logger)
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		api:      deps.API,
		gate:     deps.Gate,
		drawers:  deps.Drawers,
		entries:  deps.Entries,
		limiter:  deps.Limiter,
		detector: deps.Detector,
		trace:    trace.NewMiddleware(deps.Detector.ExtractClientIP, deps.Logger),
		cookies:  deps.Cookies,
		views:    views,
		ready:    deps.Ready,
		now:      now,
		started:  now(),
		logger:   logger,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(http.FS(static), deps.Headers),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(static http.FileSystem, headers security.HeadersConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.trace.Middleware)
	r.Use(security.NewHeadersMiddleware(headers).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))
	r.Use(chimiddleware.Compress(5, "text/html", "text/css", "application/javascript"))

	r.With(security.StaticAssetMiddleware(3600)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static)))
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/", s.handleLanding)
	r.Get("/googleRedirect", s.handleGoogleRedirect)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.gate.RedirectIfAuthenticated)
		r.Get("/login", s.handleAuthPage(pageLogin))
		r.Post("/login", s.handleLogin)
		r.Get("/signup", s.handleAuthPage(pageSignup))
		r.Post("/signup", s.handleSignup)
		r.Get("/forgot-password", s.handleAuthPage(pageForgotPassword))
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Get("/auth/google", s.handleGoogleAuth)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.gate.RequireAuth)

		for _, page := range []string{pageDashboard, pageExpenses, pageAnalytics, pageProfile} {
			r.Get("/"+page, s.handlePage(page))
			r.Route("/"+page+"/addExpenses", func(r chi.Router) {
				s.mountExpenseDrawer(r, addRoute(services.KindExpense, page, "/"+page+"/addExpenses"))
			})
		}
		r.Post("/expenses/delete/{id}", s.handleDeleteExpense)
		r.Route("/expenses/editExpense/{id}", func(r chi.Router) {
			s.mountExpenseDrawer(r, editRoute(services.KindExpense, pageExpenses, "/expenses/editExpense/"))
		})

		r.Get("/income", s.handlePage(pageIncome))
		r.Post("/income/delete/{id}", s.handleDeleteIncome)
		r.Route("/income/addIncome", func(r chi.Router) {
			s.mountIncomeDrawer(r, addRoute(services.KindIncome, pageIncome, "/income/addIncome"))
		})
		r.Route("/income/editIncome/{id}", func(r chi.Router) {
			s.mountIncomeDrawer(r, editRoute(services.KindIncome, pageIncome, "/income/editIncome/"))
		})
	})

	r.NotFound(s.handleNotFound)
	return r
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	const msg = "Too many requests, try again in a minute"
	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusTooManyRequests).
			Toast(services.ErrorToast(msg)).
			Write(w)
		return
	}
	http.Error(w, msg, http.StatusTooManyRequests)
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"mykharche/internal/auth"
	"mykharche/internal/core"
	applog "mykharche/internal/log"
	"mykharche/internal/services"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.trace.GetMetrics()
	health := map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
		"requests": map[string]any{
			"total":        metrics.TotalRequests,
			"in_flight":    metrics.InFlight,
			"rate_limited": s.limiter.Hits(),
			"suspicious":   s.detector.SuspiciousRequests(),
			"clients":      s.limiter.ActiveClients(),
		},
	}
	writeJSON(w, http.StatusOK, health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok"}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Draft storage not ready", applog.FieldError, err)
			checks["drafts"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["drafts"] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.views.page(w, r, http.StatusOK, pageLanding, &pageData{Toast: s.takeFlash(w, r)})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.views.page(w, r, http.StatusNotFound, pageNotFound, &pageData{})
}

// handlePage renders one of the signed-in layout pages.
func (s *Server) handlePage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.loadPage(r, page, r.URL.Query())
		if toast := s.takeFlash(w, r); toast != nil {
			data.Toast = toast
		}
		s.views.page(w, r, http.StatusOK, page, data)
	}
}

// loadPage builds the data of a layout page, fetching its list when it has one.
// List failures render an empty list rather than an error page.
func (s *Server) loadPage(r *http.Request, page string, query url.Values) *pageData {
	ctx := r.Context()
	data := &pageData{
		Active:  page,
		Nav:     true,
		Offline: auth.StateFrom(ctx) == core.AuthUnknown,
		AddPath: withQuery("/"+page+"/addExpenses", query),
	}

	switch page {
	case pageExpenses:
		dates := core.NewDateSelector(s.now)
		dates.SelectString(query.Get("date"))
		day, err := s.entries.ExpensesForDay(ctx, s.backend(r), dates.Selected())
		data.Expenses = &expensesView{Dates: dates, Day: day, Failed: err != nil}

	case pageIncome:
		data.AddPath = withQuery("/income/addIncome", query)
		dates := core.NewDateSelector(s.now)
		dates.SelectMonth(query.Get("month"))
		month, err := s.entries.IncomeForMonth(ctx, s.backend(r), dates.Selected())
		data.Income = &incomeView{Dates: dates, Month: month, Failed: err != nil}
		if err != nil {
			data.Toast = services.ErrorToast(services.MsgSomethingWentWrong)
		}
	}
	return data
}


package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	applog "mykharche/internal/log"
	"mykharche/internal/services"
)

func (s *Server) mountIncomeDrawer(r chi.Router, dr drawerRoute) {
	r.Get("/", s.handleOpenIncome(dr))
	r.Post("/", s.handleSubmitIncome(dr))
	r.Post("/close", s.handleCloseDrawer(dr))
}

func (s *Server) handleOpenIncome(dr drawerRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := s.drawerID(w, r)
		returnTo := dr.returnTo(r)

		if r.URL.Query().Get("resume") == "1" {
			if d, ok := s.currentDrawer(r, dr); ok {
				s.renderDrawerPage(w, r, dr, d)
				return
			}
		}

		if entryID := dr.entryID(r); entryID != "" {
			d, err := s.drawers.EditIncome(ctx, id, s.backend(r), entryID, returnTo)
			if err != nil {
				s.redirectWithToast(w, r, returnTo, services.ErrorToast(services.MsgSomethingWentWrong))
				return
			}
			s.renderDrawerPage(w, r, dr, d)
			return
		}

		d := s.drawers.Open(ctx, id, services.KindIncome, s.backend(r), returnTo)
		s.renderDrawerPage(w, r, dr, d)
	}
}

// handleSubmitIncome saves the income. An incomplete form stays open with
// an inline message and never reaches the backend.
func (s *Server) handleSubmitIncome(dr drawerRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := s.currentDrawer(r, dr)
		if !ok {
			s.reopen(w, r, dr)
			return
		}
		p, err := parseBody(r)
		if err != nil {
			BadRequestError("Invalid form").Write(w)
			return
		}

		date, in := incomeFields(p)
		out, err := s.drawers.SubmitIncome(r.Context(), d, s.backend(r), date, in)
		if errors.Is(err, services.ErrSaveInFlight) {
			applog.FromContext(r.Context()).InfoContext(r.Context(), "Duplicate income submit ignored",
				applog.FieldDrawerID, d.ID)
		}
		s.afterAction(w, r, dr, d, out.Toast, out.Closed)
	}
}

// handleDeleteIncome deletes from the income list and returns to the same month.
func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	toast := s.entries.DeleteIncome(r.Context(), s.backend(r), chi.URLParam(r, "id"))
	s.redirectWithToast(w, r, withQuery("/"+pageIncome, r.URL.Query()), toast)
}

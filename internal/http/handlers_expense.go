package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	applog "mykharche/internal/log"
	"mykharche/internal/services"
)

// mountExpenseDrawer registers the expense drawer and its category sub-view.
func (s *Server) mountExpenseDrawer(r chi.Router, dr drawerRoute) {
	r.Get("/", s.handleOpenExpense(dr))
	r.Post("/", s.handleAdvanceExpense(dr))
	r.Post("/newCategory", s.handleOpenNewCategory(dr))
	r.Post("/category", s.handleAddCategory(dr))
	r.Post("/category/cancel", s.handleCancelCategory(dr))
	r.Post("/category/{categoryID}/delete", s.handleRemoveCategory(dr))
	r.Post("/close", s.handleCloseDrawer(dr))
}

// handleOpenExpense opens the drawer, or resumes it after a plain form post.
// Edit drawers are prefilled from the backend. A failed fetch goes back to
// the parent page with an error toast.
func (s *Server) handleOpenExpense(dr drawerRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := s.drawerID(w, r)
		returnTo := dr.returnTo(r)

		resume := r.URL.Query().Get("resume") == "1"
		entryID := dr.entryID(r)

		if resume && entryID != "" {
			if d, ok := s.currentDrawer(r, dr); ok {
				s.renderDrawerPage(w, r, dr, d)
				return
			}
		}

		if entryID != "" {
			d, err := s.drawers.EditExpense(ctx, id, s.backend(r), entryID, returnTo)
			if err != nil {
				s.redirectWithToast(w, r, returnTo, services.ErrorToast(services.MsgSomethingWentWrong))
				return
			}
			s.renderDrawerPage(w, r, dr, d)
			return
		}

		var d *services.Drawer
		if resume {
			d = s.drawers.Resume(ctx, id, services.KindExpense, s.backend(r), returnTo)
		} else {
			d = s.drawers.Open(ctx, id, services.KindExpense, s.backend(r), returnTo)
		}
		s.renderDrawerPage(w, r, dr, d)
	}
}

// handleAdvanceExpense validates the current step and either reveals the
// next field or saves the expense.
func (s *Server) handleAdvanceExpense(dr drawerRoute) http.HandlerFunc {
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

		date, in := expenseFields(p)
		out, err := s.drawers.Advance(r.Context(), d, s.backend(r), date, in)
		if errors.Is(err, services.ErrSaveInFlight) {
			applog.FromContext(r.Context()).InfoContext(r.Context(), "Duplicate expense submit ignored",
				applog.FieldDrawerID, d.ID)
		}
		s.afterAction(w, r, dr, d, out.Toast, out.Closed)
	}
}

// handleOpenNewCategory parks the typed fields in the draft and shows the sub-view.
func (s *Server) handleOpenNewCategory(dr drawerRoute) http.HandlerFunc {
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

		date, in := expenseFields(p)
		var toast *services.Toast
		if err := s.drawers.OpenNewCategory(r.Context(), d, date, in); err != nil {
			toast = services.ErrorToast(services.MsgSomethingWentWrong)
		}
		s.afterAction(w, r, dr, d, toast, false)
	}
}

func (s *Server) handleAddCategory(dr drawerRoute) http.HandlerFunc {
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

		toast, _ := s.drawers.AddCategory(r.Context(), d, s.backend(r), p.Get("categoryName"), p.Get("categoryType"))
		s.afterAction(w, r, dr, d, toast, false)
	}
}

func (s *Server) handleCancelCategory(dr drawerRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := s.currentDrawer(r, dr)
		if !ok {
			s.reopen(w, r, dr)
			return
		}
		s.drawers.CloseNewCategory(r.Context(), d)
		s.afterAction(w, r, dr, d, nil, false)
	}
}

func (s *Server) handleRemoveCategory(dr drawerRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := s.currentDrawer(r, dr)
		if !ok {
			s.reopen(w, r, dr)
			return
		}
		toast := s.drawers.RemoveCategory(r.Context(), d, s.backend(r), chi.URLParam(r, "categoryID"))
		s.afterAction(w, r, dr, d, toast, false)
	}
}

// handleDeleteExpense deletes from the expenses list and returns to the same day.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	toast := s.entries.DeleteExpense(r.Context(), s.backend(r), chi.URLParam(r, "id"))
	s.redirectWithToast(w, r, withQuery("/"+pageExpenses, r.URL.Query()), toast)
}

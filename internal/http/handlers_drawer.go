package http

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"mykharche/internal/services"
)

// drawerRoute describes where a drawer is mounted.
type drawerRoute struct {
	kind services.EntryKind
	// parent is the page rendered underneath the drawer.
	parent string
	prefix string
	edit   bool
}

func addRoute(kind services.EntryKind, parent, path string) drawerRoute {
	return drawerRoute{kind: kind, parent: parent, prefix: path}
}

// editRoute mounts under prefix followed by the entry id.
func editRoute(kind services.EntryKind, parent, prefix string) drawerRoute {
	return drawerRoute{kind: kind, parent: parent, prefix: prefix, edit: true}
}

// entryID is the id being edited, empty on add routes.
func (dr drawerRoute) entryID(r *http.Request) string {
	if !dr.edit {
		return ""
	}
	return chi.URLParam(r, "id")
}

// path is the URL the drawer's forms post to.
func (dr drawerRoute) path(r *http.Request) string {
	if dr.edit {
		return dr.prefix + url.PathEscape(dr.entryID(r))
	}
	return dr.prefix
}

// returnTo is the parent page, keeping the query the drawer was opened with.
func (dr drawerRoute) returnTo(r *http.Request) string {
	return withQuery("/"+dr.parent, r.URL.Query())
}

// matches reports whether an open drawer belongs to this route.
func (dr drawerRoute) matches(r *http.Request, snap services.DrawerSnapshot) bool {
	if snap.Kind != dr.kind {
		return false
	}
	editing := snap.Expense.EditingID
	if dr.kind == services.KindIncome {
		editing = snap.Income.EditingID
	}
	return editing == dr.entryID(r)
}

// currentDrawer returns the browser's open drawer for this route.
func (s *Server) currentDrawer(r *http.Request, dr drawerRoute) (*services.Drawer, bool) {
	d, ok := s.drawers.Get(existingDrawerID(r))
	if !ok || !dr.matches(r, d.Snapshot()) {
		return nil, false
	}
	return d, true
}

// reopen sends a request that lost its drawer back to the drawer's GET route.
func (s *Server) reopen(w http.ResponseWriter, r *http.Request, dr drawerRoute) {
	s.redirectWithToast(w, r, withQuery(dr.path(r), r.URL.Query()), nil)
}

// renderDrawerPage writes the parent page with the drawer open over it.
func (s *Server) renderDrawerPage(w http.ResponseWriter, r *http.Request, dr drawerRoute, d *services.Drawer) {
	snap := d.Snapshot()
	query := url.Values{}
	if u, err := url.Parse(snap.ReturnTo); err == nil {
		query = u.Query()
	}

	data := s.loadPage(r, dr.parent, query)
	data.Drawer = &drawerView{DrawerSnapshot: snap, Path: dr.path(r)}
	if toast := s.takeFlash(w, r); toast != nil {
		data.Toast = toast
	}
	s.views.page(w, r, http.StatusOK, dr.parent, data)
}

// afterAction finishes a drawer POST. A closed drawer redirects to its
// parent with the toast. An open one re-renders: htmx gets the drawer
// fragment, plain forms are redirected back to the drawer.
func (s *Server) afterAction(w http.ResponseWriter, r *http.Request, dr drawerRoute, d *services.Drawer, toast *services.Toast, closed bool) {
	snap := d.Snapshot()
	if closed {
		s.redirectWithToast(w, r, localPath(snap.ReturnTo, "/"+dr.parent), toast)
		return
	}

	if !isHTMX(r) {
		query := url.Values{}
		if u, err := url.Parse(snap.ReturnTo); err == nil {
			query = u.Query()
		}
		query.Set("resume", "1")
		s.redirectWithToast(w, r, dr.path(r)+"?"+query.Encode(), toast)
		return
	}

	body, err := s.views.partial("drawer", &pageData{Drawer: &drawerView{DrawerSnapshot: snap, Path: dr.path(r)}})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Drawer render failed", "error", err)
		InternalServerError(services.MsgSomethingWentWrong).Write(w)
		return
	}
	NewHTMXResponse().Toast(toast).Body(body).Write(w)
}

// handleCloseDrawer discards the drawer and its draft.
func (s *Server) handleCloseDrawer(dr drawerRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnTo := dr.returnTo(r)
		if d, ok := s.drawers.Get(existingDrawerID(r)); ok {
			returnTo = localPath(d.Snapshot().ReturnTo, returnTo)
		}
		s.drawers.CloseID(r.Context(), existingDrawerID(r))
		s.redirectWithToast(w, r, returnTo, nil)
	}
}

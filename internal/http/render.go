package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"mykharche/internal/core"
	applog "mykharche/internal/log"
	"mykharche/internal/services"
)

// Page template names, one file each under templates/pages.
const (
	pageLanding        = "landing"
	pageLogin          = "login"
	pageSignup         = "signup"
	pageForgotPassword = "forgot_password"
	pageDashboard      = "dashboard"
	pageExpenses       = "expenses"
	pageIncome         = "income"
	pageAnalytics      = "analytics"
	pageProfile        = "profile"
	pageNotFound       = "not_found"
)

var pageNames = []string{
	pageLanding, pageLogin, pageSignup, pageForgotPassword,
	pageDashboard, pageExpenses, pageIncome, pageAnalytics, pageProfile,
	pageNotFound,
}

var pageTitles = map[string]string{
	pageLanding:        "MyKharche",
	pageLogin:          "Sign in",
	pageSignup:         "Sign up",
	pageForgotPassword: "Forgot password",
	pageDashboard:      "Dashboard",
	pageExpenses:       "Expenses",
	pageIncome:         "Income",
	pageAnalytics:      "Analytics",
	pageProfile:        "Profile",
	pageNotFound:       "Page not found",
}

// pageData is the root value of every page and partial.
type pageData struct {
	Title  string
	Active string
	Nav    bool
	// Offline is set while the session check is inconclusive.
	Offline bool
	AddPath string
	Toast   *services.Toast
	Drawer  *drawerView

	Form     *authForm
	Expenses *expensesView
	Income   *incomeView
}

// drawerView is a drawer snapshot plus the URL its forms post to.
type drawerView struct {
	services.DrawerSnapshot
	Path string
}

type expensesView struct {
	Dates  *core.DateSelector
	Day    core.DayExpenses
	Failed bool
}

type incomeView struct {
	Dates  *core.DateSelector
	Month  core.MonthIncome
	Failed bool
}

// renderer holds one template set per page, each cloned from the shared
// layout and partials.
type renderer struct {
	pages  map[string]*template.Template
	logger *applog.Logger
}

var templateFuncs = template.FuncMap{
	"amount":        formatAmount,
	"day":           formatDay,
	"categoryTypes": func() []core.CategoryType { return core.CategoryTypes },
}

func newRenderer(fsys fs.FS, logger *applog.Logger) (*renderer, error) {
	base, err := template.New("mykharche").Funcs(templateFuncs).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(fsys, "templates/pages/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	return &renderer{
		pages:  pages,
		logger: logger.WithComponent(applog.ComponentTemplate),
	}, nil
}

// execute renders template tmpl of page into a buffer so a failed render
// never leaves a half-written response.
func (v *renderer) execute(page, tmpl string, data *pageData) ([]byte, error) {
	t, ok := v.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return nil, fmt.Errorf("render %s/%s: %w", page, tmpl, err)
	}
	return buf.Bytes(), nil
}

// page writes a full page.
func (v *renderer) page(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	if data.Title == "" {
		data.Title = pageTitles[page]
	}
	body, err := v.execute(page, "layout", data)
	if err != nil {
		v.logger.ErrorContext(r.Context(), "Page render failed",
			applog.FieldOperation, applog.OpRender,
			"page", page,
			applog.FieldError, err)
		InternalServerError(services.MsgSomethingWentWrong).Write(w)
		return
	}
	NewHTMXResponse().Status(status).Body(body).Write(w)
}

// partial renders a named template shared by every page.
func (v *renderer) partial(name string, data *pageData) ([]byte, error) {
	return v.execute(pageDashboard, name, data)
}

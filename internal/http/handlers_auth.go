package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"mykharche/internal/api"
	"mykharche/internal/auth"
	"mykharche/internal/core"
	applog "mykharche/internal/log"
	"mykharche/internal/services"
)

const (
	msgAccountCreated    = "Account created successfully"
	msgLoggedIn          = "Logged in successfully"
	msgPasswordUpdated   = "Password updated successfully"
	msgGoogleCodeMissing = "Something went wrong redirecting to signup"
	suffixRedirectLogin  = " Redirecting to login, Try to login."
	suffixRedirectSignup = ". Redirecting to signup, Try to signup"
)

var errInvalidAuthURL = errors.New("backend returned an invalid Google auth url")

// authForm carries the values and inline errors of an auth screen.
// Passwords are never echoed back.
type authForm struct {
	FirstName string
	LastName  string
	Email     string
	Remember  bool
	Errors    map[string]string
}

func (f *authForm) fail(field, msg string) {
	if msg == "" {
		return
	}
	if f.Errors == nil {
		f.Errors = make(map[string]string)
	}
	f.Errors[field] = msg
}

func (f *authForm) valid() bool { return len(f.Errors) == 0 }

func required(v string) string {
	if strings.TrimSpace(v) == "" {
		return core.MsgFieldRequired
	}
	return ""
}

func (s *Server) handleAuthPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderAuth(w, r, http.StatusOK, page, &authForm{}, s.takeFlash(w, r))
	}
}

func (s *Server) renderAuth(w http.ResponseWriter, r *http.Request, status int, page string, form *authForm, toast *services.Toast) {
	s.views.page(w, r, status, page, &pageData{Form: form, Toast: toast})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		BadRequestError("Invalid form").Write(w)
		return
	}
	form := &authForm{Email: p.Get("email"), Remember: p.Checked("remember")}
	password := p.Secret("password")
	form.fail("email", core.ValidateEmail(form.Email))
	form.fail("password", core.ValidatePassword(password))
	if !form.valid() {
		s.renderAuth(w, r, http.StatusUnprocessableEntity, pageLogin, form, nil)
		return
	}

	res, err := s.api.Login(r.Context(), api.Credentials{Email: form.Email, Password: password})
	if err != nil {
		s.authFailure(w, r, pageLogin, form, err, true)
		return
	}
	s.signIn(w, r, res.Token, form.Remember, services.SuccessToast(res.Message, msgLoggedIn))
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		BadRequestError("Invalid form").Write(w)
		return
	}
	form := &authForm{
		FirstName: p.Get("firstName"),
		LastName:  p.Get("lastName"),
		Email:     p.Get("email"),
	}
	password := p.Secret("password")
	form.fail("firstName", required(form.FirstName))
	form.fail("lastName", required(form.LastName))
	form.fail("email", core.ValidateEmail(form.Email))
	form.fail("password", core.ValidatePassword(password))
	if !form.valid() {
		s.renderAuth(w, r, http.StatusUnprocessableEntity, pageSignup, form, nil)
		return
	}

	res, err := s.api.Signup(r.Context(), api.SignupRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  password,
	})
	if err != nil {
		s.authFailure(w, r, pageSignup, form, err, false)
		return
	}
	s.signIn(w, r, res.Token, false, services.SuccessToast(msgAccountCreated, ""))
}

// handleForgotPassword resets the password and signs the user in.
// Mismatched passwords are rejected before any backend call.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(r)
	if err != nil {
		BadRequestError("Invalid form").Write(w)
		return
	}
	form := &authForm{Email: p.Get("email")}
	newPassword := p.Secret("newPassword")
	confirmPassword := p.Secret("confirmPassword")
	form.fail("email", core.ValidateEmail(form.Email))
	form.fail("newPassword", required(newPassword))
	form.fail("confirmPassword", required(confirmPassword))
	if !form.valid() {
		s.renderAuth(w, r, http.StatusUnprocessableEntity, pageForgotPassword, form, nil)
		return
	}
	if newPassword != confirmPassword {
		s.renderAuth(w, r, http.StatusUnprocessableEntity, pageForgotPassword, form,
			services.ErrorToast(core.MsgPasswordsMismatch))
		return
	}

	res, err := s.api.UpdatePassword(r.Context(), form.Email, confirmPassword)
	if err != nil {
		s.authFailure(w, r, pageForgotPassword, form, err, true)
		return
	}
	s.signIn(w, r, res.Token, false, services.SuccessToast(res.Message, msgPasswordUpdated))
}

// handleGoogleAuth sends the browser to Google's consent screen.
func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	forLogin := r.URL.Query().Get("forLogin") == "1"
	back := "/" + pageSignup
	if forLogin {
		s.cookies.SetForLogin(w)
		back = "/" + pageLogin
	}

	target, err := s.api.GoogleAuthURL(r.Context())
	if err == nil && !isHTTPSURL(target) {
		err = errInvalidAuthURL
	}
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to get Google auth URL", applog.FieldError, err)
		s.redirectWithToast(w, r, back, services.ErrorToast(services.MsgSomethingWentWrong))
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleGoogleRedirect exchanges the OAuth code. The forLogin marker is
// consumed whatever the outcome.
func (s *Server) handleGoogleRedirect(w http.ResponseWriter, r *http.Request) {
	forLogin := s.cookies.TakeForLogin(w, r)
	code := r.URL.Query().Get("code")
	if code == "" {
		s.redirectWithToast(w, r, "/"+pageSignup, services.ErrorToast(msgGoogleCodeMissing))
		return
	}

	res, err := s.api.AuthenticateWithGoogle(r.Context(), code, forLogin)
	if err != nil {
		page := pageSignup
		if forLogin {
			page = pageLogin
		}
		if to, toast := failureRedirect(err, forLogin); to != "" {
			s.redirectWithToast(w, r, to, toast)
			return
		}
		s.redirectWithToast(w, r, "/"+page, services.ErrorToast(services.MsgSomethingWentWrong))
		return
	}
	s.signIn(w, r, res.Token, false, services.SuccessToast(res.Message, msgLoggedIn))
}

func isHTTPSURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https" && u.Host != ""
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	s.gate.Forget(token)
	s.cookies.ClearToken(w)
	s.drawers.CloseID(r.Context(), existingDrawerID(r))
	auth.Redirect(w, r, "/"+pageLogin)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, token string, remember bool, toast *services.Toast) {
	if token == "" {
		s.redirectWithToast(w, r, "/"+pageLogin, services.ErrorToast(services.MsgSomethingWentWrong))
		return
	}
	s.cookies.SetToken(w, token, remember)
	s.gate.Remember(token)
	s.redirectWithToast(w, r, "/"+pageDashboard, toast)
}

// authFailure redirects known account conflicts and re-renders the form otherwise.
func (s *Server) authFailure(w http.ResponseWriter, r *http.Request, page string, form *authForm, err error, forLogin bool) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Authentication failed",
		"page", page,
		applog.FieldUpstream, api.StatusOf(err),
		applog.FieldError, err)

	if to, toast := failureRedirect(err, forLogin); to != "" {
		s.redirectWithToast(w, r, to, toast)
		return
	}
	s.renderAuth(w, r, http.StatusOK, page, form, services.ErrorToast(services.MsgSomethingWentWrong))
}

// failureRedirect maps an existing account on signup to /login and a
// missing account on login to /signup.
func failureRedirect(err error, forLogin bool) (string, *services.Toast) {
	msg := api.MessageOf(err)
	switch {
	case forLogin && api.IsStatus(err, http.StatusNotFound):
		return "/" + pageSignup, services.ErrorToast(msg + suffixRedirectSignup)
	case !forLogin && api.IsStatus(err, http.StatusUnprocessableEntity):
		return "/" + pageLogin, services.ErrorToast(msg + suffixRedirectLogin)
	}
	return "", nil
}

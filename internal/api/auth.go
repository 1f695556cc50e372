package api

import (
	"context"
	"net/http"
)

func (c *Client) Signup(ctx context.Context, req SignupRequest) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", req, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", creds, &out)
	return out, err
}

// UpdatePassword resets a password for the forgot-password flow.
func (c *Client) UpdatePassword(ctx context.Context, email, newPassword string) (AuthResult, error) {
	body := struct {
		Email           string `json:"email"`
		UpdatedPassword string `json:"updatedPassword"`
	}{email, newPassword}

	var out AuthResult
	err := c.do(ctx, http.MethodPut, "/api/auth/updatePassword", "", body, &out)
	return out, err
}

// GoogleAuthURL returns the consent screen URL to redirect the browser to.
func (c *Client) GoogleAuthURL(ctx context.Context) (string, error) {
	var out Message
	if err := c.do(ctx, http.MethodGet, "/api/auth/getGoogleAuthUrl", "", nil, &out); err != nil {
		return "", err
	}
	return string(out), nil
}

// AuthenticateWithGoogle exchanges an OAuth code for a session token.
func (c *Client) AuthenticateWithGoogle(ctx context.Context, code string, forLogin bool) (AuthResult, error) {
	body := struct {
		Code     string `json:"code"`
		ForLogin bool   `json:"forLogin"`
	}{code, forLogin}

	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/authenticateWithGoogle", "", body, &out)
	return out, err
}

// IsUserLoggedIn succeeds when the token belongs to a live session.
func (s *Session) IsUserLoggedIn(ctx context.Context) error {
	return s.client.do(ctx, http.MethodGet, "/api/auth/isUserLoggedIn", s.token, nil, nil)
}

package core

import (
	"regexp"
	"strings"
)

// AuthState is the result of the backend session check.
type AuthState int

const (
	AuthUnknown AuthState = iota
	AuthAuthenticated
	AuthUnauthenticated
)

func (s AuthState) String() string {
	switch s {
	case AuthAuthenticated:
		return "authenticated"
	case AuthUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

const (
	MsgEmailRequired     = "Email address is required"
	MsgEmailInvalid      = "Enter a valid email address"
	MsgPasswordRequired  = "Password is required"
	MsgFieldRequired     = "This field is required"
	MsgPasswordsMismatch = "Confirm password should match with password."
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail returns the inline message for an email value, empty when valid.
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return MsgEmailInvalid
	}
	return ""
}

// ValidatePassword returns the inline message for a password value, empty when valid.
func ValidatePassword(password string) string {
	if password == "" {
		return MsgPasswordRequired
	}
	return ""
}

package apierr

import (
	"errors"
	"net/http"
	"strings"
)

// Op selects operation-specific wording for Message.
type Op int

const (
	OpGeneric Op = iota
	OpLogin
	OpRegister
	OpForgotPassword
	OpResetPassword
)

const (
	msgNetwork      = "Network error. Please check your connection."
	msgServer       = "Server error. Please try again later."
	msgRateLimited  = "Too many requests. Please slow down."
	msgSessionGone  = "Session expired. Please log in again."
	msgBadLogin     = "Invalid email or password"
	msgUserExists   = "User with this email or username already exists"
	msgResetExpired = "Reset link has expired or is invalid. Please request a new one."
)

// Message derives the operator-facing text for a failed call. fallback is
// used when nothing more specific applies.
func Message(err error, op Op, fallback string) string {
	if err == nil {
		return ""
	}

	var localErr *LocalError
	if errors.As(err, &localErr) {
		return localErr.Msg
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return msgNetwork
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return fallback
	}

	status, text := httpErr.Status, httpErr.Message
	switch {
	case status == http.StatusBadRequest:
		return badRequestMessage(httpErr, op)
	case status == http.StatusTooManyRequests:
		return msgRateLimited
	case status >= http.StatusInternalServerError:
		return msgServer
	}

	// Register and the password screens only special-case 400 and 500.
	if op == OpRegister || op == OpForgotPassword || op == OpResetPassword {
		return orDefault(text, fallback)
	}

	switch status {
	case http.StatusUnauthorized:
		if op == OpLogin {
			return msgBadLogin
		}
		return msgSessionGone
	case http.StatusForbidden:
		return forbiddenMessage(text, op == OpLogin)
	case http.StatusNotFound:
		if op == OpLogin {
			return orDefault(text, fallback)
		}
		return "Not found"
	default:
		return orDefault(text, fallback)
	}
}

func badRequestMessage(e *HTTPError, op Op) string {
	if op == OpResetPassword && (strings.Contains(e.Message, "expired") || strings.Contains(e.Message, "Invalid")) {
		return msgResetExpired
	}
	if joined := joinFieldErrors(e.Errors); joined != "" {
		return joined
	}
	if op == OpRegister && strings.Contains(e.Message, "already exists") {
		return msgUserExists
	}
	if op == OpForgotPassword {
		return orDefault(e.Message, "Invalid email")
	}
	return orDefault(e.Message, "Invalid input")
}

func forbiddenMessage(text string, login bool) string {
	switch {
	case strings.Contains(text, "suspended"):
		if login {
			return "Account is suspended. Please contact administrator."
		}
		return "Account is suspended"
	case strings.Contains(text, "Admin privileges"):
		if login {
			return "Access denied. Admin privileges required."
		}
		return "Admin privileges required"
	default:
		return "Access denied"
	}
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

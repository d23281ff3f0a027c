// Package apierr classifies failures of API calls by HTTP status and turns
// them into the short messages shown to the operator.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the coarse category of a failed call.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindRateLimited
	KindServer
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// FieldError is one entry of the server's "errors" array.
type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

// HTTPError is a response with a non-2xx status.
type HTTPError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// NetworkError is a request that produced no response at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "api: no response: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// LocalError is a validation failure detected before any request was sent.
type LocalError struct {
	Msg string
}

func (e *LocalError) Error() string { return e.Msg }

// Invalid returns a LocalError carrying msg verbatim.
func Invalid(msg string) error {
	return &LocalError{Msg: msg}
}

// KindOf classifies err.
func KindOf(err error) Kind {
	var httpErr *HTTPError
	var netErr *NetworkError
	var localErr *LocalError
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &localErr):
		return KindValidation
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &httpErr):
		return kindOfStatus(httpErr.Status)
	default:
		return KindUnknown
	}
}

func kindOfStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnknown
	}
}

// Status returns the HTTP status carried by err, or 0.
func Status(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// IsUnauthenticated reports whether err is a 401 response.
func IsUnauthenticated(err error) bool {
	return KindOf(err) == KindUnauthenticated
}

func joinFieldErrors(errs []FieldError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Msg != "" {
			msgs = append(msgs, e.Msg)
		}
	}
	return strings.Join(msgs, ", ")
}

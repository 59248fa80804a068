package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/saveeat/saveeat-client/internal/common"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMalformedResponse = errors.New("malformed response")
)

// NetworkError means the request never produced an HTTP response: no
// connectivity, DNS failure, timeout, cancelled context.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

// APIError means the server answered but rejected the request, either with a
// non-2xx status or with "success": false.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: api error %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	if target == ErrUnauthorized {
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// Message turns any error into text fit for direct display.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.StatusCode)
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond."
	case errors.Is(err, ErrUnavailable):
		return "Cannot reach the server. Check your connection and try again."
	case errors.Is(err, ErrMalformedResponse):
		return "Unexpected response from the server."
	}

	var msg interface{ UserMessage() string }
	if errors.As(err, &msg) {
		return msg.UserMessage()
	}

	switch {
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Please log in first."
	case errors.Is(err, common.ErrNotFound):
		return "Not found. Run refresh and try again."
	case errors.Is(err, common.ErrInvalidTransition):
		return "Not allowed in the current status."
	}
	return "Something went wrong."
}

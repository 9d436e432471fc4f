package restoapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by every error produced from a 401 response.
	ErrUnauthorized = errors.New("restoapi: unauthorized")
	// ErrUnexpectedShape is returned when a payload matches none of the accepted envelopes.
	ErrUnexpectedShape = errors.New("restoapi: unexpected response shape")
)

// APIError describes a non-2xx response from the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("restoapi: %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Unwrap maps 401 responses onto ErrUnauthorized.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message extracts the backend-provided message from err, if any.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

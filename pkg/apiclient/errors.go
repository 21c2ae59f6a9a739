package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedBody is returned when a 2xx response is not valid JSON.
	ErrMalformedBody = errors.New("malformed response body")
	// ErrEmptyQuery is returned when a query is blank.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrInvalidMaxTokens is returned for a non-positive token budget.
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")
	// ErrNoFiles is returned when an upload has nothing to send.
	ErrNoFiles = errors.New("no files to upload")
	// ErrUnsupportedExtension is returned for files the server will refuse.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// APIError reports a non-2xx response. Body holds the server's payload as sent.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       Envelope
}

func (e *APIError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Message returns the server's "error" field, or a trimmed body snippet when
// the payload is not a JSON object carrying one.
func (e *APIError) Message() string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := e.Body.Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return bodySnippet(e.Body)
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}

package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	Header() http.Header
}

// Request describes a single call relative to the client's base URL.
// Body may be nil, a []byte or an io.Reader; readers are streamed, not buffered.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    any
	// ContentLength, when positive, is announced for streamed reader bodies.
	ContentLength int64
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

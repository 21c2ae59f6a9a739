// Package apiclient is a thin client for the document query API: health,
// file upload and management, queries (buffered or streamed) and stored
// responses. Every buffered call returns the server's JSON body unmodified.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Adda-Baaj/docquery/pkg/httpclient"
)

// Client issues requests against a fixed base URL. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	baseURL   string
	transport httpclient.Client
	stream    *http.Client
	log       httpclient.Logger
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithLogger traces each buffered request at debug level.
func WithLogger(log httpclient.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient sets the net/http client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.stream = hc }
}

// WithTransport replaces the buffered-request transport, e.g. with a fake.
func WithTransport(t httpclient.Client) Option {
	return func(c *Client) { c.transport = t }
}

// New builds a client rooted at baseURL, which must be absolute.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{baseURL: baseURL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.stream == nil {
		c.stream = &http.Client{}
	}
	if c.transport == nil {
		c.transport = httpclient.NewRestyClient(httpclient.Options{
			BaseURL:    baseURL,
			Headers:    map[string]string{"Content-Type": contentTypeJSON},
			HTTPClient: c.stream,
			Logger:     c.log,
		})
	}
	return c, nil
}

// BaseURL returns the root every endpoint path is appended to.
func (c *Client) BaseURL() string { return c.baseURL }

const contentTypeJSON = "application/json"

type call struct {
	method        string
	path          string
	headers       map[string]string
	body          any
	contentLength int64
}

// do performs one buffered request and returns the body verbatim.
func (c *Client) do(ctx context.Context, in call) (Envelope, error) {
	resp, err := c.transport.Do(ctx, httpclient.Request{
		Method:        in.method,
		Path:          in.path,
		Headers:       in.headers,
		Body:          in.body,
		ContentLength: in.contentLength,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", in.method, in.path, err)
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &APIError{
			Method:     in.method,
			Path:       in.path,
			StatusCode: code,
			Status:     resp.Status(),
			Body:       Envelope(body),
		}
	}
	if len(body) > 0 && !json.Valid(body) {
		return nil, fmt.Errorf("%s %s: %w", in.method, in.path, ErrMalformedBody)
	}
	return Envelope(body), nil
}

// HealthCheck calls GET /health.
func (c *Client) HealthCheck(ctx context.Context) (Envelope, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/health"})
}

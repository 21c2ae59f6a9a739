package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxTokens is the token budget sent when no option overrides it.
const DefaultMaxTokens = 8000

// QueryRequest is the JSON body of /query and /query/stream.
type QueryRequest struct {
	Query     string `json:"query"`
	MaxTokens int    `json:"max_tokens"`
}

// QueryOption adjusts a QueryRequest.
type QueryOption func(*QueryRequest)

// WithMaxTokens overrides DefaultMaxTokens.
func WithMaxTokens(n int) QueryOption {
	return func(q *QueryRequest) { q.MaxTokens = n }
}

func newQueryRequest(query string, opts []QueryOption) (QueryRequest, error) {
	req := QueryRequest{Query: query, MaxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return QueryRequest{}, ErrEmptyQuery
	}
	if req.MaxTokens <= 0 {
		return QueryRequest{}, fmt.Errorf("%w: %d", ErrInvalidMaxTokens, req.MaxTokens)
	}
	return req, nil
}

// SendQuery calls POST /query and waits for the full answer.
func (c *Client) SendQuery(ctx context.Context, query string, opts ...QueryOption) (Envelope, error) {
	req, err := newQueryRequest(query, opts)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}
	return c.do(ctx, call{method: http.MethodPost, path: "/query", body: payload})
}

// CreateQueryStream calls POST /query/stream with a plain net/http request and
// returns as soon as response headers arrive. The body is left unread; the
// caller owns the stream and must Close it. ctx bounds the whole stream.
func (c *Client) CreateQueryStream(ctx context.Context, query string, opts ...QueryOption) (*QueryStream, error) {
	req, err := newQueryRequest(query, opts)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	const path = "/query/stream"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", http.MethodPost, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		apiErr := &APIError{
			Method:     http.MethodPost,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       Envelope(body),
		}
		if readErr != nil {
			return nil, errors.Join(apiErr, fmt.Errorf("read error body (truncated at %d bytes): %w", len(body), readErr))
		}
		return nil, apiErr
	}
	return newQueryStream(resp), nil
}

const maxErrorBodyBytes = 1 << 20

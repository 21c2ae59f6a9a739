package apiclient

import (
	"context"
	"net/http"
)

// ListResponses calls GET /responses.
func (c *Client) ListResponses(ctx context.Context) (Envelope, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/responses"})
}

// GetResponse calls GET /responses/{path}.
func (c *Client) GetResponse(ctx context.Context, path string) (Envelope, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/responses/" + escapePath(path)})
}

// DeleteResponse calls DELETE /responses/{path}.
func (c *Client) DeleteResponse(ctx context.Context, path string) (Envelope, error) {
	return c.do(ctx, call{method: http.MethodDelete, path: "/responses/" + escapePath(path)})
}

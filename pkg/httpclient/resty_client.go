package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Logger is the subset of the application logger the transport traces through.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

// Options configures the shared resty client.
type Options struct {
	BaseURL string
	// Timeout of zero keeps HTTPClient's own deadline (none for the default client).
	Timeout time.Duration
	Headers map[string]string
	// HTTPClient replaces the underlying net/http client when set.
	HTTPClient *http.Client
	Logger     Logger
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient from opts.
func NewRestyClient(opts Options) *RestyClient {
	return &RestyClient{client: NewRestyHTTPClient(opts)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(opts Options) *resty.Client {
	var c *resty.Client
	if opts.HTTPClient != nil {
		c = resty.NewWithClient(opts.HTTPClient)
	} else {
		c = resty.New()
	}
	// resty writes the timeout onto the wrapped http.Client, so leave a
	// caller-supplied client's own deadline alone.
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		c.SetBaseURL(base)
	}
	if len(opts.Headers) > 0 {
		c.SetHeaders(opts.Headers)
	}
	c.SetPreRequestHook(applyContentLength)
	if opts.Logger != nil {
		log := opts.Logger
		c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			log.DebugObj("http request completed", "http_request", map[string]any{
				"method":     resp.Request.Method,
				"url":        resp.Request.URL,
				"status":     resp.StatusCode(),
				"elapsed_ms": resp.Time().Milliseconds(),
			})
			return nil
		})
	}
	return c
}

// HTTPClient returns the net/http client underneath the resty client.
func (r *RestyClient) HTTPClient() *http.Client {
	return r.client.GetClient()
}

// BaseURL returns the configured base URL without a trailing slash.
func (r *RestyClient) BaseURL() string {
	return r.client.BaseURL
}

// Do performs req relative to the base URL.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	if req.ContentLength > 0 {
		ctx = context.WithValue(ctx, contentLengthKey{}, req.ContentLength)
	}
	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		rr.SetBody(req.Body)
	}
	resp, err := rr.Execute(req.Method, req.Path)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

type contentLengthKey struct{}

// applyContentLength announces the length of streamed bodies so servers that
// reject chunked uploads still accept them.
func applyContentLength(_ *resty.Client, req *http.Request) error {
	n, ok := req.Context().Value(contentLengthKey{}).(int64)
	if !ok || n <= 0 || req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	req.ContentLength = n
	return nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Status() string      { return r.resp.Status() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }

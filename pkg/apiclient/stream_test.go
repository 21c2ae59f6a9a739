package apiclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateQueryStreamReturnsBeforeBodyCompletes(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/query/stream" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if !sameJSON(t, `{"query":"q","max_tokens":8000}`, string(raw)) {
			t.Errorf("stream body = %s", raw)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = io.WriteString(w, ": keep-alive\n\ndata: one\n\n")
		flusher.Flush()

		select {
		case <-release:
		case <-time.After(5 * time.Second):
			return
		}
		_, _ = io.WriteString(w, "data: two\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stream, err := c.CreateQueryStream(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateQueryStream: %v", err)
	}
	defer stream.Close()

	if stream.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d", stream.StatusCode())
	}
	if ct := stream.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	if !stream.Next() || stream.Chunk() != "one" {
		t.Fatalf("first chunk = %q err=%v", stream.Chunk(), stream.Err())
	}
	close(release)
	if !stream.Next() || stream.Chunk() != "two" {
		t.Fatalf("second chunk = %q err=%v", stream.Chunk(), stream.Err())
	}
	if stream.Next() {
		t.Fatalf("unexpected extra chunk %q", stream.Chunk())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
}

func TestCreateQueryStreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"busy"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.CreateQueryStream(context.Background(), "q", WithMaxTokens(10))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Message() != "busy" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestCreateQueryStreamReportsTruncatedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Errorf("server does not support hijacking")
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			t.Errorf("Hijack: %v", err)
			return
		}
		defer conn.Close()
		// promise more body than is sent, then drop the connection
		_, _ = buf.WriteString("HTTP/1.1 502 Bad Gateway\r\nContent-Length: 100\r\nConnection: close\r\n\r\n{\"error\":")
		_ = buf.Flush()
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.CreateQueryStream(context.Background(), "q")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Body.String() != `{"error":` {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) || !strings.Contains(err.Error(), "read error body") {
		t.Fatalf("read failure not reported: %v", err)
	}
}

func TestQueryStreamRawRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "plain chunked text")
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/api")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stream, err := c.CreateQueryStream(context.Background(), "q")
	if err != nil {
		t.Fatalf("CreateQueryStream: %v", err)
	}
	defer stream.Close()

	body, err := io.ReadAll(stream)
	if err != nil || string(body) != "plain chunked text" {
		t.Fatalf("body = %q err=%v", body, err)
	}
	if stream.Raw() == nil {
		t.Fatalf("Raw should expose the response")
	}
}

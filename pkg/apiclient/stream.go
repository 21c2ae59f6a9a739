package apiclient

import (
	"bufio"
	"net/http"
	"strings"
)

const maxStreamLineBytes = 1 << 20

// QueryStream is an in-flight /query/stream response. Read it either as raw
// bytes (Read) or line by line (Next/Chunk), not both.
type QueryStream struct {
	resp    *http.Response
	scanner *bufio.Scanner
	chunk   string
}

func newQueryStream(resp *http.Response) *QueryStream {
	return &QueryStream{resp: resp}
}

// Raw returns the underlying response.
func (s *QueryStream) Raw() *http.Response { return s.resp }

// StatusCode returns the response status.
func (s *QueryStream) StatusCode() int { return s.resp.StatusCode }

// Header returns the response headers.
func (s *QueryStream) Header() http.Header { return s.resp.Header }

// Read reads raw body bytes as they arrive.
func (s *QueryStream) Read(p []byte) (int, error) { return s.resp.Body.Read(p) }

// Close releases the connection.
func (s *QueryStream) Close() error { return s.resp.Body.Close() }

// Next advances to the next non-empty line of the body. A leading SSE
// "data:" prefix is removed; comment lines (":...") are skipped.
func (s *QueryStream) Next() bool {
	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.resp.Body)
		s.scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineBytes)
	}
	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if after, ok := strings.CutPrefix(line, "data:"); ok {
			line = strings.TrimPrefix(after, " ")
		}
		s.chunk = line
		return true
	}
	s.chunk = ""
	return false
}

// Chunk returns the line produced by the last successful Next.
func (s *QueryStream) Chunk() string { return s.chunk }

// Err returns the first read error hit by Next, including mid-stream disconnects.
func (s *QueryStream) Err() error {
	if s.scanner == nil {
		return nil
	}
	return s.scanner.Err()
}

package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// uploadField is the repeated multipart field the server reads files from.
const uploadField = "files[]"

// AllowedExtensions mirrors the server's upload allow-list.
var AllowedExtensions = map[string]bool{
	".json": true,
	".txt":  true,
	".xml":  true,
	".pdf":  true,
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// File is one upload part. Dir, when set, is sent as the file's relative
// directory so the server recreates folder structure.
type File struct {
	Name    string
	Dir     string
	Content io.Reader
}

// UploadFiles posts files as multipart form data, one files[] part each, in
// order. onProgress may be nil; otherwise it receives non-decreasing
// percentages as the body is sent, ending at 100.
func (c *Client) UploadFiles(ctx context.Context, files []File, onProgress ProgressFunc) (Envelope, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	for _, f := range files {
		if err := checkUploadable(f); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(uploadField, f.Name)
		if err != nil {
			return nil, fmt.Errorf("create part %q: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("read file %q: %w", f.Name, err)
		}
		if dir := strings.Trim(filepath.ToSlash(f.Dir), "/"); dir != "" {
			if err := w.WriteField("path_"+f.Name, dir); err != nil {
				return nil, fmt.Errorf("write path field for %q: %w", f.Name, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	size := int64(buf.Len())
	return c.do(ctx, call{
		method:        http.MethodPost,
		path:          "/upload",
		headers:       map[string]string{"Content-Type": w.FormDataContentType()},
		body:          newProgressReader(&buf, size, onProgress),
		contentLength: size,
	})
}

func checkUploadable(f File) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("upload file has no name")
	}
	if f.Content == nil {
		return fmt.Errorf("upload file %q has no content", f.Name)
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("%w: %q (%s)", ErrUnsupportedExtension, ext, f.Name)
	}
	return nil
}

// ListFiles calls GET /files.
func (c *Client) ListFiles(ctx context.Context) (Envelope, error) {
	return c.do(ctx, call{method: http.MethodGet, path: "/files"})
}

// DeleteFile calls DELETE /files/{path}.
func (c *Client) DeleteFile(ctx context.Context, path string) (Envelope, error) {
	return c.do(ctx, call{method: http.MethodDelete, path: "/files/" + escapePath(path)})
}

// ClearAllFiles calls POST /files/clear.
func (c *Client) ClearAllFiles(ctx context.Context) (Envelope, error) {
	return c.do(ctx, call{method: http.MethodPost, path: "/files/clear"})
}

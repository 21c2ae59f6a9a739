package apiclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestUploadFilesSendsOrderedParts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/upload" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/form-data; boundary=") {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}

		parts := r.MultipartForm.File[uploadField]
		if len(parts) != 2 || parts[0].Filename != "a.txt" || parts[1].Filename != "b.csv" {
			t.Errorf("unexpected parts %+v", parts)
			return
		}
		if got := r.MultipartForm.Value["path_b.csv"]; len(got) != 1 || got[0] != "reports/q1" {
			t.Errorf("path_b.csv = %v", got)
		}
		if got := r.MultipartForm.Value["path_a.txt"]; len(got) != 0 {
			t.Errorf("path_a.txt should be absent, got %v", got)
		}

		f, err := parts[1].Open()
		if err != nil {
			t.Errorf("open part: %v", err)
			return
		}
		defer f.Close()
		if content, _ := io.ReadAll(f); string(content) != "x,y\n1,2\n" {
			t.Errorf("part content = %q", content)
		}

		_, _ = io.WriteString(w, `{"message":"2 files","files":[]}`)
	})

	var mu sync.Mutex
	var progress []int
	env, err := c.UploadFiles(context.Background(), []File{
		{Name: "a.txt", Content: strings.NewReader(strings.Repeat("a", 64*1024))},
		{Name: "b.csv", Dir: "reports/q1/", Content: strings.NewReader("x,y\n1,2\n")},
	}, func(pct int) {
		mu.Lock()
		progress = append(progress, pct)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if !sameJSON(t, `{"message":"2 files","files":[]}`, env.String()) {
		t.Fatalf("body = %s", env)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("progress must end at 100, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress decreased: %v", progress)
		}
	}
}

func TestUploadFilesValidatesBeforeSending(t *testing.T) {
	c, err := New("http://127.0.0.1:1/api")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.UploadFiles(context.Background(), nil, nil); !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
	_, err = c.UploadFiles(context.Background(), []File{{Name: "run.exe", Content: strings.NewReader("MZ")}}, nil)
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("expected ErrUnsupportedExtension, got %v", err)
	}
	_, err = c.UploadFiles(context.Background(), []File{{Name: "DATA.XLSX"}}, nil)
	if err == nil || errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("expected missing-content error, got %v", err)
	}
}

func TestProgressReaderReportsMonotonicPercent(t *testing.T) {
	var got []int
	payload := bytes.Repeat([]byte("z"), 1000)
	r := newProgressReader(bytes.NewReader(payload), int64(len(payload)), func(p int) { got = append(got, p) })

	buf := make([]byte, 333)
	for {
		if _, err := r.Read(buf); err == io.EOF {
			break
		}
	}
	if want := []int{33, 67, 100}; !reflect.DeepEqual(got, want) {
		t.Fatalf("progress = %v, want %v", got, want)
	}
}

func TestPercentComplete(t *testing.T) {
	cases := []struct {
		loaded, total int64
		want          int
	}{
		{10, 0, 0},
		{1, 2, 50},
		{2, 3, 67},
		{3, 3, 100},
	}
	for _, tc := range cases {
		if got := percentComplete(tc.loaded, tc.total); got != tc.want {
			t.Fatalf("percentComplete(%d, %d) = %d, want %d", tc.loaded, tc.total, got, tc.want)
		}
	}
}

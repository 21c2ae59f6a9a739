package apiclient

import (
	"net/url"
	"strings"
)

// escapePath keeps "/" separators (the server routes on the full path) and
// percent-escapes every segment.
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

package apiclient

import (
	"io"
	"math"
)

// ProgressFunc receives upload completion as a whole percentage.
type ProgressFunc func(percent int)

func percentComplete(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(loaded) * 100 / float64(total)))
}

// progressReader reports how much of the request body the transport has read.
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	last   int
	fn     ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, total: total, last: -1, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if pct := percentComplete(p.loaded, p.total); pct > p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}

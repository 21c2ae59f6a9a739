package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// Progress draws upload completion: a gradient bar on terminals, one
// "upload NN%" line per 10% step otherwise.
type Progress struct {
	mu   sync.Mutex
	w    io.Writer
	tty  bool
	bar  progress.Model
	last int
}

// NewProgress creates a progress reporter writing to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{
		w:    w,
		tty:  IsTerminal(w),
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		last: -1,
	}
}

// Update records a new percentage; it is safe to call from the transport goroutine.
func (p *Progress) Update(percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if percent <= p.last {
		return
	}
	if p.tty {
		fmt.Fprintf(p.w, "\r%s", p.bar.ViewAs(float64(percent)/100))
		p.last = percent
		return
	}
	if percent == 100 || p.last < 0 || percent/10 > p.last/10 {
		fmt.Fprintf(p.w, "upload %d%%\n", percent)
		p.last = percent
	}
}

// Done terminates the progress line on terminals.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty && p.last >= 0 {
		fmt.Fprintln(p.w)
	}
}

// Package render formats API output for the terminal.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Styles used across commands.
var (
	accent = lipgloss.Color("#f97316")

	Heading = lipgloss.NewStyle().Bold(true).Foreground(accent)
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	Error   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	Muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// JSON writes body indented. Bodies that are not JSON are written as-is.
func JSON(w io.Writer, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		buf.Reset()
		buf.Write(body)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

// Line writes a styled line.
func Line(w io.Writer, style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(w, style.Render(fmt.Sprintf(format, args...)))
}

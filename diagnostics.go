package filesink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ANSI color codes used for console diagnostics.
const (
	colorRed    = 31
	colorYellow = 33
)

// ConsoleDiagnostics writes diagnostic lines to a console, colorizing them
// when the destination is a terminal: failures in red, everything else in
// yellow. Its Handle method satisfies DiagnosticHandler.
type ConsoleDiagnostics struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewConsoleDiagnostics creates a console diagnostic writer. A nil writer
// defaults to os.Stderr. Color support is detected once at construction.
func NewConsoleDiagnostics(out io.Writer) *ConsoleDiagnostics {
	if out == nil {
		out = os.Stderr
	}

	return &ConsoleDiagnostics{
		out:   out,
		color: isTerminal(out),
	}
}

// Handle writes one diagnostic line, followed by a newline.
func (d *ConsoleDiagnostics) Handle(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.color {
		fmt.Fprintln(d.out, line)

		return
	}

	code := colorYellow
	if looksLikeFailure(line) {
		code = colorRed
	}

	fmt.Fprintf(d.out, "\x1b[%dm%s\x1b[0m\n", code, line)
}

// looksLikeFailure is a fast approximation over the diagnostic vocabulary the
// sink emits.
func looksLikeFailure(line string) bool {
	return strings.Contains(line, "failed") || strings.Contains(line, "error")
}

// isTerminal checks if the given writer is connected to a terminal. It is
// used to decide whether to emit ANSI color codes.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

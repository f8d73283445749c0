package checks

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Transcript is the human-readable record of a diagnostic run. It is safe for concurrent use, since
// live subscription snapshots are printed while other checks are running.
type Transcript struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTranscript returns a transcript that writes to w.
func NewTranscript(w io.Writer) *Transcript {
	return &Transcript{w: w}
}

func (t *Transcript) printf(format string, a ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format, a...)
}

// Header starts a new section.
func (t *Transcript) Header(title string) {
	t.printf("\n========== %s ==========\n", title)
}

// Banner prints a boxed title.
func (t *Transcript) Banner(title string) {
	line := strings.Repeat("═", 58)
	t.printf("\n╔%s╗\n║ %-56s ║\n╚%s╝\n", line, title, line)
}

// Status prints a status line.
func (t *Transcript) Status(s Status, format string, a ...interface{}) {
	t.printf("%s  %s: %s\n", s.Emoji(), strings.ToUpper(string(s)), fmt.Sprintf(format, a...))
}

// Pass prints a passing status line.
func (t *Transcript) Pass(format string, a ...interface{}) {
	t.Status(Passing, format, a...)
}

// Fail prints a failing status line.
func (t *Transcript) Fail(format string, a ...interface{}) {
	t.Status(Failing, format, a...)
}

// Warn prints a warning status line.
func (t *Transcript) Warn(format string, a ...interface{}) {
	t.Status(Warning, format, a...)
}

// Info prints an informational status line.
func (t *Transcript) Info(format string, a ...interface{}) {
	t.Status(Informational, format, a...)
}

// Skip prints a skipped status line.
func (t *Transcript) Skip(format string, a ...interface{}) {
	t.Status(Skipped, format, a...)
}

// Wait prints a line announcing that something slow is about to happen.
func (t *Transcript) Wait(format string, a ...interface{}) {
	t.printf("⏳ %s\n", fmt.Sprintf(format, a...))
}

// Event prints a line announcing something that happened asynchronously.
func (t *Transcript) Event(marker, format string, a ...interface{}) {
	t.printf("\n%s %s\n", marker, fmt.Sprintf(format, a...))
}

// Detail prints an indented detail line.
func (t *Transcript) Detail(format string, a ...interface{}) {
	t.printf("   - %s\n", fmt.Sprintf(format, a...))
}

// Hint prints an indented piece of advice.
func (t *Transcript) Hint(format string, a ...interface{}) {
	t.printf("   → %s\n", fmt.Sprintf(format, a...))
}

// Blank prints an empty line.
func (t *Transcript) Blank() {
	t.printf("\n")
}

// Line prints an indented line.
func (t *Transcript) Line(format string, a ...interface{}) {
	t.printf("   %s\n", fmt.Sprintf(format, a...))
}

// Fix prints remediation instructions followed by an indented block of configuration.
func (t *Transcript) Fix(instructions, block string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "\n   📝 FIX: %s\n", instructions)
	for _, line := range strings.Split(block, "\n") {
		fmt.Fprintf(t.w, "   %s\n", line)
	}
}

// Block gives f exclusive use of the underlying writer.
func (t *Transcript) Block(f func(w io.Writer)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f(t.w)
}

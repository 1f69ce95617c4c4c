// Package emit renders command-driver results as SMT-LIB v2 response syntax
// and flushes each response as it is produced.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nilforge/smtfront/backend"
)

// Emitter writes responses to an underlying sink, flushing after every one
// so a caller piping stdin/stdout to an interactive client sees each
// response as soon as it is produced rather than buffered until exit.
type Emitter struct {
	w *bufio.Writer
}

// New wraps w in a buffered Emitter.
func New(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

func (e *Emitter) line(s string) {
	fmt.Fprintln(e.w, s)
	e.w.Flush()
}

// Success prints "success", gated by the caller on :print-success.
func (e *Emitter) Success() { e.line("success") }

// CheckSatResult prints sat/unsat/unknown.
func (e *Emitter) CheckSatResult(r backend.CheckSatResult) { e.line(r.String()) }

// UnsatAssumptions prints "(h1 h2 ...)" over the failed assumption handles'
// captured source text.
func (e *Emitter) UnsatAssumptions(handles []string) {
	e.line("(" + strings.Join(handles, " ") + ")")
}

// Echo prints s verbatim.
func (e *Emitter) Echo(s string) { e.line(s) }

// Model prints the backend's rendered model text as-is.
func (e *Emitter) Model(text string) { e.line(text) }

// Values prints get-value's "((e1 v1) ... (en vn))" response. pairs are
// (original source text, backend value text) in operand order.
func (e *Emitter) Values(pairs [][2]string) {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "(%s %s)", p[0], p[1])
	}
	b.WriteByte(')')
	e.line(b.String())
}

// Error prints a user-visible error message on its own line. The command
// driver passes it as "<line>:<col>: <message>"; the input file name is not
// part of it.
func (e *Emitter) Error(msg string) { e.line(msg) }

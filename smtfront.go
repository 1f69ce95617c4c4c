// Package smtfront is the SMT-LIB v2 front end's single external entry
// point: wiring the Lexer, Symbol Table, Sort Registry, Term Parser, and
// Command Driver around a caller-supplied Backend, and driving one parse
// session to completion.
package smtfront

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/command"
	"github.com/nilforge/smtfront/emit"
	"github.com/nilforge/smtfront/lexer"
	"github.com/nilforge/smtfront/lexer/keyword"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/term"
)

// ParseResult summarizes one parse session for a CLI or other caller that
// drives Parse directly.
type ParseResult struct {
	// Logic is the final logic name: the one set via set-logic (an explicit
	// QF_BV is upgraded once uninterpreted functions are used), or one
	// inferred from observed features if set-logic was never called.
	Logic string
	// Status is "ok" on a clean run, or the first reported error formatted
	// as "<file>:<line>:<col>: <message>".
	Status string
	// NSatCalls counts every check-sat and check-sat-assuming invocation.
	NSatCalls int
}

// Options bundles the session-scoped configuration a caller may want to
// set before the script runs (most scripts instead configure themselves
// via set-option commands; this is for a CLI's own flags, e.g. a
// pre-seeded :produce-models).
type Options = command.Options

// NewOptions returns the default option set.
func NewOptions() *Options { return command.NewOptions() }

// Parse reads prefixBytes followed by the remainder of input as one
// SMT-LIB v2 script, driving be to build and check terms, and writes every
// command response to output. inputName is used only in error messages.
// log receives structured per-command diagnostics; a nil log falls back to
// slog.Default().
func Parse(be backend.Backend, prefixBytes []byte, input io.Reader, inputName string, output io.Writer, opts *Options, log *slog.Logger) (ParseResult, error) {
	rest, err := io.ReadAll(input)
	if err != nil {
		return ParseResult{}, fmt.Errorf("reading %s: %w", inputName, err)
	}
	src := make([]byte, 0, len(prefixBytes)+len(rest))
	src = append(src, prefixBytes...)
	src = append(src, rest...)

	tbl := symtab.NewTable(true)
	keyword.Populate(tbl)
	lex := lexer.New(src, inputName, tbl)
	sorts := sort.NewRegistry(be)
	handler := reporter.NewHandler()
	ctx := term.NewContext(lex, tbl, sorts, be, handler)

	if opts == nil {
		opts = command.NewOptions()
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("input", inputName)

	drv := command.New(ctx, opts, emit.New(output), log)
	runErr := drv.Run()

	status := "ok"
	if runErr != nil {
		status = describeRunError(runErr, handler, inputName)
	}
	return ParseResult{
		Logic:     drv.Logic(),
		Status:    status,
		NSatCalls: drv.CheckSatCount(),
	}, runErr
}

func describeRunError(runErr error, handler *reporter.Handler, inputName string) string {
	if first := handler.First(); first != nil {
		if ep, ok := first.(reporter.ErrorWithPos); ok {
			return fmt.Sprintf("%s:%s: %v", inputName, ep.GetPosition(), ep.Unwrap())
		}
		return first.Error()
	}
	return runErr.Error()
}

// Package reporter provides position-carrying errors for every stage of the
// front end: lexing, symbol resolution, sort checking, and command dispatch.
package reporter

import (
	"errors"
	"fmt"

	"github.com/nilforge/smtfront/token"
)

// ErrInvalidSource is a sentinel error returned by Parse and command
// dispatch when an error was reported during the session; the command
// driver stops at that first error.
var ErrInvalidSource = errors.New("parse failed: invalid smt-lib source")

// ErrorWithPos is an error about a location in an SMT-LIB script.
type ErrorWithPos interface {
	error
	// GetPosition returns the source position that caused the underlying error.
	GetPosition() token.Pos
	// Unwrap returns the underlying error.
	Unwrap() error
}

// Error creates a new ErrorWithPos from the given error and source position.
func Error(pos token.Pos, err error) ErrorWithPos {
	return errorWithPos{pos: pos, underlying: err}
}

// Errorf creates a new ErrorWithPos whose underlying error is created using
// the given message format and arguments (via fmt.Errorf).
func Errorf(pos token.Pos, format string, args ...interface{}) ErrorWithPos {
	return errorWithPos{pos: pos, underlying: fmt.Errorf(format, args...)}
}

type errorWithPos struct {
	underlying error
	pos        token.Pos
}

func (e errorWithPos) Error() string {
	return fmt.Sprintf("%s: %v", e.GetPosition(), e.underlying)
}

func (e errorWithPos) GetPosition() token.Pos { return e.pos }

func (e errorWithPos) Unwrap() error { return e.underlying }

var _ ErrorWithPos = errorWithPos{}

// Handler accumulates the first error reported during a parse/command
// session and short-circuits everything after it, per the parser's "first
// error wins" propagation policy.
type Handler struct {
	first error
}

// NewHandler returns an empty Handler.
func NewHandler() *Handler { return &Handler{} }

// HandleError records err as the first error if none has been recorded yet.
// It always returns err so call sites can write `return h.HandleError(err)`.
func (h *Handler) HandleError(err error) error {
	if h.first == nil && err != nil {
		h.first = err
	}
	return err
}

// HandleErrorf builds a position-carrying error and records it.
func (h *Handler) HandleErrorf(pos token.Pos, format string, args ...interface{}) error {
	return h.HandleError(Errorf(pos, format, args...))
}

// Errored reports whether any error has been recorded.
func (h *Handler) Errored() bool { return h.first != nil }

// Reset clears the recorded error. The command driver does not call it: a
// session ends at its first error.
func (h *Handler) Reset() { h.first = nil }

// Error returns ErrInvalidSource if any error was recorded, else nil.
func (h *Handler) Error() error {
	if h.first != nil {
		return ErrInvalidSource
	}
	return nil
}

// First returns the first recorded error, or nil.
func (h *Handler) First() error { return h.first }

// Custom error types that contain additional information for each error
// kind. Each is a struct with an Error() method and, where relevant, the
// position of a conflicting prior definition.

type AlreadyDefinedError struct {
	Name               string
	PreviousDefinition token.Pos
}

func AlreadyDefined(name string, previousDefinition token.Pos) AlreadyDefinedError {
	return AlreadyDefinedError{Name: name, PreviousDefinition: previousDefinition}
}

func (e AlreadyDefinedError) Error() string {
	return fmt.Sprintf("'%s' already defined at %s", e.Name, e.PreviousDefinition)
}

// ArityError distinguishes "missing" from "too many" per §4.4 rule 1.
type ArityError struct {
	Op       string
	Expected string
	Actual   int
	TooMany  bool
}

func (e ArityError) Error() string {
	if e.TooMany {
		return fmt.Sprintf("too many arguments to '%s': expected %s, got %d", e.Op, e.Expected, e.Actual)
	}
	return fmt.Sprintf("missing arguments to '%s': expected %s, got %d", e.Op, e.Expected, e.Actual)
}

type SortMismatchError struct {
	Op       string
	Expected string
	Actual   string
}

func (e SortMismatchError) Error() string {
	return fmt.Sprintf("'%s' expects %s but got %s", e.Op, e.Expected, e.Actual)
}

type WidthOverflowError struct {
	Op    string
	Width int
	Cap   int
}

func (e WidthOverflowError) Error() string {
	return fmt.Sprintf("result of '%s' has bit-width %d, exceeding the maximum of %d", e.Op, e.Width, e.Cap)
}

type CapabilityError struct {
	What string
	Why  string
}

func (e CapabilityError) Error() string {
	return fmt.Sprintf("%s: %s", e.What, e.Why)
}

type UndefinedSymbolError struct {
	Name string
}

func (e UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol '%s'", e.Name)
}

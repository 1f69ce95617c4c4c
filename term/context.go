// Package term implements the recursive-descent term parser at the heart
// of this front end. It reads tokens from a lexer.Lexer, resolves symbols
// and sorts, and calls the injected backend.Backend to construct
// well-typed terms.
package term

import (
	"strconv"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/lexer"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/token"
)

func itoa(n int) string { return strconv.Itoa(n) }

// Context is the single, explicitly-constructed parser state. One Context
// is shared by every term the command driver asks this package to parse
// during a session; it is passed as an ordinary argument and never kept as
// a package-level global, so multiple sessions never interfere with each
// other even if run in the same process.
type Context struct {
	Lex     *lexer.Lexer
	Tbl     *symtab.Table
	Sorts   *sort.Registry
	Be      backend.Backend
	Handler *reporter.Handler

	// Cur is the token the parser is currently looking at; the main loop
	// advances it by calling Advance.
	Cur token.Token

	ScopeLevel int

	// The Need* flags below record which operator families have been used
	// (consulted by logic inference). GlobalDeclarations and
	// QuoteEquivalence are neither set by any command nor read by the
	// parser; the command driver's Options and the symbol table hold the
	// settings in effect.
	GlobalDeclarations bool
	QuoteEquivalence   bool
	NeedArrays         bool
	NeedFunctions      bool
	NeedQuantifiers    bool

	// StoreTokens and Captures are maintained by the command driver while it
	// parses get-value and check-sat-assuming operands: StoreTokens is set
	// for the duration, and each top-level operand's (start,end) byte offsets
	// are appended to Captures, from which its source text is sliced. The
	// term parser itself reads neither field.
	StoreTokens bool
	Captures    []Span

	stack        []WorkItem
	open         int
	paramCounter int
}

// Span is a half-open [Start,End) byte range into the original source,
// captured for one get-value operand.
type Span struct {
	Start, End int
}

// NewContext wires a fresh parser context around its collaborators.
func NewContext(lex *lexer.Lexer, tbl *symtab.Table, sorts *sort.Registry, be backend.Backend, handler *reporter.Handler) *Context {
	return &Context{Lex: lex, Tbl: tbl, Sorts: sorts, Be: be, Handler: handler}
}

// Advance reads the next token into Cur, returning any lex error.
func (c *Context) Advance() error {
	t, err := c.Lex.Next()
	if err != nil {
		return err
	}
	c.Cur = t
	return nil
}

func (c *Context) push(item WorkItem) {
	c.stack = append(c.stack, item)
}

func (c *Context) pop() WorkItem {
	n := len(c.stack)
	item := c.stack[n-1]
	c.stack = c.stack[:n-1]
	return item
}

// enterParen and exitParen bracket exactly one matched pair of parentheses,
// called by whichever function is responsible for consuming that specific
// '(' and its matching ')'. Every paren-opening parse function calls
// enterParen once at entry (after consuming '(') and exitParen once after
// consuming the matching ')', which is what keeps OpenParens() and the work
// stack's depth in sync without needing a separate flat iterative automaton
// to maintain them.
func (c *Context) enterParen(pos token.Pos) {
	c.open++
	c.push(WorkItem{Pos: pos})
}

func (c *Context) exitParen() {
	c.open--
	c.pop()
}

// OpenParens reports the current open-paren counter.
func (c *Context) OpenParens() int { return c.open }

// NextParamName mints the next collision-avoiding "name!N" identifier for a
// freshly bound parameter, the same scheme parseQuantifier uses for
// quantifier-bound variables, exposed for callers outside this package
// (the command driver's define-fun parameter binding) that need the
// identical uniquification.
func (c *Context) NextParamName(varName string) string {
	c.paramCounter++
	return varName + "!" + itoa(c.paramCounter)
}

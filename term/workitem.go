package term

import "github.com/nilforge/smtfront/token"

// WorkItem marks one open, not-yet-closed parenthesis on the parser's
// bookkeeping stack. enterParen pushes one when a paren-opening parse
// function consumes '(', and exitParen pops it once that function has
// consumed the matching ')'. The stack's length at any point is exactly
// the open-paren nesting depth, which callers can assert is zero at the
// end of a well-formed command.
type WorkItem struct {
	Pos token.Pos
}

package term

import (
	"strconv"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/token"
)

// ParseSort parses a sort expression with ctx.Cur positioned at its first
// token, leaving ctx.Cur at the token following the sort. Covers Bool,
// BitVec n, FloatingPoint eb sb (including the Float16/32/64/128 aliases),
// RoundingMode, Array i e, and user-defined define-sort aliases.
func ParseSort(ctx *Context) (backend.Sort, error) {
	tok := ctx.Cur
	switch tok.Kind {
	case token.CORE_BOOL:
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.Sorts.Bool(), nil
	case token.FP_ROUNDINGMODE:
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.Sorts.RoundingMode(), nil
	case token.SYMBOL:
		name := tok.Text
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		if eb, sb, ok := sort.FloatingPointAlias(name); ok {
			return ctx.Sorts.FloatingPoint(eb, sb)
		}
		if s, ok := ctx.Sorts.ResolveAlias(name); ok {
			return s, nil
		}
		return nil, reporter.Errorf(tok.Pos, "undefined sort '%s'", name)
	case token.LPAR:
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.parseCompoundSort(tok.Pos)
	default:
		return nil, reporter.Errorf(tok.Pos, "expected sort, got %s", describeTok(tok))
	}
}

func (ctx *Context) parseCompoundSort(openPos token.Pos) (backend.Sort, error) {
	switch ctx.Cur.Kind {
	case token.UNDERSCORE:
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		switch ctx.Cur.Kind {
		case token.BV_SORT:
			if err := ctx.Advance(); err != nil {
				return nil, err
			}
			n, err := ctx.parseNumeralTok()
			if err != nil {
				return nil, err
			}
			if err := ctx.expect(token.RPAR); err != nil {
				return nil, err
			}
			return ctx.Sorts.BitVec(int(n))
		case token.FP_SORT:
			if err := ctx.Advance(); err != nil {
				return nil, err
			}
			eb, err := ctx.parseNumeralTok()
			if err != nil {
				return nil, err
			}
			sb, err := ctx.parseNumeralTok()
			if err != nil {
				return nil, err
			}
			if err := ctx.expect(token.RPAR); err != nil {
				return nil, err
			}
			return ctx.Sorts.FloatingPoint(int(eb), int(sb))
		default:
			return nil, reporter.Errorf(openPos, "unsupported indexed sort constructor")
		}
	case token.ARRAY_SORT:
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		idx, err := ParseSort(ctx)
		if err != nil {
			return nil, err
		}
		elem, err := ParseSort(ctx)
		if err != nil {
			return nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, err
		}
		return ctx.Sorts.Array(idx, elem), nil
	default:
		return nil, reporter.Errorf(openPos, "expected sort constructor, got %s", describeTok(ctx.Cur))
	}
}

// parseNumeralTok consumes the current token as a NUMERAL and advances.
func (ctx *Context) parseNumeralTok() (int64, error) {
	if ctx.Cur.Kind != token.NUMERAL {
		return 0, reporter.Errorf(ctx.Cur.Pos, "expected numeral, got %s", describeTok(ctx.Cur))
	}
	n, err := strconv.ParseInt(ctx.Cur.Text, 10, 64)
	if err != nil {
		return 0, reporter.Errorf(ctx.Cur.Pos, "invalid numeral '%s'", ctx.Cur.Text)
	}
	if err := ctx.Advance(); err != nil {
		return 0, err
	}
	return n, nil
}

// expect verifies ctx.Cur.Kind == k, advancing past it, or reports a syntax
// error naming what was expected vs. what was found.
func (ctx *Context) expect(k token.Kind) error {
	if ctx.Cur.Kind != k {
		return reporter.Errorf(ctx.Cur.Pos, "expected %s, got %s", describeKind(k), describeTok(ctx.Cur))
	}
	return ctx.Advance()
}

func describeTok(t token.Token) string {
	if t.Kind == token.EOF {
		return "end of input"
	}
	return "'" + t.Text + "'"
}

func describeKind(k token.Kind) string {
	switch k {
	case token.LPAR:
		return "'('"
	case token.RPAR:
		return "')'"
	case token.SYMBOL:
		return "a symbol"
	case token.NUMERAL:
		return "a numeral"
	default:
		return "a different token"
	}
}

package term

import (
	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/token"
)

// ParseTerm parses one complete term with ctx.Cur positioned at its first
// token, leaving ctx.Cur at the token immediately following the term. It is
// written as ordinary Go recursion; the paren-depth bookkeeping on Context
// (enterParen/exitParen) exists to let a caller assert that a well-formed
// command always ends with an empty stack and zero open parens, not as the
// control-flow mechanism itself.
func ParseTerm(ctx *Context) (backend.Node, error) {
	tok := ctx.Cur
	switch tok.Kind {
	case token.NUMERAL:
		return nil, reporter.Errorf(tok.Pos, "unexpected numeral constant %q outside an indexed identifier", tok.Text)
	case token.REAL:
		return nil, reporter.Errorf(tok.Pos, "real literal %q is only permitted as the operand of 'to_fp'", tok.Text)
	case token.HEXADECIMAL:
		width := len(tok.Text) * 4
		bits := bitsFromHex(tok.Text)
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.Be.BVConstFromBits(bits, width), nil
	case token.BINARY:
		width := len(tok.Text)
		bits := bitsFromBinary(tok.Text)
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.Be.BVConstFromBits(bits, width), nil
	case token.CORE_TRUE:
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.Be.BoolConst(true), nil
	case token.CORE_FALSE:
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.Be.BoolConst(false), nil
	case token.FP_RNE, token.FP_RNA, token.FP_RTP, token.FP_RTN, token.FP_RTZ:
		m := roundingModeOf(tok.Kind)
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.Be.RoundingModeConst(m), nil
	case token.SYMBOL:
		e := ctx.Tbl.Find(tok.Text)
		if e == nil || e.Node == nil {
			return nil, reporter.Errorf(tok.Pos, "undefined symbol '%s'", tok.Text)
		}
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return e.Node, nil
	case token.LPAR:
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		return ctx.parseParenTerm(tok.Pos)
	default:
		return nil, reporter.Errorf(tok.Pos, "expected term, got %s", describeTok(tok))
	}
}

func roundingModeOf(k token.Kind) backend.RoundingMode {
	switch k {
	case token.FP_RNE:
		return backend.RNE
	case token.FP_RNA:
		return backend.RNA
	case token.FP_RTP:
		return backend.RTP
	case token.FP_RTN:
		return backend.RTN
	default:
		return backend.RTZ
	}
}

// isBoolLike reports whether s is acceptable wherever this front end
// requires a Boolean-sorted operand. Every Boolean-consuming operator
// (and/or/xor/=>/not/ite's condition, assert, quantifier bodies) accepts a
// 1-bit bit-vector in addition to Bool, reflecting this system's bitwuzla
// lineage, where formulas are themselves width-1 bit-vectors. This front
// end keeps Bool as its own nameable sort (so `(declare-const p Bool)`
// prints as "Bool" instead of "(_ BitVec 1)") but accepts BitVec 1 anywhere
// Bool is required, without losing the distinct sort.
// IsBoolLike exports isBoolLike for callers outside this package (the
// command driver's assert/quantifier-body/check-sat-assuming checks) that
// need the same Bool-or-1-bit-BV acceptance rule.
func IsBoolLike(s backend.Sort) bool { return isBoolLike(s) }

func isBoolLike(s backend.Sort) bool {
	if s.Kind() == backend.KindBool {
		return true
	}
	if w, ok := sort.IsBV(s); ok && w == 1 {
		return true
	}
	return false
}

func bitsFromBinary(text string) []byte {
	n := len(text)
	bits := make([]byte, n)
	for i := 0; i < n; i++ {
		v := byte(0)
		if text[i] == '1' {
			v = 1
		}
		bits[n-1-i] = v
	}
	return bits
}

func bitsFromHex(text string) []byte {
	n := len(text)
	bits := make([]byte, n*4)
	for i := 0; i < n; i++ {
		v := hexNibble(text[i])
		base := (n - 1 - i) * 4
		for b := 0; b < 4; b++ {
			bits[base+b] = (v >> uint(b)) & 1
		}
	}
	return bits
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

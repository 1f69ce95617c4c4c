package term

import (
	"math/big"
	"regexp"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/token"
)

// headKind distinguishes the two parenthesized forms that denote an
// applicable operator rather than a value: an indexed identifier
// `(_ op idx...)` and the array constant-array ascription `(as const T)`.
type headKind uint8

const (
	headIndexed headKind = iota
	headAsConst
)

// headDescriptor is what a non-eagerly-closed parenthesized operator form
// reduces to: not yet a Node, but enough to apply once the enclosing
// argument list is read.
type headDescriptor struct {
	kind    headKind
	op      token.Kind
	indices []int64
	asSort  backend.Sort
	pos     token.Pos
}

func (d *headDescriptor) describe() string {
	if d.kind == headAsConst {
		return "as const"
	}
	return "indexed operator"
}

var bvLiteralPattern = regexp.MustCompile(`^bv[0-9]+$`)

// parseIndexedForm parses the body of `(_ ...)` with ctx.Cur == UNDERSCORE,
// consuming through the closing ')'. It returns a Node directly for forms
// that are a complete value with no further arguments to apply (FP special
// constants and (_ bvK n)); otherwise it returns a headDescriptor for the
// caller to apply to an argument list.
func (ctx *Context) parseIndexedForm(openPos token.Pos) (backend.Node, *headDescriptor, error) {
	if err := ctx.Advance(); err != nil { // consume '_'
		return nil, nil, err
	}
	opTok := ctx.Cur
	switch opTok.Kind {
	case token.BV_EXTRACT:
		if err := ctx.Advance(); err != nil {
			return nil, nil, err
		}
		hi, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		lo, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, nil, err
		}
		if hi < lo {
			return nil, nil, reporter.Errorf(openPos, "'extract' requires hi >= lo, got hi=%d lo=%d", hi, lo)
		}
		return nil, &headDescriptor{kind: headIndexed, op: token.BV_EXTRACT, indices: []int64{hi, lo}, pos: openPos}, nil

	case token.BV_ZERO_EXTEND, token.BV_SIGN_EXTEND, token.BV_REPEAT, token.BV_ROTATE_LEFT, token.BV_ROTATE_RIGHT:
		if err := ctx.Advance(); err != nil {
			return nil, nil, err
		}
		k, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, nil, err
		}
		return nil, &headDescriptor{kind: headIndexed, op: opTok.Kind, indices: []int64{k}, pos: openPos}, nil

	case token.FP_TO_FP, token.FP_TO_FP_UNSIGNED:
		if err := ctx.Advance(); err != nil {
			return nil, nil, err
		}
		eb, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		sb, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, nil, err
		}
		return nil, &headDescriptor{kind: headIndexed, op: opTok.Kind, indices: []int64{eb, sb}, pos: openPos}, nil

	case token.FP_TO_UBV, token.FP_TO_SBV:
		if err := ctx.Advance(); err != nil {
			return nil, nil, err
		}
		w, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, nil, err
		}
		return nil, &headDescriptor{kind: headIndexed, op: opTok.Kind, indices: []int64{w}, pos: openPos}, nil

	case token.FP_PLUS_ZERO, token.FP_MINUS_ZERO, token.FP_PLUS_INF, token.FP_MINUS_INF, token.FP_NAN:
		if err := ctx.Advance(); err != nil {
			return nil, nil, err
		}
		eb, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		sb, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, nil, err
		}
		return ctx.Be.FPSpecialConst(fpSpecialOf(opTok.Kind), int(eb), int(sb)), nil, nil

	case token.SYMBOL:
		if !bvLiteralPattern.MatchString(opTok.Text) {
			return nil, nil, reporter.Errorf(opTok.Pos, "unknown indexed operator '%s'", opTok.Text)
		}
		magnitude, ok := new(big.Int).SetString(opTok.Text[2:], 10)
		if !ok {
			return nil, nil, reporter.Errorf(opTok.Pos, "invalid compact bit-vector constant '%s'", opTok.Text)
		}
		if err := ctx.Advance(); err != nil {
			return nil, nil, err
		}
		n, err := ctx.parseNumeralTok()
		if err != nil {
			return nil, nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, nil, err
		}
		limit := new(big.Int).Lsh(big.NewInt(1), uint(n))
		if magnitude.Cmp(limit) >= 0 {
			return nil, nil, reporter.Errorf(openPos, "compact bit-vector constant %s does not fit in %d bits", magnitude.String(), n)
		}
		return ctx.Be.BVConstFromBits(bitsFromBigInt(magnitude, int(n)), int(n)), nil, nil

	default:
		return nil, nil, reporter.Errorf(opTok.Pos, "unknown indexed operator %s", describeTok(opTok))
	}
}

// parseAsForm parses `as const T` with ctx.Cur == AS, consuming through the
// closing ')'. Only the array constant-array ascription is supported; the
// general qualified-identifier `(as x T)` is not used by any SMT-LIB logic
// this front end targets.
func (ctx *Context) parseAsForm(openPos token.Pos) (*headDescriptor, error) {
	if err := ctx.Advance(); err != nil { // consume 'as'
		return nil, err
	}
	if ctx.Cur.Kind != token.SYMBOL || ctx.Cur.Text != "const" {
		return nil, reporter.Errorf(ctx.Cur.Pos, "expected 'const' after 'as', got %s", describeTok(ctx.Cur))
	}
	if err := ctx.Advance(); err != nil {
		return nil, err
	}
	s, err := ParseSort(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.expect(token.RPAR); err != nil {
		return nil, err
	}
	return &headDescriptor{kind: headAsConst, op: token.ARRAY_AS_CONST, asSort: s, pos: openPos}, nil
}

func fpSpecialOf(k token.Kind) backend.FPSpecial {
	switch k {
	case token.FP_PLUS_ZERO:
		return backend.FPPlusZero
	case token.FP_MINUS_ZERO:
		return backend.FPMinusZero
	case token.FP_PLUS_INF:
		return backend.FPPlusInf
	case token.FP_MINUS_INF:
		return backend.FPMinusInf
	default:
		return backend.FPNaN
	}
}

func bitsFromBigInt(v *big.Int, width int) []byte {
	bits := make([]byte, width)
	for i := 0; i < width; i++ {
		bits[i] = byte(v.Bit(i))
	}
	return bits
}

// parseNestedHead parses a parenthesized head form appearing as the first
// element of an enclosing application, e.g. the `(_ extract 7 0)` in
// `((_ extract 7 0) z)`. ctx.Cur == LPAR on entry; it consumes that '(' and
// everything through its matching ')'.
func (ctx *Context) parseNestedHead() (*headDescriptor, error) {
	pos := ctx.Cur.Pos
	if err := ctx.Advance(); err != nil {
		return nil, err
	}
	ctx.enterParen(pos)
	switch ctx.Cur.Kind {
	case token.UNDERSCORE:
		node, desc, err := ctx.parseIndexedForm(pos)
		if err != nil {
			return nil, err
		}
		ctx.exitParen()
		if node != nil {
			return nil, reporter.Errorf(pos, "this indexed form is already a complete constant, not an applicable operator")
		}
		return desc, nil
	case token.AS:
		desc, err := ctx.parseAsForm(pos)
		if err != nil {
			return nil, err
		}
		ctx.exitParen()
		return desc, nil
	default:
		return nil, reporter.Errorf(pos, "expected an indexed operator or 'as const' form here, got %s", describeTok(ctx.Cur))
	}
}

// applyHead applies a previously parsed headDescriptor to its arguments,
// after the enclosing argument list's own arity/operand checks.
func (ctx *Context) applyHead(desc *headDescriptor, args []backend.Node) (backend.Node, error) {
	if desc.kind == headAsConst {
		if len(args) != 1 {
			return nil, reporter.Error(desc.pos, reporter.ArityError{Op: "as const", Expected: "1", Actual: len(args)})
		}
		if desc.asSort.Kind() != backend.KindArray {
			return nil, reporter.Errorf(desc.pos, "'as const' requires an Array sort ascription")
		}
		_, elem := desc.asSort.ArrayIndexElem()
		if !sameSort(args[0].Sort(), elem) {
			return nil, reporter.Error(desc.pos, reporter.SortMismatchError{Op: "as const", Expected: describeSort(elem), Actual: describeSort(args[0].Sort())})
		}
		return ctx.Be.ConstArray(desc.asSort, args[0]), nil
	}
	return ctx.applyIndexed(desc, args)
}

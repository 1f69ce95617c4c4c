package term

import (
	"strconv"

	"github.com/nilforge/smtfront/backend"
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/sort"
	"github.com/nilforge/smtfront/token"
)

// reduceOperator type-checks and folds a theory operator application,
// dispatching by family: Boolean binary/right-assoc, unary/left-assoc/
// binary bit-vector, array, core, and floating point.
func (ctx *Context) reduceOperator(opTok token.Token, args []backend.Node) (backend.Node, error) {
	op := opTok.Kind
	name := opTok.Text

	switch op {
	case token.CORE_NOT:
		if err := checkArityExact(name, opTok.Pos, args, 1); err != nil {
			return nil, err
		}
		if !isBoolLike(args[0].Sort()) {
			return nil, boolMismatch(name, opTok.Pos, args[0].Sort())
		}
		return ctx.Be.Not(args[0]), nil

	case token.CORE_AND, token.CORE_OR, token.CORE_XOR:
		if err := checkArityMin(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		for _, a := range args {
			if !isBoolLike(a.Sort()) {
				return nil, boolMismatch(name, opTok.Pos, a.Sort())
			}
		}
		switch op {
		case token.CORE_AND:
			return ctx.Be.And(args), nil
		case token.CORE_OR:
			return ctx.Be.Or(args), nil
		default:
			return ctx.Be.Xor(args), nil
		}

	case token.CORE_IMPLIES:
		if err := checkArityMin(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		for _, a := range args {
			if !isBoolLike(a.Sort()) {
				return nil, boolMismatch(name, opTok.Pos, a.Sort())
			}
		}
		return ctx.Be.Implies(args), nil

	case token.CORE_EQ:
		if err := checkArityMin(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		if err := requireSameSort(name, opTok.Pos, args); err != nil {
			return nil, err
		}
		return ctx.chainPairwise(args, ctx.Be.Eq), nil

	case token.CORE_DISTINCT:
		if err := checkArityMin(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		if err := requireSameSort(name, opTok.Pos, args); err != nil {
			return nil, err
		}
		var pairs []backend.Node
		for i := 0; i < len(args); i++ {
			for j := i + 1; j < len(args); j++ {
				pairs = append(pairs, ctx.Be.Not(ctx.Be.Eq(args[i], args[j])))
			}
		}
		if len(pairs) == 1 {
			return pairs[0], nil
		}
		return ctx.Be.And(pairs), nil

	case token.CORE_ITE:
		if err := checkArityExact(name, opTok.Pos, args, 3); err != nil {
			return nil, err
		}
		if !isBoolLike(args[0].Sort()) {
			return nil, boolMismatch(name, opTok.Pos, args[0].Sort())
		}
		if !sameSort(args[1].Sort(), args[2].Sort()) {
			return nil, reporter.Error(opTok.Pos, reporter.SortMismatchError{
				Op: name, Expected: describeSort(args[1].Sort()), Actual: describeSort(args[2].Sort()),
			})
		}
		return ctx.Be.Ite(args[0], args[1], args[2]), nil

	case token.BV_NOT, token.BV_NEG, token.BV_REDOR, token.BV_REDAND:
		if err := checkArityExact(name, opTok.Pos, args, 1); err != nil {
			return nil, err
		}
		if _, ok := sort.IsBV(args[0].Sort()); !ok {
			return nil, bvMismatch(name, opTok.Pos, args[0].Sort())
		}
		switch op {
		case token.BV_NOT:
			return ctx.Be.BVNot(args[0]), nil
		case token.BV_NEG:
			return ctx.Be.BVNeg(args[0]), nil
		case token.BV_REDOR:
			return ctx.Be.BVRedOr(args[0]), nil
		default:
			return ctx.Be.BVRedAnd(args[0]), nil
		}

	case token.BV_CONCAT:
		if err := checkArityMin(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		for _, a := range args {
			if _, ok := sort.IsBV(a.Sort()); !ok {
				return nil, bvMismatch(name, opTok.Pos, a.Sort())
			}
		}
		acc := args[0]
		for _, a := range args[1:] {
			acc = ctx.Be.Concat(acc, a)
		}
		return acc, nil

	case token.BV_AND, token.BV_OR, token.BV_XOR, token.BV_XNOR, token.BV_ADD, token.BV_SUB, token.BV_MUL:
		if err := checkArityMin(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		if err := requireSameSort(name, opTok.Pos, args); err != nil {
			return nil, err
		}
		if _, ok := sort.IsBV(args[0].Sort()); !ok {
			return nil, bvMismatch(name, opTok.Pos, args[0].Sort())
		}
		bvOp := leftAssocBVOp[op]
		acc := args[0]
		for _, a := range args[1:] {
			acc = ctx.Be.BVBinOp(bvOp, acc, a)
		}
		return acc, nil

	case token.BV_UDIV, token.BV_UREM, token.BV_SDIV, token.BV_SREM, token.BV_SMOD,
		token.BV_SHL, token.BV_LSHR, token.BV_ASHR, token.BV_NAND, token.BV_NOR, token.BV_COMP,
		token.BV_ULT, token.BV_ULE, token.BV_UGT, token.BV_UGE,
		token.BV_SLT, token.BV_SLE, token.BV_SGT, token.BV_SGE:
		if err := checkArityExact(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		if err := requireSameSort(name, opTok.Pos, args); err != nil {
			return nil, err
		}
		if _, ok := sort.IsBV(args[0].Sort()); !ok {
			return nil, bvMismatch(name, opTok.Pos, args[0].Sort())
		}
		return ctx.Be.BVBinOp(binaryOnlyBVOp[op], args[0], args[1]), nil

	case token.BV_EXT_ROTATE_LEFT, token.BV_EXT_ROTATE_RIGHT:
		if err := checkArityExact(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		w, ok := sort.IsBV(args[0].Sort())
		if !ok {
			return nil, bvMismatch(name, opTok.Pos, args[0].Sort())
		}
		value, ok := ctx.Be.ConstBVValue(args[1])
		if !ok {
			return nil, reporter.Errorf(opTok.Pos, "second argument to '%s' must be a bit-vector constant", name)
		}
		k := int(value % uint64(w))
		if op == token.BV_EXT_ROTATE_LEFT {
			return ctx.Be.RotateLeft(k, args[0]), nil
		}
		return ctx.Be.RotateRight(k, args[0]), nil

	case token.ARRAY_SELECT:
		if err := checkArityExact(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		if args[0].Sort().Kind() != backend.KindArray {
			return nil, reporter.Error(opTok.Pos, reporter.SortMismatchError{Op: name, Expected: "Array", Actual: describeSort(args[0].Sort())})
		}
		idxSort, _ := args[0].Sort().ArrayIndexElem()
		if err := checkSelectStoreIndex(name, opTok.Pos, idxSort, args[1].Sort()); err != nil {
			return nil, err
		}
		return ctx.Be.Select(args[0], args[1]), nil

	case token.ARRAY_STORE:
		if err := checkArityExact(name, opTok.Pos, args, 3); err != nil {
			return nil, err
		}
		if args[0].Sort().Kind() != backend.KindArray {
			return nil, reporter.Error(opTok.Pos, reporter.SortMismatchError{Op: name, Expected: "Array", Actual: describeSort(args[0].Sort())})
		}
		idxSort, elemSort := args[0].Sort().ArrayIndexElem()
		if err := checkSelectStoreIndex(name, opTok.Pos, idxSort, args[1].Sort()); err != nil {
			return nil, err
		}
		if !sameSort(args[2].Sort(), elemSort) {
			return nil, reporter.Error(opTok.Pos, reporter.SortMismatchError{Op: name, Expected: describeSort(elemSort), Actual: describeSort(args[2].Sort())})
		}
		return ctx.Be.Store(args[0], args[1], args[2]), nil

	case token.FP_ABS, token.FP_NEG:
		if err := checkArityExact(name, opTok.Pos, args, 1); err != nil {
			return nil, err
		}
		if err := requireFP(name, opTok.Pos, args[0].Sort()); err != nil {
			return nil, err
		}
		if op == token.FP_ABS {
			return ctx.Be.FPUnaryOp(backend.FPAbs, nil, args[0]), nil
		}
		return ctx.Be.FPUnaryOp(backend.FPNeg, nil, args[0]), nil

	case token.FP_SQRT, token.FP_ROUNDTOINTEGRAL:
		if err := checkArityExact(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		if err := requireRM(name, opTok.Pos, args[0].Sort()); err != nil {
			return nil, err
		}
		if err := requireFP(name, opTok.Pos, args[1].Sort()); err != nil {
			return nil, err
		}
		if op == token.FP_SQRT {
			return ctx.Be.FPUnaryOp(backend.FPSqrt, args[0], args[1]), nil
		}
		return ctx.Be.FPUnaryOp(backend.FPRoundToIntegral, args[0], args[1]), nil

	case token.FP_ADD, token.FP_SUB, token.FP_MUL, token.FP_DIV:
		if err := checkArityExact(name, opTok.Pos, args, 3); err != nil {
			return nil, err
		}
		if err := requireRM(name, opTok.Pos, args[0].Sort()); err != nil {
			return nil, err
		}
		if err := requireFP(name, opTok.Pos, args[1].Sort()); err != nil {
			return nil, err
		}
		if !sameSort(args[1].Sort(), args[2].Sort()) {
			return nil, reporter.Error(opTok.Pos, reporter.SortMismatchError{Op: name, Expected: describeSort(args[1].Sort()), Actual: describeSort(args[2].Sort())})
		}
		return ctx.Be.FPBinOp(fpBinOp[op], args[0], args[1], args[2]), nil

	case token.FP_FMA:
		if err := checkArityExact(name, opTok.Pos, args, 4); err != nil {
			return nil, err
		}
		if err := requireRM(name, opTok.Pos, args[0].Sort()); err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			if err := requireFP(name, opTok.Pos, a.Sort()); err != nil {
				return nil, err
			}
		}
		return ctx.Be.FPFma(args[0], args[1], args[2], args[3]), nil

	case token.FP_REM, token.FP_MIN, token.FP_MAX:
		if err := checkArityExact(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		if err := requireFP(name, opTok.Pos, args[0].Sort()); err != nil {
			return nil, err
		}
		if !sameSort(args[0].Sort(), args[1].Sort()) {
			return nil, reporter.Error(opTok.Pos, reporter.SortMismatchError{Op: name, Expected: describeSort(args[0].Sort()), Actual: describeSort(args[1].Sort())})
		}
		return ctx.Be.FPBinOp(fpBinOp[op], nil, args[0], args[1]), nil

	case token.FP_LEQ, token.FP_LT, token.FP_GEQ, token.FP_GT, token.FP_EQ:
		if err := checkArityMin(name, opTok.Pos, args, 2); err != nil {
			return nil, err
		}
		for _, a := range args {
			if err := requireFP(name, opTok.Pos, a.Sort()); err != nil {
				return nil, err
			}
		}
		cmp := fpCompareOp[op]
		return ctx.chainPairwise(args, func(a, b backend.Node) backend.Node {
			return ctx.Be.FPCompare(cmp, a, b)
		}), nil

	case token.FP_IS_NORMAL, token.FP_IS_SUBNORMAL, token.FP_IS_ZERO, token.FP_IS_INFINITE,
		token.FP_IS_NAN, token.FP_IS_NEGATIVE, token.FP_IS_POSITIVE:
		if err := checkArityExact(name, opTok.Pos, args, 1); err != nil {
			return nil, err
		}
		if err := requireFP(name, opTok.Pos, args[0].Sort()); err != nil {
			return nil, err
		}
		return ctx.Be.FPPredicate(fpPredicateOp[op], args[0]), nil

	case token.FP_TO_REAL:
		if err := checkArityExact(name, opTok.Pos, args, 1); err != nil {
			return nil, err
		}
		if err := requireFP(name, opTok.Pos, args[0].Sort()); err != nil {
			return nil, err
		}
		return ctx.Be.FPToReal(args[0]), nil

	default:
		return nil, reporter.Errorf(opTok.Pos, "unsupported operator '%s'", name)
	}
}

// applyIndexed applies an indexed operator descriptor (extract,
// zero_extend, sign_extend, repeat, rotate_left, rotate_right, to_fp,
// to_fp_unsigned, fp.to_ubv, fp.to_sbv) to its arguments.
func (ctx *Context) applyIndexed(desc *headDescriptor, args []backend.Node) (backend.Node, error) {
	name := indexedOpName[desc.op]
	switch desc.op {
	case token.BV_EXTRACT:
		if err := checkArityExact(name, desc.pos, args, 1); err != nil {
			return nil, err
		}
		w, ok := sort.IsBV(args[0].Sort())
		if !ok {
			return nil, bvMismatch(name, desc.pos, args[0].Sort())
		}
		hi, lo := int(desc.indices[0]), int(desc.indices[1])
		if hi >= w {
			return nil, reporter.Errorf(desc.pos,
				"first (high) 'extract' parameter %d too large for bit-vector argument of bit-width %d", hi, w)
		}
		return ctx.Be.Extract(hi, lo, args[0]), nil

	case token.BV_ZERO_EXTEND, token.BV_SIGN_EXTEND, token.BV_REPEAT, token.BV_ROTATE_LEFT, token.BV_ROTATE_RIGHT:
		if err := checkArityExact(name, desc.pos, args, 1); err != nil {
			return nil, err
		}
		w, ok := sort.IsBV(args[0].Sort())
		if !ok {
			return nil, bvMismatch(name, desc.pos, args[0].Sort())
		}
		k := int(desc.indices[0])
		switch desc.op {
		case token.BV_ZERO_EXTEND:
			if err := checkResultWidthCap(name, desc.pos, w+k); err != nil {
				return nil, err
			}
			return ctx.Be.ZeroExtend(k, args[0]), nil
		case token.BV_SIGN_EXTEND:
			if err := checkResultWidthCap(name, desc.pos, w+k); err != nil {
				return nil, err
			}
			return ctx.Be.SignExtend(k, args[0]), nil
		case token.BV_REPEAT:
			if k < 1 {
				return nil, reporter.Errorf(desc.pos, "'repeat' count must be at least 1, got %d", k)
			}
			if err := checkResultWidthCap(name, desc.pos, w*k); err != nil {
				return nil, err
			}
			return ctx.Be.Repeat(k, args[0]), nil
		case token.BV_ROTATE_LEFT:
			return ctx.Be.RotateLeft(k, args[0]), nil
		default:
			return ctx.Be.RotateRight(k, args[0]), nil
		}

	case token.FP_TO_FP_UNSIGNED:
		if err := checkArityExact(name, desc.pos, args, 2); err != nil {
			return nil, err
		}
		if err := requireRM(name, desc.pos, args[0].Sort()); err != nil {
			return nil, err
		}
		if _, ok := sort.IsBV(args[1].Sort()); !ok {
			return nil, bvMismatch(name, desc.pos, args[1].Sort())
		}
		eb, sb := int(desc.indices[0]), int(desc.indices[1])
		return ctx.Be.FPToFPUnsigned(eb, sb, args[0], args[1]), nil

	case token.FP_TO_UBV, token.FP_TO_SBV:
		if err := checkArityExact(name, desc.pos, args, 2); err != nil {
			return nil, err
		}
		if err := requireRM(name, desc.pos, args[0].Sort()); err != nil {
			return nil, err
		}
		if err := requireFP(name, desc.pos, args[1].Sort()); err != nil {
			return nil, err
		}
		width := int(desc.indices[0])
		if desc.op == token.FP_TO_UBV {
			return ctx.Be.FPToUBV(width, args[0], args[1]), nil
		}
		return ctx.Be.FPToSBV(width, args[0], args[1]), nil

	default:
		return nil, reporter.Errorf(desc.pos, "unsupported indexed operator")
	}
}

// parseToFPArgs handles `((_ to_fp eb sb) RM operand)` where operand may be
// a real literal (fp.to_fp from real) rather than a term.
func (ctx *Context) parseToFPArgs(openPos token.Pos, desc *headDescriptor) (backend.Node, error) {
	rm, err := ParseTerm(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireRM("to_fp", desc.pos, rm.Sort()); err != nil {
		return nil, err
	}
	eb, sb := int(desc.indices[0]), int(desc.indices[1])
	if ctx.Cur.Kind == token.REAL {
		real := ctx.Cur.Text
		if err := ctx.Advance(); err != nil {
			return nil, err
		}
		if err := ctx.expect(token.RPAR); err != nil {
			return nil, err
		}
		ctx.exitParen()
		return ctx.Be.FPToFPFromReal(eb, sb, rm, real), nil
	}
	operand, err := ParseTerm(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.expect(token.RPAR); err != nil {
		return nil, err
	}
	ctx.exitParen()
	if _, ok := sort.IsBV(operand.Sort()); !ok {
		if err := requireFP("to_fp", desc.pos, operand.Sort()); err != nil {
			return nil, err
		}
	}
	return ctx.Be.FPToFP(eb, sb, rm, operand), nil
}

// chainPairwise reduces a chainable N-ary relation ("=", fp.leq/lt/geq/
// gt/eq) to the conjunction of every consecutive pair.
func (ctx *Context) chainPairwise(args []backend.Node, rel func(a, b backend.Node) backend.Node) backend.Node {
	if len(args) == 2 {
		return rel(args[0], args[1])
	}
	pairs := make([]backend.Node, 0, len(args)-1)
	for i := 0; i+1 < len(args); i++ {
		pairs = append(pairs, rel(args[i], args[i+1]))
	}
	return ctx.Be.And(pairs)
}

var leftAssocBVOp = map[token.Kind]backend.BVBinOp{
	token.BV_AND: backend.BVAnd, token.BV_OR: backend.BVOr, token.BV_XOR: backend.BVXor,
	token.BV_XNOR: backend.BVXnor, token.BV_ADD: backend.BVAdd, token.BV_SUB: backend.BVSub, token.BV_MUL: backend.BVMul,
}

var binaryOnlyBVOp = map[token.Kind]backend.BVBinOp{
	token.BV_UDIV: backend.BVUdiv, token.BV_UREM: backend.BVUrem, token.BV_SDIV: backend.BVSdiv,
	token.BV_SREM: backend.BVSrem, token.BV_SMOD: backend.BVSmod, token.BV_SHL: backend.BVShl,
	token.BV_LSHR: backend.BVLshr, token.BV_ASHR: backend.BVAshr, token.BV_NAND: backend.BVNand,
	token.BV_NOR: backend.BVNor, token.BV_COMP: backend.BVComp,
	token.BV_ULT: backend.BVUlt, token.BV_ULE: backend.BVUle, token.BV_UGT: backend.BVUgt, token.BV_UGE: backend.BVUge,
	token.BV_SLT: backend.BVSlt, token.BV_SLE: backend.BVSle, token.BV_SGT: backend.BVSgt, token.BV_SGE: backend.BVSge,
}

var fpBinOp = map[token.Kind]backend.FPBinOp{
	token.FP_ADD: backend.FPAdd, token.FP_SUB: backend.FPSub, token.FP_MUL: backend.FPMul, token.FP_DIV: backend.FPDiv,
	token.FP_REM: backend.FPRem, token.FP_MIN: backend.FPMin, token.FP_MAX: backend.FPMax,
}

var fpCompareOp = map[token.Kind]backend.FPCompareOp{
	token.FP_LEQ: backend.FPLeq, token.FP_LT: backend.FPLt, token.FP_GEQ: backend.FPGeq,
	token.FP_GT: backend.FPGt, token.FP_EQ: backend.FPEq,
}

var fpPredicateOp = map[token.Kind]backend.FPPredicateOp{
	token.FP_IS_NORMAL: backend.FPIsNormal, token.FP_IS_SUBNORMAL: backend.FPIsSubnormal,
	token.FP_IS_ZERO: backend.FPIsZero, token.FP_IS_INFINITE: backend.FPIsInfinite,
	token.FP_IS_NAN: backend.FPIsNaN, token.FP_IS_NEGATIVE: backend.FPIsNegative, token.FP_IS_POSITIVE: backend.FPIsPositive,
}

var indexedOpName = map[token.Kind]string{
	token.BV_EXTRACT: "extract", token.BV_ZERO_EXTEND: "zero_extend", token.BV_SIGN_EXTEND: "sign_extend",
	token.BV_REPEAT: "repeat", token.BV_ROTATE_LEFT: "rotate_left", token.BV_ROTATE_RIGHT: "rotate_right",
	token.FP_TO_FP: "to_fp", token.FP_TO_FP_UNSIGNED: "to_fp_unsigned", token.FP_TO_UBV: "fp.to_ubv", token.FP_TO_SBV: "fp.to_sbv",
}

func checkArityExact(op string, pos token.Pos, args []backend.Node, n int) error {
	if len(args) == n {
		return nil
	}
	return reporter.Error(pos, reporter.ArityError{Op: op, Expected: strconv.Itoa(n), Actual: len(args), TooMany: len(args) > n})
}

func checkArityMin(op string, pos token.Pos, args []backend.Node, min int) error {
	if len(args) >= min {
		return nil
	}
	return reporter.Error(pos, reporter.ArityError{Op: op, Expected: "at least " + strconv.Itoa(min), Actual: len(args)})
}

func requireSameSort(op string, pos token.Pos, args []backend.Node) error {
	for i := 1; i < len(args); i++ {
		if !sameSort(args[0].Sort(), args[i].Sort()) {
			return reporter.Error(pos, reporter.SortMismatchError{
				Op: op, Expected: describeSort(args[0].Sort()), Actual: describeSort(args[i].Sort()),
			})
		}
	}
	return nil
}

func requireFP(op string, pos token.Pos, s backend.Sort) error {
	if s.Kind() != backend.KindFloatingPoint {
		return reporter.Error(pos, reporter.SortMismatchError{Op: op, Expected: "FloatingPoint", Actual: describeSort(s)})
	}
	return nil
}

func requireRM(op string, pos token.Pos, s backend.Sort) error {
	if s.Kind() != backend.KindRoundingMode {
		return reporter.Error(pos, reporter.SortMismatchError{Op: op, Expected: "RoundingMode", Actual: describeSort(s)})
	}
	return nil
}

func boolMismatch(op string, pos token.Pos, s backend.Sort) error {
	return reporter.Error(pos, reporter.SortMismatchError{Op: op, Expected: "Bool", Actual: describeSort(s)})
}

func bvMismatch(op string, pos token.Pos, s backend.Sort) error {
	return reporter.Error(pos, reporter.SortMismatchError{Op: op, Expected: "a bit-vector sort", Actual: describeSort(s)})
}

// checkResultWidthCap enforces a 31-bit result-width ceiling for
// zero_extend/sign_extend/repeat, so a pathological index can't overflow
// an int on platforms where it is 32 bits.
const maxBVWidth = 1<<31 - 1

func checkResultWidthCap(op string, pos token.Pos, resultWidth int) error {
	if resultWidth > maxBVWidth {
		return reporter.Error(pos, reporter.WidthOverflowError{Op: op, Width: resultWidth, Cap: maxBVWidth})
	}
	return nil
}

// checkSelectStoreIndex implements the S4 scenario's exact diagnostic: when
// both the array's index sort and the operand are bit-vectors of differing
// width, name both widths rather than the generic sort-mismatch message.
func checkSelectStoreIndex(op string, pos token.Pos, idxSort, got backend.Sort) error {
	if sameSort(idxSort, got) {
		return nil
	}
	if iw, ok := sort.IsBV(idxSort); ok {
		if gw, ok := sort.IsBV(got); ok {
			return reporter.Errorf(pos,
				"first (array) argument of '%s' has index bit-width %d but the second (index) argument has bit-width %d",
				op, iw, gw)
		}
	}
	return reporter.Error(pos, reporter.SortMismatchError{Op: op, Expected: describeSort(idxSort), Actual: describeSort(got)})
}

// Package refbackend is an in-memory reference implementation of
// backend.Backend used by this repository's own tests. It performs
// constant folding and a bounded brute-force search over free variables to
// decide check-sat for the small scripts exercised in tests — it is a test
// double, not a solver, and is never meant to scale past the handful of
// variables and narrow bit-widths a unit test asserts.
package refbackend

import (
	"fmt"
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/nilforge/smtfront/backend"
)

// ---- sorts ----

type refSort struct {
	kind       backend.SortKind
	width      int // BitVec
	eb, sb     int // FloatingPoint
	index, elem *refSort
	args       []*refSort
	result     *refSort
}

func (s *refSort) Kind() backend.SortKind { return s.kind }

func (s *refSort) String() string {
	switch s.kind {
	case backend.KindBool:
		return "Bool"
	case backend.KindBitVec:
		return fmt.Sprintf("(_ BitVec %d)", s.width)
	case backend.KindFloatingPoint:
		return fmt.Sprintf("(_ FloatingPoint %d %d)", s.eb, s.sb)
	case backend.KindRoundingMode:
		return "RoundingMode"
	case backend.KindArray:
		return fmt.Sprintf("(Array %s %s)", s.index.String(), s.elem.String())
	case backend.KindFunction:
		parts := make([]string, len(s.args))
		for i, a := range s.args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, " "), s.result.String())
	default:
		return "?"
	}
}

func (s *refSort) BitVecWidth() int { return s.width }
func (s *refSort) FloatingPointWidths() (int, int) { return s.eb, s.sb }
func (s *refSort) ArrayIndexElem() (backend.Sort, backend.Sort) { return s.index, s.elem }

func (s *refSort) FunctionArgsResult() ([]backend.Sort, backend.Sort) {
	args := make([]backend.Sort, len(s.args))
	for i, a := range s.args {
		args[i] = a
	}
	return args, s.result
}

// ---- nodes ----

// nodeKind distinguishes how a refNode should be evaluated.
type nodeKind uint8

const (
	kBoolConst nodeKind = iota
	kBVConst
	kRMConst
	kVar // free variable or uninterpreted function parameter: unknown value
	kOp  // an operator applied to children; evaluated structurally
)

type refNode struct {
	sort  backend.Sort
	kind  nodeKind
	boolV bool
	bvV   uint64 // little endian value, valid bits = sort.width
	rmV   backend.RoundingMode
	name  string // for kVar, and for SetSymbol-named nodes
	op    string
	args  []*refNode
}

func (n *refNode) Sort() backend.Sort { return n.sort }

// ---- backend ----

type Backend struct {
	vars        []*refNode // declared free variables, in declaration order
	asserted    []*refNode
	pushStack   [][]int // snapshot of len(asserted) per push level
	assumptions map[string]*refNode
	failed      []string
	lastResult  backend.CheckSatResult
	options     map[string]string
	logic       string
	terminated  bool
}

// New returns a fresh reference backend.
func New() *Backend {
	return &Backend{
		assumptions: make(map[string]*refNode),
		options:     make(map[string]string),
	}
}

func (b *Backend) BoolSort() backend.Sort { return &refSort{kind: backend.KindBool} }
func (b *Backend) BitVecSort(width int) backend.Sort {
	return &refSort{kind: backend.KindBitVec, width: width}
}
func (b *Backend) FloatingPointSort(eb, sb int) backend.Sort {
	return &refSort{kind: backend.KindFloatingPoint, eb: eb, sb: sb}
}
func (b *Backend) RoundingModeSort() backend.Sort { return &refSort{kind: backend.KindRoundingMode} }
func (b *Backend) ArraySort(index, elem backend.Sort) backend.Sort {
	return &refSort{kind: backend.KindArray, index: index.(*refSort), elem: elem.(*refSort)}
}
func (b *Backend) FunctionSort(args []backend.Sort, result backend.Sort) backend.Sort {
	rargs := make([]*refSort, len(args))
	for i, a := range args {
		rargs[i] = a.(*refSort)
	}
	return &refSort{kind: backend.KindFunction, args: rargs, result: result.(*refSort)}
}

func (b *Backend) BoolConst(v bool) backend.Node {
	return &refNode{sort: b.BoolSort(), kind: kBoolConst, boolV: v}
}

func (b *Backend) BVConst(value uint64, width int) backend.Node {
	return &refNode{sort: b.BitVecSort(width), kind: kBVConst, bvV: mask(value, width)}
}

func (b *Backend) BVConstFromBits(bitsLE []byte, width int) backend.Node {
	var v uint64
	for i := 0; i < width && i < 64; i++ {
		if bitsLE[i] != 0 {
			v |= 1 << uint(i)
		}
	}
	return &refNode{sort: b.BitVecSort(width), kind: kBVConst, bvV: mask(v, width)}
}

func (b *Backend) RoundingModeConst(m backend.RoundingMode) backend.Node {
	return &refNode{sort: b.RoundingModeSort(), kind: kRMConst, rmV: m}
}

func (b *Backend) FPSpecialConst(kind backend.FPSpecial, eb, sb int) backend.Node {
	return &refNode{sort: b.FloatingPointSort(eb, sb), kind: kVar, name: fmt.Sprintf("fp-special-%d", kind)}
}

func (b *Backend) DeclareVariable(name string, s backend.Sort) backend.Node {
	n := &refNode{sort: s, kind: kVar, name: name}
	b.vars = append(b.vars, n)
	return n
}

func (b *Backend) DeclareFunction(name string, args []backend.Sort, result backend.Sort) backend.Node {
	return &refNode{sort: b.FunctionSort(args, result), kind: kVar, name: name}
}

func (b *Backend) DeclareParameter(uniqueName string, s backend.Sort) backend.Node {
	return &refNode{sort: s, kind: kVar, name: uniqueName}
}

func op(s backend.Sort, name string, args ...*refNode) *refNode {
	return &refNode{sort: s, kind: kOp, op: name, args: args}
}

func (b *Backend) And(args []backend.Node) backend.Node {
	return op(b.BoolSort(), "and", toRef(args)...)
}
func (b *Backend) Or(args []backend.Node) backend.Node {
	return op(b.BoolSort(), "or", toRef(args)...)
}
func (b *Backend) Xor(args []backend.Node) backend.Node {
	return op(b.BoolSort(), "xor", toRef(args)...)
}
func (b *Backend) Not(a backend.Node) backend.Node {
	return op(b.BoolSort(), "not", a.(*refNode))
}
func (b *Backend) Implies(args []backend.Node) backend.Node {
	return op(b.BoolSort(), "=>", toRef(args)...)
}
func (b *Backend) Eq(a, c backend.Node) backend.Node {
	return op(b.BoolSort(), "=", a.(*refNode), c.(*refNode))
}
func (b *Backend) Ite(cond, then, els backend.Node) backend.Node {
	return op(then.Sort(), "ite", cond.(*refNode), then.(*refNode), els.(*refNode))
}

func (b *Backend) BVNot(a backend.Node) backend.Node { return op(a.Sort(), "bvnot", a.(*refNode)) }
func (b *Backend) BVNeg(a backend.Node) backend.Node { return op(a.Sort(), "bvneg", a.(*refNode)) }
func (b *Backend) BVRedOr(a backend.Node) backend.Node {
	return op(b.BitVecSort(1), "bvredor", a.(*refNode))
}
func (b *Backend) BVRedAnd(a backend.Node) backend.Node {
	return op(b.BitVecSort(1), "bvredand", a.(*refNode))
}

var bvCompareOps = map[backend.BVBinOp]bool{
	backend.BVUlt: true, backend.BVUle: true, backend.BVUgt: true, backend.BVUge: true,
	backend.BVSlt: true, backend.BVSle: true, backend.BVSgt: true, backend.BVSge: true,
}

func bvOpName(o backend.BVBinOp) string {
	names := map[backend.BVBinOp]string{
		backend.BVAnd: "bvand", backend.BVOr: "bvor", backend.BVXor: "bvxor", backend.BVXnor: "bvxnor",
		backend.BVAdd: "bvadd", backend.BVSub: "bvsub", backend.BVMul: "bvmul",
		backend.BVUdiv: "bvudiv", backend.BVUrem: "bvurem", backend.BVSdiv: "bvsdiv",
		backend.BVSrem: "bvsrem", backend.BVSmod: "bvsmod", backend.BVShl: "bvshl",
		backend.BVLshr: "bvlshr", backend.BVAshr: "bvashr", backend.BVNand: "bvnand",
		backend.BVNor: "bvnor", backend.BVComp: "bvcomp",
		backend.BVUlt: "bvult", backend.BVUle: "bvule", backend.BVUgt: "bvugt", backend.BVUge: "bvuge",
		backend.BVSlt: "bvslt", backend.BVSle: "bvsle", backend.BVSgt: "bvsgt", backend.BVSge: "bvsge",
	}
	return names[o]
}

func (b *Backend) BVBinOp(o backend.BVBinOp, a, c backend.Node) backend.Node {
	var resultSort backend.Sort
	switch {
	case bvCompareOps[o], o == backend.BVComp:
		resultSort = b.BitVecSort(1)
	default:
		resultSort = a.Sort()
	}
	n := op(resultSort, bvOpName(o), a.(*refNode), c.(*refNode))
	return n
}

func (b *Backend) Concat(a, c backend.Node) backend.Node {
	wa, _ := a.Sort().(*refSort)
	wc, _ := c.Sort().(*refSort)
	return op(b.BitVecSort(wa.width+wc.width), "concat", a.(*refNode), c.(*refNode))
}

func (b *Backend) Extract(hi, lo int, a backend.Node) backend.Node {
	n := op(b.BitVecSort(hi-lo+1), "extract", a.(*refNode))
	n.bvV = uint64(hi)<<32 | uint64(uint32(lo))
	return n
}

func (b *Backend) ZeroExtend(k int, a backend.Node) backend.Node {
	w := a.Sort().(*refSort).width
	return op(b.BitVecSort(w+k), "zero_extend", a.(*refNode))
}

func (b *Backend) SignExtend(k int, a backend.Node) backend.Node {
	w := a.Sort().(*refSort).width
	return op(b.BitVecSort(w+k), "sign_extend", a.(*refNode))
}

func (b *Backend) Repeat(k int, a backend.Node) backend.Node {
	w := a.Sort().(*refSort).width
	return op(b.BitVecSort(w*k), "repeat", a.(*refNode))
}

func (b *Backend) RotateLeft(k int, a backend.Node) backend.Node {
	n := op(a.Sort(), "rotate_left", a.(*refNode))
	n.bvV = uint64(k)
	return n
}

func (b *Backend) RotateRight(k int, a backend.Node) backend.Node {
	n := op(a.Sort(), "rotate_right", a.(*refNode))
	n.bvV = uint64(k)
	return n
}

func (b *Backend) Select(arr, idx backend.Node) backend.Node {
	_, elem := arr.Sort().ArrayIndexElem()
	return op(elem, "select", arr.(*refNode), idx.(*refNode))
}

func (b *Backend) Store(arr, idx, val backend.Node) backend.Node {
	return op(arr.Sort(), "store", arr.(*refNode), idx.(*refNode), val.(*refNode))
}

func (b *Backend) ConstArray(s backend.Sort, val backend.Node) backend.Node {
	return op(s, "as-const", val.(*refNode))
}

func (b *Backend) FPUnaryOp(o backend.FPUnaryOp, rm, a backend.Node) backend.Node {
	args := []*refNode{a.(*refNode)}
	if rm != nil {
		args = append([]*refNode{rm.(*refNode)}, args...)
	}
	return op(a.Sort(), fmt.Sprintf("fp.unary%d", o), args...)
}
func (b *Backend) FPBinOp(o backend.FPBinOp, rm, a, c backend.Node) backend.Node {
	args := []*refNode{a.(*refNode), c.(*refNode)}
	if rm != nil {
		args = append([]*refNode{rm.(*refNode)}, args...)
	}
	return op(a.Sort(), fmt.Sprintf("fp.bin%d", o), args...)
}
func (b *Backend) FPFma(rm, a, c, d backend.Node) backend.Node {
	return op(a.Sort(), "fp.fma", rm.(*refNode), a.(*refNode), c.(*refNode), d.(*refNode))
}
func (b *Backend) FPCompare(o backend.FPCompareOp, a, c backend.Node) backend.Node {
	return op(b.BoolSort(), fmt.Sprintf("fp.cmp%d", o), a.(*refNode), c.(*refNode))
}
func (b *Backend) FPPredicate(o backend.FPPredicateOp, a backend.Node) backend.Node {
	return op(b.BoolSort(), "fp.pred", a.(*refNode))
}
func (b *Backend) FPToFP(eb, sb int, rm, a backend.Node) backend.Node {
	return op(b.FloatingPointSort(eb, sb), "to_fp", rm.(*refNode), a.(*refNode))
}
func (b *Backend) FPToFPFromReal(eb, sb int, rm backend.Node, real string) backend.Node {
	n := op(b.FloatingPointSort(eb, sb), "to_fp_real", rm.(*refNode))
	n.name = real
	return n
}
func (b *Backend) FPToFPUnsigned(eb, sb int, rm, a backend.Node) backend.Node {
	return op(b.FloatingPointSort(eb, sb), "to_fp_unsigned", rm.(*refNode), a.(*refNode))
}
func (b *Backend) FPToUBV(width int, rm, a backend.Node) backend.Node {
	return op(b.BitVecSort(width), "fp.to_ubv", rm.(*refNode), a.(*refNode))
}
func (b *Backend) FPToSBV(width int, rm, a backend.Node) backend.Node {
	return op(b.BitVecSort(width), "fp.to_sbv", rm.(*refNode), a.(*refNode))
}
func (b *Backend) FPToReal(a backend.Node) backend.Node {
	return op(b.BitVecSort(64), "fp.to_real", a.(*refNode))
}

func (b *Backend) ConstBVValue(n backend.Node) (uint64, bool) {
	rn, ok := n.(*refNode)
	if !ok || rn.kind != kBVConst {
		return 0, false
	}
	return rn.bvV, true
}

func (b *Backend) Apply(fn backend.Node, args []backend.Node) backend.Node {
	fs := fn.Sort().(*refSort)
	n := op(fs.result, "apply", append([]*refNode{fn.(*refNode)}, toRef(args)...)...)
	return n
}

func (b *Backend) Forall(params []backend.Node, body backend.Node) backend.Node {
	return op(b.BoolSort(), "forall", append(toRef(params), body.(*refNode))...)
}

func (b *Backend) Exists(params []backend.Node, body backend.Node) backend.Node {
	return op(b.BoolSort(), "exists", append(toRef(params), body.(*refNode))...)
}

func (b *Backend) SetSymbol(n backend.Node, name string) {
	n.(*refNode).name = name
}

func (b *Backend) Release(backend.Node) {}

func (b *Backend) Assert(n backend.Node) {
	b.asserted = append(b.asserted, n.(*refNode))
}

func (b *Backend) Assume(n backend.Node, handle string) {
	b.assumptions[handle] = n.(*refNode)
}

func (b *Backend) Push() {
	b.pushStack = append(b.pushStack, []int{len(b.asserted)})
}

func (b *Backend) Pop() {
	if len(b.pushStack) == 0 {
		return
	}
	top := b.pushStack[len(b.pushStack)-1]
	b.pushStack = b.pushStack[:len(b.pushStack)-1]
	b.asserted = b.asserted[:top[0]]
}

func (b *Backend) CheckSat() backend.CheckSatResult {
	b.lastResult = b.checkConjunction(b.asserted, nil)
	return b.lastResult
}

func (b *Backend) CheckSatAssuming(handles []string) backend.CheckSatResult {
	var extra []*refNode
	for _, h := range handles {
		if n, ok := b.assumptions[h]; ok {
			extra = append(extra, n)
		}
	}
	b.failed = nil
	result := b.checkConjunction(b.asserted, extra)
	if result == backend.Unsat {
		b.failed = append([]string(nil), handles...)
	}
	b.lastResult = result
	return result
}

func (b *Backend) FailedAssumptions() []string { return b.failed }

func (b *Backend) GetModel() string {
	var sb strings.Builder
	names := make([]string, 0, len(b.vars))
	byName := make(map[string]*refNode, len(b.vars))
	for _, v := range b.vars {
		names = append(names, v.name)
		byName[v.name] = v
	}
	sort.Strings(names)
	sb.WriteString("(model\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "  (define-fun %s () %s %s)\n", name, byName[name].sort.String(), "?")
	}
	sb.WriteString(")")
	return sb.String()
}

// GetValue reports a literal constant's own value directly; for anything
// else (a free variable, an operator application) this test double has no
// real model to consult, so it reports "?" rather than fabricating a value.
func (b *Backend) GetValue(n backend.Node) string {
	rn := n.(*refNode)
	switch rn.kind {
	case kBoolConst:
		return fmt.Sprintf("%v", rn.boolV)
	case kBVConst:
		w := rn.sort.BitVecWidth()
		bits := strconv.FormatUint(rn.bvV, 2)
		if len(bits) < w {
			bits = strings.Repeat("0", w-len(bits)) + bits
		}
		return "#b" + bits
	default:
		return "?"
	}
}

func (b *Backend) SetOption(name, value string) error {
	b.options[name] = value
	return nil
}

func (b *Backend) SetLogic(name string) error {
	b.logic = name
	return nil
}

func (b *Backend) Terminated() bool { return b.terminated }

// Terminate lets tests simulate an external termination signal.
func (b *Backend) Terminate() { b.terminated = true }

func toRef(args []backend.Node) []*refNode {
	out := make([]*refNode, len(args))
	for i, a := range args {
		out[i] = a.(*refNode)
	}
	return out
}

func mask(v uint64, width int) uint64 {
	if width >= 64 {
		return v
	}
	return v & (uint64(1)<<uint(width) - 1)
}

// ---- bounded brute-force checker ----

// checkConjunction decides satisfiability of asserted && extra by
// enumerating assignments to every free variable reachable from those
// formulas. It is intentionally bounded: if the combined state space
// exceeds a small cap it reports Unknown rather than attempting real
// search, since refbackend exists to make this repository's own test
// scripts decidable, not to be a solver.
func (b *Backend) checkConjunction(asserted []*refNode, extra []*refNode) backend.CheckSatResult {
	all := append(append([]*refNode(nil), asserted...), extra...)
	if len(all) == 0 {
		return backend.Sat
	}
	vars := map[string]*refNode{}
	for _, n := range all {
		collectVars(n, vars)
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	const maxStates = 1 << 20
	total := 1
	for _, name := range names {
		w := vars[name].sort.(*refSort).width
		if vars[name].sort.Kind() != backend.KindBitVec {
			w = 1
		}
		if w > 24 {
			return backend.Unknown
		}
		total *= 1 << uint(w)
		if total > maxStates {
			return backend.Unknown
		}
	}
	if total == 0 {
		total = 1
	}

	assignment := make(map[string]uint64, len(names))
	var rec func(i int) bool
	rec = func(i int) bool {
		if i == len(names) {
			for _, n := range all {
				v, ok := evalBool(n, assignment)
				if !ok || !v {
					return false
				}
			}
			return true
		}
		name := names[i]
		w := vars[name].sort.(*refSort).width
		if vars[name].sort.Kind() != backend.KindBitVec {
			w = 1
		}
		for v := uint64(0); v < uint64(1)<<uint(w); v++ {
			assignment[name] = v
			if rec(i + 1) {
				return true
			}
		}
		return false
	}
	if rec(0) {
		return backend.Sat
	}
	return backend.Unsat
}

func collectVars(n *refNode, out map[string]*refNode) {
	if n == nil {
		return
	}
	if n.kind == kVar {
		out[n.name] = n
		return
	}
	for _, c := range n.args {
		collectVars(c, out)
	}
}

// evalBool evaluates a boolean-sorted node under assignment.
func evalBool(n *refNode, assignment map[string]uint64) (bool, bool) {
	switch n.kind {
	case kBoolConst:
		return n.boolV, true
	case kVar:
		v, ok := assignment[n.name]
		return v != 0, ok
	case kOp:
		switch n.op {
		case "and":
			for _, a := range n.args {
				v, ok := evalBool(a, assignment)
				if !ok {
					return false, false
				}
				if !v {
					return false, true
				}
			}
			return true, true
		case "or":
			for _, a := range n.args {
				v, ok := evalBool(a, assignment)
				if !ok {
					return false, false
				}
				if v {
					return true, true
				}
			}
			return false, true
		case "not":
			v, ok := evalBool(n.args[0], assignment)
			return !v, ok
		case "xor":
			acc := false
			for _, a := range n.args {
				v, ok := evalBool(a, assignment)
				if !ok {
					return false, false
				}
				acc = acc != v
			}
			return acc, true
		case "=>":
			// right fold: a => (b => (c => ...))
			vals := make([]bool, len(n.args))
			for i, a := range n.args {
				v, ok := evalBool(a, assignment)
				if !ok {
					return false, false
				}
				vals[i] = v
			}
			acc := vals[len(vals)-1]
			for i := len(vals) - 2; i >= 0; i-- {
				acc = !vals[i] || acc
			}
			return acc, true
		case "=":
			if n.args[0].sort.Kind() == backend.KindBitVec {
				a, ok1 := evalBV(n.args[0], assignment)
				c, ok2 := evalBV(n.args[1], assignment)
				return a == c, ok1 && ok2
			}
			a, ok1 := evalBool(n.args[0], assignment)
			c, ok2 := evalBool(n.args[1], assignment)
			return a == c, ok1 && ok2
		case "ite":
			cond, ok := evalBool(n.args[0], assignment)
			if !ok {
				return false, false
			}
			if cond {
				return evalBool(n.args[1], assignment)
			}
			return evalBool(n.args[2], assignment)
		case "bvult", "bvule", "bvugt", "bvuge", "bvslt", "bvsle", "bvsgt", "bvsge":
			w := n.args[0].sort.(*refSort).width
			a, ok1 := evalBV(n.args[0], assignment)
			c, ok2 := evalBV(n.args[1], assignment)
			if !ok1 || !ok2 {
				return false, false
			}
			return compareBV(n.op, a, c, w), true
		default:
			// Unhandled boolean-producing op (FP predicates/compares and
			// quantifiers): treat as unknown but non-blocking.
			return false, false
		}
	default:
		return false, false
	}
}

func compareBV(op string, a, c uint64, w int) bool {
	switch op {
	case "bvult":
		return a < c
	case "bvule":
		return a <= c
	case "bvugt":
		return a > c
	case "bvuge":
		return a >= c
	case "bvslt":
		return signExtend(a, w) < signExtend(c, w)
	case "bvsle":
		return signExtend(a, w) <= signExtend(c, w)
	case "bvsgt":
		return signExtend(a, w) > signExtend(c, w)
	case "bvsge":
		return signExtend(a, w) >= signExtend(c, w)
	}
	return false
}

func signExtend(v uint64, w int) int64 {
	if w >= 64 {
		return int64(v)
	}
	signBit := uint64(1) << uint(w-1)
	if v&signBit != 0 {
		return int64(v) - int64(1)<<uint(w)
	}
	return int64(v)
}

// evalBV evaluates a bit-vector-sorted node under assignment, returning its
// value masked to its sort's width.
func evalBV(n *refNode, assignment map[string]uint64) (uint64, bool) {
	w := 0
	if rs, ok := n.sort.(*refSort); ok {
		w = rs.width
	}
	switch n.kind {
	case kBVConst:
		return n.bvV, true
	case kVar:
		v, ok := assignment[n.name]
		return mask(v, w), ok
	case kOp:
		switch n.op {
		case "bvnot":
			a, ok := evalBV(n.args[0], assignment)
			return mask(^a, w), ok
		case "bvneg":
			a, ok := evalBV(n.args[0], assignment)
			return mask(-a, w), ok
		case "bvredor":
			a, ok := evalBV(n.args[0], assignment)
			if a != 0 {
				return 1, ok
			}
			return 0, ok
		case "bvredand":
			aw := n.args[0].sort.(*refSort).width
			a, ok := evalBV(n.args[0], assignment)
			full := mask(^uint64(0), aw)
			if a == full {
				return 1, ok
			}
			return 0, ok
		case "bvand":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return a & c })
		case "bvor":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return a | c })
		case "bvxor":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return a ^ c })
		case "bvxnor":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return ^(a ^ c) })
		case "bvadd":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return a + c })
		case "bvsub":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return a - c })
		case "bvmul":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return a * c })
		case "bvudiv":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 {
				if c == 0 {
					return mask(^uint64(0), w)
				}
				return a / c
			})
		case "bvurem":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 {
				if c == 0 {
					return a
				}
				return a % c
			})
		case "bvshl":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return a << uint(c%uint64(64)) })
		case "bvlshr":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return a >> uint(c%uint64(64)) })
		case "bvnand":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return ^(a & c) })
		case "bvnor":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 { return ^(a | c) })
		case "bvcomp":
			return bvFold2(n, assignment, w, func(a, c uint64) uint64 {
				if a == c {
					return 1
				}
				return 0
			})
		case "concat":
			a, ok1 := evalBV(n.args[0], assignment)
			c, ok2 := evalBV(n.args[1], assignment)
			return mask(a<<uint(n.args[1].sort.(*refSort).width)|c, w), ok1 && ok2
		case "extract":
			hi := int(n.bvV >> 32)
			lo := int(int32(n.bvV))
			a, ok := evalBV(n.args[0], assignment)
			return mask(a>>uint(lo), hi-lo+1), ok
		case "zero_extend":
			a, ok := evalBV(n.args[0], assignment)
			return a, ok
		case "sign_extend":
			aw := n.args[0].sort.(*refSort).width
			a, ok := evalBV(n.args[0], assignment)
			se := signExtend(a, aw)
			return mask(uint64(se), w), ok
		case "repeat":
			aw := n.args[0].sort.(*refSort).width
			a, ok := evalBV(n.args[0], assignment)
			var acc uint64
			for i := 0; i < w/aw; i++ {
				acc |= a << uint(i*aw)
			}
			return mask(acc, w), ok
		case "rotate_left":
			k := int(n.bvV) % w
			a, ok := evalBV(n.args[0], assignment)
			return mask(bits.RotateLeft64(a<<uint(64-w), k)>>uint(64-w), w), ok
		case "rotate_right":
			k := int(n.bvV) % w
			a, ok := evalBV(n.args[0], assignment)
			return mask(bits.RotateLeft64(a<<uint(64-w), -k)>>uint(64-w), w), ok
		case "ite":
			cond, ok := evalBool(n.args[0], assignment)
			if !ok {
				return 0, false
			}
			if cond {
				return evalBV(n.args[1], assignment)
			}
			return evalBV(n.args[2], assignment)
		default:
			return 0, false
		}
	default:
		return 0, false
	}
	return 0, false
}

func bvFold2(n *refNode, assignment map[string]uint64, w int, f func(a, c uint64) uint64) (uint64, bool) {
	a, ok1 := evalBV(n.args[0], assignment)
	c, ok2 := evalBV(n.args[1], assignment)
	if !ok1 || !ok2 {
		return 0, false
	}
	return mask(f(a, c), w), true
}

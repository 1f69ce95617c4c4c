// Package backend defines the capability interface the front end drives to
// construct terms, sorts, and assertions. The actual solver is specified
// only by the interfaces it implements, never by a concrete type the front
// end imports; this package contains no solving logic whatsoever.
package backend

// Node is an opaque reference-counted handle to a backend term. The parser
// never inspects a Node's internals; it only threads Nodes through
// constructor calls. It calls Release only for the Nodes of symbol-table
// entries removed when a pushed scope is popped; intermediate terms,
// let/quantifier bindings and the Nodes still held at the end of a parse
// are not released.
type Node interface {
	// Sort returns the sort of this node so the parser's static checker can
	// enforce sort-match rules without asking the backend on every edge.
	Sort() Sort
}

// Sort is an opaque handle to a backend sort (Bool, BitVec n, FloatingPoint
// eb sb, RoundingMode, Array i e, or a function sort). Two Sort values that
// compare == are required to denote the same sort; the Backend is
// responsible for this (hash-consing on its side), the front end's own
// sort.Registry hash-conses on top of that for fast equality checks
// without round-tripping through the Backend (see sort.Registry).
type Sort interface {
	// Kind distinguishes the sort family for the parser's own checks
	// (e.g. "is this an array sort" without needing a full type switch
	// against Backend internals).
	Kind() SortKind
	// String renders a canonical sort name, used both for error messages
	// and as the hash-consing key in sort.Registry.
	String() string
	// BitVecWidth returns this sort's bit-width; valid only when
	// Kind() == KindBitVec.
	BitVecWidth() int
	// FloatingPointWidths returns (eb, sb); valid only when
	// Kind() == KindFloatingPoint.
	FloatingPointWidths() (eb, sb int)
	// ArrayIndexElem returns the index and element sorts; valid only when
	// Kind() == KindArray.
	ArrayIndexElem() (index, elem Sort)
	// FunctionArgsResult returns the argument and result sorts; valid only
	// when Kind() == KindFunction.
	FunctionArgsResult() (args []Sort, result Sort)
}

// SortKind partitions sorts the way the parser needs to dispatch argument-
// kind checks: bit-vector operators reject array and function operands,
// array operators require an array first operand, etc.
type SortKind uint8

const (
	KindBool SortKind = iota
	KindBitVec
	KindArray
	KindFloatingPoint
	KindRoundingMode
	KindFunction
)

// RoundingMode enumerates the five SMT-LIB rounding modes (Glossary).
type RoundingMode uint8

const (
	RNE RoundingMode = iota
	RNA
	RTP
	RTN
	RTZ
)

// Backend is implemented by the solver. Every method the front end needs
// to build and assert terms is listed here, grouped by operator family,
// plus the assertion-stack and termination primitives the command driver
// needs.
type Backend interface {
	// --- sorts ---
	BoolSort() Sort
	BitVecSort(width int) Sort
	FloatingPointSort(eb, sb int) Sort
	RoundingModeSort() Sort
	ArraySort(index, elem Sort) Sort
	FunctionSort(args []Sort, result Sort) Sort

	// --- constants and variables ---
	BoolConst(v bool) Node
	BVConst(value uint64, width int) Node
	BVConstFromBits(bits []byte, width int) Node
	RoundingModeConst(m RoundingMode) Node
	FPSpecialConst(kind FPSpecial, eb, sb int) Node
	DeclareVariable(name string, sort Sort) Node
	DeclareFunction(name string, args []Sort, result Sort) Node
	// DeclareParameter introduces a fresh bound parameter for a quantifier or
	// a define-fun parameter; uniqueName is a collision-avoiding "sym!N" name distinct
	// from any user-visible symbol.
	DeclareParameter(uniqueName string, sort Sort) Node

	// --- boolean / core ---
	And(args []Node) Node
	Or(args []Node) Node
	Xor(args []Node) Node
	Not(arg Node) Node
	Implies(args []Node) Node // all operands in source order; the backend right-folds them
	Eq(a, b Node) Node
	Ite(cond, then, els Node) Node

	// --- bit-vector unary/binary/left-assoc families ---
	BVNot(a Node) Node
	BVNeg(a Node) Node
	BVRedOr(a Node) Node
	BVRedAnd(a Node) Node
	BVBinOp(op BVBinOp, a, b Node) Node
	Concat(a, b Node) Node
	Extract(hi, lo int, a Node) Node
	ZeroExtend(k int, a Node) Node
	SignExtend(k int, a Node) Node
	Repeat(k int, a Node) Node
	RotateLeft(k int, a Node) Node
	RotateRight(k int, a Node) Node

	// --- arrays ---
	Select(arr, idx Node) Node
	Store(arr, idx, val Node) Node
	ConstArray(sort Sort, val Node) Node

	// --- floating point ---
	FPUnaryOp(op FPUnaryOp, rm, a Node) Node
	FPBinOp(op FPBinOp, rm, a, b Node) Node
	FPFma(rm, a, b, c Node) Node
	FPCompare(op FPCompareOp, a, b Node) Node
	FPPredicate(op FPPredicateOp, a Node) Node
	FPToFP(eb, sb int, rm, a Node) Node
	FPToFPFromReal(eb, sb int, rm Node, real string) Node
	FPToFPUnsigned(eb, sb int, rm, a Node) Node
	FPToUBV(width int, rm, a Node) Node
	FPToSBV(width int, rm, a Node) Node
	FPToReal(a Node) Node

	// ConstBVValue reports the constant value of n if it is a literal
	// bit-vector constant, for callers (the ext_rotate_left/right family)
	// that must reject a non-constant rotation amount at parse time rather
	// than pushing the check onto the solver.
	ConstBVValue(n Node) (value uint64, ok bool)

	// --- functions and quantifiers ---
	Apply(fn Node, args []Node) Node
	Forall(params []Node, body Node) Node
	Exists(params []Node, body Node) Node

	// --- bookkeeping ---
	SetSymbol(node Node, name string)
	Release(n Node)
	Assert(n Node)
	Assume(n Node, handle string) // check-sat-assuming
	Push()
	Pop()
	CheckSat() CheckSatResult
	CheckSatAssuming(handles []string) CheckSatResult
	FailedAssumptions() []string
	GetModel() string
	// GetValue renders n's value under the most recent sat model in a
	// backend-defined textual form, for get-value responses.
	GetValue(n Node) string
	SetOption(name, value string) error
	SetLogic(name string) error
	Terminated() bool
}

type FPSpecial uint8

const (
	FPPlusZero FPSpecial = iota
	FPMinusZero
	FPPlusInf
	FPMinusInf
	FPNaN
)

type BVBinOp uint8

const (
	BVAnd BVBinOp = iota
	BVOr
	BVXor
	BVXnor
	BVAdd
	BVSub
	BVMul
	BVUdiv
	BVUrem
	BVSdiv
	BVSrem
	BVSmod
	BVShl
	BVLshr
	BVAshr
	BVNand
	BVNor
	BVComp
	BVUlt
	BVUle
	BVUgt
	BVUge
	BVSlt
	BVSle
	BVSgt
	BVSge
)

type FPUnaryOp uint8

const (
	FPAbs FPUnaryOp = iota
	FPNeg
	FPSqrt
	FPRoundToIntegral
)

type FPBinOp uint8

const (
	FPAdd FPBinOp = iota
	FPSub
	FPMul
	FPDiv
	FPRem
	FPMin
	FPMax
)

type FPCompareOp uint8

const (
	FPEq FPCompareOp = iota
	FPLeq
	FPLt
	FPGeq
	FPGt
)

type FPPredicateOp uint8

const (
	FPIsNormal FPPredicateOp = iota
	FPIsSubnormal
	FPIsZero
	FPIsInfinite
	FPIsNaN
	FPIsNegative
	FPIsPositive
)

// CheckSatResult is the tri-state result of a check-sat call.
type CheckSatResult uint8

const (
	Sat CheckSatResult = iota
	Unsat
	Unknown
)

func (r CheckSatResult) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

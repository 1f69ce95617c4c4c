// Package token defines the lexical token kinds produced by the lexer and
// the source-position bookkeeping shared by every later stage.
package token

import "fmt"

// Class identifies which theory or grammar region a Kind belongs to. It is
// packed into the high bits of Kind so a single integer carries both the
// concrete token identity and its broad category, letting callers test
// class membership with a mask instead of a long case list.
type Class uint8

const (
	ClassOther Class = iota
	ClassConstant
	ClassReserved
	ClassCommand
	ClassKeyword
	ClassCore
	ClassArray
	ClassBV
	ClassFP
	ClassLogic
)

// Kind identifies a lexical token. The low byte is the discriminator within
// its Class; Class occupies the next byte up.
type Kind uint16

func makeKind(c Class, n uint8) Kind {
	return Kind(c)<<8 | Kind(n)
}

func (k Kind) Class() Class { return Class(k >> 8) }

// Other / punctuation.
const (
	EOF Kind = iota
	ERROR
	LPAR
	RPAR
	SYMBOL
	ATTRIBUTE
)

// Constants.
const (
	DECIMAL Kind = Kind(ClassConstant)<<8 | iota
	NUMERAL
	HEXADECIMAL
	BINARY
	STRINGLIT
	REAL
)

// Reserved words (SMT-LIB v2 §3.2).
const (
	UNDERSCORE Kind = Kind(ClassReserved)<<8 | iota
	BANG
	AS
	LET
	FORALL
	EXISTS
	PAR
	DECIMAL_KW
	STRING_KW
	NUMERAL_KW
)

// Commands.
const (
	CMD_SET_LOGIC Kind = Kind(ClassCommand)<<8 | iota
	CMD_SET_OPTION
	CMD_SET_INFO
	CMD_DECLARE_SORT
	CMD_DEFINE_SORT
	CMD_DECLARE_CONST
	CMD_DECLARE_FUN
	CMD_DEFINE_FUN
	CMD_ASSERT
	CMD_CHECK_SAT
	CMD_CHECK_SAT_ASSUMING
	CMD_GET_MODEL
	CMD_GET_VALUE
	CMD_GET_UNSAT_ASSUMPTIONS
	CMD_PUSH
	CMD_POP
	CMD_ECHO
	CMD_EXIT
	CMD_MODEL
)

// Core theory.
const (
	CORE_BOOL Kind = Kind(ClassCore)<<8 | iota
	CORE_TRUE
	CORE_FALSE
	CORE_EQ
	CORE_DISTINCT
	CORE_ITE
	CORE_AND
	CORE_OR
	CORE_XOR
	CORE_NOT
	CORE_IMPLIES
)

// Array theory.
const (
	ARRAY_SORT Kind = Kind(ClassArray)<<8 | iota
	ARRAY_SELECT
	ARRAY_STORE
	ARRAY_AS_CONST
)

// Bit-vector theory.
const (
	BV_SORT Kind = Kind(ClassBV)<<8 | iota
	BV_NOT
	BV_NEG
	BV_REDOR
	BV_REDAND
	BV_AND
	BV_OR
	BV_XOR
	BV_XNOR
	BV_ADD
	BV_SUB
	BV_MUL
	BV_CONCAT
	BV_UDIV
	BV_UREM
	BV_SDIV
	BV_SREM
	BV_SMOD
	BV_SHL
	BV_LSHR
	BV_ASHR
	BV_NAND
	BV_NOR
	BV_COMP
	BV_ULT
	BV_ULE
	BV_UGT
	BV_UGE
	BV_SLT
	BV_SLE
	BV_SGT
	BV_SGE
	BV_EXTRACT
	BV_ZERO_EXTEND
	BV_SIGN_EXTEND
	BV_REPEAT
	BV_ROTATE_LEFT
	BV_ROTATE_RIGHT
	BV_EXT_ROTATE_LEFT
	BV_EXT_ROTATE_RIGHT
	BV_LITERAL // not produced by the lexer: the bvK of (_ bvK n) arrives as a SYMBOL
)

// Floating-point theory.
const (
	FP_SORT Kind = Kind(ClassFP)<<8 | iota
	FP_ROUNDINGMODE
	FP_RNE
	FP_RNA
	FP_RTP
	FP_RTN
	FP_RTZ
	FP_ABS
	FP_NEG
	FP_ADD
	FP_SUB
	FP_MUL
	FP_DIV
	FP_FMA
	FP_SQRT
	FP_REM
	FP_ROUNDTOINTEGRAL
	FP_MIN
	FP_MAX
	FP_LEQ
	FP_LT
	FP_GEQ
	FP_GT
	FP_EQ
	FP_IS_NORMAL
	FP_IS_SUBNORMAL
	FP_IS_ZERO
	FP_IS_INFINITE
	FP_IS_NAN
	FP_IS_NEGATIVE
	FP_IS_POSITIVE
	FP_TO_FP
	FP_TO_FP_UNSIGNED
	FP_TO_UBV
	FP_TO_SBV
	FP_TO_REAL
	FP_PLUS_ZERO
	FP_MINUS_ZERO
	FP_PLUS_INF
	FP_MINUS_INF
	FP_NAN
)

// Logic names, recognized but not otherwise special-cased beyond set-logic.
const LOGIC Kind = Kind(ClassLogic) << 8

// Pos is a 1-based line/column source coordinate with a 0-based byte
// offset. Every token carries the coordinate of its first byte, so error
// messages can report a precise location without re-scanning the source.
type Pos struct {
	Line   int
	Col    int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a single lexical unit with its provenance.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "<EOF>"
	}
	return t.Text
}

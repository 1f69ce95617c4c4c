// Package keyword pre-populates a symbol table with the reserved words,
// theory operators, command names, and logic names every SMT-LIB v2
// script can use. Populate must run before any lexing begins so that the
// lexer's symbol-vs-keyword resolution sees these as pre-existing scope-0
// entries rather than minting them as plain user symbols.
package keyword

import (
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/token"
)

var table = map[string]token.Kind{
	// reserved words
	"_":                        token.UNDERSCORE,
	"!":                        token.BANG,
	"as":                       token.AS,
	"let":                      token.LET,
	"forall":                   token.FORALL,
	"exists":                   token.EXISTS,
	"par":                      token.PAR,
	"DECIMAL":                  token.DECIMAL_KW,
	"STRING":                   token.STRING_KW,
	"NUMERAL":                  token.NUMERAL_KW,

	// commands
	"set-logic":               token.CMD_SET_LOGIC,
	"set-option":              token.CMD_SET_OPTION,
	"set-info":                token.CMD_SET_INFO,
	"declare-sort":            token.CMD_DECLARE_SORT,
	"define-sort":             token.CMD_DEFINE_SORT,
	"declare-const":           token.CMD_DECLARE_CONST,
	"declare-fun":             token.CMD_DECLARE_FUN,
	"define-fun":              token.CMD_DEFINE_FUN,
	"assert":                  token.CMD_ASSERT,
	"check-sat":               token.CMD_CHECK_SAT,
	"check-sat-assuming":      token.CMD_CHECK_SAT_ASSUMING,
	"get-model":               token.CMD_GET_MODEL,
	"get-value":               token.CMD_GET_VALUE,
	"get-unsat-assumptions":   token.CMD_GET_UNSAT_ASSUMPTIONS,
	"push":                    token.CMD_PUSH,
	"pop":                     token.CMD_POP,
	"echo":                    token.CMD_ECHO,
	"exit":                    token.CMD_EXIT,
	"model":                   token.CMD_MODEL,

	// core theory
	"Bool":     token.CORE_BOOL,
	"true":     token.CORE_TRUE,
	"false":    token.CORE_FALSE,
	"=":        token.CORE_EQ,
	"distinct": token.CORE_DISTINCT,
	"ite":      token.CORE_ITE,
	"and":      token.CORE_AND,
	"or":       token.CORE_OR,
	"xor":      token.CORE_XOR,
	"not":      token.CORE_NOT,
	"=>":       token.CORE_IMPLIES,

	// array theory
	"Array":    token.ARRAY_SORT,
	"select":   token.ARRAY_SELECT,
	"store":    token.ARRAY_STORE,

	// bit-vector theory
	"BitVec":           token.BV_SORT,
	"bvnot":            token.BV_NOT,
	"bvneg":            token.BV_NEG,
	"bvredor":          token.BV_REDOR,
	"bvredand":         token.BV_REDAND,
	"bvand":            token.BV_AND,
	"bvor":             token.BV_OR,
	"bvxor":            token.BV_XOR,
	"bvxnor":           token.BV_XNOR,
	"bvadd":            token.BV_ADD,
	"bvsub":            token.BV_SUB,
	"bvmul":            token.BV_MUL,
	"concat":           token.BV_CONCAT,
	"bvudiv":           token.BV_UDIV,
	"bvurem":           token.BV_UREM,
	"bvsdiv":           token.BV_SDIV,
	"bvsrem":           token.BV_SREM,
	"bvsmod":           token.BV_SMOD,
	"bvshl":            token.BV_SHL,
	"bvlshr":           token.BV_LSHR,
	"bvashr":           token.BV_ASHR,
	"bvnand":           token.BV_NAND,
	"bvnor":            token.BV_NOR,
	"bvcomp":           token.BV_COMP,
	"bvult":            token.BV_ULT,
	"bvule":            token.BV_ULE,
	"bvugt":            token.BV_UGT,
	"bvuge":            token.BV_UGE,
	"bvslt":            token.BV_SLT,
	"bvsle":            token.BV_SLE,
	"bvsgt":            token.BV_SGT,
	"bvsge":            token.BV_SGE,
	"extract":          token.BV_EXTRACT,
	"zero_extend":      token.BV_ZERO_EXTEND,
	"sign_extend":      token.BV_SIGN_EXTEND,
	"repeat":           token.BV_REPEAT,
	"rotate_left":      token.BV_ROTATE_LEFT,
	"rotate_right":     token.BV_ROTATE_RIGHT,
	"ext_rotate_left":  token.BV_EXT_ROTATE_LEFT,
	"ext_rotate_right": token.BV_EXT_ROTATE_RIGHT,

	// floating point theory
	"FloatingPoint":         token.FP_SORT,
	"RoundingMode":          token.FP_ROUNDINGMODE,
	"roundNearestTiesToEven": token.FP_RNE,
	"RNE":                   token.FP_RNE,
	"roundNearestTiesToAway": token.FP_RNA,
	"RNA":                   token.FP_RNA,
	"roundTowardPositive":   token.FP_RTP,
	"RTP":                   token.FP_RTP,
	"roundTowardNegative":   token.FP_RTN,
	"RTN":                   token.FP_RTN,
	"roundTowardZero":       token.FP_RTZ,
	"RTZ":                   token.FP_RTZ,
	"fp.abs":                token.FP_ABS,
	"fp.neg":                token.FP_NEG,
	"fp.add":                token.FP_ADD,
	"fp.sub":                token.FP_SUB,
	"fp.mul":                token.FP_MUL,
	"fp.div":                token.FP_DIV,
	"fp.fma":                token.FP_FMA,
	"fp.sqrt":               token.FP_SQRT,
	"fp.rem":                token.FP_REM,
	"fp.roundToIntegral":    token.FP_ROUNDTOINTEGRAL,
	"fp.min":                token.FP_MIN,
	"fp.max":                token.FP_MAX,
	"fp.leq":                token.FP_LEQ,
	"fp.lt":                 token.FP_LT,
	"fp.geq":                token.FP_GEQ,
	"fp.gt":                 token.FP_GT,
	"fp.eq":                 token.FP_EQ,
	"fp.isNormal":           token.FP_IS_NORMAL,
	"fp.isSubnormal":        token.FP_IS_SUBNORMAL,
	"fp.isZero":             token.FP_IS_ZERO,
	"fp.isInfinite":         token.FP_IS_INFINITE,
	"fp.isNaN":              token.FP_IS_NAN,
	"fp.isNegative":         token.FP_IS_NEGATIVE,
	"fp.isPositive":         token.FP_IS_POSITIVE,
	"to_fp":                 token.FP_TO_FP,
	"to_fp_unsigned":        token.FP_TO_FP_UNSIGNED,
	"fp.to_ubv":             token.FP_TO_UBV,
	"fp.to_sbv":             token.FP_TO_SBV,
	"fp.to_real":            token.FP_TO_REAL,
	"+zero":                 token.FP_PLUS_ZERO,
	"-zero":                 token.FP_MINUS_ZERO,
	"+oo":                   token.FP_PLUS_INF,
	"-oo":                   token.FP_MINUS_INF,
	"NaN":                   token.FP_NAN,

	// logic names recognized by set-logic; tagged uniformly as LOGIC, the
	// specific name is carried in the token text.
	"QF_BV":     token.LOGIC,
	"QF_UFBV":   token.LOGIC,
	"QF_ABV":    token.LOGIC,
	"QF_AUFBV":  token.LOGIC,
	"BV":        token.LOGIC,
	"UFBV":      token.LOGIC,
	"ABV":       token.LOGIC,
	"AUFBV":     token.LOGIC,
	"ALL":       token.LOGIC,
	"QF_FP":     token.LOGIC,
	"QF_FPBV":   token.LOGIC,
	"FP":        token.LOGIC,
}

// "bv<K>" compact constants are not pre-populated here: they are an
// open-ended family (any decimal K) recognized structurally by the term
// parser when it sees a SYMBOL whose text matches `bv[0-9]+` immediately
// inside `(_ ...)`, not via a keyword table entry.

// Populate inserts every reserved word, operator, command, and logic name
// into tbl at scope 0. It must be called exactly once per Table before any
// lexing begins.
func Populate(tbl *symtab.Table) {
	for name, kind := range table {
		e := tbl.NewEntry(kind, name, 0, token.Pos{})
		tbl.Insert(e)
	}
}

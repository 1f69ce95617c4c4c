package lexer

// Byte-class bitmask, computed once at package init: each byte value is
// tagged with which lexical classes it belongs to (decimal digit, hex
// digit, string-body, simple-symbol, quoted-symbol-body, keyword-body),
// so scanning a run of bytes is a table lookup instead of a chain of
// range comparisons per byte.
type class uint8

const (
	classDecimal class = 1 << iota
	classHex
	classStringBody
	classSimpleSymbolStart
	classSimpleSymbolCont
	classQuotedSymbolBody
	classKeywordBody
)

var classOf [256]class

func has(b byte, c class) bool { return classOf[b]&c != 0 }

// extraSymbolChars are the punctuation characters SMT-LIB v2 allows to
// start (and continue) a simple symbol, in addition to letters.
const extraSymbolChars = "+-/*=%?!.$_~&^<>@"

func init() {
	for b := 0; b < 256; b++ {
		c := byte(b)
		switch {
		case c >= '0' && c <= '9':
			classOf[b] |= classDecimal | classHex | classSimpleSymbolCont | classKeywordBody
		case c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			classOf[b] |= classHex
		}
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			classOf[b] |= classSimpleSymbolStart | classSimpleSymbolCont | classKeywordBody
		}
		if indexByte(extraSymbolChars, c) {
			classOf[b] |= classSimpleSymbolStart | classSimpleSymbolCont | classKeywordBody
		}
		// Quoted-symbol body: any printable byte except '\' and '|'.
		if c >= 0x20 && c < 0x7f && c != '\\' && c != '|' {
			classOf[b] |= classQuotedSymbolBody
		}
		if c != '"' && c != '\\' {
			classOf[b] |= classStringBody
		}
	}
}

func indexByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == '\v'
}

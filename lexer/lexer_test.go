package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nilforge/smtfront/lexer/keyword"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/token"
)

func newLexer(t *testing.T, src string) *Lexer {
	t.Helper()
	tbl := symtab.NewTable(true)
	keyword.Populate(tbl)
	return New([]byte(src), "test.smt2", tbl)
}

func lexAll(t *testing.T, l *Lexer) []token.Token {
	t.Helper()
	var toks []token.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestPunctuationAndPositions(t *testing.T) {
	l := newLexer(t, "(assert\ntrue)")
	toks := lexAll(t, l)

	require.Equal(t, token.LPAR, toks[0].Kind)
	require.Equal(t, token.Pos{Line: 1, Col: 1, Offset: 0}, toks[0].Pos)

	require.Equal(t, token.CMD_ASSERT, toks[1].Kind)
	require.Equal(t, token.CORE_TRUE, toks[2].Kind)
	require.Equal(t, 2, toks[2].Pos.Line)

	require.Equal(t, token.RPAR, toks[3].Kind)
	require.Equal(t, token.EOF, toks[4].Kind)
}

func TestNumeralRejectsLeadingZero(t *testing.T) {
	l := newLexer(t, "007")
	_, err := l.Next()
	require.Error(t, err)
}

func TestNumeralAndReal(t *testing.T) {
	l := newLexer(t, "0 42 3.14")
	toks := lexAll(t, l)
	require.Equal(t, token.NUMERAL, toks[0].Kind)
	require.Equal(t, "0", toks[0].Text)
	require.Equal(t, token.NUMERAL, toks[1].Kind)
	require.Equal(t, "42", toks[1].Text)
	require.Equal(t, token.REAL, toks[2].Kind)
	require.Equal(t, "3.14", toks[2].Text)
}

func TestHexAndBinaryLiterals(t *testing.T) {
	l := newLexer(t, "#xFF #b1010")
	toks := lexAll(t, l)
	require.Equal(t, token.HEXADECIMAL, toks[0].Kind)
	require.Equal(t, "FF", toks[0].Text)
	require.Equal(t, token.BINARY, toks[1].Kind)
	require.Equal(t, "1010", toks[1].Text)
}

func TestStringLiteralEscapes(t *testing.T) {
	l := newLexer(t, `"a\"b\\c"`)
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.STRINGLIT, tok.Kind)
	require.Equal(t, `a"b\c`, tok.Text)
}

func TestUnterminatedStringIsAnError(t *testing.T) {
	l := newLexer(t, `"abc`)
	_, err := l.Next()
	require.Error(t, err)
}

func TestQuotedSymbolAndUnquotedResolveSameEntry(t *testing.T) {
	l := newLexer(t, "x |x|")
	toks := lexAll(t, l)
	require.Equal(t, token.SYMBOL, toks[0].Kind)
	require.Equal(t, token.SYMBOL, toks[1].Kind)
}

func TestBackslashInsideQuotedSymbolIsRejected(t *testing.T) {
	l := newLexer(t, `|a\b|`)
	_, err := l.Next()
	require.Error(t, err)
}

func TestKeywordToken(t *testing.T) {
	l := newLexer(t, ":print-success")
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.ATTRIBUTE, tok.Kind)
	require.Equal(t, ":print-success", tok.Text)
}

func TestLineCommentsAreSkipped(t *testing.T) {
	l := newLexer(t, "; a comment\ntrue")
	tok, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, token.CORE_TRUE, tok.Kind)
	require.Equal(t, 2, tok.Pos.Line)
}

func TestReservedWordsAndOperatorsResolveThroughSharedTable(t *testing.T) {
	l := newLexer(t, "bvand forall check-sat")
	toks := lexAll(t, l)
	require.Equal(t, token.BV_AND, toks[0].Kind)
	require.Equal(t, token.FORALL, toks[1].Kind)
	require.Equal(t, token.CMD_CHECK_SAT, toks[2].Kind)
}

func TestSliceNormalizesWhitespaceToSingleSpaces(t *testing.T) {
	l := newLexer(t, "(bvand   x\n  y)")
	require.Equal(t, "(bvand x y)", l.Slice(0, len("(bvand   x\n  y)")))
}

func TestUnexpectedCharacterIsAnError(t *testing.T) {
	l := newLexer(t, "[")
	_, err := l.Next()
	require.Error(t, err)
}

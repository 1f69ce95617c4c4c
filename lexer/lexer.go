// Package lexer turns a byte stream into SMT-LIB v2 tokens with (line,col)
// provenance. It shares the Parser's single symbol table so that reserved
// words, theory operators, command names, and user symbols all resolve
// through the same lookup, rather than maintaining a separate keyword
// table the parser would have to consult first.
package lexer

import (
	"github.com/nilforge/smtfront/reporter"
	"github.com/nilforge/smtfront/symtab"
	"github.com/nilforge/smtfront/token"
)

// Lexer scans bytes into tokens. It is not safe for concurrent use, matching
// the single-threaded parser it serves.
type Lexer struct {
	r        *byteReader
	tbl      *symtab.Table
	filename string
}

// New returns a Lexer over data. tbl must already have the keyword table
// populated (see package keyword) if reserved words are to be recognized.
func New(data []byte, filename string, tbl *symtab.Table) *Lexer {
	return &Lexer{r: newByteReader(data), tbl: tbl, filename: filename}
}

func (l *Lexer) startPos() token.Pos {
	return token.Pos{Line: l.r.line, Col: l.r.col, Offset: l.r.offset()}
}

// Slice returns the normalized source text in the half-open range
// [start,end), with runs of whitespace collapsed to a single space. Used to
// round-trip captured term text (e.g. get-value, check-sat-assuming
// handles) without reproducing the caller's exact original formatting.
func (l *Lexer) Slice(start, end int) string {
	raw := l.r.data[start:end]
	var b []byte
	inSpace := false
	for _, c := range raw {
		if isWhitespace(c) {
			if !inSpace && len(b) > 0 {
				b = append(b, ' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b = append(b, c)
	}
	return string(b)
}

// Next returns the next token, EOF, or a lex error carrying its position.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}
	pos := l.startPos()
	b, ok := l.r.next()
	if !ok {
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}

	switch {
	case b == '(':
		return token.Token{Kind: token.LPAR, Text: "(", Pos: pos}, nil
	case b == ')':
		return token.Token{Kind: token.RPAR, Text: ")", Pos: pos}, nil
	case b == '#':
		return l.lexHexOrBinary(pos)
	case b == '"':
		return l.lexString(pos)
	case b == '|':
		return l.lexQuotedSymbol(pos)
	case b == ':':
		return l.lexKeyword(pos)
	case has(b, classDecimal):
		return l.lexNumber(b, pos)
	case has(b, classSimpleSymbolStart):
		return l.lexSymbol(pos)
	default:
		return token.Token{}, reporter.Errorf(pos, "unexpected character %q", rune(b))
	}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		b, ok := l.r.peek()
		if !ok {
			return nil
		}
		if isWhitespace(b) {
			l.r.next()
			continue
		}
		if b == ';' {
			for {
				c, ok := l.r.next()
				if !ok || c == '\n' {
					break
				}
			}
			continue
		}
		return nil
	}
}

func (l *Lexer) lexHexOrBinary(pos token.Pos) (token.Token, error) {
	b, ok := l.r.next()
	if !ok {
		return token.Token{}, reporter.Errorf(pos, "unexpected EOF after '#'")
	}
	switch b {
	case 'b':
		start := l.r.offset()
		for {
			c, ok := l.r.peek()
			if !ok || (c != '0' && c != '1') {
				break
			}
			l.r.next()
		}
		digits := l.r.offset() - start
		if digits == 0 {
			return token.Token{}, reporter.Errorf(pos, "expected at least one binary digit after '#b'")
		}
		text := string(l.r.data[start:l.r.offset()])
		return token.Token{Kind: token.BINARY, Text: text, Pos: pos}, nil
	case 'x':
		start := l.r.offset()
		for {
			c, ok := l.r.peek()
			if !ok || !has(c, classHex) {
				break
			}
			l.r.next()
		}
		digits := l.r.offset() - start
		if digits == 0 {
			return token.Token{}, reporter.Errorf(pos, "expected at least one hex digit after '#x'")
		}
		text := string(l.r.data[start:l.r.offset()])
		return token.Token{Kind: token.HEXADECIMAL, Text: text, Pos: pos}, nil
	default:
		return token.Token{}, reporter.Errorf(pos, "expected 'b' or 'x' after '#', got %q", rune(b))
	}
}

func (l *Lexer) lexString(pos token.Pos) (token.Token, error) {
	var out []byte
	for {
		b, ok := l.r.next()
		if !ok {
			return token.Token{}, reporter.Errorf(pos, "unterminated string literal")
		}
		if b == '\\' {
			c, ok := l.r.next()
			if !ok {
				return token.Token{}, reporter.Errorf(pos, "unterminated string literal")
			}
			switch c {
			case '"', '\\':
				out = append(out, c)
			default:
				return token.Token{}, reporter.Errorf(pos, `invalid escape sequence \%c in string literal`, c)
			}
			continue
		}
		if b == '"' {
			return token.Token{Kind: token.STRINGLIT, Text: string(out), Pos: pos}, nil
		}
		out = append(out, b)
	}
}

func (l *Lexer) lexQuotedSymbol(pos token.Pos) (token.Token, error) {
	start := l.r.offset()
	for {
		b, ok := l.r.peek()
		if !ok {
			return token.Token{}, reporter.Errorf(pos, "unterminated quoted symbol")
		}
		if b == '|' {
			text := string(l.r.data[start:l.r.offset()])
			l.r.next()
			return l.resolveSymbol("|"+text+"|", pos), nil
		}
		if b == '\\' {
			return token.Token{}, reporter.Errorf(pos, "'\\' is not permitted inside a quoted symbol")
		}
		if !has(b, classQuotedSymbolBody) && b != '\n' {
			return token.Token{}, reporter.Errorf(pos, "non-printable byte in quoted symbol")
		}
		l.r.next()
	}
}

func (l *Lexer) lexKeyword(pos token.Pos) (token.Token, error) {
	start := l.r.offset()
	for {
		b, ok := l.r.peek()
		if !ok || !has(b, classKeywordBody) {
			break
		}
		l.r.next()
	}
	if l.r.offset() == start {
		return token.Token{}, reporter.Errorf(pos, "expected keyword body after ':'")
	}
	text := string(l.r.data[start:l.r.offset()])
	return token.Token{Kind: token.ATTRIBUTE, Text: ":" + text, Pos: pos}, nil
}

func (l *Lexer) lexNumber(first byte, pos token.Pos) (token.Token, error) {
	start := l.r.offset() - 1
	for {
		b, ok := l.r.peek()
		if !ok || !has(b, classDecimal) {
			break
		}
		l.r.next()
	}
	if first == '0' && l.r.offset()-start > 1 {
		return token.Token{}, reporter.Errorf(pos, "numeral may not have a leading zero")
	}

	b, ok := l.r.peek()
	if ok && b == '.' {
		l.r.next()
		fracStart := l.r.offset()
		for {
			c, ok := l.r.peek()
			if !ok || !has(c, classDecimal) {
				break
			}
			l.r.next()
		}
		if l.r.offset() == fracStart {
			return token.Token{}, reporter.Errorf(pos, "expected digit after '.' in real literal")
		}
		text := string(l.r.data[start:l.r.offset()])
		return token.Token{Kind: token.REAL, Text: text, Pos: pos}, nil
	}

	text := string(l.r.data[start:l.r.offset()])
	return token.Token{Kind: token.NUMERAL, Text: text, Pos: pos}, nil
}

func (l *Lexer) lexSymbol(pos token.Pos) (token.Token, error) {
	start := l.r.offset() - 1
	for {
		b, ok := l.r.peek()
		if !ok || !has(b, classSimpleSymbolCont) {
			break
		}
		l.r.next()
	}
	text := string(l.r.data[start:l.r.offset()])
	return l.resolveSymbol(text, pos), nil
}

// resolveSymbol looks the assembled text up in the shared symbol table; a
// prior entry's tag (reserved word, theory operator, command, logic name,
// or previously-seen user symbol) is returned as-is. Otherwise a fresh
// SYMBOL entry is created at scope 0.
func (l *Lexer) resolveSymbol(text string, pos token.Pos) token.Token {
	if e := l.tbl.Find(text); e != nil {
		return token.Token{Kind: e.Tag, Text: text, Pos: pos}
	}
	e := l.tbl.NewEntry(token.SYMBOL, text, 0, pos)
	l.tbl.Insert(e)
	return token.Token{Kind: token.SYMBOL, Text: text, Pos: pos}
}

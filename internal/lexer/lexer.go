package lexer

import (
	"fmt"
	"unicode/utf8"

	"loxlang/internal/diag"
	"loxlang/internal/source"
)

// Lex scans the whole source. The result always ends with a TokenEOF, even
// when errors were recorded; bad input is reported to diags and skipped.
func Lex(src *source.Source, diags *diag.Bag) []Token {
	lx := &lexer{src: src, input: src.Text, diags: diags}
	for {
		lx.skipSpaceAndComments()
		lx.start = lx.pos
		if lx.pos >= len(lx.input) {
			lx.emit(TokenEOF)
			break
		}
		ch := lx.peek()
		switch {
		case isIdentStart(ch):
			lx.lexIdentOrKeyword()
		case isDigit(ch):
			lx.lexNumber()
		case ch == '"':
			lx.lexString()
		default:
			lx.lexPunct()
		}
	}
	return lx.tokens
}

type lexer struct {
	src    *source.Source
	input  string
	start  int
	pos    int
	tokens []Token
	diags  *diag.Bag
}

func (lx *lexer) peek() byte { return lx.input[lx.pos] }

// peekAt returns the byte n positions ahead, or 0 past the end.
func (lx *lexer) peekAt(n int) byte {
	if lx.pos+n >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos+n]
}

func (lx *lexer) current() source.Range {
	return source.Range{Source: lx.src, Start: lx.start, End: lx.pos}
}

func (lx *lexer) emit(k Kind) {
	lx.tokens = append(lx.tokens, Token{Kind: k, Range: lx.current()})
}

func (lx *lexer) errorf(format string, args ...any) {
	lx.diags.Errorf(lx.current(), format, args...)
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]
		if ch == ' ' || ch == '\t' || ch == '\v' || ch == '\n' || ch == '\r' {
			lx.pos++
			continue
		}
		// line comment
		if ch == '/' && lx.peekAt(1) == '/' {
			lx.pos += 2
			for lx.pos < len(lx.input) && lx.input[lx.pos] != '\n' {
				lx.pos++
			}
			continue
		}
		return
	}
}

func (lx *lexer) lexIdentOrKeyword() {
	lx.pos++
	for lx.pos < len(lx.input) && isIdentContinue(lx.input[lx.pos]) {
		lx.pos++
	}
	if k, ok := keywords[lx.input[lx.start:lx.pos]]; ok {
		lx.emit(k)
		return
	}
	lx.emit(TokenIdent)
}

// lexNumber accepts digits, optionally followed by '.' and at least one digit.
// A trailing '.' is left for the next token.
func (lx *lexer) lexNumber() {
	for lx.pos < len(lx.input) && isDigit(lx.input[lx.pos]) {
		lx.pos++
	}
	if lx.pos < len(lx.input) && lx.input[lx.pos] == '.' && isDigit(lx.peekAt(1)) {
		lx.pos++
		for lx.pos < len(lx.input) && isDigit(lx.input[lx.pos]) {
			lx.pos++
		}
	}
	lx.emit(TokenNumber)
}

func (lx *lexer) lexString() {
	lx.pos++ // opening "
	for lx.pos < len(lx.input) {
		if lx.input[lx.pos] == '"' {
			lx.pos++
			lx.emit(TokenString)
			return
		}
		lx.pos++
	}
	lx.errorf("unterminated string")
}

func (lx *lexer) lexPunct() {
	ch := lx.peek()
	lx.pos++
	switch ch {
	case '(':
		lx.emit(TokenLParen)
	case ')':
		lx.emit(TokenRParen)
	case '{':
		lx.emit(TokenLBrace)
	case '}':
		lx.emit(TokenRBrace)
	case ',':
		lx.emit(TokenComma)
	case '.':
		lx.emit(TokenDot)
	case ';':
		lx.emit(TokenSemicolon)
	case '+':
		lx.emit(TokenPlus)
	case '-':
		lx.emit(TokenMinus)
	case '*':
		lx.emit(TokenStar)
	case '/':
		lx.emit(TokenSlash)
	case '!':
		lx.emit(lx.either('=', TokenBangEq, TokenBang))
	case '=':
		lx.emit(lx.either('=', TokenEqEq, TokenEq))
	case '<':
		lx.emit(lx.either('=', TokenLtEq, TokenLt))
	case '>':
		lx.emit(lx.either('=', TokenGtEq, TokenGt))
	default:
		lx.pos--
		lx.badChar()
	}
}

// either consumes next and returns two if it is present, else one.
func (lx *lexer) either(next byte, two, one Kind) Kind {
	if lx.pos < len(lx.input) && lx.input[lx.pos] == next {
		lx.pos++
		return two
	}
	return one
}

// badChar reports the code point at the cursor and skips it.
func (lx *lexer) badChar() {
	r, sz := utf8.DecodeRuneInString(lx.input[lx.pos:])
	lx.pos += sz
	if r == utf8.RuneError && sz == 1 {
		lx.errorf("invalid UTF-8 byte 0x%02X", lx.input[lx.start])
		return
	}
	lx.errorf("unexpected character %s", describeRune(r))
}

func describeRune(r rune) string {
	if r > 0xFFFF {
		return fmt.Sprintf("'%c' (U+%05X)", r, r)
	}
	return fmt.Sprintf("'%c' (U+%04X)", r, r)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

package lexer

import (
	"fmt"
	"strings"

	"loxlang/internal/source"
)

type Kind int

const (
	TokenEOF Kind = iota

	// Punct
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenMinus
	TokenStar
	TokenSlash
	TokenSemicolon
	TokenComma
	TokenDot
	TokenPlus

	// Operators
	TokenBang
	TokenBangEq
	TokenEq
	TokenEqEq
	TokenLt
	TokenLtEq
	TokenGt
	TokenGtEq

	// Keywords. TokenIf must stay first and TokenTrue last: IsKeyword is a
	// range check over this block.
	TokenIf
	TokenElse
	TokenWhile
	TokenFor
	TokenReturn
	TokenPrint
	TokenAssert
	TokenThis
	TokenSuper
	TokenAnd
	TokenOr
	TokenVar
	TokenFun
	TokenClass
	TokenNil
	TokenFalse
	TokenTrue

	// Literals / identifiers
	TokenNumber
	TokenString
	TokenIdent

	kindCount
)

const (
	firstKeyword = TokenIf
	lastKeyword  = TokenTrue
)

var kindNames = [kindCount]string{
	TokenEOF:       "EOF",
	TokenLBrace:    "LEFT_BRACE",
	TokenRBrace:    "RIGHT_BRACE",
	TokenLParen:    "LEFT_PAREN",
	TokenRParen:    "RIGHT_PAREN",
	TokenMinus:     "MINUS",
	TokenStar:      "STAR",
	TokenSlash:     "SLASH",
	TokenSemicolon: "SEMICOLON",
	TokenComma:     "COMMA",
	TokenDot:       "DOT",
	TokenPlus:      "PLUS",
	TokenBang:      "BANG",
	TokenBangEq:    "BANG_EQUAL",
	TokenEq:        "EQUAL",
	TokenEqEq:      "EQUAL_EQUAL",
	TokenLt:        "LESS",
	TokenLtEq:      "LESS_EQUAL",
	TokenGt:        "GREATER",
	TokenGtEq:      "GREATER_EQUAL",
	TokenIf:        "IF",
	TokenElse:      "ELSE",
	TokenWhile:     "WHILE",
	TokenFor:       "FOR",
	TokenReturn:    "RETURN",
	TokenPrint:     "PRINT",
	TokenAssert:    "ASSERT",
	TokenThis:      "THIS",
	TokenSuper:     "SUPER",
	TokenAnd:       "AND",
	TokenOr:        "OR",
	TokenVar:       "VAR",
	TokenFun:       "FUN",
	TokenClass:     "CLASS",
	TokenNil:       "NIL",
	TokenFalse:     "FALSE",
	TokenTrue:      "TRUE",
	TokenNumber:    "NUMBER",
	TokenString:    "STRING",
	TokenIdent:     "IDENTIFIER",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) IsKeyword() bool { return firstKeyword <= k && k <= lastKeyword }

// Keyword returns the source spelling of a keyword kind.
func (k Kind) Keyword() string {
	if !k.IsKeyword() {
		return ""
	}
	return strings.ToLower(kindNames[k])
}

// keywords is derived from the keyword block of Kind, never listed by hand.
var keywords = func() map[string]Kind {
	m := make(map[string]Kind, lastKeyword-firstKeyword+1)
	for k := firstKeyword; k <= lastKeyword; k++ {
		m[k.Keyword()] = k
	}
	return m
}()

// widestKind is the longest kind name, used to align token dumps.
var widestKind = func() int {
	w := 0
	for _, n := range kindNames {
		if len(n) > w {
			w = len(n)
		}
	}
	return w
}()

// Token is a kind plus the range it was scanned from. The lexeme is not
// stored; it is sliced out of the source on demand.
type Token struct {
	Kind  Kind
	Range source.Range
}

func (t Token) Is(k Kind) bool { return t.Kind == k }

func (t Token) Lexeme() string { return t.Range.Text() }

func (t Token) String() string {
	return fmt.Sprintf("%-*s [%4d..<%4d] |%s|", widestKind, t.Kind, t.Range.Start, t.Range.End, t.Lexeme())
}

// Dump renders one token per line.
func Dump(toks []Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

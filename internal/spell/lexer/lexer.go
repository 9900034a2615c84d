// Package lexer turns spell-collection DSL source text into a token stream.
//
// The lexer is byte-oriented: the DSL's significant characters are all ASCII,
// and multi-byte UTF-8 sequences are only legal inside quoted strings and
// comments. Lines are tracked 1-based for error reporting.
package lexer

import (
	"strings"

	"github.com/cory-johannsen/spellbench/internal/spell/token"
)

// Lexer scans source text into tokens.
type Lexer struct {
	src  string
	pos  int
	line int
}

// New creates a Lexer over the given source text.
//
// Postcondition: The returned Lexer is positioned at line 1.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

// Next returns the next token. After EOF it keeps returning EOF.
//
// Postcondition: The returned token's Line is the 1-based line it started on.
func (l *Lexer) Next() token.Token {
	l.skipInsignificant()

	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Line: l.line}
	}

	start := l.line
	ch := l.src[l.pos]

	switch ch {
	case '+':
		l.pos++
		return token.Token{Kind: token.Plus, Lit: "+", Line: start}
	case '-':
		l.pos++
		return token.Token{Kind: token.Minus, Lit: "-", Line: start}
	case '*':
		l.pos++
		return token.Token{Kind: token.Star, Lit: "*", Line: start}
	case '/':
		l.pos++
		return token.Token{Kind: token.Slash, Lit: "/", Line: start}
	case '(':
		l.pos++
		return token.Token{Kind: token.LParen, Lit: "(", Line: start}
	case ')':
		l.pos++
		return token.Token{Kind: token.RParen, Lit: ")", Line: start}
	case ',':
		l.pos++
		return token.Token{Kind: token.Comma, Lit: ",", Line: start}
	case ':':
		l.pos++
		return token.Token{Kind: token.Colon, Lit: ":", Line: start}
	case '.':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '.' {
			l.pos += 2
			return token.Token{Kind: token.DotDot, Lit: "..", Line: start}
		}
		l.pos++
		return token.Token{Kind: token.Illegal, Lit: ".", Line: start}
	case '"':
		return l.scanString()
	}

	if isDigit(ch) {
		return l.scanNumberOrDice()
	}
	if isIdentStart(ch) {
		return l.scanIdentOrDice()
	}

	l.pos++
	return token.Token{Kind: token.Illegal, Lit: string(ch), Line: start}
}

// skipInsignificant consumes whitespace and '#' line comments.
func (l *Lexer) skipInsignificant() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		case '\n':
			l.line++
			l.pos++
		case '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// scanString consumes a double-quoted string. The closing quote must appear on
// the same line; an unterminated string yields an Illegal token.
func (l *Lexer) scanString() token.Token {
	start := l.line
	l.pos++ // opening quote
	begin := l.pos
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '"':
			lit := l.src[begin:l.pos]
			l.pos++
			return token.Token{Kind: token.String, Lit: lit, Line: start}
		case '\n':
			return token.Token{Kind: token.Illegal, Lit: l.src[begin-1 : l.pos], Line: start}
		default:
			l.pos++
		}
	}
	return token.Token{Kind: token.Illegal, Lit: l.src[begin-1:], Line: start}
}

// scanNumberOrDice consumes digits, continuing into a dice literal when the
// digits are immediately followed by 'd' and more digits (e.g. "8d6").
func (l *Lexer) scanNumberOrDice() token.Token {
	start := l.line
	begin := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == 'd' && isDigit(l.src[l.pos+1]) {
		l.pos++ // 'd'
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		// "8d6x" would merge into an identifier tail; treat that as illegal
		// rather than silently splitting tokens.
		if l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.pos++
			}
			return token.Token{Kind: token.Illegal, Lit: l.src[begin:l.pos], Line: start}
		}
		return token.Token{Kind: token.Dice, Lit: l.src[begin:l.pos], Line: start}
	}
	if l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token.Token{Kind: token.Illegal, Lit: l.src[begin:l.pos], Line: start}
	}
	return token.Token{Kind: token.Int, Lit: l.src[begin:l.pos], Line: start}
}

// scanIdentOrDice consumes an identifier, reclassifying the count-less dice
// form "dM" (e.g. "d20") as a dice literal.
func (l *Lexer) scanIdentOrDice() token.Token {
	start := l.line
	begin := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	lit := l.src[begin:l.pos]
	if len(lit) > 1 && lit[0] == 'd' && allDigits(lit[1:]) {
		return token.Token{Kind: token.Dice, Lit: lit, Line: start}
	}
	return token.Token{Kind: token.Ident, Lit: lit, Line: start}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

func allDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

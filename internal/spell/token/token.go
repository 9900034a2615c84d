// Package token defines the lexical tokens of the spell-collection DSL.
package token

import "fmt"

// Kind identifies a token class.
type Kind int

const (
	// EOF marks the end of the source text.
	EOF Kind = iota
	// Illegal is an unrecognized byte sequence; Lit holds the offending text.
	Illegal
	// Ident is a bare identifier: a keyword or a parameter reference.
	Ident
	// Int is a non-negative integer literal.
	Int
	// Dice is a dice literal such as "8d6" or "d20"; Lit holds the raw text.
	Dice
	// String is a double-quoted string literal; Lit holds the unquoted value.
	String

	Plus   // +
	Minus  // -
	Star   // *
	Slash  // /
	LParen // (
	RParen // )
	Comma  // ,
	Colon  // :
	DotDot // ..
)

var kindNames = map[Kind]string{
	EOF:     "end of input",
	Illegal: "illegal token",
	Ident:   "identifier",
	Int:     "integer",
	Dice:    "dice literal",
	String:  "string",
	Plus:    "'+'",
	Minus:   "'-'",
	Star:    "'*'",
	Slash:   "'/'",
	LParen:  "'('",
	RParen:  "')'",
	Comma:   "','",
	Colon:   "':'",
	DotDot:  "'..'",
}

// String returns a human-readable name for the kind, suitable for error messages.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is a single lexical token with its source line.
//
// Invariant: Line is 1-based and refers to the line the token started on.
type Token struct {
	Kind Kind
	Lit  string
	Line int
}

// Is reports whether the token is an Ident with the given literal.
// Keywords are contextual: "spell" and "level" remain usable as parameter names
// inside formulas, so keyword recognition happens at the parse site.
func (t Token) Is(keyword string) bool {
	return t.Kind == Ident && t.Lit == keyword
}

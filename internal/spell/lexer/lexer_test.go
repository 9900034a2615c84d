package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/spellbench/internal/spell/lexer"
	"github.com/cory-johannsen/spellbench/internal/spell/token"
)

// collect drains the lexer up to and including EOF.
func collect(t *testing.T, src string) []token.Token {
	t.Helper()
	lx := lexer.New(src)
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
		require.Less(t, len(toks), 1000, "lexer must terminate")
	}
}

// TestNext_Formula verifies tokenization of a representative formula line.
func TestNext_Formula(t *testing.T) {
	toks := collect(t, `spell Fireball level 3: 8d6 + mod`)

	want := []token.Token{
		{Kind: token.Ident, Lit: "spell", Line: 1},
		{Kind: token.Ident, Lit: "Fireball", Line: 1},
		{Kind: token.Ident, Lit: "level", Line: 1},
		{Kind: token.Int, Lit: "3", Line: 1},
		{Kind: token.Colon, Lit: ":", Line: 1},
		{Kind: token.Dice, Lit: "8d6", Line: 1},
		{Kind: token.Plus, Lit: "+", Line: 1},
		{Kind: token.Ident, Lit: "mod", Line: 1},
		{Kind: token.EOF, Line: 1},
	}
	assert.Equal(t, want, toks)
}

// TestNext_DiceForms verifies both dice literal shapes and the identifier
// fallback for near-misses.
func TestNext_DiceForms(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"2d6", token.Dice},
		{"d20", token.Dice},
		{"0d6", token.Dice},
		{"100d100", token.Dice},
		{"d", token.Ident},       // bare d is a parameter name
		{"dmg", token.Ident},     // not digits after d
		{"2d6x", token.Illegal},  // trailing junk merges, reported whole
		{"12abc", token.Illegal}, // number running into letters
	}
	for _, tc := range cases {
		tok := lexer.New(tc.src).Next()
		assert.Equal(t, tc.kind, tok.Kind, "source %q", tc.src)
	}
}

// TestNext_Lines verifies 1-based line tracking across newlines and comments.
func TestNext_Lines(t *testing.T) {
	src := "# comment only\nspell A: 1d4\n\nspell B: 1d6\n"
	toks := collect(t, src)

	require.Len(t, toks, 9)
	assert.Equal(t, 2, toks[0].Line, "first token follows the comment line")
	assert.Equal(t, 4, toks[4].Line, "second spell after the blank line")
	assert.Equal(t, 5, toks[8].Line, "EOF carries the final line")
}

// TestNext_Strings verifies quoted names and the unterminated-string error.
func TestNext_Strings(t *testing.T) {
	tok := lexer.New(`"Magic Missile"`).Next()
	assert.Equal(t, token.String, tok.Kind)
	assert.Equal(t, "Magic Missile", tok.Lit)

	tok = lexer.New("\"broken\nrest").Next()
	assert.Equal(t, token.Illegal, tok.Kind, "string must close on its own line")
}

// TestNext_Range verifies the '..' token used by param declarations.
func TestNext_Range(t *testing.T) {
	toks := collect(t, "1..9")
	require.Len(t, toks, 4)
	assert.Equal(t, token.Int, toks[0].Kind)
	assert.Equal(t, token.DotDot, toks[1].Kind)
	assert.Equal(t, token.Int, toks[2].Kind)
}

// TestNext_AfterEOF verifies Next keeps returning EOF once exhausted.
func TestNext_AfterEOF(t *testing.T) {
	lx := lexer.New("x")
	lx.Next()
	for i := 0; i < 3; i++ {
		assert.Equal(t, token.EOF, lx.Next().Kind)
	}
}

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/spellbench/internal/spell/ast"
	"github.com/cory-johannsen/spellbench/internal/spell/parser"
)

// TestParse_SingleSpell verifies the basic block form and operator precedence.
func TestParse_SingleSpell(t *testing.T) {
	doc, errs := parser.Parse(`spell Fireball level 3: 8d6 + mod * 2`)
	require.Empty(t, errs)
	require.Len(t, doc.Spells, 1)

	def := doc.Spells[0]
	assert.Equal(t, "Fireball", def.Name)
	assert.Equal(t, 3, def.Level)
	assert.Equal(t, 1, def.Line)
	// * binds tighter than +
	assert.Equal(t, "(8d6 + (mod * 2))", def.Expr.String())
}

// TestParse_QuotedNameAndNoLevel verifies quoted names and level-independent
// spells.
func TestParse_QuotedNameAndNoLevel(t *testing.T) {
	doc, errs := parser.Parse(`spell "Magic Missile": 3 * (1d4 + 1)`)
	require.Empty(t, errs)
	require.Len(t, doc.Spells, 1)
	assert.Equal(t, "Magic Missile", doc.Spells[0].Name)
	assert.Equal(t, 0, doc.Spells[0].Level, "no level clause means level-independent")
}

// TestParse_Aggregations verifies best/worst/sum call forms.
func TestParse_Aggregations(t *testing.T) {
	doc, errs := parser.Parse(`
spell Advantage: best(d20, d20)
spell Disadvantage: worst(d20, d20)
spell Scaling level 1: sum(2 + slot, 1d4 + 1)
`)
	require.Empty(t, errs)
	require.Len(t, doc.Spells, 3)

	adv, ok := doc.Spells[0].Expr.(ast.Pick)
	require.True(t, ok)
	assert.True(t, adv.Best)

	dis, ok := doc.Spells[1].Expr.(ast.Pick)
	require.True(t, ok)
	assert.False(t, dis.Best)

	rep, ok := doc.Spells[2].Expr.(ast.Repeat)
	require.True(t, ok)
	assert.Equal(t, "(2 + slot)", rep.Count.String())
	assert.Equal(t, "(1d4 + 1)", rep.Body.String())
}

// TestParse_UnaryMinusAndDivision verifies the remaining operators.
func TestParse_UnaryMinusAndDivision(t *testing.T) {
	doc, errs := parser.Parse(`spell Drain: 2d8 - level / 2 + -1`)
	require.Empty(t, errs)
	require.Len(t, doc.Spells, 1)
	assert.Equal(t, "((2d8 - (level / 2)) + -1)", doc.Spells[0].Expr.String())
}

// TestParse_ErrorIsolation verifies that a malformed block yields one
// line-tagged error while surrounding blocks still parse — the core contract.
func TestParse_ErrorIsolation(t *testing.T) {
	src := `spell Good: 2d6
spell Broken: 1d6 + + 2
spell AlsoGood: 1d8`

	doc, errs := parser.Parse(src)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Line)
	assert.Contains(t, errs[0].Error(), "line 2")

	require.Len(t, doc.Spells, 2)
	assert.Equal(t, "Good", doc.Spells[0].Name)
	assert.Equal(t, "AlsoGood", doc.Spells[1].Name)
}

// TestParse_ParamDecl verifies the full param declaration form.
func TestParse_ParamDecl(t *testing.T) {
	src := `
param slot "Slot level" group "Casting" slider 1..9 default 3
param mod "Spell mod" group "Abilities" stepper -5..10 step 1 default 4
spell Zap: 1d8 + mod
`
	doc, errs := parser.Parse(src)
	require.Empty(t, errs)
	require.Len(t, doc.Params, 2)

	slot := doc.Params[0]
	assert.Equal(t, "slot", slot.ID)
	assert.Equal(t, "Slot level", slot.Label)
	assert.Equal(t, "Casting", slot.Group)
	assert.Equal(t, ast.Slider, slot.Kind)
	assert.Equal(t, 1, slot.Min)
	assert.Equal(t, 9, slot.Max)
	assert.Equal(t, 1, slot.Step)
	assert.Equal(t, 3, slot.Default)

	mod := doc.Params[1]
	assert.Equal(t, ast.Stepper, mod.Kind)
	assert.Equal(t, -5, mod.Min)
}

// TestParse_ParamDeclValidation verifies range and default checks.
func TestParse_ParamDeclValidation(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"inverted range", `param x "X" group "G" stepper 9..1 default 5`, "minimum 9 exceeds maximum 1"},
		{"default outside", `param x "X" group "G" stepper 1..9 default 12`, "outside range"},
		{"missing label", `param x group "G" stepper 1..9 default 5`, "expected quoted parameter label"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, errs := parser.Parse(tc.src)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Msg, tc.want)
			assert.Empty(t, doc.Params)
		})
	}
}

// TestParse_DiceValidation verifies dice-literal edge cases.
func TestParse_DiceValidation(t *testing.T) {
	doc, errs := parser.Parse(`spell NoDamage: 0d6`)
	require.Empty(t, errs)
	require.Len(t, doc.Spells, 1)
	assert.Equal(t, ast.Dice{Count: 0, Sides: 6}, doc.Spells[0].Expr)

	_, errs = parser.Parse(`spell Bad: 2d0`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, "must be >= 1")
}

// TestParse_UnknownFunction verifies the closed aggregation set.
func TestParse_UnknownFunction(t *testing.T) {
	_, errs := parser.Parse(`spell Bad: explode(1d6, 2)`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Msg, `unknown function "explode"`)
}

// TestParse_KeywordsAsParams verifies that keywords stay usable as parameter
// names inside formulas.
func TestParse_KeywordsAsParams(t *testing.T) {
	doc, errs := parser.Parse(`spell Weird: level + 1d4`)
	require.Empty(t, errs)
	require.Len(t, doc.Spells, 1)
	assert.Equal(t, []string{"level"}, doc.ParamIDs())
}

// TestParse_EmptyAndCommentOnly verifies blank input parses to nothing.
func TestParse_EmptyAndCommentOnly(t *testing.T) {
	for _, src := range []string{"", "   \n\t", "# just a comment\n# another\n"} {
		doc, errs := parser.Parse(src)
		assert.Empty(t, errs, "source %q", src)
		assert.Empty(t, doc.Spells)
	}
}

// TestParse_DuplicateSpellName verifies a redeclared spell name is a block
// error naming both lines. The name is the lookup key for rolls and pins, so
// only the first declaration survives.
func TestParse_DuplicateSpellName(t *testing.T) {
	doc, errs := parser.Parse("spell A: 1d4\nspell B: 1d8\nspell A: 1d6")

	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Line)
	assert.Contains(t, errs[0].Msg, `"A"`)
	assert.Contains(t, errs[0].Msg, "line 1")

	// The duplicate never shadows the original or its neighbors.
	require.Len(t, doc.Spells, 2)
	assert.Equal(t, []string{"A", "B"}, doc.Names())
	assert.Equal(t, "1d4", doc.Spells[0].Expr.String())
}

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/spellbench/internal/spell/ast"
)

// TestString verifies DSL-shaped rendering of each node kind.
func TestString(t *testing.T) {
	e := ast.Binary{
		Op:   ast.Add,
		Left: ast.Dice{Count: 8, Sides: 6},
		Right: ast.Repeat{
			Count: ast.Param{ID: "slot"},
			Body:  ast.Pick{Best: true, Left: ast.Dice{Count: 1, Sides: 8}, Right: ast.Dice{Count: 1, Sides: 8}},
		},
	}
	assert.Equal(t, "(8d6 + sum(slot, best(1d8, 1d8)))", e.String())
	assert.Equal(t, "-3", ast.Neg{Expr: ast.Int{Value: 3}}.String())
	assert.Equal(t, "(1d4 / 2)", ast.Binary{Op: ast.Div, Left: ast.Dice{Count: 1, Sides: 4}, Right: ast.Int{Value: 2}}.String())
}

// TestWalk verifies depth-first left-to-right traversal over every node.
func TestWalk(t *testing.T) {
	e := ast.Binary{
		Op:    ast.Sub,
		Left:  ast.Pick{Left: ast.Param{ID: "a"}, Right: ast.Param{ID: "b"}},
		Right: ast.Repeat{Count: ast.Param{ID: "k"}, Body: ast.Neg{Expr: ast.Param{ID: "x"}}},
	}

	var order []string
	ast.Walk(e, func(n ast.Expr) {
		if p, ok := n.(ast.Param); ok {
			order = append(order, p.ID)
		}
	})
	assert.Equal(t, []string{"a", "b", "k", "x"}, order)
}

// TestParamIDs verifies first-reference ordering across spells.
func TestParamIDs(t *testing.T) {
	doc := ast.Document{
		Spells: []ast.SpellDefinition{
			{Name: "A", Expr: ast.Binary{Op: ast.Add, Left: ast.Param{ID: "mod"}, Right: ast.Param{ID: "slot"}}},
			{Name: "B", Expr: ast.Binary{Op: ast.Add, Left: ast.Param{ID: "slot"}, Right: ast.Param{ID: "fury"}}},
		},
	}
	assert.Equal(t, []string{"mod", "slot", "fury"}, doc.ParamIDs())
}

// TestSpellRef verifies error-message formatting, quoting only where needed.
func TestSpellRef(t *testing.T) {
	assert.Equal(t, "spell Fireball (line 3)", ast.SpellRef("Fireball", 3))
	assert.Equal(t, `spell "Magic Missile" (line 7)`, ast.SpellRef("Magic Missile", 7))
}

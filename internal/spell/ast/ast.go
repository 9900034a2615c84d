// Package ast defines the parsed form of a spell collection: spell
// definitions, parameter declarations, and the formula expression tree.
//
// Nodes are value types owned exclusively by the SpellDefinition that contains
// them. The tree is acyclic and never shared between definitions; a re-parse
// of the source text rebuilds every node.
package ast

import (
	"fmt"
	"strings"
)

// Expr is a formula expression node.
type Expr interface {
	// String renders the node back to DSL syntax, parenthesized enough to
	// round-trip through the parser with identical structure.
	String() string

	isExpr()
}

// Dice is a dice term "NdM": the sum of Count independent uniform draws
// from {1..Sides}.
//
// Invariant: Count >= 0 and Sides >= 1 after a successful parse. Count == 0
// denotes "no dice" and evaluates to a zero point mass.
type Dice struct {
	Count int
	Sides int
}

func (d Dice) String() string { return fmt.Sprintf("%dd%d", d.Count, d.Sides) }
func (Dice) isExpr()          {}

// Int is an integer literal.
type Int struct {
	Value int
}

func (i Int) String() string { return fmt.Sprintf("%d", i.Value) }
func (Int) isExpr()          {}

// Param is a reference to a named numeric parameter.
type Param struct {
	ID string
}

func (p Param) String() string { return p.ID }
func (Param) isExpr()          {}

// BinaryOp identifies an arithmetic operator.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	// Div is flooring integer division (round toward negative infinity).
	Div
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	}
	return "?"
}

// Binary applies an arithmetic operator to two independent sub-expressions.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (b Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}
func (Binary) isExpr() {}

// Neg is unary minus.
type Neg struct {
	Expr Expr
}

func (n Neg) String() string { return fmt.Sprintf("-%s", n.Expr) }
func (Neg) isExpr()          {}

// Pick takes the higher (Best) or lower (worst) of two independent
// sub-results, the advantage/disadvantage mechanic.
type Pick struct {
	// Best selects the maximum of the two sub-results; otherwise the minimum.
	Best  bool
	Left  Expr
	Right Expr
}

func (p Pick) String() string {
	name := "worst"
	if p.Best {
		name = "best"
	}
	return fmt.Sprintf("%s(%s, %s)", name, p.Left, p.Right)
}
func (Pick) isExpr() {}

// Repeat sums Count independent evaluations of Body. Count may be any
// expression but must evaluate to a single non-negative integer.
type Repeat struct {
	Count Expr
	Body  Expr
}

func (r Repeat) String() string { return fmt.Sprintf("sum(%s, %s)", r.Count, r.Body) }
func (Repeat) isExpr()          {}

// Walk calls fn for expr and every node beneath it, depth-first, left to
// right. It is purely observational; fn must not mutate the tree.
func Walk(expr Expr, fn func(Expr)) {
	fn(expr)
	switch e := expr.(type) {
	case Binary:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case Neg:
		Walk(e.Expr, fn)
	case Pick:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case Repeat:
		Walk(e.Count, fn)
		Walk(e.Body, fn)
	}
}

// ParamKind is the input-widget shape a parameter declaration asks for.
type ParamKind string

const (
	// Stepper is a bounded numeric stepper input.
	Stepper ParamKind = "stepper"
	// Slider is a bounded slider input.
	Slider ParamKind = "slider"
)

// ParamDecl is a `param` declaration from the source text.
//
// Invariant: Min <= Default <= Max and Step >= 1 after a successful parse.
type ParamDecl struct {
	ID      string
	Label   string
	Group   string
	Kind    ParamKind
	Min     int
	Max     int
	Step    int
	Default int
	Line    int
}

// SpellDefinition is one named spell with its damage formula.
//
// Invariant: Name is non-empty; Level >= 0 (0 = level-independent);
// Expr is non-nil; Line is 1-based.
type SpellDefinition struct {
	Name  string
	Level int
	Expr  Expr
	Line  int
}

// Document is a fully parsed spell collection.
type Document struct {
	// Params holds param declarations in source order.
	Params []ParamDecl
	// Spells holds spell definitions in source order.
	Spells []SpellDefinition
}

// Names returns the spell names in declaration order.
func (d Document) Names() []string {
	names := make([]string, len(d.Spells))
	for i, s := range d.Spells {
		names[i] = s.Name
	}
	return names
}

// ParamIDs returns the distinct parameter ids referenced anywhere in the
// document's formulas, in first-reference order.
func (d Document) ParamIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range d.Spells {
		Walk(s.Expr, func(e Expr) {
			if p, ok := e.(Param); ok && !seen[p.ID] {
				seen[p.ID] = true
				ids = append(ids, p.ID)
			}
		})
	}
	return ids
}

// quoteName renders a spell name for error messages, quoting names that
// contain spaces the way the DSL requires.
func quoteName(name string) string {
	if strings.ContainsRune(name, ' ') {
		return `"` + name + `"`
	}
	return name
}

// SpellRef formats "spell <name> (line N)" for error messages.
func SpellRef(name string, line int) string {
	return fmt.Sprintf("spell %s (line %d)", quoteName(name), line)
}

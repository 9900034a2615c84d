// Package parser parses spell-collection DSL source into an ast.Document.
//
// The parser is error-isolating: a malformed spell block contributes one
// line-tagged error and parsing resumes at the next top-level `spell` or
// `param` keyword, so one bad formula never suppresses the rest of the
// document.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/spellbench/internal/spell/ast"
	"github.com/cory-johannsen/spellbench/internal/spell/lexer"
	"github.com/cory-johannsen/spellbench/internal/spell/token"
)

// Error is a syntax error tagged with its 1-based source line.
type Error struct {
	Line int
	Msg  string
}

// Error renders "line N: msg".
func (e Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Operator precedence levels, lowest first.
const (
	lowest = iota
	sum    // + -
	product
	prefix // -x
)

var precedences = map[token.Kind]int{
	token.Plus:  sum,
	token.Minus: sum,
	token.Star:  product,
	token.Slash: product,
}

// Parser consumes the token stream with one token of lookahead.
type Parser struct {
	lx   *lexer.Lexer
	cur  token.Token
	peek token.Token
	errs []Error
}

// Parse parses the full source text.
//
// Postcondition: Returns the document holding every block that parsed cleanly
// plus one Error per malformed block, in source order. Both may be non-empty
// at once; both empty only for blank input.
func Parse(src string) (ast.Document, []Error) {
	p := &Parser{lx: lexer.New(src)}
	p.next()
	p.next()

	var doc ast.Document
	// Spell names are the collection's lookup key, so a redeclaration is a
	// block error: the first declaration stays, the duplicate is reported.
	firstLine := make(map[string]int)
	for p.cur.Kind != token.EOF {
		switch {
		case p.cur.Is("spell"):
			if def, ok := p.parseSpell(); ok {
				if line, dup := firstLine[def.Name]; dup {
					p.errs = append(p.errs, Error{Line: def.Line,
						Msg: fmt.Sprintf("spell %q already declared at line %d", def.Name, line)})
				} else {
					firstLine[def.Name] = def.Line
					doc.Spells = append(doc.Spells, def)
				}
			} else {
				p.recover()
			}
		case p.cur.Is("param"):
			if decl, ok := p.parseParamDecl(); ok {
				doc.Params = append(doc.Params, decl)
			} else {
				p.recover()
			}
		default:
			p.errorf("expected 'spell' or 'param', found %s", p.describe(p.cur))
			p.recover()
		}
	}
	return doc, p.errs
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lx.Next()
}

// recover advances to the next top-level `spell` or `param` keyword so that
// the block after a syntax error still gets parsed.
func (p *Parser) recover() {
	for p.cur.Kind != token.EOF && !p.cur.Is("spell") && !p.cur.Is("param") {
		p.next()
	}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, Error{Line: p.cur.Line, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of input"
	case token.Illegal:
		return fmt.Sprintf("malformed token %q", t.Lit)
	default:
		return fmt.Sprintf("%q", t.Lit)
	}
}

// parseSpell parses `spell <name> [level <n>]: <expr>` with cur on "spell".
func (p *Parser) parseSpell() (ast.SpellDefinition, bool) {
	def := ast.SpellDefinition{Line: p.cur.Line}
	p.next() // spell

	switch p.cur.Kind {
	case token.Ident:
		def.Name = p.cur.Lit
	case token.String:
		def.Name = p.cur.Lit
	default:
		p.errorf("expected spell name, found %s", p.describe(p.cur))
		return def, false
	}
	if def.Name == "" {
		p.errorf("spell name must not be empty")
		return def, false
	}
	p.next()

	if p.cur.Is("level") {
		p.next()
		lvl, ok := p.parseIntLit("spell level")
		if !ok {
			return def, false
		}
		if lvl < 1 {
			p.errorf("spell level must be >= 1, got %d", lvl)
			return def, false
		}
		def.Level = lvl
	}

	if p.cur.Kind != token.Colon {
		p.errorf("expected ':' before spell formula, found %s", p.describe(p.cur))
		return def, false
	}
	p.next()

	expr, ok := p.parseExpr(lowest)
	if !ok {
		return def, false
	}
	def.Expr = expr
	return def, true
}

// parseParamDecl parses a full `param` declaration with cur on "param":
//
//	param slot "Slot level" group "Casting" slider 1..9 default 3
func (p *Parser) parseParamDecl() (ast.ParamDecl, bool) {
	decl := ast.ParamDecl{Line: p.cur.Line, Step: 1}
	p.next() // param

	if p.cur.Kind != token.Ident {
		p.errorf("expected parameter id, found %s", p.describe(p.cur))
		return decl, false
	}
	decl.ID = p.cur.Lit
	p.next()

	if p.cur.Kind != token.String {
		p.errorf("expected quoted parameter label, found %s", p.describe(p.cur))
		return decl, false
	}
	decl.Label = p.cur.Lit
	p.next()

	if !p.cur.Is("group") {
		p.errorf("expected 'group', found %s", p.describe(p.cur))
		return decl, false
	}
	p.next()
	if p.cur.Kind != token.String {
		p.errorf("expected quoted group name, found %s", p.describe(p.cur))
		return decl, false
	}
	decl.Group = p.cur.Lit
	p.next()

	switch {
	case p.cur.Is("stepper"):
		decl.Kind = ast.Stepper
	case p.cur.Is("slider"):
		decl.Kind = ast.Slider
	default:
		p.errorf("expected 'stepper' or 'slider', found %s", p.describe(p.cur))
		return decl, false
	}
	p.next()

	min, ok := p.parseSignedInt("parameter minimum")
	if !ok {
		return decl, false
	}
	decl.Min = min

	if p.cur.Kind != token.DotDot {
		p.errorf("expected '..' in parameter range, found %s", p.describe(p.cur))
		return decl, false
	}
	p.next()

	max, ok := p.parseSignedInt("parameter maximum")
	if !ok {
		return decl, false
	}
	decl.Max = max

	if p.cur.Is("step") {
		p.next()
		step, ok := p.parseIntLit("parameter step")
		if !ok {
			return decl, false
		}
		decl.Step = step
	}

	if !p.cur.Is("default") {
		p.errorf("expected 'default', found %s", p.describe(p.cur))
		return decl, false
	}
	p.next()
	def, ok := p.parseSignedInt("parameter default")
	if !ok {
		return decl, false
	}
	decl.Default = def

	if decl.Min > decl.Max {
		p.errorf("parameter %s: minimum %d exceeds maximum %d", decl.ID, decl.Min, decl.Max)
		return decl, false
	}
	if decl.Default < decl.Min || decl.Default > decl.Max {
		p.errorf("parameter %s: default %d outside range %d..%d", decl.ID, decl.Default, decl.Min, decl.Max)
		return decl, false
	}
	if decl.Step < 1 {
		p.errorf("parameter %s: step must be >= 1, got %d", decl.ID, decl.Step)
		return decl, false
	}
	return decl, true
}

// parseIntLit consumes a non-negative integer literal.
func (p *Parser) parseIntLit(what string) (int, bool) {
	if p.cur.Kind != token.Int {
		p.errorf("expected %s, found %s", what, p.describe(p.cur))
		return 0, false
	}
	n, err := strconv.Atoi(p.cur.Lit)
	if err != nil {
		p.errorf("%s %q out of range", what, p.cur.Lit)
		return 0, false
	}
	p.next()
	return n, true
}

// parseSignedInt consumes an integer literal with an optional leading minus.
func (p *Parser) parseSignedInt(what string) (int, bool) {
	neg := false
	if p.cur.Kind == token.Minus {
		neg = true
		p.next()
	}
	n, ok := p.parseIntLit(what)
	if !ok {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// parseExpr is the Pratt expression loop: parse a prefix operand, then fold
// infix operators of higher precedence than min.
func (p *Parser) parseExpr(min int) (ast.Expr, bool) {
	left, ok := p.parsePrefix()
	if !ok {
		return nil, false
	}
	for {
		prec, isOp := precedences[p.cur.Kind]
		if !isOp || prec <= min {
			return left, true
		}
		op := p.cur
		p.next()
		right, ok := p.parseExpr(prec)
		if !ok {
			return nil, false
		}
		left = ast.Binary{Op: binaryOp(op.Kind), Left: left, Right: right}
	}
}

func binaryOp(k token.Kind) ast.BinaryOp {
	switch k {
	case token.Plus:
		return ast.Add
	case token.Minus:
		return ast.Sub
	case token.Star:
		return ast.Mul
	default:
		return ast.Div
	}
}

func (p *Parser) parsePrefix() (ast.Expr, bool) {
	switch p.cur.Kind {
	case token.Int:
		n, ok := p.parseIntLit("integer")
		if !ok {
			return nil, false
		}
		return ast.Int{Value: n}, true

	case token.Dice:
		return p.parseDice()

	case token.Minus:
		p.next()
		inner, ok := p.parseExpr(prefix)
		if !ok {
			return nil, false
		}
		return ast.Neg{Expr: inner}, true

	case token.LParen:
		p.next()
		inner, ok := p.parseExpr(lowest)
		if !ok {
			return nil, false
		}
		if p.cur.Kind != token.RParen {
			p.errorf("expected ')', found %s", p.describe(p.cur))
			return nil, false
		}
		p.next()
		return inner, true

	case token.Ident:
		return p.parseIdentExpr()

	default:
		p.errorf("expected formula operand, found %s", p.describe(p.cur))
		return nil, false
	}
}

// parseIdentExpr handles the aggregation call forms best(a, b), worst(a, b)
// and sum(k, e); any other identifier is a parameter reference.
func (p *Parser) parseIdentExpr() (ast.Expr, bool) {
	name := p.cur.Lit
	if p.peek.Kind != token.LParen {
		p.next()
		return ast.Param{ID: name}, true
	}

	switch name {
	case "best", "worst", "sum":
	default:
		p.errorf("unknown function %q (want best, worst, or sum)", name)
		return nil, false
	}
	p.next() // name
	p.next() // (

	first, ok := p.parseExpr(lowest)
	if !ok {
		return nil, false
	}
	if p.cur.Kind != token.Comma {
		p.errorf("expected ',' in %s(...), found %s", name, p.describe(p.cur))
		return nil, false
	}
	p.next()
	second, ok := p.parseExpr(lowest)
	if !ok {
		return nil, false
	}
	if p.cur.Kind != token.RParen {
		p.errorf("expected ')' closing %s(...), found %s", name, p.describe(p.cur))
		return nil, false
	}
	p.next()

	switch name {
	case "best":
		return ast.Pick{Best: true, Left: first, Right: second}, true
	case "worst":
		return ast.Pick{Best: false, Left: first, Right: second}, true
	default:
		return ast.Repeat{Count: first, Body: second}, true
	}
}

// parseDice splits a dice literal token into its count and sides.
func (p *Parser) parseDice() (ast.Expr, bool) {
	lit := p.cur.Lit
	dIdx := strings.IndexByte(lit, 'd')

	count := 1
	if dIdx > 0 {
		var err error
		count, err = strconv.Atoi(lit[:dIdx])
		if err != nil {
			p.errorf("die count in %q out of range", lit)
			return nil, false
		}
	}
	sides, err := strconv.Atoi(lit[dIdx+1:])
	if err != nil {
		p.errorf("die size in %q out of range", lit)
		return nil, false
	}
	if sides < 1 {
		p.errorf("die size in %q must be >= 1", lit)
		return nil, false
	}
	p.next()
	return ast.Dice{Count: count, Sides: sides}, true
}

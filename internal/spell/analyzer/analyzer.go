// Package analyzer is the engine's public entry point: it turns spell
// collection source text and a parameter assignment into a complete,
// deterministic analysis.
//
// Analyze is pure with respect to its inputs. It holds no state between
// calls, performs no I/O, and never lets a per-spell failure escape as an
// error: every failure degrades to one message in the result's error list
// while the rest of the collection is analyzed normally.
package analyzer

import (
	"fmt"

	"github.com/cory-johannsen/spellbench/internal/spell/ast"
	"github.com/cory-johannsen/spellbench/internal/spell/dist"
	"github.com/cory-johannsen/spellbench/internal/spell/eval"
	"github.com/cory-johannsen/spellbench/internal/spell/params"
	"github.com/cory-johannsen/spellbench/internal/spell/parser"
)

// slotParam is the parameter id that carries the "cast at level" input.
const slotParam = "slot"

// SpellAnalysis is the analysis of one spell under the current parameters.
type SpellAnalysis struct {
	Name string
	// Level is the spell's declared minimum casting level, 0 when the spell
	// is level-independent.
	Level int
	// CastAt is the level the spell was evaluated at. For a leveled spell it
	// is the slot parameter's value when the collection references one,
	// otherwise the declared level itself.
	CastAt int
	// BelowMinimum is set when CastAt < Level. The spell is mechanically
	// invalid at that level but is analyzed anyway so the UI can show it
	// with a warning.
	BelowMinimum bool
	Mean         float64
	StdDev       float64
	// Max is the largest outcome with positive weight, the bound displays
	// scale against. It is monotone non-decreasing as weight shifts toward
	// larger outcomes.
	Max  int
	Dist dist.Dist
	// Expr is the source AST, retained read-only for redisplay.
	Expr ast.Expr
	Line int
}

// Analysis is the full result of one analysis pass.
//
// Every field is rebuilt from scratch per pass; nothing aliases the caller's
// inputs.
type Analysis struct {
	// Spells holds one entry per successfully analyzed spell, in declaration
	// order. Spells whose evaluation failed are absent (see Errors).
	Spells []SpellAnalysis
	// Groups holds the discovered parameter groups in stable display order.
	Groups []params.Group
	// Errors holds one human-readable message per failed spell block or
	// evaluation, each naming the spell and source line where known.
	Errors []string
}

// Analyze parses source and evaluates every spell under assign, substituting
// each discovered parameter's default for ids missing from the assignment.
//
// Postcondition: Identical (source, assign) inputs produce identical results.
// The assignment map is copied at entry and never read again after Analyze
// returns, so callers may mutate it freely.
func Analyze(source string, assign map[string]int) Analysis {
	return AnalyzeWithLimits(source, assign, eval.DefaultLimits)
}

// AnalyzeWithLimits is Analyze with explicit evaluation resource limits.
func AnalyzeWithLimits(source string, assign map[string]int, lim eval.Limits) Analysis {
	var out Analysis

	doc, parseErrs := parser.Parse(source)
	for _, perr := range parseErrs {
		out.Errors = append(out.Errors, perr.Error())
	}

	out.Groups = params.Discover(doc)

	// Effective assignment: caller values where present and known, else
	// descriptor defaults. Copied defensively; the caller's map may change
	// under an in-flight pass on the host side.
	effective := params.Defaults(out.Groups)
	for id := range effective {
		if v, ok := assign[id]; ok {
			effective[id] = v
		}
	}

	slot, hasSlot := effective[slotParam]

	for _, def := range doc.Spells {
		a, err := analyzeSpell(def, effective, slot, hasSlot, lim)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", ast.SpellRef(def.Name, def.Line), err))
			continue
		}
		out.Spells = append(out.Spells, a)
	}
	return out
}

func analyzeSpell(def ast.SpellDefinition, assign map[string]int, slot int, hasSlot bool, lim eval.Limits) (sa SpellAnalysis, err error) {
	// A panic below would take down the whole analysis pass and, on the host
	// side, the worker serving it; surface it as this spell's error instead.
	defer func() {
		if r := recover(); r != nil {
			sa, err = SpellAnalysis{}, fmt.Errorf("internal error evaluating formula: %v", r)
		}
	}()

	d, err := eval.Evaluate(def.Expr, assign, lim)
	if err != nil {
		return SpellAnalysis{}, err
	}

	castAt := def.Level
	if def.Level > 0 && hasSlot {
		castAt = slot
	}

	return SpellAnalysis{
		Name:         def.Name,
		Level:        def.Level,
		CastAt:       castAt,
		BelowMinimum: def.Level > 0 && castAt < def.Level,
		Mean:         d.Mean(),
		StdDev:       d.StdDev(),
		Max:          d.Max(),
		Dist:         d,
		Expr:         def.Expr,
		Line:         def.Line,
	}, nil
}

// Find returns the analysis entry for the named spell, if present.
func (a Analysis) Find(name string) (SpellAnalysis, bool) {
	for _, s := range a.Spells {
		if s.Name == name {
			return s, true
		}
	}
	return SpellAnalysis{}, false
}

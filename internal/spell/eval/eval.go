// Package eval evaluates a parsed spell formula against a concrete parameter
// assignment, producing an exact distribution or a descriptive error.
package eval

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cory-johannsen/spellbench/internal/spell/ast"
	"github.com/cory-johannsen/spellbench/internal/spell/dist"
)

// ErrUnresolvedParameter is returned when a formula references a parameter id
// with no value in the assignment. The analyzer pre-fills defaults, so hitting
// this means the caller skipped parameter discovery.
var ErrUnresolvedParameter = errors.New("unresolved parameter")

// ErrDivisionByZero is returned when a divisor distribution has positive
// weight at zero.
var ErrDivisionByZero = errors.New("division by zero")

// ErrRepeatCount is returned when a sum(k, ...) count does not evaluate to a
// single non-negative integer.
var ErrRepeatCount = errors.New("invalid repeat count")

// ErrTooLarge is returned when an expression would exceed the configured
// resource limits. It keeps pathological formulas (e.g. enormous dice counts)
// from stalling an interactive analysis pass.
var ErrTooLarge = errors.New("expression too large")

// Limits bounds the work a single evaluation may do.
type Limits struct {
	// MaxDice caps the dice count of a single term and the repeat count of
	// a single sum(...).
	MaxDice int
	// MaxSupport caps the support width of any intermediate distribution.
	MaxSupport int
}

// DefaultLimits are generous enough for every published spell while keeping
// worst-case formulas interactive.
var DefaultLimits = Limits{MaxDice: 500, MaxSupport: 50000}

// Evaluate computes the exact distribution of expr under the given
// assignment.
//
// Precondition: expr must be non-nil and come from the parser; every
// parameter id referenced by expr should have a value in assign.
// Postcondition: Returns a valid distribution, or an error wrapping one of
// the sentinel errors above. The assignment is never mutated.
func Evaluate(expr ast.Expr, assign map[string]int, lim Limits) (dist.Dist, error) {
	if lim.MaxDice <= 0 {
		lim.MaxDice = DefaultLimits.MaxDice
	}
	if lim.MaxSupport <= 0 {
		lim.MaxSupport = DefaultLimits.MaxSupport
	}
	e := evaluator{assign: assign, lim: lim}
	return e.eval(expr)
}

type evaluator struct {
	assign map[string]int
	lim    Limits
}

func (e evaluator) eval(expr ast.Expr) (dist.Dist, error) {
	switch n := expr.(type) {
	case ast.Int:
		return dist.Point(n.Value), nil

	case ast.Param:
		v, ok := e.assign[n.ID]
		if !ok {
			return dist.Dist{}, fmt.Errorf("%w: %q", ErrUnresolvedParameter, n.ID)
		}
		return dist.Point(v), nil

	case ast.Dice:
		if n.Count > e.lim.MaxDice {
			return dist.Dist{}, fmt.Errorf("%w: %dd%d exceeds the %d-die limit",
				ErrTooLarge, n.Count, n.Sides, e.lim.MaxDice)
		}
		// A single die already spans Sides outcomes; checking it first keeps
		// the width product below from overflowing int on huge die sizes.
		if n.Sides > e.lim.MaxSupport {
			return dist.Dist{}, fmt.Errorf("%w: a d%d spans %d outcomes (limit %d)",
				ErrTooLarge, n.Sides, n.Sides, e.lim.MaxSupport)
		}
		if width := n.Count*(n.Sides-1) + 1; width > e.lim.MaxSupport {
			return dist.Dist{}, fmt.Errorf("%w: %dd%d spans %d outcomes (limit %d)",
				ErrTooLarge, n.Count, n.Sides, width, e.lim.MaxSupport)
		}
		return dist.Dice(n.Count, n.Sides), nil

	case ast.Neg:
		inner, err := e.eval(n.Expr)
		if err != nil {
			return dist.Dist{}, err
		}
		return inner.Neg(), nil

	case ast.Binary:
		return e.evalBinary(n)

	case ast.Pick:
		left, err := e.eval(n.Left)
		if err != nil {
			return dist.Dist{}, err
		}
		right, err := e.eval(n.Right)
		if err != nil {
			return dist.Dist{}, err
		}
		var out dist.Dist
		if n.Best {
			out = left.Best(right)
		} else {
			out = left.Worst(right)
		}
		return e.checked(out)

	case ast.Repeat:
		return e.evalRepeat(n)

	default:
		return dist.Dist{}, fmt.Errorf("unsupported expression node %T", expr)
	}
}

func (e evaluator) evalBinary(n ast.Binary) (dist.Dist, error) {
	left, err := e.eval(n.Left)
	if err != nil {
		return dist.Dist{}, err
	}
	right, err := e.eval(n.Right)
	if err != nil {
		return dist.Dist{}, err
	}

	switch n.Op {
	case ast.Add:
		if left.Size()+right.Size()-1 > e.lim.MaxSupport {
			return dist.Dist{}, fmt.Errorf("%w: sum spans %d outcomes (limit %d)",
				ErrTooLarge, left.Size()+right.Size()-1, e.lim.MaxSupport)
		}
		return left.Add(right), nil

	case ast.Sub:
		if left.Size()+right.Size()-1 > e.lim.MaxSupport {
			return dist.Dist{}, fmt.Errorf("%w: difference spans %d outcomes (limit %d)",
				ErrTooLarge, left.Size()+right.Size()-1, e.lim.MaxSupport)
		}
		return left.Sub(right), nil

	case ast.Mul:
		// The extreme products occur at the support endpoints, so the result
		// range can be bounded without building it.
		if productTooWide(left, right, e.lim.MaxSupport) {
			return dist.Dist{}, fmt.Errorf("%w: product range exceeds %d outcomes",
				ErrTooLarge, e.lim.MaxSupport)
		}
		return left.Mul(right), nil

	case ast.Div:
		if right.Weight(0).Sign() > 0 {
			return dist.Dist{}, fmt.Errorf("%w: divisor can roll 0", ErrDivisionByZero)
		}
		return e.checked(left.FloorDiv(right))

	default:
		return dist.Dist{}, fmt.Errorf("unsupported operator %v", n.Op)
	}
}

func (e evaluator) evalRepeat(n ast.Repeat) (dist.Dist, error) {
	count, err := e.eval(n.Count)
	if err != nil {
		return dist.Dist{}, err
	}
	if count.Size() != 1 {
		return dist.Dist{}, fmt.Errorf("%w: count is random (rolls %d..%d); it must be a fixed number",
			ErrRepeatCount, count.Min(), count.Max())
	}
	k := count.Min()
	if k < 0 {
		return dist.Dist{}, fmt.Errorf("%w: count is %d; it must be >= 0", ErrRepeatCount, k)
	}
	if k == 0 {
		// Zero repeats deal no damage no matter what the body would roll.
		return dist.Point(0), nil
	}
	if k > e.lim.MaxDice {
		return dist.Dist{}, fmt.Errorf("%w: repeat count %d exceeds the %d limit",
			ErrTooLarge, k, e.lim.MaxDice)
	}

	body, err := e.eval(n.Body)
	if err != nil {
		return dist.Dist{}, err
	}
	if width := (body.Size()-1)*k + 1; width > e.lim.MaxSupport {
		return dist.Dist{}, fmt.Errorf("%w: sum of %d repeats spans %d outcomes (limit %d)",
			ErrTooLarge, k, width, e.lim.MaxSupport)
	}
	return body.Repeat(k), nil
}

// checked enforces the support limit on an already-built distribution. Used
// for combine-style operations whose result width is data-dependent.
func (e evaluator) checked(d dist.Dist) (dist.Dist, error) {
	if d.Size() > e.lim.MaxSupport {
		return dist.Dist{}, fmt.Errorf("%w: result spans %d outcomes (limit %d)",
			ErrTooLarge, d.Size(), e.lim.MaxSupport)
	}
	return d, nil
}

// productTooWide over-approximates the support width of a product from the
// four endpoint products and reports whether it exceeds max. The endpoints
// are multiplied in big.Int: chained products of large literals overflow int
// long before their distributions are built.
func productTooWide(a, b dist.Dist, max int) bool {
	var lo, hi *big.Int
	p := new(big.Int)
	for _, x := range []int{a.Min(), a.Max()} {
		for _, y := range []int{b.Min(), b.Max()} {
			p.SetInt64(int64(x))
			p.Mul(p, big.NewInt(int64(y)))
			if lo == nil || p.Cmp(lo) < 0 {
				lo = new(big.Int).Set(p)
			}
			if hi == nil || p.Cmp(hi) > 0 {
				hi = new(big.Int).Set(p)
			}
		}
	}
	width := new(big.Int).Sub(hi, lo)
	width.Add(width, big.NewInt(1))
	return width.Cmp(big.NewInt(int64(max))) > 0
}

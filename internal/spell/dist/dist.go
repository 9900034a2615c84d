// Package dist implements exact discrete probability distributions over
// integers, the numeric core of the spell analyzer.
//
// A Dist maps each integer outcome to an exact non-negative integer weight
// (math/big, so repeated convolutions never overflow or drift). The weight of
// an outcome divided by the total weight is its probability. All operations
// return fresh distributions; a Dist is immutable after construction.
package dist

import (
	"fmt"
	"math"
	"math/big"
)

// Dist is a finite discrete distribution over integers.
//
// Invariant: total > 0; every stored weight is >= 0; the first and last
// entries of weights are > 0 (the support is trimmed).
type Dist struct {
	min     int        // outcome of weights[0]
	weights []*big.Int // weight of outcome min+i; dense, may contain zeros inside
	total   *big.Int
}

// Point returns the distribution of a constant: a single-point mass at v.
//
// Postcondition: Total() == 1, Min() == Max() == v.
func Point(v int) Dist {
	return Dist{min: v, weights: []*big.Int{big.NewInt(1)}, total: big.NewInt(1)}
}

// Die returns the uniform distribution over {1..sides}.
//
// Precondition: sides >= 1.
func Die(sides int) Dist {
	if sides < 1 {
		panic(fmt.Sprintf("dist: Die called with sides %d < 1", sides))
	}
	weights := make([]*big.Int, sides)
	for i := range weights {
		weights[i] = big.NewInt(1)
	}
	return Dist{min: 1, weights: weights, total: big.NewInt(int64(sides))}
}

// Dice returns the distribution of the sum of count independent dice with the
// given number of sides, computed by repeated self-convolution of the single
// die. The cost is polynomial in count*sides, never sides^count.
//
// Precondition: count >= 0, sides >= 1.
// Postcondition: support is exactly {count .. count*sides} and the total
// weight is sides^count.
func Dice(count, sides int) Dist {
	if count < 0 {
		panic(fmt.Sprintf("dist: Dice called with count %d < 0", count))
	}
	d := Point(0)
	die := Die(sides)
	for i := 0; i < count; i++ {
		d = d.Add(die)
	}
	return d
}

// Min returns the smallest outcome with positive weight.
func (d Dist) Min() int { return d.min }

// Max returns the largest outcome with positive weight.
func (d Dist) Max() int { return d.min + len(d.weights) - 1 }

// Size returns the width of the support range, Max()-Min()+1.
func (d Dist) Size() int { return len(d.weights) }

// Total returns the total weight. The caller must not mutate it.
func (d Dist) Total() *big.Int { return d.total }

// Weight returns the weight of the given outcome (zero outside the support).
// The caller must not mutate it.
func (d Dist) Weight(outcome int) *big.Int {
	i := outcome - d.min
	if i < 0 || i >= len(d.weights) {
		return big.NewInt(0)
	}
	return d.weights[i]
}

// Add returns the distribution of the sum of two independent draws, the
// classic convolution.
func (d Dist) Add(o Dist) Dist {
	weights := make([]*big.Int, len(d.weights)+len(o.weights)-1)
	for i := range weights {
		weights[i] = new(big.Int)
	}
	tmp := new(big.Int)
	for i, wa := range d.weights {
		if wa.Sign() == 0 {
			continue
		}
		for j, wb := range o.weights {
			if wb.Sign() == 0 {
				continue
			}
			weights[i+j].Add(weights[i+j], tmp.Mul(wa, wb))
		}
	}
	return Dist{
		min:     d.min + o.min,
		weights: weights,
		total:   new(big.Int).Mul(d.total, o.total),
	}
}

// Combine returns the distribution of op applied to every pair of independent
// outcomes, each pair weighted by the product of its weights. op must be a
// pure function.
func (d Dist) Combine(o Dist, op func(a, b int) int) Dist {
	acc := make(map[int]*big.Int, len(d.weights)+len(o.weights))
	lo, hi := 0, 0
	first := true
	tmp := new(big.Int)
	for i, wa := range d.weights {
		if wa.Sign() == 0 {
			continue
		}
		for j, wb := range o.weights {
			if wb.Sign() == 0 {
				continue
			}
			v := op(d.min+i, o.min+j)
			w, ok := acc[v]
			if !ok {
				w = new(big.Int)
				acc[v] = w
			}
			w.Add(w, tmp.Mul(wa, wb))
			if first || v < lo {
				lo = v
			}
			if first || v > hi {
				hi = v
			}
			first = false
		}
	}
	weights := make([]*big.Int, hi-lo+1)
	for i := range weights {
		if w, ok := acc[lo+i]; ok {
			weights[i] = w
		} else {
			weights[i] = new(big.Int)
		}
	}
	return Dist{
		min:     lo,
		weights: weights,
		total:   new(big.Int).Mul(d.total, o.total),
	}
}

// Sub returns the distribution of the difference of two independent draws.
func (d Dist) Sub(o Dist) Dist {
	return d.Combine(o, func(a, b int) int { return a - b })
}

// Mul returns the distribution of the product of two independent draws.
func (d Dist) Mul(o Dist) Dist {
	return d.Combine(o, func(a, b int) int { return a * b })
}

// FloorDiv returns the distribution of flooring division of two independent
// draws, rounding toward negative infinity (the tabletop round-down rule:
// -7/2 == -4).
//
// Precondition: o must not have positive weight at outcome 0.
func (d Dist) FloorDiv(o Dist) Dist {
	if o.Weight(0).Sign() > 0 {
		panic("dist: FloorDiv precondition violated: divisor has weight at 0")
	}
	return d.Combine(o, floorDiv)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Best returns the distribution of the higher of two independent draws
// (the advantage mechanic).
func (d Dist) Best(o Dist) Dist {
	return d.Combine(o, func(a, b int) int {
		if a > b {
			return a
		}
		return b
	})
}

// Worst returns the distribution of the lower of two independent draws
// (the disadvantage mechanic).
func (d Dist) Worst(o Dist) Dist {
	return d.Combine(o, func(a, b int) int {
		if a < b {
			return a
		}
		return b
	})
}

// Neg returns the distribution of the negated draw.
func (d Dist) Neg() Dist {
	weights := make([]*big.Int, len(d.weights))
	for i, w := range d.weights {
		weights[len(weights)-1-i] = new(big.Int).Set(w)
	}
	return Dist{
		min:     -d.Max(),
		weights: weights,
		total:   new(big.Int).Set(d.total),
	}
}

// Repeat returns the distribution of the sum of k independent draws, the
// k-fold self-convolution.
//
// Precondition: k >= 0. k == 0 yields the zero point mass.
func (d Dist) Repeat(k int) Dist {
	if k < 0 {
		panic(fmt.Sprintf("dist: Repeat called with k %d < 0", k))
	}
	out := Point(0)
	for i := 0; i < k; i++ {
		out = out.Add(d)
	}
	return out
}

// Mean returns the exact weighted mean, converted to float64 only at this
// final step.
func (d Dist) Mean() float64 {
	mean, _ := d.meanRat().Float64()
	return mean
}

// StdDev returns the square root of the exact weighted variance.
func (d Dist) StdDev() float64 {
	// E[X^2] - E[X]^2, both exact rationals.
	sumSq := new(big.Int)
	tmp := new(big.Int)
	for i, w := range d.weights {
		if w.Sign() == 0 {
			continue
		}
		// Square in big.Int; v*v overflows int64 for outcomes past ~3e9.
		tmp.SetInt64(int64(d.min + i))
		tmp.Mul(tmp, tmp)
		sumSq.Add(sumSq, tmp.Mul(tmp, w))
	}
	exsq := new(big.Rat).SetFrac(sumSq, d.total)
	mean := d.meanRat()
	variance := exsq.Sub(exsq, mean.Mul(mean, mean))
	f, _ := variance.Float64()
	if f < 0 {
		// Exact arithmetic keeps variance >= 0; guard the float conversion.
		f = 0
	}
	return math.Sqrt(f)
}

func (d Dist) meanRat() *big.Rat {
	sum := new(big.Int)
	tmp := new(big.Int)
	for i, w := range d.weights {
		if w.Sign() == 0 {
			continue
		}
		tmp.SetInt64(int64(d.min + i))
		sum.Add(sum, tmp.Mul(tmp, w))
	}
	return new(big.Rat).SetFrac(sum, d.total)
}

// Outcome is one support entry exported for rendering.
type Outcome struct {
	Value int
	// Weight is the exact occurrence weight. Shared with the Dist; read-only.
	Weight *big.Int
	// P is Weight/Total as a float64, for histogram scaling.
	P float64
}

// Outcomes returns the support in ascending outcome order, skipping
// zero-weight gaps. The order is deterministic for identical distributions.
func (d Dist) Outcomes() []Outcome {
	out := make([]Outcome, 0, len(d.weights))
	for i, w := range d.weights {
		if w.Sign() == 0 {
			continue
		}
		p, _ := new(big.Rat).SetFrac(w, d.total).Float64()
		out = append(out, Outcome{Value: d.min + i, Weight: w, P: p})
	}
	return out
}

// Equal reports whether two distributions have identical support and weights.
func (d Dist) Equal(o Dist) bool {
	if d.min != o.min || len(d.weights) != len(o.weights) || d.total.Cmp(o.total) != 0 {
		return false
	}
	for i := range d.weights {
		if d.weights[i].Cmp(o.weights[i]) != 0 {
			return false
		}
	}
	return true
}

// String renders a compact summary for logs and test failures.
func (d Dist) String() string {
	return fmt.Sprintf("dist[%d..%d total=%s mean=%.3f]", d.Min(), d.Max(), d.total, d.Mean())
}

package dist

import (
	"crypto/rand"
	"math/big"
)

// Source is the randomness provider for sampling concrete rolls from a
// distribution. Sampling is presentation-side flavor; analysis itself never
// draws random numbers.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Big returns a uniform random integer in [0, n).
	//
	// Precondition: n > 0.
	Big(n *big.Int) *big.Int
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Big is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Big returns a cryptographically secure uniform integer in [0, n).
//
// Precondition: n > 0. Panics with "dist: Big called with n <= 0" otherwise.
// Panics with "dist: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Big(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		panic("dist: Big called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, n)
	if err != nil {
		panic("dist: crypto/rand failure: " + err.Error())
	}
	return val
}

// Sample draws one concrete outcome from the distribution, weighted by the
// exact weights.
//
// Precondition: src must be non-nil.
// Postcondition: The returned outcome has positive weight in d.
func (d Dist) Sample(src Source) int {
	draw := src.Big(d.total)
	acc := new(big.Int)
	for i, w := range d.weights {
		if w.Sign() == 0 {
			continue
		}
		acc.Add(acc, w)
		if draw.Cmp(acc) < 0 {
			return d.min + i
		}
	}
	// Unreachable while the total-weight invariant holds.
	return d.Max()
}

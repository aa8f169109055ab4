// Package fermat recovers the prime factors of an RSA modulus whose primes
// are too close to each other.
package fermat

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when no factor was found within the given bound.
var ErrNotFound = errors.New("fermat: no factor found")

var one = big.NewInt(1)

// ceilSqrt returns the smallest integer a such that a*a >= n.
func ceilSqrt(n *big.Int) *big.Int {
	a := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(a, a).Cmp(n) != 0 {
		a.Add(a, one)
	}
	return a
}

// Factor tries to write n as a^2 - b^2 = (a+b)(a-b), starting with
// a = ceil(sqrt(n)) and incrementing a at most rounds times. It returns
// p >= q with p*q = n.
func Factor(n *big.Int, rounds int) (p, q *big.Int, err error) {
	if n.Cmp(one) <= 0 {
		return nil, nil, errors.Errorf("fermat: cannot factor %v", n)
	}

	a := ceilSqrt(n)

	// b2 = a^2 - n, which we want to be a perfect square
	b2 := new(big.Int).Mul(a, a)
	b2.Sub(b2, n)
	bb := new(big.Int)

	for i := 0; i < rounds; i++ {
		// b2 is a perfect square if squaring its root gives it back
		b := new(big.Int).Sqrt(b2)
		bb.Mul(b, b)
		if bb.Cmp(b2) == 0 {
			p = new(big.Int).Add(a, b)
			q = new(big.Int).Sub(a, b)
			// a-b = 1 is the trivial factorization n = n*1
			if q.Cmp(one) > 0 {
				return p, q, nil
			}
		}

		// (a+1)^2 - n = b2 + 2a + 1
		b2.Add(b2, a)
		b2.Add(b2, a)
		b2.Add(b2, one)
		a.Add(a, one)
	}

	return nil, nil, errors.Wrapf(ErrNotFound, "after %d rounds", rounds)
}

// SearchNearRoot tries every candidate divisor ceil(sqrt(n)) - i and
// ceil(sqrt(n)) + i for i in [0, radius]. It returns p >= q with p*q = n.
func SearchNearRoot(n *big.Int, radius int) (p, q *big.Int, err error) {
	if n.Cmp(one) <= 0 {
		return nil, nil, errors.Errorf("fermat: cannot factor %v", n)
	}

	root := ceilSqrt(n)
	candidate, quo, rem := new(big.Int), new(big.Int), new(big.Int)

	for i := 0; i <= radius; i++ {
		offset := big.NewInt(int64(i))
		for _, sign := range []int{-1, 1} {
			if sign < 0 {
				candidate.Sub(root, offset)
			} else {
				candidate.Add(root, offset)
			}
			if candidate.Cmp(one) <= 0 || candidate.Cmp(n) >= 0 {
				continue
			}
			quo.QuoRem(n, candidate, rem)
			if rem.Sign() == 0 {
				p, q = new(big.Int).Set(candidate), new(big.Int).Set(quo)
				if p.Cmp(q) < 0 {
					p, q = q, p
				}
				return p, q, nil
			}
		}
	}

	return nil, nil, errors.Wrapf(ErrNotFound, "within %d of the square root", radius)
}

package oracleattack

import (
	"math/big"

	"github.com/pkg/errors"
)

// FromBase16 returns a new big.Int from an hexadecimal string, like the
// ciphertext artifact.
func FromBase16(base16 string) (*big.Int, error) {
	i, ok := new(big.Int).SetString(base16, 16)
	if !ok {
		return nil, errors.Errorf("bad hexadecimal number: %q", base16)
	}
	return i, nil
}

// FromBase10 returns a new big.Int from a decimal string, like the ones of
// the public key artifact.
func FromBase10(base10 string) (*big.Int, error) {
	i, ok := new(big.Int).SetString(base10, 10)
	if !ok {
		return nil, errors.Errorf("bad decimal number: %q", base10)
	}
	return i, nil
}

// divCeil allows to perform a divison and ceil it instead of flooring as do
// the big.Int Div function
func divCeil(a, b *big.Int) (*big.Int, error) {
	// we want to avoid the runtime panic caused by QuoRem in case of 0
	if b.Sign() == 0 {
		return nil, errors.New("Division by zero")
	}
	remainder := new(big.Int)
	ceiled, _ := new(big.Int).QuoRem(a, b, remainder)
	if remainder.Sign() > 0 {
		// we have to ceil it
		ceiled.Add(ceiled, one)
	}
	return ceiled, nil
}

// mustDivCeil is divCeil for divisors we know are not zero.
func mustDivCeil(a, b *big.Int) *big.Int {
	c, err := divCeil(a, b)
	if err != nil {
		panic(err)
	}
	return c
}

// leftPad returns a new slice of length size. The contents of input are right
// aligned in the new slice.
func leftPad(input []byte, size int) (out []byte) {
	n := len(input)
	if n > size {
		n = size
	}
	out = make([]byte, size)
	copy(out[len(out)-n:], input)
	return
}

// interval is a closed range [lo, hi] of candidate plaintexts.
type interval struct {
	lo, hi *big.Int
}

// union adds iv to the sorted, disjoint set ivals, merging the intervals it
// overlaps or touches.
func union(ivals []interval, iv interval) []interval {
	lo, hi := new(big.Int).Set(iv.lo), new(big.Int).Set(iv.hi)
	next := new(big.Int)

	var out []interval
	inserted := false
	for _, m := range ivals {
		switch {
		case next.Add(m.hi, one).Cmp(lo) < 0:
			// m is strictly before the new interval
			out = append(out, m)
		case next.Add(hi, one).Cmp(m.lo) < 0:
			// m is strictly after the new interval
			if !inserted {
				out = append(out, interval{lo, hi})
				inserted = true
			}
			out = append(out, m)
		default:
			if m.lo.Cmp(lo) < 0 {
				lo.Set(m.lo)
			}
			if m.hi.Cmp(hi) > 0 {
				hi.Set(m.hi)
			}
		}
	}
	if !inserted {
		out = append(out, interval{lo, hi})
	}
	return out
}

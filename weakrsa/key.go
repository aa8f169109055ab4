// Package weakrsa implements a deliberately breakable RSA: the key is made
// of two close primes, the padding is PKCS #1 v1.5 and the decryption side
// exposes a padding oracle.
package weakrsa

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

// The challenge key is built from two primes 28 apart, so that n falls to
// Fermat's factorization method in a single step.
const (
	DefaultP        = "1000000000000000003"
	DefaultQ        = "1000000000000000031"
	DefaultExponent = 65537
)

// PublicKey is the part of the key material handed out with the challenge.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

type publicKeyJSON struct {
	N string `json:"n"`
	E string `json:"e"`
}

// MarshalJSON encodes both fields as decimal strings.
func (pub PublicKey) MarshalJSON() ([]byte, error) {
	if pub.N == nil || pub.E == nil {
		return nil, errors.New("weakrsa: incomplete public key")
	}
	return json.Marshal(publicKeyJSON{N: pub.N.String(), E: pub.E.String()})
}

// UnmarshalJSON decodes a public key artifact.
func (pub *PublicKey) UnmarshalJSON(data []byte) error {
	var raw publicKeyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "weakrsa: decoding public key")
	}
	n, ok := new(big.Int).SetString(raw.N, 10)
	if !ok {
		return errors.Errorf("weakrsa: bad modulus %q", raw.N)
	}
	e, ok := new(big.Int).SetString(raw.E, 10)
	if !ok {
		return errors.Errorf("weakrsa: bad exponent %q", raw.E)
	}
	pub.N, pub.E = n, e
	return nil
}

// KeyMaterial holds an RSA key pair. It is never modified after
// NewKeyMaterial returns, so it can be shared between goroutines.
type KeyMaterial struct {
	n, e *big.Int

	d, p, q, phi *big.Int
}

// NewKeyMaterial derives n, phi and d from the two primes and the public
// exponent. The primes are not checked for primality.
func NewKeyMaterial(p, q *big.Int, e int) (*KeyMaterial, error) {
	two := big.NewInt(2)
	if p.Cmp(two) < 0 || q.Cmp(two) < 0 {
		return nil, errors.Errorf("weakrsa: invalid primes %v, %v", p, q)
	}
	if e < 3 {
		return nil, errors.Errorf("weakrsa: invalid exponent %d", e)
	}

	k := &KeyMaterial{
		p: new(big.Int).Set(p),
		q: new(big.Int).Set(q),
		e: big.NewInt(int64(e)),
	}
	k.n = new(big.Int).Mul(k.p, k.q)

	pMinusOne := new(big.Int).Sub(k.p, one)
	qMinusOne := new(big.Int).Sub(k.q, one)
	k.phi = pMinusOne.Mul(pMinusOne, qMinusOne)

	d, err := ModInverse(k.e, k.phi)
	if err != nil {
		return nil, errors.Wrap(err, "weakrsa: public exponent not invertible")
	}
	k.d = d

	return k, nil
}

// DefaultKeyMaterial returns the key of the challenge.
func DefaultKeyMaterial() (*KeyMaterial, error) {
	p, _ := new(big.Int).SetString(DefaultP, 10)
	q, _ := new(big.Int).SetString(DefaultQ, 10)
	return NewKeyMaterial(p, q, DefaultExponent)
}

// PublicKey returns a copy of n and e.
func (k *KeyMaterial) PublicKey() PublicKey {
	return PublicKey{
		N: new(big.Int).Set(k.n),
		E: new(big.Int).Set(k.e),
	}
}

// Size returns the length of the modulus in bytes.
func (k *KeyMaterial) Size() int {
	return size(k.n)
}

// GenerateClosePrimes returns a random prime p of the given bit length and
// the smallest prime q above it. Keys made from them are meant to be broken.
func GenerateClosePrimes(random io.Reader, bits int) (p, q *big.Int, err error) {
	if bits < 8 {
		return nil, nil, errors.Errorf("weakrsa: prime size %d too small", bits)
	}
	if random == nil {
		random = rand.Reader
	}
	p, err = rand.Prime(random, bits)
	if err != nil {
		return nil, nil, errors.Wrap(err, "weakrsa: generating prime")
	}

	two := big.NewInt(2)
	q = new(big.Int).Add(p, two)
	for !q.ProbablyPrime(20) {
		q.Add(q, two)
	}
	return p, q, nil
}

// size returns the size of an arbitrary-precision integer in bytes.
func size(z *big.Int) int {
	return (z.BitLen() + 7) / 8
}

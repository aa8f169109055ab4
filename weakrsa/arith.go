package weakrsa

import (
	"math/big"
)

var one = big.NewInt(1)

// ModExp returns base^exponent mod modulus, using right-to-left binary
// exponentiation. It is not constant time: the number of multiplications
// leaks the Hamming weight of the exponent.
func ModExp(base, exponent, modulus *big.Int) (*big.Int, error) {
	if modulus.Cmp(one) < 0 {
		return nil, &DomainError{Op: "modexp", Mod: new(big.Int).Set(modulus)}
	}
	if exponent.Sign() < 0 {
		return nil, &DomainError{Op: "modexp", A: new(big.Int).Set(exponent), Mod: new(big.Int).Set(modulus)}
	}

	// We start from 1 mod m, so that modulus 1 gives 0 even for a 0 exponent
	acc := new(big.Int).Mod(one, modulus)
	b := new(big.Int).Mod(base, modulus)

	for i := 0; i < exponent.BitLen(); i++ {
		if exponent.Bit(i) == 1 {
			acc.Mul(acc, b)
			acc.Mod(acc, modulus)
		}
		b.Mul(b, b)
		b.Mod(b, modulus)
	}

	return acc, nil
}

// ModInverse returns the d in [0, m) such that a*d = 1 mod m, using the
// extended Euclidean algorithm. A DomainError is returned if gcd(a, m) != 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Cmp(one) < 0 {
		return nil, &DomainError{Op: "modinv", Mod: new(big.Int).Set(m)}
	}

	// Invariant: oldR = oldS*a mod m and r = s*a mod m
	oldR, r := new(big.Int).Mod(a, m), new(big.Int).Set(m)
	oldS, s := big.NewInt(1), big.NewInt(0)
	quo, tmp := new(big.Int), new(big.Int)

	for r.Sign() != 0 {
		quo.Div(oldR, r)

		tmp.Mul(quo, r)
		tmp.Sub(oldR, tmp)
		oldR, r = r, oldR.Set(tmp)

		tmp.Mul(quo, s)
		tmp.Sub(oldS, tmp)
		oldS, s = s, oldS.Set(tmp)
	}

	if oldR.Cmp(one) != 0 {
		return nil, &DomainError{Op: "modinv", A: new(big.Int).Set(a), Mod: new(big.Int).Set(m)}
	}

	return oldS.Mod(oldS, m), nil
}

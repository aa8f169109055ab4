package weakrsa

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

// ErrBlockLength is returned when a block or a ciphertext does not have
// the length the Cipher was configured with.
var ErrBlockLength = errors.New("weakrsa: wrong block length")

// DomainError reports an arithmetic operation called outside of its domain,
// typically a modular inverse that does not exist.
type DomainError struct {
	Op  string
	A   *big.Int
	Mod *big.Int
}

func (e *DomainError) Error() string {
	if e.A == nil {
		return fmt.Sprintf("weakrsa: %s: invalid modulus %v", e.Op, e.Mod)
	}
	return fmt.Sprintf("weakrsa: %s: %v has no solution modulo %v", e.Op, e.A, e.Mod)
}

// EncodingError is returned when a message cannot fit in a padded block.
type EncodingError struct {
	Length int
	Max    int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("weakrsa: message of %d bytes too long, at most %d fit in a block", e.Length, e.Max)
}

// PaddingFormatError is returned when a decrypted block is not PKCS #1 v1.5
// encryption padded.
type PaddingFormatError struct {
	Reason string
}

func (e *PaddingFormatError) Error() string {
	return "weakrsa: invalid padding: " + e.Reason
}

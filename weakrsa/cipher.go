package weakrsa

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

// Cipher performs textbook RSA on fixed size blocks.
type Cipher struct {
	key       *KeyMaterial
	blockSize int
	random    io.Reader
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithBlockSize sets the block and ciphertext length, BlockSize by default.
func WithBlockSize(n int) Option {
	return func(c *Cipher) {
		c.blockSize = n
	}
}

// WithRandom sets the source of padding bytes, crypto/rand by default. It
// must be safe for concurrent use if the Cipher is shared.
func WithRandom(r io.Reader) Option {
	return func(c *Cipher) {
		c.random = r
	}
}

// NewCipher returns a Cipher using the given key material.
func NewCipher(key *KeyMaterial, opts ...Option) *Cipher {
	c := &Cipher{
		key:       key,
		blockSize: BlockSize,
		random:    rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BlockSize returns the length of the blocks handled by c.
func (c *Cipher) BlockSize() int {
	return c.blockSize
}

// PublicKey returns the public part of the key used by c.
func (c *Cipher) PublicKey() PublicKey {
	return c.key.PublicKey()
}

// Encrypt reads block as a big-endian integer m and returns m^e mod n as a
// blockSize long buffer. A block whose value is not below n is reduced
// modulo n and will not decrypt back to itself.
func (c *Cipher) Encrypt(block []byte) ([]byte, error) {
	return c.apply(block, c.key.e)
}

// Decrypt reads ciphertext as a big-endian integer c and returns c^d mod n
// as a blockSize long buffer.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	return c.apply(ciphertext, c.key.d)
}

// EncryptMessage pads message and encrypts the resulting block.
func (c *Cipher) EncryptMessage(message []byte) ([]byte, error) {
	block, err := EncodePadded(c.random, message, c.blockSize)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(block)
}

// DecryptMessage decrypts ciphertext and removes the padding.
func (c *Cipher) DecryptMessage(ciphertext []byte) ([]byte, error) {
	block, err := c.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}
	return DecodePadded(block)
}

func (c *Cipher) apply(in []byte, exponent *big.Int) ([]byte, error) {
	if len(in) != c.blockSize {
		return nil, errors.Wrapf(ErrBlockLength, "got %d bytes, want %d", len(in), c.blockSize)
	}

	z, err := ModExp(new(big.Int).SetBytes(in), exponent, c.key.n)
	if err != nil {
		return nil, err
	}

	out := z.Bytes()
	if len(out) > c.blockSize {
		return nil, errors.Wrapf(ErrBlockLength, "result of %d bytes does not fit in %d", len(out), c.blockSize)
	}
	return leftPad(out, c.blockSize), nil
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

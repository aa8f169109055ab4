package weakrsa

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherRoundTripDefaultKey(t *testing.T) {
	key, err := DefaultKeyMaterial()
	require.NoError(t, err)
	c := NewCipher(key)
	require.Equal(t, BlockSize, c.BlockSize())

	for i := 0; i < 50; i++ {
		m, err := rand.Int(rand.Reader, key.n)
		require.NoError(t, err)
		block := leftPad(m.Bytes(), BlockSize)

		ciphertext, err := c.Encrypt(block)
		require.NoError(t, err)
		require.Len(t, ciphertext, BlockSize)
		assert.True(t, new(big.Int).SetBytes(ciphertext).Cmp(key.n) < 0)

		got, err := c.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, block, got)
	}
}

func TestCipherMatchesMathBig(t *testing.T) {
	key := closeKey(t, 512)
	c := NewCipher(key)

	block, err := EncodePadded(rand.Reader, []byte("compare"), BlockSize)
	require.NoError(t, err)
	ciphertext, err := c.Encrypt(block)
	require.NoError(t, err)

	want := new(big.Int).Exp(new(big.Int).SetBytes(block), key.e, key.n)
	assert.Equal(t, leftPad(want.Bytes(), BlockSize), ciphertext)
}

func TestCipherTestMessage(t *testing.T) {
	c := NewCipher(closeKey(t, 512))

	block, err := EncodePadded(rand.Reader, []byte("TEST"), c.BlockSize())
	require.NoError(t, err)

	ciphertext, err := c.Encrypt(block)
	require.NoError(t, err)
	require.Len(t, ciphertext, BlockSize)

	got, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, block, got)

	message, err := DecodePadded(got)
	require.NoError(t, err)
	assert.Equal(t, "TEST", string(message))
}

func TestCipherEncryptDecryptMessage(t *testing.T) {
	c := NewCipher(closeKey(t, 512))

	for _, msg := range []string{"", "a", "Very secret message nobody can decrypt?", string(make([]byte, BlockSize-3))} {
		ciphertext, err := c.EncryptMessage([]byte(msg))
		require.NoError(t, err)

		got, err := c.DecryptMessage(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, msg, string(got))
	}

	_, err := c.EncryptMessage(make([]byte, BlockSize))
	var ee *EncodingError
	assert.True(t, errors.As(err, &ee), "%v", err)
}

// The challenge modulus is far shorter than a block: a padded block is
// reduced modulo n on encryption and never comes back.
func TestCipherDefaultKeyReducesWideBlocks(t *testing.T) {
	key, err := DefaultKeyMaterial()
	require.NoError(t, err)
	c := NewCipher(key)

	block, err := EncodePadded(rand.Reader, []byte("TEST"), BlockSize)
	require.NoError(t, err)

	ciphertext, err := c.Encrypt(block)
	require.NoError(t, err)
	got, err := c.Decrypt(ciphertext)
	require.NoError(t, err)

	reduced := new(big.Int).Mod(new(big.Int).SetBytes(block), key.n)
	assert.Equal(t, leftPad(reduced.Bytes(), BlockSize), got)
	assert.NotEqual(t, block, got)

	_, err = c.DecryptMessage(ciphertext)
	var pe *PaddingFormatError
	assert.True(t, errors.As(err, &pe), "%v", err)
}

func TestCipherBlockLength(t *testing.T) {
	key, err := DefaultKeyMaterial()
	require.NoError(t, err)
	c := NewCipher(key)

	for _, n := range []int{0, 1, BlockSize - 1, BlockSize + 1} {
		_, err := c.Encrypt(make([]byte, n))
		assert.True(t, errors.Is(err, ErrBlockLength), "encrypt %d bytes: %v", n, err)
		_, err = c.Decrypt(make([]byte, n))
		assert.True(t, errors.Is(err, ErrBlockLength), "decrypt %d bytes: %v", n, err)
	}
	_, err = c.Decrypt(nil)
	assert.True(t, errors.Is(err, ErrBlockLength))
}

func TestCipherResultTooWide(t *testing.T) {
	c := NewCipher(closeKey(t, 512), WithBlockSize(8))

	_, err := c.Encrypt([]byte{0x00, 0x02, 0xFF, 0xFF, 0xFF, 0x00, 'h', 'i'})
	assert.True(t, errors.Is(err, ErrBlockLength), "%v", err)
}

func TestCipherWithRandom(t *testing.T) {
	c := NewCipher(closeKey(t, 512), WithRandom(zeroReader{}))

	a, err := c.EncryptMessage([]byte("same"))
	require.NoError(t, err)
	b, err := c.EncryptMessage([]byte("same"))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	block, err := c.Decrypt(a)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), block[2])
}

func TestCipherPublicKey(t *testing.T) {
	key, err := DefaultKeyMaterial()
	require.NoError(t, err)
	pub := NewCipher(key).PublicKey()
	assert.Equal(t, 0, pub.N.Cmp(key.n))
	assert.Equal(t, 0, pub.E.Cmp(key.e))
}

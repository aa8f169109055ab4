package oracleattack_test

import (
	"bytes"
	"crypto/rand"
	"log"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "git.kudelski.com/go-padding-oracle/oracleattack"
	"git.kudelski.com/go-padding-oracle/weakrsa"
)

// newTarget returns a cipher whose blocks are exactly as long as its
// modulus, which is what the oracle needs to be useful.
func newTarget(t *testing.T, primeBits int) (*weakrsa.Cipher, *weakrsa.PaddingOracle) {
	t.Helper()
	p, q, err := weakrsa.GenerateClosePrimes(rand.Reader, primeBits)
	require.NoError(t, err)
	key, err := weakrsa.NewKeyMaterial(p, q, weakrsa.DefaultExponent)
	require.NoError(t, err)

	c := weakrsa.NewCipher(key, weakrsa.WithBlockSize(key.Size()))
	return c, weakrsa.NewPaddingOracle(c)
}

// countingOracle wraps an Oracle to check the query count reported.
type countingOracle struct {
	Oracle
	n int
}

func (o *countingOracle) CheckPadding(ciphertext []byte) bool {
	o.n++
	return o.Oracle.CheckPadding(ciphertext)
}

type refusingOracle struct{}

func (refusingOracle) CheckPadding([]byte) bool { return false }

func TestAttackSmallKey(t *testing.T) {
	c, oracle := newTarget(t, 32)
	require.Equal(t, 8, c.BlockSize())

	ciphertext, err := c.EncryptMessage([]byte("TEST"))
	require.NoError(t, err)

	counter := &countingOracle{Oracle: oracle}
	res, err := Attack(ciphertext, c.PublicKey(), counter, nil)
	require.NoError(t, err)
	assert.Equal(t, counter.n, res.Queries)

	want, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, want, res.Block)

	msg, err := res.Message()
	require.NoError(t, err)
	assert.Equal(t, "TEST", string(msg))
}

func TestAttackWithBlinding(t *testing.T) {
	c, oracle := newTarget(t, 32)

	// A textbook RSA ciphertext of a value that is not PKCS conforming
	secret := new(big.Int).Lsh(big.NewInt(0x0501), 40)
	secret.Add(secret, big.NewInt(0xC0FFEE))
	block := make([]byte, c.BlockSize())
	secret.FillBytes(block)
	ciphertext, err := c.Encrypt(block)
	require.NoError(t, err)
	require.False(t, oracle.CheckPadding(ciphertext))

	res, err := Attack(ciphertext, c.PublicKey(), oracle, nil)
	require.NoError(t, err)
	assert.Equal(t, block, res.Block)

	_, err = res.Message()
	assert.Error(t, err)
}

func TestAttack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 256-bit attack in short mode")
	}

	c, oracle := newTarget(t, 128)
	require.Equal(t, 32, c.BlockSize())

	secretMessage := []byte("Very secret message?")
	ciphertext, err := c.EncryptMessage(secretMessage)
	require.NoError(t, err)

	var logs bytes.Buffer
	res, err := Attack(ciphertext, c.PublicKey(), oracle, &Options{Logger: log.New(&logs, "", 0)})
	require.NoError(t, err)

	msg, err := res.Message()
	require.NoError(t, err)
	assert.Equal(t, secretMessage, msg)
	assert.Contains(t, logs.String(), "Step 2.a finished")
	t.Logf("recovered %q in %d queries", msg, res.Queries)
}

func TestAttackQueryBudget(t *testing.T) {
	c, _ := newTarget(t, 32)
	ciphertext, err := c.EncryptMessage([]byte("TEST"))
	require.NoError(t, err)

	res, err := Attack(ciphertext, c.PublicKey(), refusingOracle{}, &Options{MaxQueries: 100})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrTooManyQueries), "%v", err)
}

func TestAttackInvalidInput(t *testing.T) {
	pub := weakrsa.PublicKey{N: big.NewInt(3233), E: big.NewInt(17)}
	_, err := Attack([]byte{0x01}, pub, refusingOracle{}, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedModulus), "%v", err)

	c, oracle := newTarget(t, 32)
	tooBig := bytes.Repeat([]byte{0xFF}, c.BlockSize())
	_, err = Attack(tooBig, c.PublicKey(), oracle, nil)
	assert.Error(t, err)
}

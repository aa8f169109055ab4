package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"git.kudelski.com/go-padding-oracle/fermat"
	"git.kudelski.com/go-padding-oracle/oracleattack"
	"git.kudelski.com/go-padding-oracle/weakrsa"
)

// challenge is what gets handed out to players: a public key and one
// ciphertext block. The padding oracle stays on our side.
type challenge struct {
	cipher     *weakrsa.Cipher
	oracle     *weakrsa.PaddingOracle
	publicKey  weakrsa.PublicKey
	ciphertext []byte
}

func newChallenge(key *weakrsa.KeyMaterial, blockSize int, message []byte) (*challenge, error) {
	c := weakrsa.NewCipher(key, weakrsa.WithBlockSize(blockSize))

	block, err := weakrsa.EncodePadded(rand.Reader, message, c.BlockSize())
	if err != nil {
		return nil, errors.Wrap(err, "padding challenge message")
	}
	ciphertext, err := c.Encrypt(block)
	if err != nil {
		return nil, errors.Wrap(err, "encrypting challenge message")
	}

	return &challenge{
		cipher:     c,
		oracle:     weakrsa.NewPaddingOracle(c),
		publicKey:  c.PublicKey(),
		ciphertext: ciphertext,
	}, nil
}

// writeArtifacts prints the public key as JSON and the ciphertext in hex.
func (ch *challenge) writeArtifacts(w io.Writer) error {
	pub, err := json.Marshal(ch.publicKey)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Public key: %s\nCiphertext: %s\n", pub, hex.EncodeToString(ch.ciphertext))
	return err
}

// solveWithFermat factors n, rebuilds the private key and decrypts the
// ciphertext, only using the public artifacts.
func (ch *challenge) solveWithFermat(rounds int) ([]byte, error) {
	return solveFermat(ch.publicKey, ch.ciphertext, rounds)
}

// solveFermat breaks a close-prime key and decrypts ciphertext with it. The
// block size is taken from the ciphertext length.
func solveFermat(pub weakrsa.PublicKey, ciphertext []byte, rounds int) ([]byte, error) {
	p, q, err := fermat.Factor(pub.N, rounds)
	if err != nil {
		return nil, err
	}
	logger.Println("Factored n into p =", p, "and q =", q)

	if !pub.E.IsInt64() {
		return nil, errors.Errorf("public exponent %s out of range", pub.E)
	}
	key, err := weakrsa.NewKeyMaterial(p, q, int(pub.E.Int64()))
	if err != nil {
		return nil, err
	}
	c := weakrsa.NewCipher(key, weakrsa.WithBlockSize(len(ciphertext)))
	return c.DecryptMessage(ciphertext)
}

// parseArtifacts reads back the artifacts of another run: n and e in
// decimal, as in the public key JSON, and the ciphertext in hex. Leading
// zero bytes of the ciphertext are kept.
func parseArtifacts(n, e, ciphertext string) (weakrsa.PublicKey, []byte, error) {
	var pub weakrsa.PublicKey
	var err error
	if pub.N, err = oracleattack.FromBase10(n); err != nil {
		return pub, nil, errors.Wrap(err, "parsing n")
	}
	if pub.E, err = oracleattack.FromBase10(e); err != nil {
		return pub, nil, errors.Wrap(err, "parsing e")
	}
	if pub.N.Sign() <= 0 || pub.E.Sign() <= 0 {
		return pub, nil, errors.New("n and e must be positive")
	}

	c, err := oracleattack.FromBase16(ciphertext)
	if err != nil {
		return pub, nil, errors.Wrap(err, "parsing ciphertext")
	}
	if c.Sign() < 0 {
		return pub, nil, errors.New("ciphertext must be positive")
	}
	block := make([]byte, (len(ciphertext)+1)/2)
	return pub, c.FillBytes(block), nil
}

// solveWithOracle runs Bleichenbacher's attack, only using the public
// artifacts and the padding oracle.
func (ch *challenge) solveWithOracle(maxQueries int) ([]byte, error) {
	res, err := oracleattack.Attack(ch.ciphertext, ch.publicKey, ch.oracle, &oracleattack.Options{
		Logger:     logger,
		MaxQueries: maxQueries,
	})
	if err != nil {
		return nil, err
	}
	logger.Println("Oracle queried", res.Queries, "times")
	return res.Message()
}

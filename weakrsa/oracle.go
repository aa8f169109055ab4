package weakrsa

// PaddingOracle answers whether a ciphertext decrypts to a block starting
// with the 0x00 0x02 marker. This is the leak a Bleichenbacher attack needs.
type PaddingOracle struct {
	cipher *Cipher
}

// NewPaddingOracle returns an oracle decrypting with c.
func NewPaddingOracle(c *Cipher) *PaddingOracle {
	return &PaddingOracle{cipher: c}
}

// CheckPadding reports whether ciphertext decrypts to a block starting with
// 0x00 0x02. Any error, whatever its cause, is answered with false.
func (o *PaddingOracle) CheckPadding(ciphertext []byte) bool {
	block, err := o.cipher.Decrypt(ciphertext)
	if err != nil {
		return false
	}
	return len(block) >= 2 && block[0] == 0x00 && block[1] == 0x02
}

package weakrsa

import (
	"io"

	"github.com/pkg/errors"
)

// BlockSize is the length in bytes of padded blocks and ciphertexts. It is a
// fixed design constant, unrelated to the size of the challenge modulus.
const BlockSize = 128

// paddingOverhead counts the 0x00 0x02 marker and the 0x00 separator.
const paddingOverhead = 3

// EncodePadded returns message with PKCS #1 v1.5 encryption padding added,
// as a block of blockSize bytes:
//
//	0x00 0x02 [random non-zero bytes] 0x00 [message]
//
// Zero bytes read from random are replaced with 0xFF, so the padding is not
// uniformly distributed.
func EncodePadded(random io.Reader, message []byte, blockSize int) ([]byte, error) {
	limit := blockSize - paddingOverhead
	if len(message) > limit {
		return nil, errors.WithStack(&EncodingError{Length: len(message), Max: limit})
	}

	block := make([]byte, blockSize)
	block[0] = 0x00
	block[1] = 0x02

	ps := block[2 : blockSize-len(message)-1]
	if _, err := io.ReadFull(random, ps); err != nil {
		return nil, errors.Wrap(err, "weakrsa: reading padding bytes")
	}
	for i := range ps {
		if ps[i] == 0x00 {
			ps[i] = 0xFF
		}
	}

	block[blockSize-len(message)-1] = 0x00
	copy(block[blockSize-len(message):], message)

	return block, nil
}

// DecodePadded returns the message held in a PKCS #1 v1.5 encryption padded
// block.
func DecodePadded(block []byte) ([]byte, error) {
	if len(block) < 2 {
		return nil, errors.WithStack(&PaddingFormatError{Reason: "block too short"})
	}
	if block[0] != 0x00 || block[1] != 0x02 {
		return nil, errors.WithStack(&PaddingFormatError{Reason: "missing 0x00 0x02 marker"})
	}

	for i := 2; i < len(block); i++ {
		if block[i] == 0x00 {
			return block[i+1:], nil
		}
	}

	return nil, errors.WithStack(&PaddingFormatError{Reason: "no separator"})
}

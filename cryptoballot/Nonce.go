package cryptoballot

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/phayes/errors"
)

// NonceSize is the number of random bytes mixed into every vote message
const NonceSize = 16

// A Nonce makes two votes for the same candidate hash to different messages.
// It is not secret once the ballot is revealed.
type Nonce [NonceSize]byte

var (
	ErrRandomSource = errors.New("Random source unavailable")
	ErrNonceInvalid = errors.New("Invalid nonce. A nonce must be 32 hex characters")

	// randReader is the entropy source for nonces and blinding factors
	randReader io.Reader = rand.Reader
)

// NewNonce reads a fresh nonce from the cryptographically secure random source.
// A failing random source is fatal to the vote attempt.
func NewNonce() (Nonce, error) {
	var nonce Nonce
	if _, err := io.ReadFull(randReader, nonce[:]); err != nil {
		return Nonce{}, errors.Wrap(err, ErrRandomSource)
	}
	return nonce, nil
}

// NewNonceFromHex parses a hex encoded nonce, as it would come back from a voter
func NewNonceFromHex(hexNonce string) (Nonce, error) {
	var nonce Nonce
	if hex.DecodedLen(len(hexNonce)) != NonceSize {
		return Nonce{}, ErrNonceInvalid
	}
	if _, err := hex.Decode(nonce[:], []byte(hexNonce)); err != nil {
		return Nonce{}, errors.Wrap(err, ErrNonceInvalid)
	}
	return nonce, nil
}

// Bytes returns a copy of the raw nonce bytes
func (nonce Nonce) Bytes() []byte {
	b := make([]byte, NonceSize)
	copy(b, nonce[:])
	return b
}

// Implements Stringer. Returns lowercase hex.
func (nonce Nonce) String() string {
	return hex.EncodeToString(nonce[:])
}

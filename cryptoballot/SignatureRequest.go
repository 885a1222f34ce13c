package cryptoballot

import (
	"crypto/rsa"
	"math/big"

	"github.com/phayes/errors"
)

// A SignatureRequest is a vote attempt that has been blinded and is ready to be signed.
// The voter keeps the whole value; only BlindedMessage is shown to the authority.
// Nothing here is stored server side, the caller carries it to the next step.
type SignatureRequest struct {
	Candidate      string
	Nonce          Nonce
	Message        *big.Int // m = SHA256(candidate || nonce) mod N
	BlindingFactor *big.Int // r, the voter's secret
	BlindedMessage *big.Int // m' = m * r^e mod N
}

// NewSignatureRequest starts a vote attempt for candidate: a fresh nonce, the message m, a fresh
// blinding factor r and the blinded message m'.
func NewSignatureRequest(pub PublicKey, candidate string) (*SignatureRequest, error) {
	cryptoKey, err := pub.GetCryptoKey()
	if err != nil {
		return nil, err
	}

	nonce, err := NewNonce()
	if err != nil {
		return nil, err
	}

	r, err := NewBlindingFactor(cryptoKey)
	if err != nil {
		return nil, err
	}

	return newSignatureRequest(cryptoKey, candidate, nonce, r)
}

// NewSignatureRequestFromParts builds a signature request from a known nonce and blinding factor
func NewSignatureRequestFromParts(pub PublicKey, candidate string, nonce Nonce, r *big.Int) (*SignatureRequest, error) {
	cryptoKey, err := pub.GetCryptoKey()
	if err != nil {
		return nil, err
	}
	return newSignatureRequest(cryptoKey, candidate, nonce, r)
}

func newSignatureRequest(cryptoKey *rsa.PublicKey, candidate string, nonce Nonce, r *big.Int) (*SignatureRequest, error) {
	if err := ValidateCandidate(candidate); err != nil {
		return nil, err
	}

	m := EncodeMessage(candidate, nonce, cryptoKey.N)
	blinded, err := Blind(cryptoKey, m, r)
	if err != nil {
		return nil, errors.Wrap(err, ErrBlindingFactor)
	}

	return &SignatureRequest{
		Candidate:      candidate,
		Nonce:          nonce,
		Message:        m,
		BlindingFactor: new(big.Int).Set(r),
		BlindedMessage: blinded,
	}, nil
}

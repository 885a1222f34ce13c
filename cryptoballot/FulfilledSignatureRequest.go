package cryptoballot

import (
	"math/big"
)

// A FulfilledSignatureRequest is a SignatureRequest together with the authority's blind signature s'
type FulfilledSignatureRequest struct {
	SignatureRequest
	BlindSignature *big.Int // s' = (m')^d mod N
}

// Unblind removes the blinding factor and verifies the result.
// A verification failure means the attempt must be discarded; it is never retried.
func (fulfilled *FulfilledSignatureRequest) Unblind(pub PublicKey) (*Ballot, error) {
	cryptoKey, err := pub.GetCryptoKey()
	if err != nil {
		return nil, err
	}

	sig, err := Unblind(cryptoKey, fulfilled.BlindSignature, fulfilled.BlindingFactor)
	if err != nil {
		return nil, ErrSignatureVerification
	}

	ballot := &Ballot{
		Candidate: fulfilled.Candidate,
		Nonce:     fulfilled.Nonce,
		Message:   new(big.Int).Set(fulfilled.Message),
		Signature: sig,
	}
	if err := ballot.Verify(pub); err != nil {
		return nil, err
	}
	return ballot, nil
}

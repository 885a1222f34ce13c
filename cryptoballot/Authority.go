package cryptoballot

import (
	"crypto/rsa"
	"math/big"

	"github.com/phayes/errors"
)

// Authority is the signing side of the protocol. It is the only holder of the private exponent.
// It is read-only after construction and safe for concurrent use.
type Authority struct {
	publicKey PublicKey
	cryptoKey *rsa.PrivateKey
}

func NewAuthority(key PrivateKey) (*Authority, error) {
	cryptoKey, err := key.GetCryptoKey()
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyLoad)
	}
	pub, err := NewPublicKeyFromCryptoKey(&cryptoKey.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyLoad)
	}
	return &Authority{
		publicKey: pub,
		cryptoKey: cryptoKey,
	}, nil
}

// PublicKey is the (N, e) voters blind against and verifiers check with
func (a *Authority) PublicKey() PublicKey {
	return a.publicKey
}

// CryptoKey returns the parsed public key
func (a *Authority) CryptoKey() *rsa.PublicKey {
	return &a.cryptoKey.PublicKey
}

// Sign computes s' = (m')^d mod N
func (a *Authority) Sign(blinded *big.Int) (*big.Int, error) {
	return blindSign(a.cryptoKey, blinded)
}

// SignRequest signs the blinded message of a signature request. Only BlindedMessage is read.
func (a *Authority) SignRequest(req *SignatureRequest) (*FulfilledSignatureRequest, error) {
	blindSig, err := a.Sign(req.BlindedMessage)
	if err != nil {
		return nil, err
	}
	return &FulfilledSignatureRequest{
		SignatureRequest: *req,
		BlindSignature:   blindSig,
	}, nil
}

package cryptoballot

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"math/big"

	"github.com/phayes/errors"
)

var (
	ErrPublicKeyCryptoKey = errors.New("Could not create rsa.PublicKey from PublicKey. Could not parse PublicKey bytes")
	ErrPublicKeyNotRSA    = errors.New("PublicKey is not an RSA key")
)

// A DER encoded public key. It is the (N, e) half of the authority's key and is safe to publish.
type PublicKey []byte

// Create a new PublicKey from PEM Block bytes
func NewPublicKey(PEMBlockBytes []byte) (PublicKey, error) {
	PEMBlock, _ := pem.Decode(PEMBlockBytes)
	if PEMBlock == nil {
		return nil, errors.Wraps(ErrKeyLoad, "Could not decode Public Key PEM Block")
	}
	return NewPublicKeyFromBlock(PEMBlock)
}

// Create a new PublicKey from a pem.Block
// This function also performs error checking to make sure the key is valid.
func NewPublicKeyFromBlock(PEMBlock *pem.Block) (PublicKey, error) {
	if PEMBlock.Type != "PUBLIC KEY" {
		return nil, errors.Wraps(ErrKeyLoad, "Could not find PUBLIC KEY block. Found "+PEMBlock.Type)
	}
	pk := PublicKey(PEMBlock.Bytes)
	if _, err := pk.GetCryptoKey(); err != nil {
		return nil, errors.Wrap(err, ErrKeyLoad)
	}
	return pk, nil
}

// Create a new PublicKey from an rsa.PublicKey struct
func NewPublicKeyFromCryptoKey(pub *rsa.PublicKey) (PublicKey, error) {
	derBytes, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return PublicKey(derBytes), nil
}

// Extract the bytes out of the public key
func (pk PublicKey) Bytes() []byte {
	return []byte(pk)
}

// Parse the PublicKey (which is stored as a der encoded key) into a rsa.PublicKey object, ready to be used for crypto functions
func (pk PublicKey) GetCryptoKey() (*rsa.PublicKey, error) {
	pubkey, err := x509.ParsePKIXPublicKey(pk.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, ErrPublicKeyCryptoKey)
	}
	rsaKey, ok := pubkey.(*rsa.PublicKey)
	if !ok {
		return nil, ErrPublicKeyNotRSA
	}
	return rsaKey, nil
}

// Modulus returns N, or nil if the key cannot be parsed
func (pk PublicKey) Modulus() *big.Int {
	pubkey, err := pk.GetCryptoKey()
	if err != nil {
		return nil
	}
	return pubkey.N
}

// Exponent returns e, or 0 if the key cannot be parsed
func (pk PublicKey) Exponent() int {
	pubkey, err := pk.GetCryptoKey()
	if err != nil {
		return 0
	}
	return pubkey.E
}

// Get the (hex encoded) SHA256 of the DER encoded public key. Used as a key fingerprint.
func (pk PublicKey) GetSHA256() []byte {
	h := sha256.New()
	h.Write(pk.Bytes())
	sha256hex := make([]byte, hex.EncodedLen(sha256.Size))
	hex.Encode(sha256hex, h.Sum(nil))
	return sha256hex
}

// Get the number of bits in the key
func (pk PublicKey) KeyLength() (int, error) {
	pubkey, err := pk.GetCryptoKey()
	if err != nil {
		return 0, err
	}
	return pubkey.N.BitLen(), nil
}

// Check if the public key is empty of any bytes
func (pk PublicKey) IsEmpty() bool {
	return len(pk) == 0
}

// Implements Stringer. Returns a PEM encoded PUBLIC KEY block.
func (pk PublicKey) String() string {
	pemBlock := pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pk.Bytes(),
	}
	return string(pem.EncodeToMemory(&pemBlock))
}

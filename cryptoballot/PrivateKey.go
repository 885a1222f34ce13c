package cryptoballot

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"math/big"

	"github.com/cryptoballot/rsablind"
	"github.com/phayes/errors"
)

const (
	// PublicExponent is fixed for every key generated by GeneratePrivateKey
	PublicExponent = 65537

	// DefaultPrimeBits is the size of each of the two primes, giving a 2048 bit modulus
	DefaultPrimeBits = 1024

	// MinPrimeBits is the smallest prime size GeneratePrivateKey will accept
	MinPrimeBits = 256
)

// A DER encoded private key. It holds the modulus N, the public exponent e and the private exponent d.
// Only the signing authority should ever hold one.
type PrivateKey []byte

var (
	ErrKeyGeneration       = errors.New("Could not generate new PrivateKey")
	ErrKeyLoad             = errors.New("Could not load RSA key")
	ErrPrivateKeyCryptoKey = errors.New("Could not parse PrivateKey bytes")
	ErrPrivateKeySign      = errors.New("PrivateKey could not sign blinded message")
)

// Create a new PrivateKey from PEM Block bytes
func NewPrivateKey(PEMBlockBytes []byte) (PrivateKey, error) {
	PEMBlock, _ := pem.Decode(PEMBlockBytes)
	if PEMBlock == nil {
		return nil, errors.Wraps(ErrKeyLoad, "Could not decode Private Key PEM Block")
	}
	return NewPrivateKeyFromBlock(PEMBlock)
}

// Create a new PrivateKey from a pem.Block
// This function also performs error checking to make sure the key is valid.
func NewPrivateKeyFromBlock(PEMBlock *pem.Block) (PrivateKey, error) {
	if PEMBlock.Type != "RSA PRIVATE KEY" {
		return nil, errors.Wraps(ErrKeyLoad, "Could not find RSA PRIVATE KEY block. Found "+PEMBlock.Type)
	}

	_, err := x509.ParsePKCS1PrivateKey(PEMBlock.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyLoad)
	}

	return PrivateKey(PEMBlock.Bytes), nil
}

// Create a new PrivateKey from an rsa.PrivateKey struct
func NewPrivateKeyFromCryptoKey(priv *rsa.PrivateKey) PrivateKey {
	return PrivateKey(x509.MarshalPKCS1PrivateKey(priv))
}

// GeneratePrivateKey picks two independent primes p and q of primeBits bits each and derives
// N = p*q, e = 65537 and d = e^-1 mod (p-1)(q-1).
// ErrKeyGeneration is returned if e has no inverse mod phi; the caller should simply try again.
func GeneratePrivateKey(primeBits int) (PrivateKey, error) {
	if primeBits < MinPrimeBits {
		return nil, errors.Wrapf(ErrKeyGeneration, "primes must be at least %d bits", MinPrimeBits)
	}

	p, err := rand.Prime(rand.Reader, primeBits)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyGeneration)
	}
	q, err := rand.Prime(rand.Reader, primeBits)
	if err != nil {
		return nil, errors.Wrap(err, ErrKeyGeneration)
	}
	if p.Cmp(q) == 0 {
		return nil, errors.Wraps(ErrKeyGeneration, "p and q are equal")
	}

	cryptoKey, err := newCryptoKey(p, q)
	if err != nil {
		return nil, err
	}
	return NewPrivateKeyFromCryptoKey(cryptoKey), nil
}

// newCryptoKey assembles an rsa.PrivateKey from two distinct primes
func newCryptoKey(p, q *big.Int) (*rsa.PrivateKey, error) {
	one := big.NewInt(1)
	n := new(big.Int).Mul(p, q)
	phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

	e := big.NewInt(PublicExponent)
	d := new(big.Int).ModInverse(e, phi)
	if d == nil {
		return nil, errors.Wraps(ErrKeyGeneration, "public exponent is not invertible mod phi")
	}

	cryptoKey := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: PublicExponent},
		D:         d,
		Primes:    []*big.Int{p, q},
	}
	if err := cryptoKey.Validate(); err != nil {
		return nil, errors.Wrap(err, ErrKeyGeneration)
	}
	cryptoKey.Precompute()
	return cryptoKey, nil
}

// Extract the bytes out of the private key
func (pk PrivateKey) Bytes() []byte {
	return []byte(pk)
}

// Parse the PrivateKey (which is stored as a der encoded key) into a rsa.PrivateKey object, ready to be used for crypto functions
func (pk PrivateKey) GetCryptoKey() (*rsa.PrivateKey, error) {
	privkey, err := x509.ParsePKCS1PrivateKey(pk.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, ErrPrivateKeyCryptoKey)
	}
	return privkey, nil
}

// Check if the private key is empty of any bytes
func (pk PrivateKey) IsEmpty() bool {
	return len(pk) == 0
}

// BlindSign computes s' = (m')^d mod N over a blinded message.
// The signer learns nothing about the underlying message.
func (pk PrivateKey) BlindSign(blinded *big.Int) (*big.Int, error) {
	cryptoKey, err := pk.GetCryptoKey()
	if err != nil {
		return nil, errors.Wrap(err, ErrPrivateKeySign)
	}
	return blindSign(cryptoKey, blinded)
}

func blindSign(cryptoKey *rsa.PrivateKey, blinded *big.Int) (*big.Int, error) {
	if !inRange(blinded, cryptoKey.N) {
		return nil, errors.Wraps(ErrPrivateKeySign, "blinded message is outside [0, N)")
	}
	// rsablind refuses input whose byte length overshoots N, which happens for most m' when N is not byte aligned
	if cryptoKey.N.BitLen()%8 != 0 {
		return new(big.Int).Exp(blinded, cryptoKey.D, cryptoKey.N), nil
	}
	rawSignature, err := rsablind.BlindSign(cryptoKey, blinded.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, ErrPrivateKeySign)
	}
	return new(big.Int).SetBytes(rawSignature), nil
}

// Get the public key
func (pk PrivateKey) PublicKey() (PublicKey, error) {
	cryptoKey, err := pk.GetCryptoKey()
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromCryptoKey(&cryptoKey.PublicKey)
}

// Implements Stringer
func (pk PrivateKey) String() string {
	pemBlock := pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: pk.Bytes(),
	}
	return string(pem.EncodeToMemory(&pemBlock))
}

package cryptoballot

import (
	"crypto/rsa"
	"io"
	"math/big"

	"github.com/phayes/errors"
)

// MaxBlindingAttempts bounds the search for an invertible blinding factor.
// Against a real modulus almost every sample is accepted, so running out means the modulus is corrupt.
const MaxBlindingAttempts = 1000

var (
	ErrBlindingFactor        = errors.New("Could not find a blinding factor invertible mod N")
	ErrBlindingFactorInvalid = errors.New("Blinding factor must satisfy 1 < r < N and gcd(r, N) = 1")
)

var bigOne = big.NewInt(1)

// NewBlindingFactor picks a random r with 1 < r < N and gcd(r, N) = 1.
// A fresh factor must be used for every vote attempt.
func NewBlindingFactor(pub *rsa.PublicKey) (*big.Int, error) {
	buf := make([]byte, (pub.N.BitLen()+7)/8)
	for i := 0; i < MaxBlindingAttempts; i++ {
		if _, err := io.ReadFull(randReader, buf); err != nil {
			return nil, errors.Wrap(err, ErrRandomSource)
		}
		r := new(big.Int).SetBytes(buf)
		r.Mod(r, pub.N)
		if ValidBlindingFactor(r, pub.N) {
			return r, nil
		}
	}
	return nil, ErrBlindingFactor
}

// ValidBlindingFactor reports whether r can blind messages under modulus N
func ValidBlindingFactor(r, modulus *big.Int) bool {
	if r == nil || modulus == nil {
		return false
	}
	if r.Cmp(bigOne) <= 0 || r.Cmp(modulus) >= 0 {
		return false
	}
	return new(big.Int).GCD(nil, nil, r, modulus).Cmp(bigOne) == 0
}

package cryptoballot

import (
	"crypto/rsa"
	"math/big"

	"github.com/cryptoballot/rsablind"
	"github.com/phayes/errors"
)

var (
	// ErrSignatureVerification is returned bare (never wrapped) so callers can compare against it directly.
	ErrSignatureVerification = errors.New("Signature verification failed")
	ErrMessageOutOfRange     = errors.New("Message must satisfy 0 <= m < N")
)

// Blind computes m' = m * r^e mod N.
// Without r, m' is indistinguishable from a random value mod N.
func Blind(pub *rsa.PublicKey, m, r *big.Int) (*big.Int, error) {
	if !inRange(m, pub.N) {
		return nil, ErrMessageOutOfRange
	}
	if !ValidBlindingFactor(r, pub.N) {
		return nil, ErrBlindingFactorInvalid
	}
	blinded := new(big.Int).Exp(r, big.NewInt(int64(pub.E)), pub.N)
	blinded.Mul(blinded, m)
	return blinded.Mod(blinded, pub.N), nil
}

// Unblind computes s = s' * r^-1 mod N, which is a plain RSA signature over the original m
func Unblind(pub *rsa.PublicKey, blindSig, r *big.Int) (*big.Int, error) {
	if !inRange(blindSig, pub.N) {
		return nil, ErrMessageOutOfRange
	}
	if !ValidBlindingFactor(r, pub.N) {
		return nil, ErrBlindingFactorInvalid
	}
	unblinder := new(big.Int).ModInverse(r, pub.N)
	if unblinder == nil {
		return nil, ErrBlindingFactorInvalid
	}
	sig := rsablind.Unblind(pub, blindSig.Bytes(), unblinder.Bytes())
	return new(big.Int).SetBytes(sig), nil
}

// VerifySignature checks that s^e mod N == m.
// Values outside [0, N) never verify, so s and s+N cannot both be accepted.
func VerifySignature(pub *rsa.PublicKey, m, s *big.Int) error {
	if !inRange(m, pub.N) || !inRange(s, pub.N) {
		return ErrSignatureVerification
	}
	if err := rsablind.VerifyBlindSignature(pub, m.Bytes(), s.Bytes()); err != nil {
		return ErrSignatureVerification
	}
	return nil
}

// inRange reports whether 0 <= x < N
func inRange(x, modulus *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(modulus) < 0
}

// parseDecimal reads a non-negative base-10 integer as it crosses the text boundary
func parseDecimal(s string) (*big.Int, bool) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok || x.Sign() < 0 {
		return nil, false
	}
	return x, true
}

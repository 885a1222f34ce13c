package cryptoballot

import (
	"crypto/sha256"
	"math/big"
)

// EncodeMessage maps a candidate choice and a nonce to the integer that gets blinded and signed:
// SHA256(candidate || nonce) read as a big-endian unsigned integer, reduced mod N.
func EncodeMessage(candidate string, nonce Nonce, modulus *big.Int) *big.Int {
	h := sha256.New()
	h.Write([]byte(candidate))
	h.Write(nonce[:])
	m := new(big.Int).SetBytes(h.Sum(nil))
	return m.Mod(m, modulus)
}

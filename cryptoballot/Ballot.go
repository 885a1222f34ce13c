package cryptoballot

import (
	"math/big"

	"github.com/phayes/errors"
)

var (
	ErrBallotInvalid         = errors.New("Invalid ballot format")
	ErrBallotMessageMismatch = errors.New("Ballot message does not match its candidate and nonce")
)

// A Ballot is an unblinded, signed vote ready to be published.
// It carries nothing that links it back to the blinded message the authority saw.
type Ballot struct {
	Candidate string
	Nonce     Nonce
	Message   *big.Int // m
	Signature *big.Int // s = m^d mod N
}

// NewBallot parses a ballot from its text form: hex nonce, decimal m and s.
// Generally the strings are coming from a voter in a request body. The ballot is not verified here.
func NewBallot(candidate, nonceHex, message, signature string) (*Ballot, error) {
	if err := ValidateCandidate(candidate); err != nil {
		return nil, err
	}
	nonce, err := NewNonceFromHex(nonceHex)
	if err != nil {
		return nil, err
	}
	m, ok := parseDecimal(message)
	if !ok {
		return nil, errors.Wraps(ErrBallotInvalid, "m must be a non-negative decimal integer")
	}
	s, ok := parseDecimal(signature)
	if !ok {
		return nil, errors.Wraps(ErrBallotInvalid, "s must be a non-negative decimal integer")
	}

	return &Ballot{
		Candidate: candidate,
		Nonce:     nonce,
		Message:   m,
		Signature: s,
	}, nil
}

// Verify is the check that must pass immediately before a ballot is recorded.
// It verifies s^e mod N == m, then that m really is the message for this candidate and nonce,
// so a valid (m, s) pair cannot be relabelled with another candidate.
func (ballot *Ballot) Verify(pub PublicKey) error {
	cryptoKey, err := pub.GetCryptoKey()
	if err != nil {
		return err
	}
	if err := VerifySignature(cryptoKey, ballot.Message, ballot.Signature); err != nil {
		return err
	}
	if EncodeMessage(ballot.Candidate, ballot.Nonce, cryptoKey.N).Cmp(ballot.Message) != 0 {
		return ErrBallotMessageMismatch
	}
	return nil
}

// Implements Stringer
func (ballot *Ballot) String() string {
	return ballot.Candidate + "\n" + ballot.Nonce.String() + "\n" + ballot.Message.String() + "\n" + ballot.Signature.String()
}

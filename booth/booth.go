// Package booth exposes the three voting steps over text fields and records finalized ballots.
package booth

import (
	"context"
	"math/big"

	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
	"github.com/phayes/errors"
)

var (
	ErrUnknownCandidate  = errors.New("Candidate is not on the ballot")
	ErrMalformedInteger  = errors.New("Expected a non-negative base-10 integer")
	ErrIntegerOutOfRange = errors.New("Integer must be smaller than the modulus N")
)

// A Booth signs blinded votes for one election and writes finalized ballots to its ledger.
// It holds no per-attempt state, so a single Booth serves any number of concurrent voters.
type Booth struct {
	authority *cryptoballot.Authority
	election  *cryptoballot.Election
	ledger    ledger.Ledger
}

func New(authority *cryptoballot.Authority, election *cryptoballot.Election, l ledger.Ledger) *Booth {
	return &Booth{
		authority: authority,
		election:  election,
		ledger:    l,
	}
}

func (b *Booth) PublicKey() cryptoballot.PublicKey {
	return b.authority.PublicKey()
}

func (b *Booth) ElectionID() string {
	return b.election.ElectionID
}

func (b *Booth) Candidates() []string {
	return append([]string(nil), b.election.Candidates...)
}

// StartVote runs the voter's first step and the authority's signature in one go:
// a fresh nonce and blinding factor, the blinded message, and the blind signature over it.
// Everything needed to continue is returned to the caller and nothing is kept.
func (b *Booth) StartVote(ctx context.Context, candidate string) (*StartVoteResponse, error) {
	if err := b.checkCandidate(candidate); err != nil {
		return nil, err
	}

	req, err := cryptoballot.NewSignatureRequest(b.authority.PublicKey(), candidate)
	if err != nil {
		logEvent(ctx, "start_vote", "result", "error", "error", err.Error())
		return nil, err
	}
	fulfilled, err := b.authority.SignRequest(req)
	if err != nil {
		logEvent(ctx, "start_vote", "result", "error", "error", err.Error())
		return nil, err
	}

	logEvent(ctx, "start_vote", "result", "signed")
	return &StartVoteResponse{
		Candidate: fulfilled.Candidate,
		NonceHex:  fulfilled.Nonce.String(),
		M:         fulfilled.Message.String(),
		R:         fulfilled.BlindingFactor.String(),
		SBlinded:  fulfilled.BlindSignature.String(),
	}, nil
}

// RevealVote removes the blinding factor from s' and verifies the result.
// A signature that does not verify is returned as cryptoballot.ErrSignatureVerification.
func (b *Booth) RevealVote(ctx context.Context, req RevealVoteRequest) (*RevealVoteResponse, error) {
	if err := b.checkCandidate(req.Candidate); err != nil {
		return nil, err
	}
	nonce, err := cryptoballot.NewNonceFromHex(req.NonceHex)
	if err != nil {
		return nil, inputError(err)
	}

	modulus := b.authority.CryptoKey().N
	m, err := parseInteger("m", req.M, modulus)
	if err != nil {
		return nil, err
	}
	r, err := parseInteger("r", req.R, modulus)
	if err != nil {
		return nil, err
	}
	if !cryptoballot.ValidBlindingFactor(r, modulus) {
		return nil, inputError(cryptoballot.ErrBlindingFactorInvalid)
	}
	blindSig, err := parseInteger("s_blinded", req.SBlinded, modulus)
	if err != nil {
		return nil, err
	}

	fulfilled := &cryptoballot.FulfilledSignatureRequest{
		SignatureRequest: cryptoballot.SignatureRequest{
			Candidate:      req.Candidate,
			Nonce:          nonce,
			Message:        m,
			BlindingFactor: r,
		},
		BlindSignature: blindSig,
	}
	ballot, err := fulfilled.Unblind(b.authority.PublicKey())
	if err != nil {
		logEvent(ctx, "reveal_vote", "result", "rejected")
		return nil, err
	}

	logEvent(ctx, "reveal_vote", "result", "verified")
	return &RevealVoteResponse{
		Candidate: ballot.Candidate,
		NonceHex:  ballot.Nonce.String(),
		M:         ballot.Message.String(),
		S:         ballot.Signature.String(),
	}, nil
}

// FinalizeVote verifies the ballot once more and only then appends it to the ledger.
// Success is reported only after the ledger has accepted the record.
func (b *Booth) FinalizeVote(ctx context.Context, req FinalizeVoteRequest) (*FinalizeVoteResponse, error) {
	ballot, err := b.parseBallot(req)
	if err != nil {
		return nil, err
	}

	if err := ballot.Verify(b.authority.PublicKey()); err != nil {
		logEvent(ctx, "finalize_vote", "result", "rejected", "nonce", ballot.Nonce.String())
		return nil, err
	}

	record := ledger.NewRecord(ballot)
	if err := b.ledger.Append(ctx, record); err != nil {
		if IsDuplicate(err) {
			logEvent(ctx, "finalize_vote", "result", "duplicate", "nonce", record.NonceHex)
			return nil, err
		}
		logEvent(ctx, "finalize_vote", "result", "error", "nonce", record.NonceHex, "error", err.Error())
		return nil, err
	}

	logEvent(ctx, "finalize_vote", "result", "recorded", "nonce", record.NonceHex, "candidato", record.Candidate)
	return &FinalizeVoteResponse{
		Recorded: true,
		RevealVoteResponse: RevealVoteResponse{
			Candidate: record.Candidate,
			NonceHex:  record.NonceHex,
			M:         record.M,
			S:         record.S,
		},
	}, nil
}

// Tally counts the recorded ballots per candidate
func (b *Booth) Tally(ctx context.Context) ([]ledger.Count, error) {
	records, err := b.ledger.Records(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Tally(records, b.election.Candidates), nil
}

func (b *Booth) checkCandidate(candidate string) error {
	if err := cryptoballot.ValidateCandidate(candidate); err != nil {
		return inputError(err)
	}
	if !b.election.HasCandidate(candidate) {
		return inputError(errors.Wraps(ErrUnknownCandidate, candidate))
	}
	return nil
}

func (b *Booth) parseBallot(req FinalizeVoteRequest) (*cryptoballot.Ballot, error) {
	if err := b.checkCandidate(req.Candidate); err != nil {
		return nil, err
	}
	nonce, err := cryptoballot.NewNonceFromHex(req.NonceHex)
	if err != nil {
		return nil, inputError(err)
	}

	modulus := b.authority.CryptoKey().N
	m, err := parseInteger("m", req.M, modulus)
	if err != nil {
		return nil, err
	}
	s, err := parseInteger("s", req.S, modulus)
	if err != nil {
		return nil, err
	}

	return &cryptoballot.Ballot{
		Candidate: req.Candidate,
		Nonce:     nonce,
		Message:   m,
		Signature: s,
	}, nil
}

// parseInteger reads a decimal field and checks 0 <= x < N
func parseInteger(name, value string, modulus *big.Int) (*big.Int, error) {
	x, ok := new(big.Int).SetString(value, 10)
	if !ok || x.Sign() < 0 {
		return nil, inputError(errors.Wraps(ErrMalformedInteger, name))
	}
	if x.Cmp(modulus) >= 0 {
		return nil, inputError(errors.Wraps(ErrIntegerOutOfRange, name))
	}
	return x, nil
}

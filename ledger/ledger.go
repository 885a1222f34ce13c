// Package ledger stores finalized ballots. It is the only shared mutable state of a voting booth.
package ledger

import (
	"context"
	"sort"

	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/phayes/errors"
)

var (
	ErrLedgerWrite = errors.New("Could not record ballot in ledger")
	ErrLedgerRead  = errors.New("Could not read ballots from ledger")

	// ErrDuplicateRecord is returned bare so callers can compare against it directly.
	ErrDuplicateRecord = errors.New("A ballot with this nonce has already been recorded")
)

// A Record is a published ballot. Everything in it is public once written.
type Record struct {
	Candidate string `json:"candidato"`
	NonceHex  string `json:"nonce_hex"`
	M         string `json:"m"`
	S         string `json:"s"`
}

func NewRecord(ballot *cryptoballot.Ballot) Record {
	return Record{
		Candidate: ballot.Candidate,
		NonceHex:  ballot.Nonce.String(),
		M:         ballot.Message.String(),
		S:         ballot.Signature.String(),
	}
}

// Ballot parses the record back into a ballot so it can be verified again
func (record Record) Ballot() (*cryptoballot.Ballot, error) {
	return cryptoballot.NewBallot(record.Candidate, record.NonceHex, record.M, record.S)
}

// A Ledger is an append-only list of records.
// Append must be atomic with respect to concurrent callers and must refuse a second record with the same nonce.
type Ledger interface {
	Append(ctx context.Context, record Record) error
	Records(ctx context.Context) ([]Record, error)
	Close() error
}

// Count is the number of recorded ballots for one candidate
type Count struct {
	Candidate string `json:"candidato"`
	Votes     int    `json:"votos"`
}

// Tally groups records by candidate. Configured candidates come first in their configured order,
// zero counts included, followed by any other recorded candidate in sorted order.
func Tally(records []Record, candidates []string) []Count {
	counts := make(map[string]int)
	for _, record := range records {
		counts[record.Candidate]++
	}

	tally := make([]Count, 0, len(candidates))
	listed := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if listed[candidate] {
			continue
		}
		listed[candidate] = true
		tally = append(tally, Count{Candidate: candidate, Votes: counts[candidate]})
	}

	var others []string
	for candidate := range counts {
		if !listed[candidate] {
			others = append(others, candidate)
		}
	}
	sort.Strings(others)
	for _, candidate := range others {
		tally = append(tally, Count{Candidate: candidate, Votes: counts[candidate]})
	}

	return tally
}

package booth

import (
	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
	"github.com/phayes/errors"
)

var ErrDuplicateNonce = errors.New("Nonce appears more than once in the ledger")

// An AuditFailure is a ledger record that does not hold up to verification
type AuditFailure struct {
	Index  int
	Record ledger.Record
	Err    error
}

// Audit re-verifies every record of a published ledger against the authority's public key.
// Anyone holding the ledger and the public key can run it; nothing secret is needed.
func Audit(pub cryptoballot.PublicKey, records []ledger.Record) []AuditFailure {
	var failures []AuditFailure
	seen := make(map[string]bool, len(records))

	for i, record := range records {
		ballot, err := record.Ballot()
		if err != nil {
			failures = append(failures, AuditFailure{Index: i, Record: record, Err: err})
			continue
		}
		if err := ballot.Verify(pub); err != nil {
			failures = append(failures, AuditFailure{Index: i, Record: record, Err: err})
			continue
		}
		nonce := ballot.Nonce.String()
		if seen[nonce] {
			failures = append(failures, AuditFailure{Index: i, Record: record, Err: ErrDuplicateNonce})
			continue
		}
		seen[nonce] = true
	}

	return failures
}

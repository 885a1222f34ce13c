package booth

import (
	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
)

// InputError is returned when a request is malformed: a bad decimal or hex field,
// an integer out of range or a candidate that is not on the ballot.
type InputError struct {
	Err error
}

func (err InputError) Error() string {
	return err.Err.Error()
}

func inputError(err error) error {
	return InputError{Err: err}
}

// IsInputError reports whether err was caused by the caller's input
func IsInputError(err error) bool {
	_, ok := err.(InputError)
	return ok
}

// IsRejected reports whether err means a ballot failed verification.
// A rejected attempt is discarded, never retried.
func IsRejected(err error) bool {
	return err == cryptoballot.ErrSignatureVerification || err == cryptoballot.ErrBallotMessageMismatch
}

// IsDuplicate reports whether err means the ballot is already in the ledger
func IsDuplicate(err error) bool {
	return err == ledger.ErrDuplicateRecord
}

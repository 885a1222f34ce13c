package cryptoballot

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/phayes/errors"
)

// You may set the maximum number of bytes for a candidate choice here.
const MaxCandidateBytes = 256

var ErrCandidateInvalid = errors.New("Invalid candidate")

// ValidateCandidate checks the free-text candidate choice that gets hashed into a vote message.
// It's up to the tallying side to assign meaning to these strings.
func ValidateCandidate(candidate string) error {
	if candidate == "" {
		return errors.Wraps(ErrCandidateInvalid, "A candidate must be selected")
	}
	if len(candidate) > MaxCandidateBytes {
		return errors.Wraps(ErrCandidateInvalid, "A candidate may have a maximum of "+strconv.Itoa(MaxCandidateBytes)+" bytes")
	}
	if !utf8.ValidString(candidate) {
		return errors.Wraps(ErrCandidateInvalid, "Candidate must be valid UTF-8")
	}
	if strings.ContainsAny(candidate, "\r\n") {
		return errors.Wraps(ErrCandidateInvalid, "Candidate may not contain line breaks")
	}
	return nil
}

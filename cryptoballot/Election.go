package cryptoballot

import (
	"regexp"

	"github.com/phayes/errors"
)

const (
	MaxElectionIDSize = 48 // Ballots are stored in a postgres table named ballots_<election-id> so we need to limit the election ID size.
)

var (
	ValidElectionID = regexp.MustCompile(`^[0-9a-zA-Z]+$`) // We use this ID to construct the name of a table, so we need to limit allowed characters.

	// DefaultCandidates are offered when no candidate list is configured
	DefaultCandidates = []string{"Candidato A", "Candidato B", "Candidato C"}

	ErrElectionIDInvalid   = errors.New("Election ID contains illegal characters. Valid characters are 0-9, a-z and A-Z")
	ErrElectionIDTooBig    = errors.New("Election ID is too big. Maximum election-id size is 48 characters")
	ErrElectionNoCandidate = errors.New("An election needs at least one candidate")
	ErrElectionDuplicate   = errors.New("Candidate listed more than once")
)

// An Election is the list of candidates a voter may choose from
type Election struct {
	ElectionID string
	Candidates []string
}

func NewElection(electionID string, candidates []string) (*Election, error) {
	if len(electionID) > MaxElectionIDSize {
		return nil, ErrElectionIDTooBig
	}
	if !ValidElectionID.MatchString(electionID) {
		return nil, ErrElectionIDInvalid
	}
	if len(candidates) == 0 {
		return nil, ErrElectionNoCandidate
	}

	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if err := ValidateCandidate(candidate); err != nil {
			return nil, err
		}
		if seen[candidate] {
			return nil, errors.Wraps(ErrElectionDuplicate, candidate)
		}
		seen[candidate] = true
	}

	return &Election{
		ElectionID: electionID,
		Candidates: append([]string(nil), candidates...),
	}, nil
}

// HasCandidate reports whether candidate is on the ballot
func (election *Election) HasCandidate(candidate string) bool {
	for _, c := range election.Candidates {
		if c == candidate {
			return true
		}
	}
	return false
}

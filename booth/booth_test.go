package booth

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
	"github.com/google/go-cmp/cmp"
	"github.com/phayes/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKeyOnce sync.Once
	testKey     cryptoballot.PrivateKey
	testKeyErr  error
)

// testAuthority shares one generated key across the package's tests
func testAuthority(t *testing.T) *cryptoballot.Authority {
	t.Helper()
	testKeyOnce.Do(func() {
		testKey, testKeyErr = cryptoballot.GeneratePrivateKey(512)
	})
	require.NoError(t, testKeyErr)

	authority, err := cryptoballot.NewAuthority(testKey)
	require.NoError(t, err)
	return authority
}

func testBooth(t *testing.T, l ledger.Ledger) *Booth {
	t.Helper()
	election, err := cryptoballot.NewElection("test", cryptoballot.DefaultCandidates)
	require.NoError(t, err)
	return New(testAuthority(t), election, l)
}

// vote runs the first two steps and returns what the voter would submit to finalize
func vote(t *testing.T, b *Booth, candidate string) FinalizeVoteRequest {
	t.Helper()
	ctx := context.Background()

	started, err := b.StartVote(ctx, candidate)
	require.NoError(t, err)

	revealed, err := b.RevealVote(ctx, RevealVoteRequest(*started))
	require.NoError(t, err)

	return FinalizeVoteRequest(*revealed)
}

func TestVoteFlow(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()
	b := testBooth(t, l)

	started, err := b.StartVote(ctx, "Candidato A")
	require.NoError(t, err)
	assert.Equal(t, "Candidato A", started.Candidate)
	assert.Len(t, started.NonceHex, 32)

	// m is bound to the candidate and the nonce
	nonce, err := cryptoballot.NewNonceFromHex(started.NonceHex)
	require.NoError(t, err)
	assert.Equal(t, cryptoballot.EncodeMessage("Candidato A", nonce, b.PublicKey().Modulus()).String(), started.M)

	revealed, err := b.RevealVote(ctx, RevealVoteRequest(*started))
	require.NoError(t, err)
	assert.Equal(t, started.Candidate, revealed.Candidate)
	assert.Equal(t, started.NonceHex, revealed.NonceHex)
	assert.Equal(t, started.M, revealed.M)

	// Nothing is recorded until finalize
	records, err := l.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	finalized, err := b.FinalizeVote(ctx, FinalizeVoteRequest(*revealed))
	require.NoError(t, err)
	assert.True(t, finalized.Recorded)
	if diff := cmp.Diff(*revealed, finalized.RevealVoteResponse); diff != "" {
		t.Errorf("Finalize response mismatch (-want +got):\n%s", diff)
	}

	records, err = l.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ledger.Record{
		Candidate: revealed.Candidate,
		NonceHex:  revealed.NonceHex,
		M:         revealed.M,
		S:         revealed.S,
	}, records[0])

	tally, err := b.Tally(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Count{
		{Candidate: "Candidato A", Votes: 1},
		{Candidate: "Candidato B", Votes: 0},
		{Candidate: "Candidato C", Votes: 0},
	}, tally)
}

func TestStartVoteBadCandidate(t *testing.T) {
	b := testBooth(t, ledger.NewMemoryLedger())

	for _, candidate := range []string{"", "Candidato Z", "Candidato\nA"} {
		_, err := b.StartVote(context.Background(), candidate)
		assert.True(t, IsInputError(err), "candidate %q: %v", candidate, err)
	}
}

func TestFinalizeTampered(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()
	b := testBooth(t, l)

	req := vote(t, b, "Candidato B")
	m, ok := new(big.Int).SetString(req.M, 10)
	require.True(t, ok)

	tampered := req
	tampered.M = new(big.Int).Add(m, big.NewInt(1)).String()
	_, err := b.FinalizeVote(ctx, tampered)
	assert.Equal(t, cryptoballot.ErrSignatureVerification, err)
	assert.True(t, IsRejected(err))

	// A valid signature cannot be moved to another candidate
	relabelled := req
	relabelled.Candidate = "Candidato C"
	_, err = b.FinalizeVote(ctx, relabelled)
	assert.Equal(t, cryptoballot.ErrBallotMessageMismatch, err)
	assert.True(t, IsRejected(err))

	records, err := l.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	// The untouched ballot still goes through
	_, err = b.FinalizeVote(ctx, req)
	assert.NoError(t, err)
}

func TestFinalizeDuplicate(t *testing.T) {
	ctx := context.Background()
	b := testBooth(t, ledger.NewMemoryLedger())

	req := vote(t, b, "Candidato A")
	_, err := b.FinalizeVote(ctx, req)
	require.NoError(t, err)

	_, err = b.FinalizeVote(ctx, req)
	assert.True(t, IsDuplicate(err), "%v", err)

	tally, err := b.Tally(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tally[0].Votes)
}

func TestRevealWrongFactor(t *testing.T) {
	ctx := context.Background()
	b := testBooth(t, ledger.NewMemoryLedger())

	started, err := b.StartVote(ctx, "Candidato A")
	require.NoError(t, err)

	req := RevealVoteRequest(*started)
	req.R = "7"
	if req.R == started.R {
		t.Skip("drew r = 7")
	}
	_, err = b.RevealVote(ctx, req)
	assert.Equal(t, cryptoballot.ErrSignatureVerification, err)
}

func TestMalformedInput(t *testing.T) {
	ctx := context.Background()
	b := testBooth(t, ledger.NewMemoryLedger())
	modulus := b.PublicKey().Modulus()

	good := vote(t, b, "Candidato A")

	cases := map[string]func(req *FinalizeVoteRequest){
		"nonce not hex":   func(req *FinalizeVoteRequest) { req.NonceHex = "zz" + req.NonceHex[2:] },
		"nonce too short": func(req *FinalizeVoteRequest) { req.NonceHex = req.NonceHex[2:] },
		"m not decimal":   func(req *FinalizeVoteRequest) { req.M = "0x1f" },
		"m negative":      func(req *FinalizeVoteRequest) { req.M = "-" + req.M },
		"m equals N":      func(req *FinalizeVoteRequest) { req.M = modulus.String() },
		"s empty":         func(req *FinalizeVoteRequest) { req.S = "" },
		"s plus N": func(req *FinalizeVoteRequest) {
			s, _ := new(big.Int).SetString(req.S, 10)
			req.S = s.Add(s, modulus).String()
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := good
			mutate(&req)
			_, err := b.FinalizeVote(ctx, req)
			assert.True(t, IsInputError(err), "%v", err)
		})
	}

	started, err := b.StartVote(ctx, "Candidato B")
	require.NoError(t, err)
	for _, r := range []string{"0", "1", modulus.String(), "abc"} {
		req := RevealVoteRequest(*started)
		req.R = r
		_, err := b.RevealVote(ctx, req)
		assert.True(t, IsInputError(err), "r = %s: %v", r, err)
	}
}

type failingLedger struct {
	ledger.MemoryLedger
}

func (failingLedger) Append(ctx context.Context, record ledger.Record) error {
	return errors.Wraps(ledger.ErrLedgerWrite, "disk full")
}

func TestFinalizeLedgerFailure(t *testing.T) {
	ctx := context.Background()
	l := &failingLedger{}
	b := testBooth(t, l)

	req := vote(t, b, "Candidato C")
	resp, err := b.FinalizeVote(ctx, req)
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ledger.ErrLedgerWrite.Error())
	assert.False(t, IsRejected(err))
	assert.False(t, IsInputError(err))
	assert.False(t, IsDuplicate(err))
}

func TestConcurrentFinalize(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()
	b := testBooth(t, l)

	const voters = 24
	candidates := b.Candidates()

	reqs := make([]FinalizeVoteRequest, voters)
	for i := range reqs {
		reqs[i] = vote(t, b, candidates[i%len(candidates)])
	}

	var wg sync.WaitGroup
	errs := make([]error, voters)
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.FinalizeVote(ctx, reqs[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	tally, err := b.Tally(ctx)
	require.NoError(t, err)
	for _, count := range tally {
		assert.Equal(t, voters/len(candidates), count.Votes, count.Candidate)
	}
}

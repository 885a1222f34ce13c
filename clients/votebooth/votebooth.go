// Package votebooth is a client for the votebooth REST service
package votebooth

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/pem"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/cryptoballot/blindvote/booth"
	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
	"github.com/phayes/errors"
)

var (
	ErrGetPublicKey   = errors.New("votebooth: Unable to GET public signing key")
	ErrMisingPEMBLock = errors.New("votebooth: Missing PEM Block")
	ErrGetCandidates  = errors.New("votebooth: Unable to GET candidates")
	ErrStartVote      = errors.New("votebooth: Unable to start vote")
	ErrRevealVote     = errors.New("votebooth: Unable to reveal vote")
	ErrFinalizeVote   = errors.New("votebooth: Unable to finalize vote")
	ErrGetTally       = errors.New("votebooth: Unable to GET tally")

	// Returned in place of the call's own error when the booth refuses a ballot
	ErrRejected  = errors.New("votebooth: Ballot rejected")
	ErrDuplicate = errors.New("votebooth: Ballot already recorded")
)

// Client provides access to the votebooth REST service
type Client struct {
	BaseURL    string
	HTTPClient http.Client
}

// Candidates is the ballot offered by a booth
type Candidates struct {
	ElectionID string   `json:"election_id"`
	Candidates []string `json:"candidatos"`
}

// NewClient creates a new votebooth.Client for the booth at baseurl
func NewClient(baseurl string) *Client {
	return &Client{BaseURL: baseurl, HTTPClient: http.Client{}}
}

// GetPublicKey gets the public signing key of the booth's authority
func (c *Client) GetPublicKey(ctx context.Context) (cryptoballot.PublicKey, error) {
	body, err := c.get(ctx, "/publickey", ErrGetPublicKey)
	if err != nil {
		return nil, err
	}

	pemBlock, _ := pem.Decode(body)
	if pemBlock == nil {
		return nil, errors.Wrap(ErrMisingPEMBLock, ErrGetPublicKey)
	}

	pubKey, err := cryptoballot.NewPublicKeyFromBlock(pemBlock)
	if err != nil {
		return nil, errors.Wrap(err, ErrGetPublicKey)
	}

	return pubKey, nil
}

// GetCandidates gets the election id and the list of candidates
func (c *Client) GetCandidates(ctx context.Context) (*Candidates, error) {
	body, err := c.get(ctx, "/candidates", ErrGetCandidates)
	if err != nil {
		return nil, err
	}

	var candidates Candidates
	if err := json.Unmarshal(body, &candidates); err != nil {
		return nil, errors.Wrap(err, ErrGetCandidates)
	}
	return &candidates, nil
}

// StartVote asks the booth to sign a blinded vote for candidate
func (c *Client) StartVote(ctx context.Context, candidate string) (*booth.StartVoteResponse, error) {
	var resp booth.StartVoteResponse
	if err := c.post(ctx, "/vote/start", booth.StartVoteRequest{Candidate: candidate}, &resp, ErrStartVote); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RevealVote asks the booth to unblind and check a signature request
func (c *Client) RevealVote(ctx context.Context, req booth.RevealVoteRequest) (*booth.RevealVoteResponse, error) {
	var resp booth.RevealVoteResponse
	if err := c.post(ctx, "/vote/reveal", req, &resp, ErrRevealVote); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FinalizeVote submits a ballot for recording
func (c *Client) FinalizeVote(ctx context.Context, req booth.FinalizeVoteRequest) (*booth.FinalizeVoteResponse, error) {
	var resp booth.FinalizeVoteResponse
	if err := c.post(ctx, "/vote/finalize", req, &resp, ErrFinalizeVote); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tally gets the vote count per candidate
func (c *Client) Tally(ctx context.Context) ([]ledger.Count, error) {
	body, err := c.get(ctx, "/tally", ErrGetTally)
	if err != nil {
		return nil, err
	}

	var tally []ledger.Count
	if err := json.Unmarshal(body, &tally); err != nil {
		return nil, errors.Wrap(err, ErrGetTally)
	}
	return tally, nil
}

func (c *Client) get(ctx context.Context, path string, callErr error) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, callErr)
	}
	return c.do(req, callErr)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}, callErr error) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, callErr)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, callErr)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, callErr)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, callErr)
	}
	return nil
}

func (c *Client) do(req *http.Request, callErr error) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	defer ResponseDrainAndClose(resp)
	if err != nil {
		return nil, errors.Wrap(err, callErr)
	}

	if resp.StatusCode != http.StatusOK {
		details, _ := ioutil.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusForbidden:
			return nil, errors.Appendf(ErrRejected, "votebooth: %s - %s", resp.Status, details)
		case http.StatusConflict:
			return nil, errors.Appendf(ErrDuplicate, "votebooth: %s - %s", resp.Status, details)
		}
		return nil, errors.Appendf(callErr, "votebooth: %s - %s", resp.Status, details)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, callErr)
	}
	return body, nil
}

// IsRejected reports whether the booth refused the ballot because it failed verification
func IsRejected(err error) bool {
	return err != nil && strings.Contains(err.Error(), ErrRejected.Error())
}

// IsDuplicate reports whether the booth had already recorded the ballot
func IsDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), ErrDuplicate.Error())
}

// ResponseDrainAndClose drains a response of it's body and closes it
// It should be used in a defer statement when doing an HTTP request
func ResponseDrainAndClose(resp *http.Response) {
	if resp != nil {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}

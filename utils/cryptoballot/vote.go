package main

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"github.com/cryptoballot/blindvote/booth"
	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/phayes/errors"
	"github.com/urfave/cli"
)

var ErrBadResponse = errors.New("votebooth returned an unreadable signature request")

func actionVote(c *cli.Context) error {
	candidate := c.Args().First()
	if candidate == "" {
		log.Fatal("Please specify the candidate to vote for")
	}
	ctx := context.Background()

	// Get public key from the booth
	publicKey, err := BoothClient.GetPublicKey(ctx)
	if err != nil {
		log.Fatal(err)
	}

	started, err := BoothClient.StartVote(ctx, candidate)
	if err != nil {
		log.Fatal(err)
	}

	// Unblind and verify locally so the booth never learns s
	ballot, err := unblind(publicKey, started)
	if err != nil {
		log.Fatal(err)
	}

	finalized, err := BoothClient.FinalizeVote(ctx, booth.FinalizeVoteRequest{
		Candidate: ballot.Candidate,
		NonceHex:  ballot.Nonce.String(),
		M:         ballot.Message.String(),
		S:         ballot.Signature.String(),
	})
	if err != nil {
		log.Fatal(err)
	}

	if !finalized.Recorded {
		log.Fatal("votebooth did not confirm the ballot")
	}

	// Keep this to find your ballot in the published ledger later
	fmt.Println("Vote recorded")
	fmt.Println(ballot.String())
	return nil
}

// unblind turns the booth's signature request back into a verified ballot
func unblind(pub cryptoballot.PublicKey, started *booth.StartVoteResponse) (*cryptoballot.Ballot, error) {
	nonce, err := cryptoballot.NewNonceFromHex(started.NonceHex)
	if err != nil {
		return nil, errors.Wrap(err, ErrBadResponse)
	}
	m, ok := new(big.Int).SetString(started.M, 10)
	if !ok {
		return nil, errors.Wraps(ErrBadResponse, "m")
	}
	r, ok := new(big.Int).SetString(started.R, 10)
	if !ok {
		return nil, errors.Wraps(ErrBadResponse, "r")
	}
	blindSig, ok := new(big.Int).SetString(started.SBlinded, 10)
	if !ok {
		return nil, errors.Wraps(ErrBadResponse, "s_blinded")
	}

	fulfilled := &cryptoballot.FulfilledSignatureRequest{
		SignatureRequest: cryptoballot.SignatureRequest{
			Candidate:      started.Candidate,
			Nonce:          nonce,
			Message:        m,
			BlindingFactor: r,
		},
		BlindSignature: blindSig,
	}
	return fulfilled.Unblind(pub)
}


package main

import (
	"context"
	"fmt"
	"log"

	"github.com/cryptoballot/blindvote/ledger"
	"github.com/urfave/cli"
)

func actionTally(c *cli.Context) error {
	ctx := context.Background()

	var (
		tally []ledger.Count
		err   error
	)
	if c.String("ledger") != "" {
		var records []ledger.Record
		records, err = readLedger(ctx, c.String("ledger"))
		if err == nil {
			tally = ledger.Tally(records, nil)
		}
	} else {
		tally, err = BoothClient.Tally(ctx)
	}
	if err != nil {
		log.Fatal(err)
	}

	for _, count := range tally {
		fmt.Printf("%s: %d\n", count.Candidate, count.Votes)
	}
	return nil
}

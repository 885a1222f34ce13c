package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cryptoballot/blindvote/booth"
	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
	"github.com/urfave/cli"
)

func actionVerify(c *cli.Context) error {
	filename := c.Args().First()
	if filename == "" {
		log.Fatal("Please specify a ledger file to verify")
	}
	ctx := context.Background()

	var (
		publicKey cryptoballot.PublicKey
		err       error
	)
	if c.String("pubkey") != "" {
		publicKey, err = cryptoballot.KeyFiles{PublicPath: c.String("pubkey")}.LoadPublicKey()
	} else {
		publicKey, err = BoothClient.GetPublicKey(ctx)
	}
	if err != nil {
		log.Fatal(err)
	}

	records, err := readLedger(ctx, filename)
	if err != nil {
		log.Fatal(err)
	}

	failures := booth.Audit(publicKey, records)
	for _, failure := range failures {
		fmt.Printf("ballot %d (nonce %s): %v\n", failure.Index, failure.Record.NonceHex, failure.Err)
	}
	if len(failures) != 0 {
		log.Fatalf("%d of %d ballots failed verification", len(failures), len(records))
	}

	fmt.Printf("All %d ballots verified\n", len(records))
	return nil
}

// readLedger loads the records of a published ledger file
func readLedger(ctx context.Context, filename string) ([]ledger.Record, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}
	l, err := ledger.NewFileLedger(filename)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.Records(ctx)
}

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cryptoballot/blindvote/clients/votebooth"
	"github.com/urfave/cli"
)

// Version specifies the version of this binary
var Version = "0.1"

// BoothClient is used to connect to the votebooth server
var BoothClient *votebooth.Client

func main() {
	app := cli.NewApp()
	app.Name = "cryptoballot"
	app.Usage = "generate authority keys, vote, and audit a votebooth ledger"

	// Global options
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "server",
			Value: "http://localhost:8000",
			Usage: "Base URL of the votebooth server",
		},
	}

	// Commands
	app.Commands = []cli.Command{
		{
			Name:   "keygen",
			Usage:  "generate a new authority signing key",
			Action: actionKeygen,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "bits",
					Value: 2 * 1024,
					Usage: "Size of the modulus N in bits",
				},
				cli.BoolFlag{
					Name:  "encrypt",
					Usage: "Protect the private key with a passphrase",
				},
				cli.StringFlag{
					Name:  "private",
					Value: "authority.pem",
				},
				cli.StringFlag{
					Name:  "public",
					Value: "authority.pub",
				},
			},
		},
		{
			Name:   "publickey",
			Usage:  "print the public key for a private key",
			Action: actionPublicKey,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "key",
					Usage: "Path to the private key PEM file",
				},
			},
		},
		{
			Name:      "vote",
			Usage:     "vote for a candidate",
			ArgsUsage: "[candidate]",
			Action:    actionVote,
		},
		{
			Name:      "verify",
			Usage:     "verify every ballot in a ledger file",
			ArgsUsage: "[ledger.json]",
			Action:    actionVerify,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "pubkey",
					Usage: "Path to the authority's public key. Fetched from --server when not set.",
				},
			},
		},
		{
			Name:   "tally",
			Usage:  "print the vote count per candidate",
			Action: actionTally,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "ledger",
					Usage: "Count a ledger file instead of asking the server",
				},
			},
		},
		{
			Name:  "version",
			Usage: "print version",
			Action: func(c *cli.Context) error {
				fmt.Println(Version)
				return nil
			},
		},
	}

	// Set up connection to the booth
	app.Before = func(c *cli.Context) error {
		BoothClient = votebooth.NewClient(c.String("server"))
		return nil
	}

	app.Version = Version
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

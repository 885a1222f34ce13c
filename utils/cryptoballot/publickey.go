package main

import (
	"fmt"
	"log"

	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/phayes/decryptpem"
	"github.com/urfave/cli"
)

func actionPublicKey(c *cli.Context) error {
	if c.String("key") == "" {
		log.Fatal("Please specify a private key pem file with --key (eg: `--key=path/to/mykey.pem`)")
	}

	// Decrypt it as needed
	pem, err := decryptpem.DecryptFileWithPrompt(c.String("key"))
	if err != nil {
		log.Fatal(err)
	}

	privateKey, err := cryptoballot.NewPrivateKeyFromBlock(pem)
	if err != nil {
		log.Fatal(err)
	}

	publicKey, err := privateKey.PublicKey()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Print(publicKey.String())
	return nil
}

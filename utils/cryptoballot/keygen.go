package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/entropychecker"
	"github.com/phayes/errors"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

// Key generation gives up after this many unlucky prime pairs
const keygenAttempts = 16

var ErrPassphraseMismatch = errors.New("Passphrases do not match")

func actionKeygen(c *cli.Context) error {
	if runtime.GOOS == "linux" {
		if err := entropychecker.WaitForEntropy(); err != nil {
			log.Fatal(err)
		}
	}

	bits := c.Int("bits")
	if bits%2 != 0 {
		log.Fatal("--bits must be even")
	}

	var passphrase []byte
	if c.Bool("encrypt") {
		var err error
		passphrase, err = confirmPassphrase()
		if err != nil {
			log.Fatal(err)
		}
	}

	var (
		priv cryptoballot.PrivateKey
		err  error
	)
	for i := 0; i < keygenAttempts; i++ {
		priv, err = cryptoballot.GeneratePrivateKey(bits / 2)
		if err == nil {
			break
		}
	}
	if err != nil {
		log.Fatal(err)
	}

	keyFiles := cryptoballot.KeyFiles{
		PrivatePath: c.String("private"),
		PublicPath:  c.String("public"),
	}
	if err := keyFiles.Persist(priv, passphrase); err != nil {
		log.Fatal(err)
	}

	pub, err := priv.PublicKey()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s and %s\n", keyFiles.PrivatePath, keyFiles.PublicPath)
	fmt.Println(fingerprint(pub))
	return nil
}

func fingerprint(pub cryptoballot.PublicKey) string {
	return fmt.Sprintf("Public key SHA256: %s", pub.GetSHA256())
}

func askPassphrase(prompt string) ([]byte, error) {
	defer func() { _, _ = fmt.Fprintln(os.Stderr) }()

	_, _ = fmt.Fprint(os.Stderr, prompt)

	return term.ReadPassword(int(os.Stdin.Fd()))
}

func confirmPassphrase() ([]byte, error) {
	first, err := askPassphrase("Enter passphrase: ")
	if err != nil {
		return nil, err
	}
	second, err := askPassphrase("Confirm passphrase: ")
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, ErrPassphraseMismatch
	}
	return first, nil
}

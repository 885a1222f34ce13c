package main

import (
	"context"
	"log"
	"runtime"
	"strconv"

	"github.com/cryptoballot/blindvote/booth"
	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
	"github.com/cryptoballot/entropychecker"
	"github.com/etnz/logfmt"
	"github.com/phayes/errors"
	"github.com/urfave/cli"
)

var ErrSetUpDriver = errors.New("--set-up-db only applies to the postgres ledger")

// loadConfig reads the config from an ini file or, with --envconfig, from the environment
func loadConfig(c *cli.Context) (*Config, error) {
	if c.Bool("envconfig") {
		conf, err := NewConfigFromEnv()
		if err != nil {
			return nil, errors.Wraps(err, "Error loading environment variables")
		}
		return conf, nil
	}
	conf, err := NewConfigFromFile(c.String("config"))
	if err != nil {
		return nil, errors.Wraps(err, "Error parsing config file")
	}
	return conf, nil
}

// waitForEntropy blocks until the kernel has enough entropy for key material, nonces and blinding factors
func waitForEntropy() {
	if runtime.GOOS == "linux" {
		err := entropychecker.WaitForEntropy()
		if err != nil {
			log.Fatal(err)
		}
	}
}

// openLedger connects the configured ledger
func openLedger(ctx context.Context, conf *Config) (ledger.Ledger, error) {
	switch conf.ledger.driver {
	case "memory":
		return ledger.NewMemoryLedger(), nil
	case "file":
		return ledger.NewFileLedger(conf.ledger.path)
	case "postgres":
		db, err := ledger.OpenDatabase(ctx, conf.database)
		if err != nil {
			return nil, err
		}
		pl, err := ledger.NewPostgresLedger(db, conf.electionID)
		if err != nil {
			db.Close()
			return nil, err
		}
		return pl, nil
	}
	return nil, errors.Wraps(ErrUnknownDriver, conf.ledger.driver)
}

// setUpLedger creates the database schema. It only applies to the postgres ledger.
func setUpLedger(ctx context.Context, l ledger.Ledger) error {
	pl, ok := l.(*ledger.PostgresLedger)
	if !ok {
		return ErrSetUpDriver
	}
	return pl.SetUp(ctx)
}

// newBooth loads the signing key and assembles the booth.
// The private key is prompted for if it is encrypted, and checked against the configured public key.
func newBooth(conf *Config, l ledger.Ledger) (*booth.Booth, error) {
	keyFiles := cryptoballot.KeyFiles{
		PrivatePath: conf.signingKeyPath,
		PublicPath:  conf.publicKeyPath,
	}
	signingKey, _, err := keyFiles.Load()
	if err != nil {
		return nil, err
	}

	authority, err := cryptoballot.NewAuthority(signingKey)
	if err != nil {
		return nil, err
	}

	election, err := cryptoballot.NewElection(conf.electionID, conf.candidates)
	if err != nil {
		return nil, err
	}

	summary, err := keySummary(authority.PublicKey())
	if err != nil {
		return nil, err
	}
	log.Println(summary)

	return booth.New(authority, election, l), nil
}

// keySummary describes the signing key so voters can check they hold the same public key
func keySummary(pub cryptoballot.PublicKey) (string, error) {
	bits, err := pub.KeyLength()
	if err != nil {
		return "", err
	}
	return logfmt.Rec().
		Q("event", "signing_key_loaded").
		Q("sha256", string(pub.GetSHA256())).
		Q("bits", strconv.Itoa(bits)).
		String(), nil
}

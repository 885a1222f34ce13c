package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli"
)

// Version specifies the version of this binary
var Version = "0.1"

func main() {
	app := cli.NewApp()
	app.Name = "votebooth"
	app.Usage = "sign blinded votes and record the ballots voters reveal"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Value: "./votebooth.conf",
			Usage: "Path to config file. The config file must be owned by and only readable by this user.",
		},
		cli.BoolFlag{
			Name:  "envconfig",
			Usage: "Use environment variables (instead of an ini file) for configuration.",
		},
		cli.BoolFlag{
			Name:  "set-up-db",
			Usage: "Set up fresh database tables and schema. This should be run once before normal operations can occur.",
		},
	}

	app.Action = run
	app.Version = Version
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// If we are on linux, ensure we have sufficient entropy.
	waitForEntropy()

	conf, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	l, err := openLedger(ctx, conf)
	if err != nil {
		return err
	}
	defer l.Close()

	// If we are in 'set-up' mode, set-up the database and exit
	if c.Bool("set-up-db") {
		if err := setUpLedger(ctx, l); err != nil {
			return err
		}
		fmt.Println("Database set-up complete. Please run again without --set-up-db")
		return nil
	}

	b, err := newBooth(conf, l)
	if err != nil {
		return err
	}

	router := newRouter(&server{
		booth:  b,
		readme: conf.readme,
	})

	log.Println("Listening on port " + strconv.Itoa(conf.port))
	return router.Run(":" + strconv.Itoa(conf.port))
}

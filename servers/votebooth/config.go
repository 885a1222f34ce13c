package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
	"github.com/dlintw/goconf"
	"github.com/phayes/errors"
)

const (
	defaultPort         = 8000
	defaultLedgerDriver = "file"
	defaultLedgerPath   = "votes.json"
)

var (
	ErrConfigNotFound  = errors.New("Could not find config file. Try using the --config=\"<path-to-config-file>\" option to specify a config file.")
	ErrConfigMissing   = errors.New("Missing required configuration")
	ErrConfigInvalid   = errors.New("Invalid configuration value")
	ErrUnknownDriver   = errors.New("Unknown ledger driver. Valid drivers are file, postgres and memory")
	ErrReadmeNotLoaded = errors.New("Could not load readme")
)

type Config struct {
	configFilePath string
	port           int
	signingKeyPath string
	publicKeyPath  string
	readmePath     string
	readme         []byte
	electionID     string
	candidates     []string
	ledger         struct {
		driver string
		path   string
	}
	database ledger.DatabaseConfig
}

// NewConfigFromFile reads an ini style config file.
// Paths in the file are relative to the directory the file lives in.
func NewConfigFromFile(path string) (*Config, error) {
	config := Config{
		configFilePath: path,
	}

	c, err := goconf.ReadConfigFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, errors.Wrap(err, ErrConfigInvalid)
	}
	baseDir := filepath.Dir(path)

	// Parse port
	config.port, err = strconv.Atoi(optionalString(c, "", "port", strconv.Itoa(defaultPort)))
	if err != nil {
		return nil, errors.Wrap(err, ErrConfigInvalid)
	}

	// Keys
	config.signingKeyPath, err = c.GetString("", "signing-key")
	if err != nil {
		return nil, errors.Wraps(ErrConfigMissing, "signing-key")
	}
	config.signingKeyPath = resolvePath(baseDir, config.signingKeyPath)
	config.publicKeyPath = resolvePath(baseDir, optionalString(c, "", "public-key", ""))

	// Readme
	config.readmePath = resolvePath(baseDir, optionalString(c, "", "readme", ""))

	// Election
	config.electionID, err = c.GetString("", "election-id")
	if err != nil {
		return nil, errors.Wraps(ErrConfigMissing, "election-id")
	}
	config.candidates = cryptoballot.DefaultCandidates
	if raw := optionalString(c, "", "candidates", ""); raw != "" {
		config.candidates = splitCandidates(raw)
	}

	// Ledger
	config.ledger.driver = optionalString(c, "ledger", "driver", defaultLedgerDriver)
	config.ledger.path = resolvePath(baseDir, optionalString(c, "ledger", "path", defaultLedgerPath))

	// Parse database config options. Only needed for the postgres ledger.
	if config.ledger.driver == "postgres" {
		config.database.Host, err = c.GetString("database", "host")
		if err != nil {
			return nil, errors.Wraps(ErrConfigMissing, "database host")
		}
		config.database.Port, err = c.GetInt("database", "port")
		if err != nil {
			return nil, errors.Wraps(ErrConfigMissing, "database port")
		}
		config.database.User, err = c.GetString("database", "user")
		if err != nil {
			return nil, errors.Wraps(ErrConfigMissing, "database user")
		}
		config.database.Password, err = c.GetString("database", "password")
		if err != nil {
			return nil, errors.Wraps(ErrConfigMissing, "database password")
		}
		config.database.DBName, err = c.GetString("database", "dbname")
		if err != nil {
			return nil, errors.Wraps(ErrConfigMissing, "database dbname")
		}
		config.database.SSLMode, err = c.GetString("database", "sslmode")
		if err != nil {
			return nil, errors.Wraps(ErrConfigMissing, "database sslmode")
		}
		// For max_idle_connections missing should translates to -1
		if c.HasOption("database", "max_idle_connections") {
			config.database.MaxIdleConnections, err = c.GetInt("database", "max_idle_connections")
			if err != nil {
				return nil, errors.Wrap(err, ErrConfigInvalid)
			}
		} else {
			config.database.MaxIdleConnections = -1
		}
	}

	if err := configProcessFiles(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// NewConfigFromEnv reads VOTEBOOTH_* environment variables.
// Relative paths are resolved against VOTEBOOTH_CONFIG_DIR when it is set.
func NewConfigFromEnv() (*Config, error) {
	var err error

	config := Config{
		configFilePath: "",
	}
	baseDir := os.Getenv("VOTEBOOTH_CONFIG_DIR")

	// Parse port
	config.port = defaultPort
	if port := os.Getenv("VOTEBOOTH_PORT"); port != "" {
		config.port, err = strconv.Atoi(port)
		if err != nil {
			return nil, errors.Wrap(err, ErrConfigInvalid)
		}
	}

	// Keys
	config.signingKeyPath = os.Getenv("VOTEBOOTH_SIGNING_KEY")
	if config.signingKeyPath == "" {
		return nil, errors.Wraps(ErrConfigMissing, "VOTEBOOTH_SIGNING_KEY")
	}
	config.signingKeyPath = resolvePath(baseDir, config.signingKeyPath)
	if publicKeyPath := os.Getenv("VOTEBOOTH_PUBLIC_KEY"); publicKeyPath != "" {
		config.publicKeyPath = resolvePath(baseDir, publicKeyPath)
	}

	// Readme
	if readmePath := os.Getenv("VOTEBOOTH_README"); readmePath != "" {
		config.readmePath = resolvePath(baseDir, readmePath)
	}

	// Election
	config.electionID = os.Getenv("VOTEBOOTH_ELECTION_ID")
	if config.electionID == "" {
		return nil, errors.Wraps(ErrConfigMissing, "VOTEBOOTH_ELECTION_ID")
	}
	config.candidates = cryptoballot.DefaultCandidates
	if candidates := os.Getenv("VOTEBOOTH_CANDIDATES"); candidates != "" {
		config.candidates = splitCandidates(candidates)
	}

	// Ledger
	config.ledger.driver = defaultLedgerDriver
	if driver := os.Getenv("VOTEBOOTH_LEDGER_DRIVER"); driver != "" {
		config.ledger.driver = driver
	}
	config.ledger.path = defaultLedgerPath
	if path := os.Getenv("VOTEBOOTH_LEDGER_PATH"); path != "" {
		config.ledger.path = path
	}
	config.ledger.path = resolvePath(baseDir, config.ledger.path)

	// Parse database config options
	if config.ledger.driver == "postgres" {
		if dbPort := os.Getenv("VOTEBOOTH_DATABASE_PORT"); dbPort != "" {
			config.database.Port, err = strconv.Atoi(dbPort)
			if err != nil {
				return nil, errors.Wrap(err, ErrConfigInvalid)
			}
		} else {
			return nil, errors.Wraps(ErrConfigMissing, "VOTEBOOTH_DATABASE_PORT")
		}
		config.database.Host = os.Getenv("VOTEBOOTH_DATABASE_HOST")
		if config.database.Host == "" {
			return nil, errors.Wraps(ErrConfigMissing, "VOTEBOOTH_DATABASE_HOST")
		}
		config.database.User = os.Getenv("VOTEBOOTH_DATABASE_USER")
		if config.database.User == "" {
			return nil, errors.Wraps(ErrConfigMissing, "VOTEBOOTH_DATABASE_USER")
		}
		config.database.Password = os.Getenv("VOTEBOOTH_DATABASE_PASSWORD")
		if config.database.Password == "" {
			return nil, errors.Wraps(ErrConfigMissing, "VOTEBOOTH_DATABASE_PASSWORD")
		}
		config.database.DBName = os.Getenv("VOTEBOOTH_DATABASE_DBNAME")
		if config.database.DBName == "" {
			return nil, errors.Wraps(ErrConfigMissing, "VOTEBOOTH_DATABASE_DBNAME")
		}
		config.database.SSLMode = os.Getenv("VOTEBOOTH_DATABASE_SSLMODE")
		if config.database.SSLMode == "" {
			return nil, errors.Wraps(ErrConfigMissing, "VOTEBOOTH_DATABASE_SSLMODE")
		}
		if maxIdle := os.Getenv("VOTEBOOTH_DATABASE_IDLE_CONNECTIONS"); maxIdle != "" {
			config.database.MaxIdleConnections, err = strconv.Atoi(maxIdle)
			if err != nil {
				return nil, errors.Wrap(err, ErrConfigInvalid)
			}
		} else {
			config.database.MaxIdleConnections = -1
		}
	}

	if err := configProcessFiles(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Process the readme
func configProcessFiles(config *Config) error {
	switch config.ledger.driver {
	case "file", "postgres", "memory":
	default:
		return errors.Wraps(ErrUnknownDriver, config.ledger.driver)
	}

	if config.readmePath == "" {
		config.readme = []byte(defaultReadme)
		return nil
	}
	var err error
	config.readme, err = ioutil.ReadFile(config.readmePath)
	if err != nil {
		return errors.Wrap(err, ErrReadmeNotLoaded)
	}
	return nil
}

// optionalString returns def when the option is not set
func optionalString(c *goconf.ConfigFile, section, option, def string) string {
	value, err := c.GetString(section, option)
	if err != nil || value == "" {
		return def
	}
	return value
}

func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// splitCandidates reads a comma separated candidate list
func splitCandidates(raw string) []string {
	var candidates []string
	for _, candidate := range strings.Split(raw, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

const defaultReadme = `# Vote booth

The authority signs a blinded message. A revealed ballot carries a plain RSA signature
that cannot be linked back to the blinded value the authority signed.

* GET /publickey
* GET /candidates
* POST /vote/start
* POST /vote/reveal
* POST /vote/finalize
* GET /tally
`

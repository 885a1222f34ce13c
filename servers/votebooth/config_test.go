package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/cryptoballot/blindvote/ledger"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "votebooth.conf")
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "README.md"), []byte("# Mesa 12\n"), 0644))

	path := writeConfig(t, dir, `port = 8080
signing-key = keys/authority.pem
public-key = /etc/votebooth/authority.pub
readme = README.md
election-id = mesa12
candidates = Candidato A, Candidato B ,, Candidato D

[ledger]
driver = file
path = data/votes.json
`)

	conf, err := NewConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, conf.port)
	assert.Equal(t, filepath.Join(dir, "keys", "authority.pem"), conf.signingKeyPath)
	assert.Equal(t, "/etc/votebooth/authority.pub", conf.publicKeyPath)
	assert.Equal(t, "mesa12", conf.electionID)
	if diff := cmp.Diff([]string{"Candidato A", "Candidato B", "Candidato D"}, conf.candidates); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "file", conf.ledger.driver)
	assert.Equal(t, filepath.Join(dir, "data", "votes.json"), conf.ledger.path)
	assert.Equal(t, "# Mesa 12\n", string(conf.readme))
}

func TestConfigFromFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `signing-key = authority.pem
election-id = mesa12
`)

	conf, err := NewConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, defaultPort, conf.port)
	assert.Equal(t, "", conf.publicKeyPath)
	assert.Equal(t, cryptoballot.DefaultCandidates, conf.candidates)
	assert.Equal(t, defaultLedgerDriver, conf.ledger.driver)
	assert.Equal(t, filepath.Join(dir, defaultLedgerPath), conf.ledger.path)
	assert.Equal(t, defaultReadme, string(conf.readme))
}

func TestConfigFromFilePostgres(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `signing-key = authority.pem
election-id = mesa12

[ledger]
driver = postgres

[database]
host = localhost
port = 5432
user = votebooth
password = secret
dbname = votes
sslmode = disable
`)

	conf, err := NewConfigFromFile(path)
	require.NoError(t, err)

	want := ledger.DatabaseConfig{
		Host:               "localhost",
		Port:               5432,
		User:               "votebooth",
		Password:           "secret",
		DBName:             "votes",
		SSLMode:            "disable",
		MaxIdleConnections: -1,
	}
	if diff := cmp.Diff(want, conf.database); diff != "" {
		t.Errorf("database config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewConfigFromFile(filepath.Join(dir, "missing.conf"))
	assert.Error(t, err)

	cases := map[string]string{
		"missing key":      "election-id = mesa12\n",
		"missing election": "signing-key = authority.pem\n",
		"bad port":         "port = ochenta\nsigning-key = authority.pem\nelection-id = mesa12\n",
		"bad driver":       "signing-key = authority.pem\nelection-id = mesa12\n[ledger]\ndriver = paper\n",
		"missing readme":   "signing-key = authority.pem\nelection-id = mesa12\nreadme = nowhere.md\n",
		"missing database": "signing-key = authority.pem\nelection-id = mesa12\n[ledger]\ndriver = postgres\n",
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewConfigFromFile(writeConfig(t, t.TempDir(), contents))
			assert.Error(t, err)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VOTEBOOTH_CONFIG_DIR", dir)
	t.Setenv("VOTEBOOTH_PORT", "9000")
	t.Setenv("VOTEBOOTH_SIGNING_KEY", "authority.pem")
	t.Setenv("VOTEBOOTH_PUBLIC_KEY", "authority.pub")
	t.Setenv("VOTEBOOTH_ELECTION_ID", "mesa12")
	t.Setenv("VOTEBOOTH_CANDIDATES", "Sí,No")
	t.Setenv("VOTEBOOTH_LEDGER_DRIVER", "memory")

	conf, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9000, conf.port)
	assert.Equal(t, filepath.Join(dir, "authority.pem"), conf.signingKeyPath)
	assert.Equal(t, filepath.Join(dir, "authority.pub"), conf.publicKeyPath)
	assert.Equal(t, []string{"Sí", "No"}, conf.candidates)
	assert.Equal(t, "memory", conf.ledger.driver)
	assert.Equal(t, defaultReadme, string(conf.readme))
}

func TestConfigFromEnvErrors(t *testing.T) {
	t.Setenv("VOTEBOOTH_SIGNING_KEY", "")
	t.Setenv("VOTEBOOTH_ELECTION_ID", "mesa12")
	_, err := NewConfigFromEnv()
	assert.Error(t, err)

	t.Setenv("VOTEBOOTH_SIGNING_KEY", "authority.pem")
	t.Setenv("VOTEBOOTH_PORT", "x")
	_, err = NewConfigFromEnv()
	assert.Error(t, err)

	t.Setenv("VOTEBOOTH_PORT", "")
	t.Setenv("VOTEBOOTH_LEDGER_DRIVER", "postgres")
	t.Setenv("VOTEBOOTH_DATABASE_PORT", "")
	_, err = NewConfigFromEnv()
	assert.Error(t, err)
}

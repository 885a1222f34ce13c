package ledger

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/cryptoballot/blindvote/cryptoballot"
	"github.com/lib/pq"
	"github.com/phayes/errors"
)

const (
	schemaQuery = `CREATE TABLE IF NOT EXISTS ballots_<election-id> (
					  id bigserial PRIMARY KEY,
					  nonce char(32) NOT NULL UNIQUE,
					  candidate text NOT NULL,
					  m text NOT NULL,
					  s text NOT NULL,
					  recorded_at timestamptz NOT NULL DEFAULT now()
					);

					CREATE INDEX IF NOT EXISTS ballots_<election-id>_candidate_idx ON ballots_<election-id> (candidate);`

	uniqueViolation = pq.ErrorCode("23505")
)

var (
	ErrDatabaseConnect = errors.New("Could not connect to database")
	ErrDatabaseSetUp   = errors.New("Could not set up database schema")
)

var _ Ledger = &PostgresLedger{}

// DatabaseConfig holds the connection settings of the ballots database.
// A MaxIdleConnections of -1 leaves the pool at its default.
type DatabaseConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string
	SSLMode            string
	MaxIdleConnections int
}

func (conf DatabaseConfig) ConnectionString() (connection string) {
	if conf.Host != "" {
		connection += "host=" + conf.Host + " "
	}
	if conf.Port != 0 {
		connection += "port=" + strconv.Itoa(conf.Port) + " "
	}
	if conf.User != "" {
		connection += "user=" + conf.User + " "
	}
	if conf.Password != "" {
		connection += "password=" + conf.Password + " "
	}
	if conf.DBName != "" {
		connection += "dbname=" + conf.DBName + " "
	}
	if conf.SSLMode != "" {
		connection += "sslmode=" + conf.SSLMode
	}
	return strings.TrimSpace(connection)
}

// OpenDatabase connects to postgres and checks the connection is alive
func OpenDatabase(ctx context.Context, conf DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", conf.ConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, ErrDatabaseConnect)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, ErrDatabaseConnect)
	}
	// Set the maximum number of idle connections in the connection pool. `-1` means default (2 idle connections in the pool)
	if conf.MaxIdleConnections != -1 {
		db.SetMaxIdleConns(conf.MaxIdleConnections)
	}
	return db, nil
}

// PostgresLedger stores each election's ballots in its own ballots_<election-id> table.
// The unique nonce column makes a second append of the same ballot fail inside the database.
type PostgresLedger struct {
	db    *sql.DB
	table string
}

func NewPostgresLedger(db *sql.DB, electionID string) (*PostgresLedger, error) {
	if len(electionID) > cryptoballot.MaxElectionIDSize {
		return nil, cryptoballot.ErrElectionIDTooBig
	}
	if !cryptoballot.ValidElectionID.MatchString(electionID) {
		return nil, cryptoballot.ErrElectionIDInvalid
	}
	return &PostgresLedger{
		db:    db,
		table: "ballots_" + electionID,
	}, nil
}

// SetUp creates the ballots table for this election. It is safe to run more than once.
func (pl *PostgresLedger) SetUp(ctx context.Context) error {
	query := strings.Replace(schemaQuery, "ballots_<election-id>", pl.table, -1)
	if _, err := pl.db.ExecContext(ctx, query); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return errors.Wraps(ErrDatabaseSetUp, pqErr.Message)
		}
		return errors.Wrap(err, ErrDatabaseSetUp)
	}
	return nil
}

func (pl *PostgresLedger) Append(ctx context.Context, record Record) error {
	_, err := pl.db.ExecContext(ctx, "INSERT INTO "+pl.table+" (nonce, candidate, m, s) VALUES ($1, $2, $3, $4)",
		record.NonceHex, record.Candidate, record.M, record.S)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return ErrDuplicateRecord
		}
		return errors.Wrap(err, ErrLedgerWrite)
	}
	return nil
}

func (pl *PostgresLedger) Records(ctx context.Context) ([]Record, error) {
	rows, err := pl.db.QueryContext(ctx, "SELECT candidate, nonce, m, s FROM "+pl.table+" ORDER BY id")
	if err != nil {
		return nil, errors.Wrap(err, ErrLedgerRead)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.Candidate, &record.NonceHex, &record.M, &record.S); err != nil {
			return nil, errors.Wrap(err, ErrLedgerRead)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, ErrLedgerRead)
	}
	return records, nil
}

func (pl *PostgresLedger) Close() error {
	return pl.db.Close()
}

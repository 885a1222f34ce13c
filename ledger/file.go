package ledger

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/phayes/errors"
)

var _ Ledger = &FileLedger{}

// FileLedger keeps the ballots as an indented JSON array in a single file.
// The whole document is rewritten on every append through a temporary file and a rename,
// so readers never see a half written ledger.
type FileLedger struct {
	path    string
	mu      sync.Mutex
	records []Record
	nonces  map[string]bool
}

// NewFileLedger opens the ledger at path, creating its directory if needed.
// A missing file is an empty ledger.
func NewFileLedger(path string) (*FileLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, ErrLedgerRead)
	}

	fl := &FileLedger{
		path:   path,
		nonces: make(map[string]bool),
	}

	data, err := ioutil.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, ErrLedgerRead)
	}
	if len(data) != 0 {
		if err := json.Unmarshal(data, &fl.records); err != nil {
			return nil, errors.Wrap(err, ErrLedgerRead)
		}
	}
	for _, record := range fl.records {
		fl.nonces[record.NonceHex] = true
	}

	return fl, nil
}

func (fl *FileLedger) Append(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, ErrLedgerWrite)
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.nonces[record.NonceHex] {
		return ErrDuplicateRecord
	}

	records := append(fl.records[:len(fl.records):len(fl.records)], record)
	if err := fl.save(records); err != nil {
		return err
	}

	fl.records = records
	fl.nonces[record.NonceHex] = true
	return nil
}

func (fl *FileLedger) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, ErrLedgerRead)
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()

	records := make([]Record, len(fl.records))
	copy(records, fl.records)
	return records, nil
}

func (fl *FileLedger) Close() error {
	return nil
}

func (fl *FileLedger) save(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return errors.Wrap(err, ErrLedgerWrite)
	}

	tmp, err := ioutil.TempFile(filepath.Dir(fl.path), filepath.Base(fl.path)+".tmp")
	if err != nil {
		return errors.Wrap(err, ErrLedgerWrite)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, ErrLedgerWrite)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, ErrLedgerWrite)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, ErrLedgerWrite)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, ErrLedgerWrite)
	}

	if err := os.Rename(tmpPath, fl.path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, ErrLedgerWrite)
	}
	return nil
}

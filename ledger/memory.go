package ledger

import (
	"context"
	"sync"
)

var _ Ledger = &MemoryLedger{}

// MemoryLedger is an in-process ledger for tests and throwaway elections. Nothing survives a restart.
type MemoryLedger struct {
	mu      sync.Mutex
	records []Record
	nonces  map[string]bool
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		nonces: map[string]bool{},
	}
}

func (ml *MemoryLedger) Append(ctx context.Context, record Record) error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if ml.nonces[record.NonceHex] {
		return ErrDuplicateRecord
	}
	ml.records = append(ml.records, record)
	ml.nonces[record.NonceHex] = true
	return nil
}

func (ml *MemoryLedger) Records(ctx context.Context) ([]Record, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	records := make([]Record, len(ml.records))
	copy(records, ml.records)
	return records, nil
}

func (ml *MemoryLedger) Close() error {
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter numbers every event row across all tables, so an answer
// sorts against the attempt that holds it and the API calls around it.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter seeds the counter row; the table comes from migrate.
func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	seed := fmt.Sprintf("INSERT OR IGNORE INTO %s (id, next_val) VALUES (1, 1)", tableSequence)
	if _, err := db.ExecContext(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next claims a sequence number. RETURNING keeps the read and the bump in
// one statement; the mutex keeps this process's claims in order.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	claim := fmt.Sprintf("UPDATE %s SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1", tableSequence)
	var seq int64
	if err := sc.db.QueryRowContext(ctx, claim).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

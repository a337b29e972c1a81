package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SequenceQuerier adapts the store's sequence counters to the querier
// shape the numerator expects. The sequence key is always the first
// argument, an optional increment the second.
type SequenceQuerier struct {
	store *Store
}

// Sequences returns a numerator-compatible querier over the store.
func (s *Store) Sequences() *SequenceQuerier { return &SequenceQuerier{store: s} }

// QueryRow advances the named sequence and returns its new value.
func (q *SequenceQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()

	key, ok := args[0].(string)
	if !ok {
		return seqRow{err: fmt.Errorf("sequence key must be a string, got %T", args[0])}
	}

	var increment int64 = 1
	if len(args) > 1 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	q.store.sequences[key] += increment
	return seqRow{val: q.store.sequences[key]}
}

type seqRow struct {
	val int64
	err error
}

func (r seqRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return fmt.Errorf("no scan destination")
	}
	ptr, ok := dest[0].(*int64)
	if !ok {
		return fmt.Errorf("scan destination must be *int64, got %T", dest[0])
	}
	*ptr = r.val
	return nil
}

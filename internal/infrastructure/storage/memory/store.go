// Package memory provides an in-memory store implementing the domain
// repository interfaces and the transaction manager. It backs unit
// tests and local development without PostgreSQL.
package memory

import (
	"context"
	"sync"

	"stockpos/internal/core/id"
	"stockpos/internal/core/tx"
	"stockpos/internal/domain/auth"
	"stockpos/internal/domain/catalogs/customer"
	"stockpos/internal/domain/catalogs/item"
	"stockpos/internal/domain/catalogs/supplier"
	"stockpos/internal/domain/documents/receipt"
	"stockpos/internal/domain/documents/sale"
	"stockpos/internal/domain/documents/saleret"
)

// Store holds all state behind a single mutex. Stored structs are
// treated as immutable: writes replace entries, reads return copies.
type Store struct {
	// txMu serializes top-level transactions so a rollback can only
	// restore state it snapshotted itself.
	txMu sync.Mutex

	mu sync.RWMutex

	items        map[id.ID]*item.Item
	customers    map[id.ID]*customer.Customer
	suppliers    map[id.ID]*supplier.Supplier
	users        map[id.ID]*auth.User
	receipts     map[id.ID]*receipt.Receipt
	receiptLines map[id.ID][]receipt.Line
	sales        map[id.ID]*sale.Sale
	saleLines    map[id.ID][]sale.Line
	returns      map[id.ID]*saleret.Return
	returnLines  map[id.ID][]saleret.Line
	sequences    map[string]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		items:        make(map[id.ID]*item.Item),
		customers:    make(map[id.ID]*customer.Customer),
		suppliers:    make(map[id.ID]*supplier.Supplier),
		users:        make(map[id.ID]*auth.User),
		receipts:     make(map[id.ID]*receipt.Receipt),
		receiptLines: make(map[id.ID][]receipt.Line),
		sales:        make(map[id.ID]*sale.Sale),
		saleLines:    make(map[id.ID][]sale.Line),
		returns:      make(map[id.ID]*saleret.Return),
		returnLines:  make(map[id.ID][]saleret.Line),
		sequences:    make(map[string]int64),
	}
}

// snapshot captures the current state. Entries are shared with the
// live maps, which is safe because stored values are never mutated in
// place.
type snapshot struct {
	items        map[id.ID]*item.Item
	customers    map[id.ID]*customer.Customer
	suppliers    map[id.ID]*supplier.Supplier
	users        map[id.ID]*auth.User
	receipts     map[id.ID]*receipt.Receipt
	receiptLines map[id.ID][]receipt.Line
	sales        map[id.ID]*sale.Sale
	saleLines    map[id.ID][]sale.Line
	returns      map[id.ID]*saleret.Return
	returnLines  map[id.ID][]saleret.Line
	sequences    map[string]int64
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *Store) takeSnapshot() snapshot {
	return snapshot{
		items:        copyMap(s.items),
		customers:    copyMap(s.customers),
		suppliers:    copyMap(s.suppliers),
		users:        copyMap(s.users),
		receipts:     copyMap(s.receipts),
		receiptLines: copyMap(s.receiptLines),
		sales:        copyMap(s.sales),
		saleLines:    copyMap(s.saleLines),
		returns:      copyMap(s.returns),
		returnLines:  copyMap(s.returnLines),
		sequences:    copyMap(s.sequences),
	}
}

func (s *Store) restore(snap snapshot) {
	s.items = snap.items
	s.customers = snap.customers
	s.suppliers = snap.suppliers
	s.users = snap.users
	s.receipts = snap.receipts
	s.receiptLines = snap.receiptLines
	s.sales = snap.sales
	s.saleLines = snap.saleLines
	s.returns = snap.returns
	s.returnLines = snap.returnLines
	s.sequences = snap.sequences
}

// --- tx.Manager ---

var _ tx.Manager = (*Store)(nil)
var _ tx.ReadOnlyManager = (*Store)(nil)

type memTxKey struct{}

// RunInTransaction executes fn, restoring the previous state if fn
// fails. Top-level transactions serialize on txMu, so concurrent
// transactions never interleave and a rollback never discards writes
// committed by another one. Nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx, _ := ctx.Value(memTxKey{}).(bool); inTx {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.takeSnapshot()
	s.mu.Unlock()

	err := fn(context.WithValue(ctx, memTxKey{}, true))
	if err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

// ReadOnly runs fn directly. Every read already sees a consistent view
// because all access goes through the single store mutex.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

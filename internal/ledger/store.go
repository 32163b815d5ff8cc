// Package ledger implements the in-memory transaction store: the single
// source of truth for one owner's transactions within a session. Mutations
// are serialized per store and all-or-nothing; reads hand out copies, so
// projections over a snapshot can run concurrently without coordination.
package ledger

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"fiscus/internal/core"
)

// Observer is invoked synchronously with a fresh snapshot after every
// successful mutation. Observers must not mutate the snapshot they receive.
type Observer func(snapshot []core.Transaction)

// Totals are the derived aggregates recomputed in a single pass over the
// snapshot. Balance may be negative.
type Totals struct {
	Income   core.Money
	Expenses core.Money
	Balance  core.Money
}

// Store holds one owner's ordered transactions. The externally visible
// ordering is always descending by date; ties preserve insertion order.
type Store struct {
	mu        sync.Mutex
	owner     string
	items     []core.Transaction
	observers []Observer
}

// New creates an empty store scoped to the given owner.
func New(owner string) *Store {
	return &Store{owner: owner}
}

// Owner returns the identifier all records in this store belong to.
func (s *Store) Owner() string {
	return s.owner
}

// Subscribe registers an observer for mutation notifications. Not safe to
// call concurrently with mutations; register observers during setup.
func (s *Store) Subscribe(obs Observer) {
	s.observers = append(s.observers, obs)
}

// Add validates and inserts a transaction, assigning a fresh id when absent,
// and returns the stored record. On any validation failure the store is left
// unchanged.
func (s *Store) Add(tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.Owner == "" {
		tx.Owner = s.owner
	}
	if tx.Owner != s.owner {
		return core.Transaction{}, core.Validationf("transaction owner %q does not match store owner %q", tx.Owner, s.owner)
	}

	s.mu.Lock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	} else if s.indexOf(tx.ID) >= 0 {
		s.mu.Unlock()
		return core.Transaction{}, core.Validationf("duplicate transaction id %q", tx.ID)
	}
	s.items = append(s.items, tx)
	s.resort()
	snapshot := s.copyItems()
	s.mu.Unlock()

	s.notify(snapshot)
	return tx, nil
}

// Update replaces the mutable fields of an existing transaction. ID and
// Owner are immutable: whatever the caller supplies, the stored values are
// preserved. Returns NotFoundError when the id is absent.
func (s *Store) Update(tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		return core.Transaction{}, core.Validationf("update requires a transaction id")
	}

	s.mu.Lock()
	i := s.indexOf(tx.ID)
	if i < 0 {
		s.mu.Unlock()
		return core.Transaction{}, &core.NotFoundError{ID: tx.ID}
	}
	tx.Owner = s.items[i].Owner
	if err := tx.Validate(); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.items[i] = tx
	s.resort()
	snapshot := s.copyItems()
	s.mu.Unlock()

	s.notify(snapshot)
	return tx, nil
}

// Delete removes the transaction with the given id. Deleting an absent id
// returns NotFoundError, consistent with Update.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return &core.NotFoundError{ID: id}
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	snapshot := s.copyItems()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Reset replaces the whole contents, used when hydrating from a persistence
// backend. Records are re-sorted; observers are not notified.
func (s *Store) Reset(txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Transaction(nil), txs...)
	s.resort()
}

// Snapshot returns a copy of the current ordered transaction sequence.
// Mutating the returned slice does not affect the store.
func (s *Store) Snapshot() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItems()
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Totals computes income, expenses and balance in a single pass.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Totals
	for _, tx := range s.items {
		switch tx.Type {
		case core.TypeIncome:
			t.Income = t.Income.Add(tx.Amount)
		case core.TypeExpense:
			t.Expenses = t.Expenses.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expenses)
	return t
}

// ByDateRange returns the transactions whose date falls between start and
// end, both bounds inclusive, still in descending order.
func (s *Store) ByDateRange(start, end core.Date) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0)
	for _, tx := range s.items {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// ByCategory returns the transactions with the given category key, still in
// descending order.
func (s *Store) ByCategory(category string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0)
	for _, tx := range s.items {
		if tx.Category == category {
			out = append(out, tx)
		}
	}
	return out
}

// resort re-establishes descending date order. The sort is stable, so
// records sharing a date keep their insertion order. Callers hold s.mu.
func (s *Store) resort() {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Date.After(s.items[j].Date)
	})
}

func (s *Store) indexOf(id string) int {
	for i, tx := range s.items {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyItems() []core.Transaction {
	return append([]core.Transaction(nil), s.items...)
}

// notify runs outside the mutation lock so observers may read the store.
func (s *Store) notify(snapshot []core.Transaction) {
	for _, obs := range s.observers {
		obs(snapshot)
	}
}

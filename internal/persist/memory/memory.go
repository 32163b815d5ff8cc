// Package memory is the in-process persistence backend, used for the
// single-device variant and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"fiscus/internal/core"
	"fiscus/internal/persist"
)

type Store struct {
	mu   sync.Mutex
	byID map[string]core.Transaction
}

var (
	_ persist.Backend = (*Store)(nil)
	_ persist.Saver   = (*Store)(nil)
)

func New() *Store {
	return &Store{byID: make(map[string]core.Transaction)}
}

// Load returns the owner's transactions sorted descending by date.
func (s *Store) Load(_ context.Context, owner string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0)
	for _, tx := range s.byID {
		if tx.Owner == owner {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Upsert(_ context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		return "", core.Validationf("upsert requires a transaction id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[tx.ID] = tx
	return tx.ID, nil
}

// Remove deletes by id; removing an absent id is a no-op so retries stay
// idempotent.
func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

// Save replaces the owner's transactions wholesale.
func (s *Store) Save(_ context.Context, owner string, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, tx := range s.byID {
		if tx.Owner == owner {
			delete(s.byID, id)
		}
	}
	for _, tx := range txs {
		if tx.ID == "" {
			return core.Validationf("save requires transaction ids")
		}
		s.byID[tx.ID] = tx
	}
	return nil
}

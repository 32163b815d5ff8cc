// Package service orchestrates the in-memory ledger stores, the category
// registry, and the persistence sync path. The per-owner store is the source
// of truth for reads; persistence is an async mirror, so a broker or backend
// outage never blocks a mutation once the owner is hydrated.
package service

import (
	"context"
	"sync"

	"fiscus/internal/amqp"
	"fiscus/internal/category"
	"fiscus/internal/core"
	"fiscus/internal/ledger"
	"fiscus/internal/log"
	"fiscus/internal/metrics"
	"fiscus/internal/persist"
	"fiscus/internal/stats"
)

// Publisher sends sync messages to the worker. *amqp.Client satisfies it.
type Publisher interface {
	PublishSync(ctx context.Context, msg *amqp.SyncMessage) error
}

// ChangeListener is called after a successful mutation for an owner.
type ChangeListener func(owner string)

// ownerStore pairs a ledger store with its hydration state. The entry mutex
// spans the first backend load, so no request touches the store before
// hydration settles.
type ownerStore struct {
	mu       sync.Mutex
	store    *ledger.Store
	hydrated bool
}

// LedgerService owns one ledger.Store per owner, hydrating each from the
// configured backend on first use.
type LedgerService struct {
	mu        sync.Mutex
	stores    map[string]*ownerStore
	backend   persist.Backend // may be nil (pure in-memory mode)
	publisher Publisher       // may be nil (direct persistence instead)
	registry  *category.Registry
	logger    *log.Logger
	listeners []ChangeListener
}

func New(backend persist.Backend, publisher Publisher, registry *category.Registry, logger *log.Logger) *LedgerService {
	if registry == nil {
		registry = category.Default()
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentService)
	}
	return &LedgerService{
		stores:    make(map[string]*ownerStore),
		backend:   backend,
		publisher: publisher,
		registry:  registry,
		logger:    logger,
	}
}

// Registry returns the category registry the service validates against.
func (s *LedgerService) Registry() *category.Registry {
	return s.registry
}

// OnChange registers a listener invoked after every successful mutation.
// Listeners must not call back into the service.
func (s *LedgerService) OnChange(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// storeFor returns the owner's store, loading it from the backend the first
// time the owner is seen. Hydration runs inside the per-owner critical
// section: a request racing the first load waits for it instead of mutating
// a store that Reset is about to replace. A failed load leaves the owner
// unhydrated and surfaces the error, so the next request retries rather
// than serving an empty ledger.
func (s *LedgerService) storeFor(ctx context.Context, owner string) (*ledger.Store, error) {
	s.mu.Lock()
	entry, ok := s.stores[owner]
	if !ok {
		entry = &ownerStore{store: ledger.New(owner)}
		s.stores[owner] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.hydrated {
		return entry.store, nil
	}
	if s.backend == nil {
		entry.hydrated = true
		return entry.store, nil
	}

	txs, err := s.backend.Load(ctx, owner)
	if err != nil {
		s.logger.ErrorContext(ctx, "hydration failed",
			log.FieldOwner, owner, log.FieldError, err)
		return nil, err
	}
	if len(txs) > 0 {
		entry.store.Reset(txs)
		s.logger.InfoContext(ctx, "hydrated owner store",
			log.FieldOwner, owner, log.FieldCount, len(txs))
	}
	entry.hydrated = true
	return entry.store, nil
}

// Add validates the transaction against the category registry, records it in
// the owner's store, and schedules persistence.
func (s *LedgerService) Add(ctx context.Context, owner string, tx core.Transaction) (core.Transaction, error) {
	if err := s.checkCategory(tx); err != nil {
		metrics.Mutations.WithLabelValues("add", "rejected").Inc()
		return core.Transaction{}, err
	}

	st, err := s.storeFor(ctx, owner)
	if err != nil {
		metrics.Mutations.WithLabelValues("add", "rejected").Inc()
		return core.Transaction{}, err
	}
	stored, err := st.Add(tx)
	if err != nil {
		metrics.Mutations.WithLabelValues("add", "rejected").Inc()
		return core.Transaction{}, err
	}
	metrics.Mutations.WithLabelValues("add", "ok").Inc()
	metrics.Transactions.WithLabelValues(owner).Set(float64(st.Len()))

	s.persistUpsert(ctx, stored)
	s.notifyChange(owner)
	return stored, nil
}

// Update replaces the mutable fields of an existing transaction.
func (s *LedgerService) Update(ctx context.Context, owner string, tx core.Transaction) (core.Transaction, error) {
	if err := s.checkCategory(tx); err != nil {
		metrics.Mutations.WithLabelValues("update", "rejected").Inc()
		return core.Transaction{}, err
	}

	st, err := s.storeFor(ctx, owner)
	if err != nil {
		metrics.Mutations.WithLabelValues("update", "rejected").Inc()
		return core.Transaction{}, err
	}
	stored, err := st.Update(tx)
	if err != nil {
		metrics.Mutations.WithLabelValues("update", "rejected").Inc()
		return core.Transaction{}, err
	}
	metrics.Mutations.WithLabelValues("update", "ok").Inc()

	s.persistUpsert(ctx, stored)
	s.notifyChange(owner)
	return stored, nil
}

// Delete removes a transaction from the owner's store and schedules removal
// from the backend.
func (s *LedgerService) Delete(ctx context.Context, owner, id string) error {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		metrics.Mutations.WithLabelValues("delete", "rejected").Inc()
		return err
	}
	if err := st.Delete(id); err != nil {
		metrics.Mutations.WithLabelValues("delete", "rejected").Inc()
		return err
	}
	metrics.Mutations.WithLabelValues("delete", "ok").Inc()
	metrics.Transactions.WithLabelValues(owner).Set(float64(st.Len()))

	s.persistRemove(ctx, owner, id)
	s.notifyChange(owner)
	return nil
}

// Transactions returns the owner's ledger, most recent first.
func (s *LedgerService) Transactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	return st.Snapshot(), nil
}

// Totals returns running income, expense, and balance totals.
func (s *LedgerService) Totals(ctx context.Context, owner string) (ledger.Totals, error) {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		return ledger.Totals{}, err
	}
	return st.Totals(), nil
}

// Weekly returns the 7-day income/expense series ending today.
func (s *LedgerService) Weekly(ctx context.Context, owner string, today core.Date) (stats.Series, error) {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		return stats.Series{}, err
	}
	return stats.Weekly(st.Snapshot(), today), nil
}

// Monthly returns the 12-month income/expense series ending this month.
func (s *LedgerService) Monthly(ctx context.Context, owner string, today core.Date) (stats.Series, error) {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		return stats.Series{}, err
	}
	return stats.Monthly(st.Snapshot(), today), nil
}

// Yearly returns the per-year series from the earliest transaction onward.
func (s *LedgerService) Yearly(ctx context.Context, owner string, today core.Date) (stats.Series, error) {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		return stats.Series{}, err
	}
	return stats.Yearly(st.Snapshot(), today), nil
}

// Breakdown aggregates the owner's transactions of the given type by category.
func (s *LedgerService) Breakdown(ctx context.Context, owner string, typ core.TxType) ([]stats.CategoryTotal, error) {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	return stats.AggregateByCategory(st.Snapshot(), typ, s.registry)
}

// Groups returns the display grouping of the owner's ledger relative to today.
func (s *LedgerService) Groups(ctx context.Context, owner string, today core.Date) ([]stats.Group, error) {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	return stats.GroupForDisplay(st.Snapshot(), today), nil
}

// Summary renders the owner's financial snapshot as prompt-ready text.
func (s *LedgerService) Summary(ctx context.Context, owner string) (string, error) {
	st, err := s.storeFor(ctx, owner)
	if err != nil {
		return "", err
	}
	return stats.Summary(st.Snapshot(), s.registry)
}

// checkCategory rejects expense transactions whose category key is not in
// the registry. The store's own Validate covers the rest.
func (s *LedgerService) checkCategory(tx core.Transaction) error {
	if tx.Type != core.TypeExpense || tx.Category == "" {
		return nil
	}
	_, err := s.registry.Resolve(tx.Category)
	return err
}

func (s *LedgerService) persistUpsert(ctx context.Context, tx core.Transaction) {
	if s.publisher != nil {
		if err := s.publisher.PublishSync(ctx, amqp.NewUpsertMessage(tx)); err != nil {
			metrics.SyncFailures.Inc()
			s.logger.ErrorContext(ctx, "sync publish failed",
				log.FieldOp, amqp.OpUpsert, log.FieldTxID, tx.ID, log.FieldError, err)
			return
		}
		metrics.SyncPublished.WithLabelValues(amqp.OpUpsert).Inc()
		return
	}
	if s.backend != nil {
		if _, err := s.backend.Upsert(ctx, tx); err != nil {
			s.logger.ErrorContext(ctx, "backend upsert failed",
				log.FieldTxID, tx.ID, log.FieldError, err)
		}
	}
}

func (s *LedgerService) persistRemove(ctx context.Context, owner, id string) {
	if s.publisher != nil {
		if err := s.publisher.PublishSync(ctx, amqp.NewRemoveMessage(owner, id)); err != nil {
			metrics.SyncFailures.Inc()
			s.logger.ErrorContext(ctx, "sync publish failed",
				log.FieldOp, amqp.OpRemove, log.FieldTxID, id, log.FieldError, err)
			return
		}
		metrics.SyncPublished.WithLabelValues(amqp.OpRemove).Inc()
		return
	}
	if s.backend != nil {
		if err := s.backend.Remove(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "backend remove failed",
				log.FieldTxID, id, log.FieldError, err)
		}
	}
}

func (s *LedgerService) notifyChange(owner string) {
	s.mu.Lock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(owner)
	}
}

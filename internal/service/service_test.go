package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fiscus/internal/amqp"
	"fiscus/internal/core"
	"fiscus/internal/persist/memory"
)

type recordingPublisher struct {
	messages []*amqp.SyncMessage
	fail     bool
}

func (p *recordingPublisher) PublishSync(_ context.Context, msg *amqp.SyncMessage) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func expense(amount int64, category string, date core.Date) core.Transaction {
	return core.Transaction{
		Type:     core.TypeExpense,
		Amount:   core.Money{Cents: amount},
		Category: category,
		Date:     date,
	}
}

func mustList(t *testing.T, svc *LedgerService, owner string) []core.Transaction {
	t.Helper()
	txs, err := svc.Transactions(context.Background(), owner)
	if err != nil {
		t.Fatalf("Transactions(%s): %v", owner, err)
	}
	return txs
}

func TestAddPublishesUpsert(t *testing.T) {
	pub := &recordingPublisher{}
	svc := New(memory.New(), pub, nil, nil)
	ctx := context.Background()

	stored, err := svc.Add(ctx, "u1", expense(1200, "Food", core.NewDate(2025, 3, 10)))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("expected generated id")
	}

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Op != amqp.OpUpsert || msg.Owner != "u1" || msg.ID != stored.ID {
		t.Errorf("unexpected message: op=%s owner=%s id=%s", msg.Op, msg.Owner, msg.ID)
	}
	decoded, err := msg.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != stored {
		t.Errorf("decoded message %+v != stored %+v", decoded, stored)
	}
}

func TestAddSurvivesBrokerOutage(t *testing.T) {
	pub := &recordingPublisher{fail: true}
	svc := New(memory.New(), pub, nil, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", expense(500, "Food", core.NewDate(2025, 3, 10))); err != nil {
		t.Fatalf("Add should not fail when publish fails: %v", err)
	}
	if got := len(mustList(t, svc, "u1")); got != 1 {
		t.Errorf("store holds %d transactions, want 1", got)
	}
}

func TestAddRejectsUnknownCategory(t *testing.T) {
	svc := New(memory.New(), nil, nil, nil)

	_, err := svc.Add(context.Background(), "u1", expense(500, "Yachts", core.NewDate(2025, 3, 10)))
	var cfgErr *core.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	if got := len(mustList(t, svc, "u1")); got != 0 {
		t.Errorf("store holds %d transactions after rejected add, want 0", got)
	}
}

func TestDirectBackendFallback(t *testing.T) {
	backend := memory.New()
	svc := New(backend, nil, nil, nil)
	ctx := context.Background()

	stored, err := svc.Add(ctx, "u1", expense(900, "Transportation", core.NewDate(2025, 3, 11)))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	persisted, err := backend.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != stored.ID {
		t.Fatalf("backend holds %v, want the stored transaction", persisted)
	}

	if err := svc.Delete(ctx, "u1", stored.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	persisted, _ = backend.Load(ctx, "u1")
	if len(persisted) != 0 {
		t.Errorf("backend holds %d rows after delete, want 0", len(persisted))
	}
}

func TestHydrationFromBackend(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	seed := expense(4200, "Rent", core.NewDate(2025, 2, 1))
	seed.ID = "seed-1"
	seed.Owner = "u1"
	if _, err := backend.Upsert(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(backend, nil, nil, nil)
	txs := mustList(t, svc, "u1")
	if len(txs) != 1 || txs[0].ID != "seed-1" {
		t.Fatalf("hydrated %v, want the seeded transaction", txs)
	}
}

// slowBackend blocks Load until released, so a test can hold hydration
// in flight while other requests arrive.
type slowBackend struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func (b *slowBackend) Load(ctx context.Context, owner string) ([]core.Transaction, error) {
	close(b.entered)
	<-b.release
	return b.Store.Load(ctx, owner)
}

func TestAddDuringHydrationIsKept(t *testing.T) {
	backend := &slowBackend{
		Store:   memory.New(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	ctx := context.Background()

	seed := expense(4200, "Rent", core.NewDate(2025, 2, 1))
	seed.ID = "seed-1"
	seed.Owner = "u1"
	if _, err := backend.Store.Upsert(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(backend, nil, nil, nil)

	readDone := make(chan error, 1)
	go func() {
		_, err := svc.Transactions(ctx, "u1")
		readDone <- err
	}()
	<-backend.entered

	type addResult struct {
		tx  core.Transaction
		err error
	}
	addDone := make(chan addResult, 1)
	go func() {
		tx, err := svc.Add(ctx, "u1", expense(500, "Food", core.NewDate(2025, 3, 10)))
		addDone <- addResult{tx, err}
	}()

	// The add must wait for hydration rather than land in a store that the
	// backend snapshot is about to replace.
	select {
	case <-addDone:
		t.Fatal("Add completed while hydration was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(backend.release)
	if err := <-readDone; err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	res := <-addDone
	if res.err != nil {
		t.Fatalf("Add: %v", res.err)
	}

	txs := mustList(t, svc, "u1")
	if len(txs) != 2 {
		t.Fatalf("store holds %d transactions, want seed plus added", len(txs))
	}
	res.tx.Description = "groceries"
	if _, err := svc.Update(ctx, "u1", res.tx); err != nil {
		t.Errorf("Update of transaction added during hydration: %v", err)
	}
}

// flakyBackend fails Load while broken is set, then recovers.
type flakyBackend struct {
	*memory.Store
	broken bool
	loads  int
}

func (b *flakyBackend) Load(ctx context.Context, owner string) ([]core.Transaction, error) {
	b.loads++
	if b.broken {
		return nil, &core.TransportError{Op: "load", Err: errors.New("backend down")}
	}
	return b.Store.Load(ctx, owner)
}

func TestHydrationFailureSurfacesAndRetries(t *testing.T) {
	backend := &flakyBackend{Store: memory.New(), broken: true}
	ctx := context.Background()

	seed := expense(4200, "Rent", core.NewDate(2025, 2, 1))
	seed.ID = "seed-1"
	seed.Owner = "u1"
	if _, err := backend.Store.Upsert(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(backend, nil, nil, nil)

	_, err := svc.Transactions(ctx, "u1")
	var transport *core.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("err = %v, want TransportError while backend is down", err)
	}
	if _, err := svc.Add(ctx, "u1", expense(500, "Food", core.NewDate(2025, 3, 10))); err == nil {
		t.Fatal("Add should fail while the owner cannot be hydrated")
	}

	backend.broken = false
	txs := mustList(t, svc, "u1")
	if len(txs) != 1 || txs[0].ID != "seed-1" {
		t.Fatalf("after recovery got %v, want the seeded transaction", txs)
	}
	if backend.loads < 2 {
		t.Errorf("backend.Load called %d times, want a retry after the failure", backend.loads)
	}

	// Once hydrated the snapshot is cached; no further loads.
	before := backend.loads
	mustList(t, svc, "u1")
	if backend.loads != before {
		t.Errorf("backend.Load called again after hydration (%d -> %d)", before, backend.loads)
	}
}

func TestDeletePublishesRemove(t *testing.T) {
	pub := &recordingPublisher{}
	svc := New(memory.New(), pub, nil, nil)
	ctx := context.Background()

	stored, err := svc.Add(ctx, "u1", expense(100, "Food", core.NewDate(2025, 3, 12)))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Delete(ctx, "u1", stored.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	last := pub.messages[len(pub.messages)-1]
	if last.Op != amqp.OpRemove || last.ID != stored.ID || last.Owner != "u1" {
		t.Errorf("unexpected remove message: %+v", last)
	}
}

func TestDeleteUnknownID(t *testing.T) {
	svc := New(memory.New(), nil, nil, nil)

	err := svc.Delete(context.Background(), "u1", "missing")
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestOnChangeFansOutPerOwner(t *testing.T) {
	svc := New(memory.New(), nil, nil, nil)
	var changed []string
	svc.OnChange(func(owner string) { changed = append(changed, owner) })
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", expense(100, "Food", core.NewDate(2025, 3, 12))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, "u2", expense(200, "Food", core.NewDate(2025, 3, 12))); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if len(changed) != 2 || changed[0] != "u1" || changed[1] != "u2" {
		t.Errorf("changed = %v, want [u1 u2]", changed)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	svc := New(memory.New(), nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "u1", expense(100, "Food", core.NewDate(2025, 3, 12))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := len(mustList(t, svc, "u2")); got != 0 {
		t.Errorf("u2 sees %d transactions, want 0", got)
	}

	totals, err := svc.Totals(ctx, "u1")
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals.Expenses.Cents != 100 {
		t.Errorf("Expenses = %d, want 100", totals.Expenses.Cents)
	}
}

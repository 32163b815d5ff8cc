package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"fiscus/internal/core"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "fiscus.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestUpsertLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	tx := core.Transaction{
		ID:          "t1",
		Owner:       "u1",
		Type:        core.TypeExpense,
		Amount:      core.Money{Cents: 4550},
		Category:    "Food",
		Date:        core.NewDate(2025, 3, 2),
		Description: "Grocery shopping",
	}
	if _, err := repo.Upsert(ctx, tx); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0] != tx {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got[0], tx)
	}
}

func TestUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	tx := core.Transaction{
		ID: "t1", Owner: "u1", Type: core.TypeIncome,
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1),
	}
	repo.Upsert(ctx, tx)
	tx.Amount = core.Money{Cents: 250}
	if _, err := repo.Upsert(ctx, tx); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.Load(ctx, "u1")
	if len(got) != 1 || got[0].Amount.Cents != 250 {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadOrdering(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	mk := func(id string, d core.Date) core.Transaction {
		return core.Transaction{
			ID: id, Owner: "u1", Type: core.TypeIncome,
			Amount: core.Money{Cents: 100}, Date: d,
		}
	}
	repo.Upsert(ctx, mk("a", core.NewDate(2025, 3, 1)))
	repo.Upsert(ctx, mk("b", core.NewDate(2025, 3, 3)))
	repo.Upsert(ctx, mk("c", core.NewDate(2025, 3, 3))) // same date, inserted after b

	got, err := repo.Load(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []string{"b", "c", "a"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestRemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	repo.Upsert(ctx, core.Transaction{
		ID: "t1", Owner: "u1", Type: core.TypeIncome,
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1),
	})
	if err := repo.Remove(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Remove(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.Load(ctx, "u1")
	if len(got) != 0 {
		t.Fatalf("len = %d", len(got))
	}
}

func TestSaveReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	old := core.Transaction{
		ID: "old", Owner: "u1", Type: core.TypeIncome,
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1),
	}
	other := core.Transaction{
		ID: "other", Owner: "u2", Type: core.TypeIncome,
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 1),
	}
	repo.Upsert(ctx, old)
	repo.Upsert(ctx, other)

	err := repo.Save(ctx, "u1", []core.Transaction{
		{ID: "new", Owner: "u1", Type: core.TypeExpense, Amount: core.Money{Cents: 200},
			Category: "Food", Date: core.NewDate(2025, 2, 2)},
	})
	if err != nil {
		t.Fatal(err)
	}

	u1, _ := repo.Load(ctx, "u1")
	if len(u1) != 1 || u1[0].ID != "new" {
		t.Fatalf("u1 = %+v", u1)
	}
	u2, _ := repo.Load(ctx, "u2")
	if len(u2) != 1 {
		t.Fatalf("u2 affected: %+v", u2)
	}
}

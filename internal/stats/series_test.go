package stats

import (
	"testing"

	"fiscus/internal/core"
)

func TestWeeklyGapFilling(t *testing.T) {
	today := core.NewDate(2025, 3, 5)
	s := Weekly(nil, today)

	if len(s.Points) != WeeklyDays {
		t.Fatalf("points = %d, want %d", len(s.Points), WeeklyDays)
	}
	if s.Points[0].Key != "2025-02-27" {
		t.Errorf("first bucket = %s, want 2025-02-27", s.Points[0].Key)
	}
	if s.Points[6].Key != "2025-03-05" {
		t.Errorf("last bucket = %s, want 2025-03-05", s.Points[6].Key)
	}
	for _, p := range s.Points {
		if p.Income.Cents != 0 || p.Expense.Cents != 0 {
			t.Errorf("bucket %s not zero: %+v", p.Key, p)
		}
	}
	if len(s.Transactions) != 0 {
		t.Errorf("filtered transactions = %d", len(s.Transactions))
	}
}

func TestWeeklyAccumulationAndWindow(t *testing.T) {
	today := core.NewDate(2025, 3, 5)
	txs := []core.Transaction{
		income(core.NewDate(2025, 3, 5), 120000),         // today, boundary
		expense(core.NewDate(2025, 3, 2), 4550, "Food"),  // in window
		income(core.NewDate(2025, 2, 27), 25000),         // oldest boundary day
		expense(core.NewDate(2025, 2, 26), 8500, "Food"), // outside
	}

	s := Weekly(txs, today)

	byKey := make(map[string]Point)
	for _, p := range s.Points {
		byKey[p.Key] = p
	}
	if got := byKey["2025-03-05"].Income.Cents; got != 120000 {
		t.Errorf("today income = %d", got)
	}
	if got := byKey["2025-03-02"].Expense.Cents; got != 4550 {
		t.Errorf("mar 2 expense = %d", got)
	}
	if got := byKey["2025-02-27"].Income.Cents; got != 25000 {
		t.Errorf("boundary income = %d", got)
	}
	if len(s.Transactions) != 3 {
		t.Errorf("filtered = %d, want 3", len(s.Transactions))
	}

	// A boundary transaction is counted in exactly one bucket.
	var total int64
	for _, p := range s.Points {
		total += p.Income.Cents + p.Expense.Cents
	}
	if total != 120000+4550+25000 {
		t.Errorf("window total = %d, double counting?", total)
	}
}

func TestMonthlyAccumulation(t *testing.T) {
	today := core.NewDate(2025, 3, 5)
	txs := []core.Transaction{
		income(core.NewDate(2025, 2, 17), 50000),
		expense(core.NewDate(2025, 2, 20), 3000, "Entertainment"),
	}

	s := Monthly(txs, today)
	if len(s.Points) != MonthlyMonths {
		t.Fatalf("points = %d", len(s.Points))
	}
	if s.Points[0].Key != "Apr 24" {
		t.Errorf("first bucket = %s, want Apr 24", s.Points[0].Key)
	}
	if s.Points[11].Key != "Mar 25" {
		t.Errorf("last bucket = %s, want Mar 25", s.Points[11].Key)
	}

	for _, p := range s.Points {
		if p.Key == "Feb 25" {
			if p.Income.Cents != 50000 || p.Expense.Cents != 3000 {
				t.Fatalf("Feb 25 = %+v", p)
			}
			continue
		}
		if p.Income.Cents != 0 || p.Expense.Cents != 0 {
			t.Errorf("bucket %s not zero: %+v", p.Key, p)
		}
	}
}

func TestMonthlyIgnoresOutsideWindow(t *testing.T) {
	today := core.NewDate(2025, 3, 5)
	old := income(core.NewDate(2023, 6, 1), 99999)

	s := Monthly([]core.Transaction{old}, today)
	for _, p := range s.Points {
		if p.Income.Cents != 0 {
			t.Fatalf("stale transaction leaked into %s", p.Key)
		}
	}
	if len(s.Transactions) != 0 {
		t.Fatalf("filtered = %d", len(s.Transactions))
	}
}

func TestYearlyRange(t *testing.T) {
	today := core.NewDate(2025, 3, 5)
	txs := []core.Transaction{
		income(core.NewDate(2023, 6, 1), 10000),
		expense(core.NewDate(2025, 1, 15), 2000, "Food"),
	}

	s := Yearly(txs, today)
	want := []string{"2023", "2024", "2025"}
	if len(s.Points) != len(want) {
		t.Fatalf("points = %d, want %d", len(s.Points), len(want))
	}
	for i, key := range want {
		if s.Points[i].Key != key {
			t.Errorf("bucket %d = %s, want %s", i, s.Points[i].Key, key)
		}
	}
	if s.Points[0].Income.Cents != 10000 {
		t.Errorf("2023 income = %d", s.Points[0].Income.Cents)
	}
	if s.Points[1].Income.Cents != 0 || s.Points[1].Expense.Cents != 0 {
		t.Errorf("gap year 2024 not zero: %+v", s.Points[1])
	}
	if s.Points[2].Expense.Cents != 2000 {
		t.Errorf("2025 expense = %d", s.Points[2].Expense.Cents)
	}
}

func TestYearlyEmpty(t *testing.T) {
	today := core.NewDate(2025, 3, 5)
	s := Yearly(nil, today)
	if len(s.Points) != 1 || s.Points[0].Key != "2025" {
		t.Fatalf("empty yearly = %+v", s.Points)
	}
}

func TestSeriesPreservesFilteredOrder(t *testing.T) {
	today := core.NewDate(2025, 3, 5)
	txs := []core.Transaction{
		income(core.NewDate(2025, 3, 5), 100),
		expense(core.NewDate(2025, 3, 2), 50, "Food"),
		income(core.NewDate(2025, 3, 1), 75),
	}
	s := Weekly(txs, today)
	if len(s.Transactions) != 3 {
		t.Fatalf("filtered = %d", len(s.Transactions))
	}
	for i := range txs {
		if s.Transactions[i].ID != txs[i].ID {
			t.Fatalf("order changed at %d", i)
		}
	}
}

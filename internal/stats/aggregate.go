// Package stats contains the pure projections computed over a ledger
// snapshot: per-category totals, gap-filled time-bucketed series, display
// grouping and the textual summary fed to the AI advisor. Nothing here
// mutates the snapshot; every function allocates its own output and is safe
// to call concurrently.
package stats

import (
	"sort"

	"fiscus/internal/category"
	"fiscus/internal/core"
)

// CategoryTotal is one slice of the category breakdown, carrying the
// registry presentation fields for charting.
type CategoryTotal struct {
	Key    string
	Label  string
	Icon   string
	Color  string
	Amount core.Money
}

// AggregateByCategory reduces the snapshot to per-category totals for the
// given type. Expense categories must resolve against the registry; an
// unknown key is a ConfigurationError, never silently dropped. Income
// transactions all fold into the single fixed income category. The result is
// sorted by amount descending, then key, so equal input multisets always
// yield equal output regardless of input order.
func AggregateByCategory(txs []core.Transaction, typ core.TxType, reg *category.Registry) ([]CategoryTotal, error) {
	if typ == core.TypeIncome {
		var total core.Money
		var any bool
		for _, tx := range txs {
			if tx.Type != core.TypeIncome {
				continue
			}
			total = total.Add(tx.Amount)
			any = true
		}
		if !any {
			return []CategoryTotal{}, nil
		}
		entry := reg.Income()
		return []CategoryTotal{{
			Key:    category.IncomeKey,
			Label:  entry.Label,
			Icon:   entry.Icon,
			Color:  entry.Color,
			Amount: total,
		}}, nil
	}

	sums := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Type != core.TypeExpense {
			continue
		}
		if _, err := reg.Resolve(tx.Category); err != nil {
			return nil, err
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for key, amount := range sums {
		entry, _ := reg.Resolve(key)
		out = append(out, CategoryTotal{
			Key:    key,
			Label:  entry.Label,
			Icon:   entry.Icon,
			Color:  entry.Color,
			Amount: amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// SavingsRate returns the percentage of income not spent, 0 when there is
// no income. Negative rates mean spending exceeded income.
func SavingsRate(income, expenses core.Money) float64 {
	if income.Cents <= 0 {
		return 0
	}
	return float64(income.Cents-expenses.Cents) / float64(income.Cents) * 100
}

package stats

import (
	"fmt"
	"strings"

	"fiscus/internal/category"
	"fiscus/internal/core"
)

// Summary renders the textual financial overview embedded in the advisor
// prompt: totals, savings rate, biggest expense category and the full
// expense breakdown.
func Summary(txs []core.Transaction, reg *category.Registry) (string, error) {
	var income, expenses core.Money
	for _, tx := range txs {
		switch tx.Type {
		case core.TypeIncome:
			income = income.Add(tx.Amount)
		case core.TypeExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}

	byCategory, err := AggregateByCategory(txs, core.TypeExpense, reg)
	if err != nil {
		return "", err
	}

	biggest := "N/A"
	if len(byCategory) > 0 {
		biggest = fmt.Sprintf("%s ($%s)", byCategory[0].Label, byCategory[0].Amount)
	}

	parts := make([]string, 0, len(byCategory))
	for _, ct := range byCategory {
		parts = append(parts, fmt.Sprintf("%s: $%s", ct.Label, ct.Amount))
	}
	breakdown := "none"
	if len(parts) > 0 {
		breakdown = strings.Join(parts, ", ")
	}

	var b strings.Builder
	b.WriteString("User summary:\n")
	fmt.Fprintf(&b, "- Total income: $%s\n", income)
	fmt.Fprintf(&b, "- Total expenses: $%s\n", expenses)
	fmt.Fprintf(&b, "- Biggest expense category: %s\n", biggest)
	fmt.Fprintf(&b, "- Savings rate: %.1f%%\n", SavingsRate(income, expenses))
	fmt.Fprintf(&b, "- Expense category breakdown: %s\n", breakdown)
	return b.String(), nil
}

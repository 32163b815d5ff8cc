package http

import (
	"fiscus/internal/core"
	"fiscus/internal/ledger"
	"fiscus/internal/stats"
)

const dateLayout = "2006-01-02"

type transactionView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

func viewTransaction(tx core.Transaction) transactionView {
	return transactionView{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Amount:      tx.Amount.String(),
		AmountCents: tx.Amount.Cents,
		Category:    tx.Category,
		Date:        tx.Date.Format(dateLayout),
		Description: tx.Description,
	}
}

func viewTransactions(txs []core.Transaction) []transactionView {
	out := make([]transactionView, len(txs))
	for i, tx := range txs {
		out[i] = viewTransaction(tx)
	}
	return out
}

type totalsView struct {
	IncomeCents   int64  `json:"income_cents"`
	ExpensesCents int64  `json:"expenses_cents"`
	BalanceCents  int64  `json:"balance_cents"`
	Income        string `json:"income"`
	Expenses      string `json:"expenses"`
	Balance       string `json:"balance"`
}

func viewTotals(t ledger.Totals) totalsView {
	return totalsView{
		IncomeCents:   t.Income.Cents,
		ExpensesCents: t.Expenses.Cents,
		BalanceCents:  t.Balance.Cents,
		Income:        t.Income.String(),
		Expenses:      t.Expenses.String(),
		Balance:       t.Balance.String(),
	}
}

type pointView struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
}

type seriesView struct {
	Granularity  string            `json:"granularity"`
	Points       []pointView       `json:"points"`
	Transactions []transactionView `json:"transactions"`
}

func viewSeries(s stats.Series) seriesView {
	points := make([]pointView, len(s.Points))
	for i, p := range s.Points {
		points[i] = pointView{
			Key:          p.Key,
			Label:        p.Label,
			IncomeCents:  p.Income.Cents,
			ExpenseCents: p.Expense.Cents,
		}
	}
	return seriesView{
		Granularity:  string(s.Granularity),
		Points:       points,
		Transactions: viewTransactions(s.Transactions),
	}
}

type categoryTotalView struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

func viewBreakdown(totals []stats.CategoryTotal) []categoryTotalView {
	out := make([]categoryTotalView, len(totals))
	for i, ct := range totals {
		out[i] = categoryTotalView{
			Key:         ct.Key,
			Label:       ct.Label,
			Icon:        ct.Icon,
			Color:       ct.Color,
			AmountCents: ct.Amount.Cents,
			Amount:      ct.Amount.String(),
		}
	}
	return out
}

type groupView struct {
	Label string            `json:"label"`
	Items []transactionView `json:"items"`
}

func viewGroups(groups []stats.Group) []groupView {
	out := make([]groupView, len(groups))
	for i, g := range groups {
		out[i] = groupView{Label: g.Label, Items: viewTransactions(g.Items)}
	}
	return out
}

package stats

import "fiscus/internal/core"

// Group is a run of transactions presented under one date heading.
type Group struct {
	Label string
	Items []core.Transaction
}

// GroupForDisplay partitions an already descending-sorted snapshot into
// labeled groups: "Today" for the current calendar date, "Yesterday" for
// exactly one day prior, otherwise a weekday+month+day heading. Group order
// follows first occurrence in the input, so the most recent group comes
// first; within a group the original relative order is preserved.
func GroupForDisplay(txs []core.Transaction, today core.Date) []Group {
	yesterday := today.AddDays(-1)

	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, tx := range txs {
		label := tx.Date.Format("Mon, January 2")
		if tx.Date.Equal(today) {
			label = "Today"
		} else if tx.Date.Equal(yesterday) {
			label = "Yesterday"
		}

		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Items = append(groups[i].Items, tx)
	}
	return groups
}

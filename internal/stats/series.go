package stats

import (
	"time"

	"fiscus/internal/core"
)

// WeeklyDays is the fixed length of the day-bucket window.
const WeeklyDays = 7

// MonthlyMonths is the fixed length of the month-bucket window.
const MonthlyMonths = 12

// Point is one bucket of a series: calendar key, chart label and the income
// and expense sums accumulated into it.
type Point struct {
	Key     string
	Label   string
	Income  core.Money
	Expense core.Money
}

// Series is a fixed-length, gap-filled sequence of buckets, oldest first,
// plus the transactions that fell inside the window in their original
// descending order.
type Series struct {
	Granularity  core.Granularity
	Points       []Point
	Transactions []core.Transaction
}

// Weekly buckets the snapshot into the last 7 calendar days ending at today
// inclusive. Every day appears, zero-valued when nothing happened on it.
func Weekly(txs []core.Transaction, today core.Date) Series {
	points := make([]Point, 0, WeeklyDays)
	for i := WeeklyDays - 1; i >= 0; i-- {
		d := today.AddDays(-i)
		points = append(points, Point{
			Key:   d.BucketKey(core.BucketDay),
			Label: d.Weekday(),
		})
	}
	return accumulate(core.BucketDay, points, txs)
}

// Monthly buckets the snapshot into the last 12 calendar months ending at
// the current month inclusive, labeled "Jan 06" style.
func Monthly(txs []core.Transaction, today core.Date) Series {
	points := make([]Point, 0, MonthlyMonths)
	for i := MonthlyMonths - 1; i >= 0; i-- {
		m := core.Date{Time: time.Date(today.Year(), today.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)}
		key := m.BucketKey(core.BucketMonth)
		points = append(points, Point{Key: key, Label: key})
	}
	return accumulate(core.BucketMonth, points, txs)
}

// Yearly buckets the snapshot into every calendar year from the earliest
// transaction through the current year inclusive. With no transactions the
// range is just the current year.
func Yearly(txs []core.Transaction, today core.Date) Series {
	first := today.Year()
	for _, tx := range txs {
		if y := tx.Date.Year(); y < first {
			first = y
		}
	}
	points := make([]Point, 0, today.Year()-first+1)
	for y := first; y <= today.Year(); y++ {
		key := core.NewDate(y, 1, 1).BucketKey(core.BucketYear)
		points = append(points, Point{Key: key, Label: key})
	}
	return accumulate(core.BucketYear, points, txs)
}

// accumulate resolves every transaction's bucket key and adds its amount to
// the matching point. A transaction whose key matches no generated bucket is
// outside the window and ignored, so a boundary date lands in exactly one
// bucket and is never double-counted.
func accumulate(g core.Granularity, points []Point, txs []core.Transaction) Series {
	index := make(map[string]int, len(points))
	for i, p := range points {
		index[p.Key] = i
	}

	inWindow := make([]core.Transaction, 0)
	for _, tx := range txs {
		i, ok := index[tx.Date.BucketKey(g)]
		if !ok {
			continue
		}
		switch tx.Type {
		case core.TypeIncome:
			points[i].Income = points[i].Income.Add(tx.Amount)
		case core.TypeExpense:
			points[i].Expense = points[i].Expense.Add(tx.Amount)
		}
		inWindow = append(inWindow, tx)
	}

	return Series{Granularity: g, Points: points, Transactions: inWindow}
}

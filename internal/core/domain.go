// Package core holds the pure domain types of the ledger: transactions,
// exact money amounts and calendar dates. It has no infrastructure imports.
package core

import (
	"strings"
	"time"
)

const (
	TypeIncome  TxType = "income"
	TypeExpense TxType = "expense"
)

type (
	// TxType classifies a transaction as money coming in or going out.
	// The sign of a movement is always derived from the type; amounts are
	// stored as positive magnitudes.
	TxType string

	// Date is a calendar date, normalized to UTC midnight. Time-of-day is
	// never significant for sorting or bucketing.
	Date struct {
		time.Time
	}

	// Transaction is the atomic ledger entity. ID and Owner are assigned at
	// creation and never change afterwards.
	Transaction struct {
		ID          string
		Owner       string
		Type        TxType
		Amount      Money
		Category    string
		Date        Date
		Description string
	}
)

// Valid reports whether t is one of the two known transaction types.
func (t TxType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Equal reports calendar-date equality.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Validate checks the invariants that must hold before a transaction may be
// stored: a known type, a positive amount, a valid date, and a category for
// expenses. Whether the category key is known to the registry is checked at
// a higher layer.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Type == TypeExpense && strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}
	if len(t.Description) > 200 {
		return Validationf("description too long (max 200 characters)")
	}
	return nil
}

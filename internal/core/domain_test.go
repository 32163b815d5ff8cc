package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:        TypeExpense,
		Amount:      Money{Cents: 4550},
		Category:    "Food",
		Date:        NewDate(2025, 3, 2),
		Description: "Grocery shopping",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	income := Transaction{
		Type:   TypeIncome,
		Amount: Money{Cents: 120000},
		Date:   NewDate(2025, 3, 5),
	}
	if err := income.Validate(); err != nil {
		t.Fatalf("income without category should validate, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{
			name: "zero amount",
			tx:   Transaction{Type: TypeExpense, Amount: Money{}, Category: "Food", Date: NewDate(2025, 1, 1)},
			want: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			tx:   Transaction{Type: TypeIncome, Amount: Money{Cents: -100}, Date: NewDate(2025, 1, 1)},
			want: ErrInvalidAmount,
		},
		{
			name: "expense without category",
			tx:   Transaction{Type: TypeExpense, Amount: Money{Cents: 100}, Date: NewDate(2025, 1, 1)},
			want: ErrMissingCategory,
		},
		{
			name: "blank category",
			tx:   Transaction{Type: TypeExpense, Amount: Money{Cents: 100}, Category: "   ", Date: NewDate(2025, 1, 1)},
			want: ErrMissingCategory,
		},
		{
			name: "unknown type",
			tx:   Transaction{Type: "transfer", Amount: Money{Cents: 100}, Date: NewDate(2025, 1, 1)},
			want: ErrInvalidType,
		},
		{
			name: "zero date",
			tx:   Transaction{Type: TypeIncome, Amount: Money{Cents: 100}},
			want: ErrZeroDate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tx.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	long := good
	long.Description = strings.Repeat("x", 201)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long description")
	}
}

func TestValidationErrorAs(t *testing.T) {
	err := (Transaction{Type: TypeExpense, Amount: Money{Cents: 1}, Date: NewDate(2025, 1, 1)}).Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}

func TestDateOf(t *testing.T) {
	instant := time.Date(2025, 2, 17, 23, 45, 12, 0, time.UTC)
	d := DateOf(instant)
	if !d.Equal(NewDate(2025, 2, 17)) {
		t.Fatalf("DateOf truncation wrong: %v", d)
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Fatalf("date not at midnight: %v", d)
	}
}

func TestDateAddDays(t *testing.T) {
	d := NewDate(2025, 3, 1)
	if got := d.AddDays(-1); !got.Equal(NewDate(2025, 2, 28)) {
		t.Fatalf("AddDays(-1) across month = %v", got)
	}
	if got := d.AddDays(31); !got.Equal(NewDate(2025, 4, 1)) {
		t.Fatalf("AddDays(31) = %v", got)
	}
}

package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTx() Transaction {
	return Transaction{
		UserID:      1,
		Type:        Expense,
		Amount:      decimal.RequireFromString("10.00"),
		Date:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		CategoryID:  3,
		Description: "ok",
		Status:      StatusDue,
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTx().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "TRANSFER" }, ErrInvalidType},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrMissingDate},
		{"no category", func(tx *Transaction) { tx.CategoryID = 0 }, ErrMissingCategory},
		{"blank description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"bad status", func(tx *Transaction) { tx.Status = "LATE" }, ErrInvalidStatus},
		{"recurring without type", func(tx *Transaction) { tx.IsRecurring = true }, ErrInvalidRecurrence},
		{"one installment", func(tx *Transaction) {
			tx.IsRecurring, tx.RecurrenceType, tx.TotalInstallments, tx.CurrentInstallment = true, Installments, 1, 1
		}, ErrInvalidInstallments},
		{"current past total", func(tx *Transaction) {
			tx.IsRecurring, tx.RecurrenceType, tx.TotalInstallments, tx.CurrentInstallment = true, Installments, 3, 4
		}, ErrInvalidInstallments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx()
			tt.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	long := validTx()
	long.Description = strings.Repeat("x", MaxDescriptionLen+1)
	if err := long.Validate(); err == nil {
		t.Fatalf("expected error for long description")
	}
}

func TestParseEnums(t *testing.T) {
	if got, err := ParseTransactionType("income"); err != nil || got != Income {
		t.Fatalf("ParseTransactionType(income) = %v, %v", got, err)
	}
	if _, err := ParseTransactionType("gift"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if got, err := ParseStatus(" to_pay "); err != nil || got != StatusToPay {
		t.Fatalf("ParseStatus(to_pay) = %v, %v", got, err)
	}
	if got, err := ParseRecurrenceType("Yearly"); err != nil || got != Yearly {
		t.Fatalf("ParseRecurrenceType(Yearly) = %v, %v", got, err)
	}
	if _, err := ParseRecurrenceType("weekly"); !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("expected ErrInvalidRecurrence, got %v", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Food"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: " "}).Validate(); !errors.Is(err, ErrEmptyCategoryName) {
		t.Fatalf("expected ErrEmptyCategoryName, got %v", err)
	}
	if err := (Category{Name: strings.Repeat("a", 101)}).Validate(); err == nil {
		t.Fatalf("expected error for long name")
	}
}

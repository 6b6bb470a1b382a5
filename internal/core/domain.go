package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	StatusDue   Status = "DUE"
	StatusToPay Status = "TO_PAY"
	StatusPaid  Status = "PAID"
)

const (
	Installments RecurrenceType = "INSTALLMENTS"
	Monthly      RecurrenceType = "MONTHLY"
	Yearly       RecurrenceType = "YEARLY"
)

const (
	MinInstallments = 2
	MaxInstallments = 120

	MaxDescriptionLen  = 200
	MaxNotesLen        = 1000
	MaxCategoryNameLen = 100
)

type (
	TransactionType string
	Status          string
	RecurrenceType  string

	User struct {
		ID                   int64
		Username             string
		Email                string
		PasswordHash         string
		InitialBalance       decimal.Decimal
		OverdraftLimit       decimal.Decimal
		NotificationsEnabled bool
		CreatedAt            time.Time
	}

	Category struct {
		ID     int64
		UserID int64
		Name   string
	}

	Transaction struct {
		ID                 int64
		UserID             int64
		Type               TransactionType
		Amount             decimal.Decimal // positive magnitude, sign implied by Type
		Date               time.Time
		CategoryID         int64
		Description        string
		Notes              string
		Status             Status
		InvoiceID          *int64
		IsRecurring        bool
		RecurrenceType     RecurrenceType
		TotalInstallments  int
		CurrentInstallment int
		RecurringGroupID   string
		CreatedAt          time.Time
	}

	Invoice struct {
		ID            int64
		UserID        int64
		Filename      string
		ContentType   string
		Content       []byte
		ProcessedText string
		Barcode       string
		CreatedAt     time.Time
	}

	Reminder struct {
		ID            int64
		UserID        int64
		TransactionID int64
		ReminderDate  time.Time
		Sent          bool
		CreatedAt     time.Time
	}
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidRecurrence   = errors.New("invalid recurrence type")
	ErrInvalidInstallments = errors.New("invalid installment count")
	ErrNotRecurring        = errors.New("transaction is not recurring")
	ErrEmptyDescription    = errors.New("empty description")
	ErrMissingCategory     = errors.New("missing category")
	ErrMissingDate         = errors.New("missing date")
	ErrEmptyCategoryName   = errors.New("empty category name")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// DefaultCategories are created for every new user.
var DefaultCategories = []string{
	"Alimentação",
	"Moradia",
	"Transporte",
	"Lazer",
	"Saúde",
	"Educação",
	"Cartão de Crédito",
	"Acordo Judicial",
	"Estacionamento",
	"Outros",
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (s Status) Valid() bool {
	switch s {
	case StatusDue, StatusToPay, StatusPaid:
		return true
	}
	return false
}

func (r RecurrenceType) Valid() bool {
	switch r {
	case Installments, Monthly, Yearly:
		return true
	}
	return false
}

// ParseTransactionType accepts any casing.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func ParseRecurrenceType(s string) (RecurrenceType, error) {
	r := RecurrenceType(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecurrence, s)
	}
	return r, nil
}

// Signed returns the amount with the sign implied by the transaction type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if t.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > MaxDescriptionLen {
		return fmt.Errorf("description too long (max %d characters)", MaxDescriptionLen)
	}
	if len(t.Notes) > MaxNotesLen {
		return fmt.Errorf("notes too long (max %d characters)", MaxNotesLen)
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.IsRecurring {
		return nil
	}
	if !t.RecurrenceType.Valid() {
		return ErrInvalidRecurrence
	}
	if t.RecurrenceType == Installments {
		if t.TotalInstallments < MinInstallments || t.TotalInstallments > MaxInstallments {
			return ErrInvalidInstallments
		}
		if t.CurrentInstallment < 1 || t.CurrentInstallment > t.TotalInstallments {
			return ErrInvalidInstallments
		}
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	if len(name) > MaxCategoryNameLen {
		return fmt.Errorf("category name too long (max %d characters)", MaxCategoryNameLen)
	}
	return nil
}

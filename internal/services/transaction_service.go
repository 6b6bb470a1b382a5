package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultRecentLimit   = 5
	DefaultUpcomingLimit = 5
	maxListLimit         = 100
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

// TransactionService creates and edits transactions. Every multi-row write,
// including installment expansion and reminder planning, runs in one database
// transaction.
type TransactionService struct {
	repo  ports.Repository
	loc   *time.Location
	now   Clock
	newID func() string
}

func NewTransactionService(repo ports.Repository, loc *time.Location) *TransactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionService{repo: repo, loc: loc, now: time.Now, newID: uuid.NewString}
}

// WithClock replaces the service clock.
func (s *TransactionService) WithClock(now Clock) *TransactionService {
	s.now = now
	return s
}

// CreateResult is what Create wrote. GroupID is empty for single transactions.
type CreateResult struct {
	Transactions []core.Transaction
	Reminders    int
	GroupID      string
}

// Create stores t for userID. INSTALLMENTS templates are expanded into
// TotalInstallments rows; MONTHLY and YEARLY start a rolling series at
// occurrence 1. Reminders are planned for every row written.
func (s *TransactionService) Create(ctx context.Context, userID int64, t core.Transaction) (CreateResult, error) {
	t.UserID = userID
	t.ID = 0
	if t.Status == "" {
		t.Status = core.StatusDue
	}
	t.Amount = t.Amount.Round(core.AmountScale)

	rows, groupID, err := s.plan(t)
	if err != nil {
		return CreateResult{}, err
	}

	now := s.now()
	res := CreateResult{GroupID: groupID}
	err = s.repo.WithTx(ctx, func(st ports.Store) error {
		if err := s.checkRefs(ctx, st, userID, t.CategoryID, t.InvoiceID); err != nil {
			return err
		}
		created := make([]core.Transaction, 0, len(rows))
		reminders := 0
		for _, row := range rows {
			saved, err := st.CreateTransaction(ctx, row)
			if err != nil {
				return fmt.Errorf("create transaction: %w", err)
			}
			n, err := createReminders(ctx, st, saved, now)
			if err != nil {
				return err
			}
			reminders += n
			created = append(created, saved)
		}
		res.Transactions = created
		res.Reminders = reminders
		return nil
	})
	if err != nil {
		return CreateResult{}, err
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentTx).InfoContext(ctx, "Transactions created",
		applog.FieldUserID, userID,
		applog.FieldCount, len(res.Transactions),
		applog.FieldGroupID, groupID,
		"reminders", res.Reminders)
	return res, nil
}

// plan turns a validated template into the rows to insert.
func (s *TransactionService) plan(t core.Transaction) ([]core.Transaction, string, error) {
	if !t.IsRecurring {
		t.RecurrenceType = ""
		t.TotalInstallments = 0
		t.CurrentInstallment = 0
		t.RecurringGroupID = ""
		if err := t.Validate(); err != nil {
			return nil, "", err
		}
		return []core.Transaction{t}, "", nil
	}

	groupID := s.newID()
	switch t.RecurrenceType {
	case core.Installments:
		t.CurrentInstallment = 1
		if err := t.Validate(); err != nil {
			return nil, "", err
		}
		rows, err := core.ExpandInstallments(t, t.TotalInstallments, groupID)
		if err != nil {
			return nil, "", err
		}
		return rows, groupID, nil
	case core.Monthly, core.Yearly:
		if t.TotalInstallments < 0 || t.TotalInstallments > core.MaxInstallments {
			return nil, "", fmt.Errorf("%w: %d", core.ErrInvalidInstallments, t.TotalInstallments)
		}
		t.CurrentInstallment = 1
		t.RecurringGroupID = groupID
		if err := t.Validate(); err != nil {
			return nil, "", err
		}
		return []core.Transaction{t}, groupID, nil
	}
	return nil, "", core.ErrInvalidRecurrence
}

// checkRefs rejects categories and invoices the user does not own.
func (s *TransactionService) checkRefs(ctx context.Context, st ports.Store, userID, categoryID int64, invoiceID *int64) error {
	if _, err := st.GetCategory(ctx, userID, categoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: category %d", core.ErrMissingCategory, categoryID)
		}
		return fmt.Errorf("get category: %w", err)
	}
	if invoiceID == nil {
		return nil
	}
	if _, err := st.GetInvoice(ctx, userID, *invoiceID); err != nil {
		return fmt.Errorf("get invoice %d: %w", *invoiceID, err)
	}
	return nil
}

func createReminders(ctx context.Context, st ports.ReminderStore, t core.Transaction, now time.Time) (int, error) {
	rs := core.RemindersFor(t, now)
	for _, r := range rs {
		if _, err := st.CreateReminder(ctx, r); err != nil {
			return 0, fmt.Errorf("create reminder for transaction %d: %w", t.ID, err)
		}
	}
	return len(rs), nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

// List returns all of the user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// ListRange returns the user's transactions within [start, end].
func (s *TransactionService) ListRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	return s.repo.ListTransactionsByDateRange(ctx, userID, start, end)
}

func (s *TransactionService) Recent(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	return s.repo.ListRecentTransactions(ctx, userID, clampLimit(limit, DefaultRecentLimit))
}

// Upcoming returns DUE transactions from the start of today onwards, soonest first.
func (s *TransactionService) Upcoming(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return s.repo.ListUpcomingTransactions(ctx, userID, today, clampLimit(limit, DefaultUpcomingLimit))
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// TransactionPatch holds the editable fields. Nil fields are left unchanged.
type TransactionPatch struct {
	Type        *core.TransactionType
	Amount      *decimal.Decimal
	Date        *time.Time
	CategoryID  *int64
	Description *string
	Notes       *string
	Status      *core.Status
	InvoiceID   *int64
	// ClearInvoice detaches the invoice; it wins over InvoiceID.
	ClearInvoice bool
}

// Update applies p to one transaction. Recurrence fields are not editable.
func (s *TransactionService) Update(ctx context.Context, userID, id int64, p TransactionPatch) (core.Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = p.Amount.Round(core.AmountScale)
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	switch {
	case p.ClearInvoice:
		t.InvoiceID = nil
	case p.InvoiceID != nil:
		t.InvoiceID = p.InvoiceID
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	err = s.repo.WithTx(ctx, func(st ports.Store) error {
		if err := s.checkRefs(ctx, st, userID, t.CategoryID, t.InvoiceID); err != nil {
			return err
		}
		if err := st.UpdateTransaction(ctx, t); err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// SetStatus changes only the status of a transaction.
func (s *TransactionService) SetStatus(ctx context.Context, userID, id int64, status core.Status) (core.Transaction, error) {
	if !status.Valid() {
		return core.Transaction{}, core.ErrInvalidStatus
	}
	if err := s.repo.UpdateTransactionStatus(ctx, userID, id, status); err != nil {
		return core.Transaction{}, err
	}
	return s.repo.GetTransaction(ctx, userID, id)
}

// Delete removes one transaction and its reminders.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteTransaction(ctx, userID, id)
}

// DeleteAll removes every transaction of the user and returns how many were removed.
func (s *TransactionService) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.DeleteAllTransactions(ctx, userID)
	if err != nil {
		return 0, err
	}
	applog.FromContext(ctx).WithComponent(applog.ComponentTx).InfoContext(ctx, "All transactions deleted",
		applog.FieldUserID, userID,
		applog.FieldCount, n)
	return n, nil
}

// Package ports declares the storage interfaces the services depend on.
package ports

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Ports for outbound storage adapters. Every read and write of user-owned rows
// is scoped by userID; a row owned by someone else is reported as core.ErrNotFound.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id int64) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		UpdateUserSettings(ctx context.Context, u core.User) error
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
		ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
		// ListTransactions returns all of a user's transactions, newest first.
		ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
		// ListTransactionsByDateRange returns transactions dated within [start, end].
		ListTransactionsByDateRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error)
		ListRecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
		// ListUpcomingTransactions returns DUE transactions dated on or after from, soonest first.
		ListUpcomingTransactions(ctx context.Context, userID int64, from time.Time, limit int) ([]core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		UpdateTransactionStatus(ctx context.Context, userID, id int64, status core.Status) error
		DeleteTransaction(ctx context.Context, userID, id int64) error
		DeleteAllTransactions(ctx context.Context, userID int64) (int64, error)
		// ListDueSeries returns MONTHLY and YEARLY series whose latest occurrence is dated at or before now.
		ListDueSeries(ctx context.Context, now time.Time) ([]core.Series, error)
	}

	InvoiceStore interface {
		CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error)
		GetInvoice(ctx context.Context, userID, id int64) (core.Invoice, error)
		// ListInvoices omits Content.
		ListInvoices(ctx context.Context, userID int64) ([]core.Invoice, error)
		DeleteInvoice(ctx context.Context, userID, id int64) error
	}

	ReminderStore interface {
		CreateReminder(ctx context.Context, r core.Reminder) (core.Reminder, error)
		ListReminders(ctx context.Context, userID int64) ([]core.Reminder, error)
		// ListUpcomingReminders returns unsent reminders dated on or after from.
		ListUpcomingReminders(ctx context.Context, userID int64, from time.Time) ([]core.Reminder, error)
		MarkReminderSent(ctx context.Context, userID, id int64) error
		// ListDueReminders returns unsent reminders dated at or before now for
		// users with notifications enabled.
		ListDueReminders(ctx context.Context, now time.Time, limit int) ([]core.DueReminder, error)
	}

	// Store is the full set of storage operations.
	Store interface {
		UserStore
		CategoryStore
		TransactionStore
		InvoiceStore
		ReminderStore
	}

	// UnitOfWork runs fn against a Store bound to one database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	UnitOfWork interface {
		WithTx(ctx context.Context, fn func(Store) error) error
	}

	Repository interface {
		Store
		UnitOfWork
		Ping(ctx context.Context) error
	}
)

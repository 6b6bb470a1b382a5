package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// fakeRepo is an in-memory ports.Repository. WithTx snapshots the state and
// restores it when fn fails.
type fakeRepo struct {
	mu sync.Mutex

	users        map[int64]core.User
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	invoices     map[int64]core.Invoice
	reminders    map[int64]core.Reminder
	nextID       int64

	// failTxCreateAt makes the nth CreateTransaction call (1-based) fail.
	failTxCreateAt int
	txCreates      int
	sentErr        error
}

var errInjected = errors.New("injected failure")

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        map[int64]core.User{},
		categories:   map[int64]core.Category{},
		transactions: map[int64]core.Transaction{},
		invoices:     map[int64]core.Invoice{},
		reminders:    map[int64]core.Reminder{},
	}
}

var _ ports.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) Ping(context.Context) error { return nil }

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ports.Store) error) error {
	f.mu.Lock()
	snap := f.clone()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.users, f.categories, f.transactions = snap.users, snap.categories, snap.transactions
		f.invoices, f.reminders, f.nextID = snap.invoices, snap.reminders, snap.nextID
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepo) clone() *fakeRepo {
	c := newFakeRepo()
	for k, v := range f.users {
		c.users[k] = v
	}
	for k, v := range f.categories {
		c.categories[k] = v
	}
	for k, v := range f.transactions {
		c.transactions[k] = v
	}
	for k, v := range f.invoices {
		c.invoices[k] = v
	}
	for k, v := range f.reminders {
		c.reminders[k] = v
	}
	c.nextID = f.nextID
	return c
}

func (f *fakeRepo) CreateUser(_ context.Context, u core.User) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return core.User{}, core.ErrEmailTaken
		}
	}
	u.ID = f.id()
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeRepo) GetUser(_ context.Context, id int64) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (f *fakeRepo) UpdateUserSettings(_ context.Context, u core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return core.ErrNotFound
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id()
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeRepo) GetCategory(_ context.Context, userID, id int64) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok || c.UserID != userID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txCreates++
	if f.failTxCreateAt > 0 && f.txCreates == f.failTxCreateAt {
		return core.Transaction{}, errInjected
	}
	t.ID = f.id()
	f.transactions[t.ID] = t
	return t, nil
}

func (f *fakeRepo) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) userTxs(userID int64, keep func(core.Transaction) bool) []core.Transaction {
	var out []core.Transaction
	for _, t := range f.transactions {
		if t.UserID == userID && (keep == nil || keep(t)) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (f *fakeRepo) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userTxs(userID, nil), nil
}

func (f *fakeRepo) ListTransactionsByDateRange(_ context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userTxs(userID, func(t core.Transaction) bool {
		return !t.Date.Before(start) && !t.Date.After(end)
	}), nil
}

func (f *fakeRepo) ListRecentTransactions(_ context.Context, userID int64, limit int) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.userTxs(userID, nil)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ListUpcomingTransactions(_ context.Context, userID int64, from time.Time, limit int) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.userTxs(userID, func(t core.Transaction) bool {
		return t.Status == core.StatusDue && !t.Date.Before(from)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) UpdateTransaction(_ context.Context, t core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.transactions[t.ID]
	if !ok || old.UserID != t.UserID {
		return core.ErrNotFound
	}
	f.transactions[t.ID] = t
	return nil
}

func (f *fakeRepo) UpdateTransactionStatus(_ context.Context, userID, id int64, status core.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.ErrNotFound
	}
	t.Status = status
	f.transactions[id] = t
	return nil
}

func (f *fakeRepo) DeleteTransaction(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.transactions, id)
	for rid, r := range f.reminders {
		if r.TransactionID == id {
			delete(f.reminders, rid)
		}
	}
	return nil
}

func (f *fakeRepo) DeleteAllTransactions(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, t := range f.transactions {
		if t.UserID == userID {
			delete(f.transactions, id)
			n++
		}
	}
	for rid, r := range f.reminders {
		if r.UserID == userID {
			delete(f.reminders, rid)
		}
	}
	return n, nil
}

func (f *fakeRepo) ListDueSeries(_ context.Context, now time.Time) ([]core.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	firsts := map[string]core.Transaction{}
	latest := map[string]core.Transaction{}
	for _, t := range f.transactions {
		if !t.IsRecurring || (t.RecurrenceType != core.Monthly && t.RecurrenceType != core.Yearly) {
			continue
		}
		if t.CurrentInstallment == 1 {
			firsts[t.RecurringGroupID] = t
		}
		if l, ok := latest[t.RecurringGroupID]; !ok || t.CurrentInstallment > l.CurrentInstallment {
			latest[t.RecurringGroupID] = t
		}
	}
	var out []core.Series
	for g, first := range firsts {
		l := latest[g]
		if l.Date.After(now) {
			continue
		}
		if first.TotalInstallments > 0 && l.CurrentInstallment >= first.TotalInstallments {
			continue
		}
		out = append(out, core.Series{First: first, Latest: l})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].First.ID < out[j].First.ID })
	return out, nil
}

func (f *fakeRepo) CreateInvoice(_ context.Context, inv core.Invoice) (core.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = f.id()
	f.invoices[inv.ID] = inv
	return inv, nil
}

func (f *fakeRepo) GetInvoice(_ context.Context, userID, id int64) (core.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok || inv.UserID != userID {
		return core.Invoice{}, core.ErrNotFound
	}
	return inv, nil
}

func (f *fakeRepo) ListInvoices(_ context.Context, userID int64) ([]core.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Invoice
	for _, inv := range f.invoices {
		if inv.UserID == userID {
			inv.Content = nil
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteInvoice(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok || inv.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.invoices, id)
	for tid, t := range f.transactions {
		if t.InvoiceID != nil && *t.InvoiceID == id {
			t.InvoiceID = nil
			f.transactions[tid] = t
		}
	}
	return nil
}

func (f *fakeRepo) CreateReminder(_ context.Context, r core.Reminder) (core.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.id()
	f.reminders[r.ID] = r
	return r, nil
}

func (f *fakeRepo) userReminders(userID int64, keep func(core.Reminder) bool) []core.Reminder {
	var out []core.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID && (keep == nil || keep(r)) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderDate.Before(out[j].ReminderDate) })
	return out
}

func (f *fakeRepo) ListReminders(_ context.Context, userID int64) ([]core.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userReminders(userID, nil), nil
}

func (f *fakeRepo) ListUpcomingReminders(_ context.Context, userID int64, from time.Time) ([]core.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userReminders(userID, func(r core.Reminder) bool {
		return !r.Sent && !r.ReminderDate.Before(from)
	}), nil
}

func (f *fakeRepo) MarkReminderSent(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sentErr != nil {
		return f.sentErr
	}
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return core.ErrNotFound
	}
	r.Sent = true
	f.reminders[id] = r
	return nil
}

func (f *fakeRepo) ListDueReminders(_ context.Context, now time.Time, limit int) ([]core.DueReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.DueReminder
	for _, r := range f.reminders {
		u := f.users[r.UserID]
		if r.Sent || r.ReminderDate.After(now) || !u.NotificationsEnabled {
			continue
		}
		out = append(out, core.DueReminder{
			Reminder:    r,
			Transaction: f.transactions[r.TransactionID],
			Username:    u.Username,
			Email:       u.Email,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reminder.ID < out[j].Reminder.ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// seed creates a user with notifications on and one category.
func (f *fakeRepo) seed() (core.User, core.Category) {
	u, _ := f.CreateUser(context.Background(), core.User{Username: "ana", Email: "ana@example.com", NotificationsEnabled: true})
	c, _ := f.CreateCategory(context.Background(), core.Category{UserID: u.ID, Name: "Moradia"})
	return u, c
}

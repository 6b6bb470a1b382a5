package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

var txFields = []string{
	"id", "user_id", "type", "amount", "date", "category_id", "description", "notes", "status",
	"invoice_id", "is_recurring", "recurrence_type", "total_installments", "current_installment",
	"recurring_group_id", "created_at",
}

// txColumns renders the column list, optionally qualified by a table alias.
func txColumns(alias string) string {
	if alias == "" {
		return strings.Join(txFields, ", ")
	}
	cols := make([]string, len(txFields))
	for i, f := range txFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

// txRow holds the raw column values of one transactions row.
type txRow struct {
	t       core.Transaction
	typ     string
	date    string
	status  string
	invoice sql.NullInt64
	recType string
	created string
}

func (r *txRow) dest() []any {
	return []any{
		&r.t.ID, &r.t.UserID, &r.typ, &r.t.Amount, &r.date, &r.t.CategoryID, &r.t.Description,
		&r.t.Notes, &r.status, &r.invoice, &r.t.IsRecurring, &r.recType, &r.t.TotalInstallments,
		&r.t.CurrentInstallment, &r.t.RecurringGroupID, &r.created,
	}
}

func (r *txRow) transaction() (core.Transaction, error) {
	t := r.t
	t.Type = core.TransactionType(r.typ)
	t.Status = core.Status(r.status)
	t.RecurrenceType = core.RecurrenceType(r.recType)
	if r.invoice.Valid {
		id := r.invoice.Int64
		t.InvoiceID = &id
	}
	var err error
	if t.Date, err = parseTime(r.date); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseTime(r.created); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		var r txRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := r.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount, date, category_id, description, notes, status,
			invoice_id, is_recurring, recurrence_type, total_installments, current_installment,
			recurring_group_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Type), core.FormatAmount(t.Amount), formatTime(t.Date), t.CategoryID,
		t.Description, t.Notes, string(t.Status), nullableID(t.InvoiceID), t.IsRecurring,
		string(t.RecurrenceType), t.TotalInstallments, t.CurrentInstallment, t.RecurringGroupID,
		formatTime(t.CreatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id
	return t, nil
}

func (q *Queries) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	var r txRow
	err := q.db.QueryRowContext(ctx,
		`SELECT `+txColumns("")+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID).
		Scan(r.dest()...)
	if err != nil {
		return core.Transaction{}, notFound("transaction", id, err)
	}
	return r.transaction()
}

func (q *Queries) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+txColumns("")+` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (q *Queries) ListTransactionsByDateRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+txColumns("")+` FROM transactions
		 WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date, id`,
		userID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("list transactions by date range: %w", err)
	}
	return scanTransactions(rows)
}

func (q *Queries) ListRecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+txColumns("")+` FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (q *Queries) ListUpcomingTransactions(ctx context.Context, userID int64, from time.Time, limit int) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+txColumns("")+` FROM transactions
		 WHERE user_id = ? AND status = ? AND date >= ? ORDER BY date, id LIMIT ?`,
		userID, string(core.StatusDue), formatTime(from), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, date = ?, category_id = ?, description = ?,
			notes = ?, status = ?, invoice_id = ?
		 WHERE id = ? AND user_id = ?`,
		string(t.Type), core.FormatAmount(t.Amount), formatTime(t.Date), t.CategoryID, t.Description,
		t.Notes, string(t.Status), nullableID(t.InvoiceID), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return expectAffected(res, "transaction", t.ID)
}

func (q *Queries) UpdateTransactionStatus(ctx context.Context, userID, id int64, status core.Status) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ? AND user_id = ?`, string(status), id, userID)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	return expectAffected(res, "transaction", id)
}

// DeleteTransaction removes a transaction together with its reminders.
func (q *Queries) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE transaction_id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete reminders of transaction: %w", err)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return expectAffected(res, "transaction", id)
}

func (q *Queries) DeleteAllTransactions(ctx context.Context, userID int64) (int64, error) {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM reminders WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("delete reminders: %w", err)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (q *Queries) ListDueSeries(ctx context.Context, now time.Time) ([]core.Series, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+txColumns("f")+`, `+txColumns("l")+`
		 FROM transactions f
		 JOIN transactions l ON l.recurring_group_id = f.recurring_group_id
		 WHERE f.is_recurring = 1
		   AND f.recurrence_type IN (?, ?)
		   AND f.recurring_group_id != ''
		   AND f.current_installment = 1
		   AND l.current_installment = (
		       SELECT MAX(current_installment) FROM transactions WHERE recurring_group_id = f.recurring_group_id)
		   AND l.date <= ?
		   AND (f.total_installments = 0 OR l.current_installment < f.total_installments)
		 ORDER BY f.id`,
		string(core.Monthly), string(core.Yearly), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("list due series: %w", err)
	}
	defer rows.Close()

	var out []core.Series
	for rows.Next() {
		var first, latest txRow
		if err := rows.Scan(append(first.dest(), latest.dest()...)...); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		f, err := first.transaction()
		if err != nil {
			return nil, err
		}
		l, err := latest.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, core.Series{First: f, Latest: l})
	}
	return out, rows.Err()
}

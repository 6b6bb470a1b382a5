package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const reminderColumns = `id, user_id, transaction_id, reminder_date, sent, created_at`

func scanReminderRows(rows *sql.Rows) ([]core.Reminder, error) {
	defer rows.Close()
	var out []core.Reminder
	for rows.Next() {
		var (
			r             core.Reminder
			date, created string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.TransactionID, &date, &r.Sent, &created); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		var err error
		if r.ReminderDate, err = parseTime(date); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) CreateReminder(ctx context.Context, r core.Reminder) (core.Reminder, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO reminders (user_id, transaction_id, reminder_date, sent, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.TransactionID, formatTime(r.ReminderDate), r.Sent, formatTime(r.CreatedAt))
	if err != nil {
		return core.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Reminder{}, fmt.Errorf("reminder id: %w", err)
	}
	r.ID = id
	return r, nil
}

func (q *Queries) ListReminders(ctx context.Context, userID int64) ([]core.Reminder, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = ? ORDER BY reminder_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return scanReminderRows(rows)
}

func (q *Queries) ListUpcomingReminders(ctx context.Context, userID int64, from time.Time) ([]core.Reminder, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = ? AND sent = 0 AND reminder_date >= ? ORDER BY reminder_date, id`,
		userID, formatTime(from))
	if err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}
	return scanReminderRows(rows)
}

func (q *Queries) MarkReminderSent(ctx context.Context, userID, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE reminders SET sent = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return expectAffected(res, "reminder", id)
}

func (q *Queries) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]core.DueReminder, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.transaction_id, r.reminder_date, r.sent, r.created_at,
		        u.username, u.email, `+txColumns("t")+`
		 FROM reminders r
		 JOIN users u ON u.id = r.user_id
		 JOIN transactions t ON t.id = r.transaction_id
		 WHERE r.sent = 0 AND r.reminder_date <= ? AND u.notifications_enabled = 1
		 ORDER BY r.reminder_date, r.id
		 LIMIT ?`, formatTime(now), limit)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	var out []core.DueReminder
	for rows.Next() {
		var (
			d             core.DueReminder
			date, created string
			tr            txRow
		)
		dest := append([]any{&d.Reminder.ID, &d.Reminder.UserID, &d.Reminder.TransactionID, &date,
			&d.Reminder.Sent, &created, &d.Username, &d.Email}, tr.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan due reminder: %w", err)
		}
		if d.Reminder.ReminderDate, err = parseTime(date); err != nil {
			return nil, err
		}
		if d.Reminder.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if d.Transaction, err = tr.transaction(); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

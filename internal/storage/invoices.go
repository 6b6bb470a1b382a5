package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

func (q *Queries) CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO invoices (user_id, filename, content_type, content, processed_text, barcode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.UserID, inv.Filename, inv.ContentType, inv.Content, inv.ProcessedText, inv.Barcode,
		formatTime(inv.CreatedAt))
	if err != nil {
		return core.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Invoice{}, fmt.Errorf("invoice id: %w", err)
	}
	inv.ID = id
	return inv, nil
}

func (q *Queries) GetInvoice(ctx context.Context, userID, id int64) (core.Invoice, error) {
	var (
		inv     core.Invoice
		created string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, user_id, filename, content_type, content, processed_text, barcode, created_at
		 FROM invoices WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&inv.ID, &inv.UserID, &inv.Filename, &inv.ContentType, &inv.Content,
			&inv.ProcessedText, &inv.Barcode, &created)
	if err != nil {
		return core.Invoice{}, notFound("invoice", id, err)
	}
	if inv.CreatedAt, err = parseTime(created); err != nil {
		return core.Invoice{}, err
	}
	return inv, nil
}

func (q *Queries) ListInvoices(ctx context.Context, userID int64) ([]core.Invoice, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, filename, content_type, processed_text, barcode, created_at
		 FROM invoices WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []core.Invoice
	for rows.Next() {
		var (
			inv     core.Invoice
			created string
		)
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.Filename, &inv.ContentType,
			&inv.ProcessedText, &inv.Barcode, &created); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		if inv.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// DeleteInvoice detaches the invoice from any transaction before removing it.
func (q *Queries) DeleteInvoice(ctx context.Context, userID, id int64) error {
	if _, err := q.db.ExecContext(ctx,
		`UPDATE transactions SET invoice_id = NULL WHERE invoice_id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("detach invoice: %w", err)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return expectAffected(res, "invoice", id)
}

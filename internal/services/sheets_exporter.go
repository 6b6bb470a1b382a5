package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"
	"fintrack/internal/sheets"
)

// SheetsExporter mirrors one month of a user's transactions into a spreadsheet.
type SheetsExporter struct {
	store ports.Store
	sink  sheets.Sink
	loc   *time.Location
}

func NewSheetsExporter(store ports.Store, sink sheets.Sink, loc *time.Location) *SheetsExporter {
	if loc == nil {
		loc = time.UTC
	}
	return &SheetsExporter{store: store, sink: sink, loc: loc}
}

type SheetsReport struct {
	Ref    string
	Rows   int
	Totals sheets.MonthTotals
}

// ExportMonth appends the month's transactions and reads the sheet totals back.
func (e *SheetsExporter) ExportMonth(ctx context.Context, userID int64, year, month int) (SheetsReport, error) {
	rows, err := exportRows(ctx, e.store, userID, year, month, e.loc)
	if err != nil {
		return SheetsReport{}, err
	}
	ref, err := e.sink.AppendRows(ctx, rows)
	if err != nil {
		return SheetsReport{}, fmt.Errorf("append rows: %w", err)
	}
	totals, err := e.sink.ReadMonth(ctx, year, month)
	if err != nil {
		return SheetsReport{}, fmt.Errorf("read back month: %w", err)
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentSheets).InfoContext(ctx, "Month exported to sheet",
		applog.FieldUserID, userID,
		applog.FieldYear, year,
		applog.FieldMonth, month,
		applog.FieldCount, len(rows),
		"range", ref)
	return SheetsReport{Ref: ref, Rows: len(rows), Totals: totals}, nil
}

// exportRows loads one month, or everything when year is 0, as export rows.
func exportRows(ctx context.Context, store ports.Store, userID int64, year, month int, loc *time.Location) ([]export.Row, error) {
	var (
		txs []core.Transaction
		err error
	)
	if year == 0 {
		txs, err = store.ListTransactions(ctx, userID)
	} else {
		start, end := core.MonthBounds(year, month, loc)
		txs, err = store.ListTransactionsByDateRange(ctx, userID, start, end)
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	cats, err := store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return export.Rows(txs, names, loc), nil
}

// ExportRows returns the user's transactions, all of them or one month, in export shape.
func (s *TransactionService) ExportRows(ctx context.Context, userID int64, year, month int) ([]export.Row, error) {
	if year != 0 {
		year, month = core.ResolveMonth(year, month, s.now().In(s.loc))
	}
	return exportRows(ctx, s.repo, userID, year, month, s.loc)
}

// Package sheets mirrors exported transactions into a spreadsheet.
package sheets

import (
	"context"

	"fintrack/internal/export"

	"github.com/shopspring/decimal"
)

// Ports for outbound spreadsheet adapters.
type (
	// RowWriter appends export rows below whatever the sheet already holds.
	RowWriter interface {
		AppendRows(ctx context.Context, rows []export.Row) (rowRef string, err error)
	}

	// MonthReader reads back the totals of the rows exported for one month.
	MonthReader interface {
		ReadMonth(ctx context.Context, year, month int) (MonthTotals, error)
	}

	Sink interface {
		RowWriter
		MonthReader
	}
)

// MonthTotals sums exported rows by type regardless of status.
type MonthTotals struct {
	Year    int
	Month   int
	Rows    int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

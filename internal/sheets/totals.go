package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
)

// Totals sums rows dated in year/month. Rows with unparsable dates or amounts are skipped.
func Totals(rows []export.Row, year, month int) MonthTotals {
	out := MonthTotals{Year: year, Month: month}
	for _, r := range rows {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(r.Date))
		if err != nil || d.Year() != year || int(d.Month()) != month {
			continue
		}
		amt, err := core.ParseAmount(r.Amount)
		if err != nil {
			continue
		}
		switch core.TransactionType(strings.ToUpper(strings.TrimSpace(r.Type))) {
		case core.Income:
			out.Income = out.Income.Add(amt)
		case core.Expense:
			out.Expense = out.Expense.Add(amt)
		default:
			continue
		}
		out.Rows++
	}
	return out
}

// RowFromValues rebuilds an export row from spreadsheet cells in export column order.
func RowFromValues(cells []interface{}) (export.Row, bool) {
	s := make([]string, 11)
	for i := 0; i < len(cells) && i < len(s); i++ {
		s[i] = strings.TrimSpace(toString(cells[i]))
	}
	id, err := strconv.ParseInt(s[0], 10, 64)
	if err != nil {
		// header or foreign row
		return export.Row{}, false
	}
	return export.Row{
		ID: id, Date: s[1], Type: s[2], Amount: s[3], Category: s[4], Description: s[5],
		Notes: s[6], Status: s[7], Recurrence: s[8], Installment: s[9], RecurringGroupID: s[10],
	}, true
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

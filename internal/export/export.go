// Package export renders transactions as CSV or YAML documents.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	CSV  Format = "csv"
	YAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == YAML {
		return "application/yaml"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Ext() string { return string(f) }

// Row is the flat export shape of a transaction.
type Row struct {
	ID               int64  `yaml:"id"`
	Date             string `yaml:"date"`
	Type             string `yaml:"type"`
	Amount           string `yaml:"amount"`
	Category         string `yaml:"category"`
	Description      string `yaml:"description"`
	Notes            string `yaml:"notes,omitempty"`
	Status           string `yaml:"status"`
	Recurrence       string `yaml:"recurrence,omitempty"`
	Installment      string `yaml:"installment,omitempty"`
	RecurringGroupID string `yaml:"recurring_group_id,omitempty"`
}

var header = []string{"id", "date", "type", "amount", "category", "description", "notes", "status", "recurrence", "installment", "recurring_group_id"}

// Rows flattens txs. categories maps category id to name; unknown ids export as the id.
func Rows(txs []core.Transaction, categories map[int64]string, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]Row, 0, len(txs))
	for _, t := range txs {
		cat, ok := categories[t.CategoryID]
		if !ok {
			cat = strconv.FormatInt(t.CategoryID, 10)
		}
		r := Row{
			ID:               t.ID,
			Date:             t.Date.In(loc).Format("2006-01-02"),
			Type:             string(t.Type),
			Amount:           core.FormatAmount(t.Amount),
			Category:         cat,
			Description:      t.Description,
			Notes:            t.Notes,
			Status:           string(t.Status),
			Recurrence:       string(t.RecurrenceType),
			RecurringGroupID: t.RecurringGroupID,
		}
		if t.CurrentInstallment > 0 && t.TotalInstallments > 0 {
			r.Installment = fmt.Sprintf("%d/%d", t.CurrentInstallment, t.TotalInstallments)
		}
		out = append(out, r)
	}
	return out
}

func (r Row) record() []string {
	return []string{
		strconv.FormatInt(r.ID, 10), r.Date, r.Type, r.Amount, r.Category, r.Description,
		r.Notes, r.Status, r.Recurrence, r.Installment, r.RecurringGroupID,
	}
}

// Write renders rows to w in format f.
func Write(w io.Writer, f Format, rows []Row) error {
	switch f {
	case CSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		for _, r := range rows {
			if err := cw.Write(r.record()); err != nil {
				return fmt.Errorf("write csv row %d: %w", r.ID, err)
			}
		}
		cw.Flush()
		return cw.Error()
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]Row{"transactions": rows}); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// SheetValues returns header and rows as spreadsheet cell values.
func SheetValues(rows []Row) [][]interface{} {
	out := make([][]interface{}, 0, len(rows)+1)
	h := make([]interface{}, len(header))
	for i, v := range header {
		h[i] = v
	}
	out = append(out, h)
	for _, r := range rows {
		rec := r.record()
		vals := make([]interface{}, len(rec))
		for i, v := range rec {
			vals[i] = v
		}
		out = append(out, vals)
	}
	return out
}

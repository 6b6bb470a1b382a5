package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

func sampleRows() []Row {
	txs := []core.Transaction{
		{
			ID: 1, Type: core.Expense, Amount: decimal.RequireFromString("300"),
			Date: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), CategoryID: 2,
			Description: "TV, 55\" (2/3)", Status: core.StatusDue, IsRecurring: true,
			RecurrenceType: core.Installments, TotalInstallments: 3, CurrentInstallment: 2, RecurringGroupID: "g",
		},
		{
			ID: 2, Type: core.Income, Amount: decimal.RequireFromString("5000.5"),
			Date: time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC), CategoryID: 99,
			Description: "Salary", Status: core.StatusPaid,
		},
	}
	return Rows(txs, map[int64]string{2: "Lazer"}, time.UTC)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": CSV, "CSV": CSV, "yml": YAML, "yaml": YAML} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(xml) = %v", err)
	}
}

func TestRows(t *testing.T) {
	rows := sampleRows()
	if rows[0].Category != "Lazer" || rows[0].Installment != "2/3" || rows[0].Amount != "300.00" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Category != "99" || rows[1].Installment != "" || rows[1].Amount != "5000.50" {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, CSV, sampleRows()); err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(recs) != 3 || recs[0][0] != "id" {
		t.Fatalf("records = %v", recs)
	}
	if recs[1][5] != `TV, 55" (2/3)` {
		t.Errorf("quoted description = %q", recs[1][5])
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, YAML, sampleRows()); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Transactions []Row `yaml:"transactions"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if len(doc.Transactions) != 2 || doc.Transactions[1].Amount != "5000.50" {
		t.Errorf("decoded %+v", doc.Transactions)
	}
}

func TestSheetValues(t *testing.T) {
	v := SheetValues(sampleRows())
	if len(v) != 3 || v[0][1] != "date" || v[2][3] != "5000.50" {
		t.Errorf("SheetValues() = %v", v)
	}
}

package memory

import (
	"context"
	"testing"

	"fintrack/internal/export"
)

func TestStore_AppendAndRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.AppendRows(ctx, []export.Row{
		{ID: 1, Date: "2024-03-05", Type: "INCOME", Amount: "5000.00"},
		{ID: 2, Date: "2024-03-10", Type: "EXPENSE", Amount: "1200.00"},
	})
	if err != nil || ref != "mem:1-2" {
		t.Fatalf("AppendRows() = %q, %v", ref, err)
	}
	ref, _ = s.AppendRows(ctx, []export.Row{{ID: 3, Date: "2024-04-01", Type: "EXPENSE", Amount: "1.00"}})
	if ref != "mem:3-3" {
		t.Errorf("second ref = %q", ref)
	}

	tot, err := s.ReadMonth(ctx, 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if tot.Rows != 2 || tot.Income.String() != "5000" || tot.Expense.String() != "1200" {
		t.Errorf("ReadMonth() = %+v", tot)
	}
	if len(s.Rows()) != 3 {
		t.Errorf("Rows() = %d", len(s.Rows()))
	}
}

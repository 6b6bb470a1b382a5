package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Transactions", 2024, "2024 Transactions"},
		{"  Transactions ", 2025, "2025 Transactions"},
		{"2023 Transactions", 2024, "2023 Transactions"},
		{"1234Bad", 2024, "2024 1234Bad"},
		{"", 2024, ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("New() error = %v", err)
	}
}

func TestCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := credentials(Config{}); err == nil || !strings.Contains(err.Error(), "missing service account") {
		t.Errorf("credentials(empty) = %v", err)
	}

	got, err := credentials(Config{ServiceAccountJSON: ` {"type":"service_account"} `})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Errorf("inline credentials = %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"a":1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = credentials(Config{ServiceAccountFile: path})
	if err != nil || string(got) != `{"a":1}` {
		t.Errorf("file credentials = %q, %v", got, err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)
	if _, err := credentials(Config{}); err != nil {
		t.Errorf("ADC path fallback = %v", err)
	}

	if _, err := credentials(Config{ServiceAccountFile: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseRows(t *testing.T) {
	values := [][]interface{}{
		{"id", "date", "type", "amount"},
		{"7", "2024-03-05", "INCOME", "10.50", "Lazer", "Gift"},
		{float64(8), "2024-03-06", "EXPENSE", float64(3.25)},
		{},
		{"notes only"},
	}
	rows := parseRows(values)
	if len(rows) != 2 {
		t.Fatalf("parseRows() = %d rows, want 2", len(rows))
	}
	if rows[0].ID != 7 || rows[0].Category != "Lazer" || rows[1].ID != 8 || rows[1].Amount != "3.25" {
		t.Errorf("parseRows() = %+v", rows)
	}
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetBase: "T"}
	if _, err := c.ReadMonth(context.Background(), 2024, 1); err == nil {
		t.Error("ReadMonth without service should fail")
	}
	if _, err := c.AppendRows(context.Background(), nil); err == nil {
		t.Error("AppendRows without service should fail")
	}
}

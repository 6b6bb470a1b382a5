package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    MonthParams
		wantErr bool
	}{
		{"empty", "", MonthParams{}, false},
		{"both", "year=2024&month=3", MonthParams{Year: 2024, Month: 3}, false},
		{"month only", "month=12", MonthParams{Month: 12}, false},
		{"month zero", "month=0", MonthParams{}, true},
		{"month thirteen", "month=13", MonthParams{}, true},
		{"year text", "year=abc", MonthParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseMonthParams(q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLenientMonthParams(t *testing.T) {
	tests := []struct {
		query string
		want  MonthParams
	}{
		{"", MonthParams{}},
		{"year=2024&month=3", MonthParams{Year: 2024, Month: 3}},
		{"month=13", MonthParams{}},
		{"year=abc&month=11", MonthParams{Month: 11}},
		{"year=2024&month=0", MonthParams{Year: 2024}},
		{"year=-5&month=x", MonthParams{}},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		if got := LenientMonthParams(q); got != tt.want {
			t.Errorf("LenientMonthParams(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestAmountField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"amount":"12,50"}`, "12,50"},
		{`{"amount":"99.9"}`, "99.9"},
		{`{"amount":42}`, "42"},
		{`{"amount":0.1}`, "0.1"},
	}
	for _, tt := range tests {
		var v struct {
			Amount amountField `json:"amount"`
		}
		if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if string(v.Amount) != tt.want {
			t.Errorf("%s: got %q, want %q", tt.in, v.Amount, tt.want)
		}
	}

	var v struct {
		Amount amountField `json:"amount"`
	}
	if err := json.Unmarshal([]byte(`{"amount":true}`), &v); err == nil {
		t.Error("boolean amount accepted")
	}
}

func TestTransactionPatchInvoice(t *testing.T) {
	tests := []struct {
		body      string
		wantClear bool
		wantID    *int64
	}{
		{`{}`, false, nil},
		{`{"invoiceId":null}`, true, nil},
		{`{"invoiceId":7}`, false, ptr(int64(7))},
	}
	for _, tt := range tests {
		var req transactionPatchRequest
		if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
			t.Fatalf("%s: %v", tt.body, err)
		}
		p, err := req.patch(time.UTC)
		if err != nil {
			t.Fatalf("%s: %v", tt.body, err)
		}
		if p.ClearInvoice != tt.wantClear {
			t.Errorf("%s: ClearInvoice = %v", tt.body, p.ClearInvoice)
		}
		if (p.InvoiceID == nil) != (tt.wantID == nil) || (p.InvoiceID != nil && *p.InvoiceID != *tt.wantID) {
			t.Errorf("%s: InvoiceID = %v", tt.body, p.InvoiceID)
		}
	}
}

func TestTransactionRequest_Defaults(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skip("tz database unavailable")
	}
	req := transactionRequest{
		Type:        "EXPENSE",
		Amount:      "10",
		Date:        "2024-02-29",
		CategoryID:  3,
		Description: "  Pharmacy\x00 ",
	}
	tx, err := req.transaction(loc)
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if tx.Status != core.StatusDue {
		t.Errorf("status = %s, want DUE", tx.Status)
	}
	if tx.Description != "Pharmacy" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.Date.Location() != loc || tx.Date.Day() != 29 {
		t.Errorf("date = %v", tx.Date)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get transaction 4: %w", core.ErrNotFound), http.StatusNotFound},
		{core.ErrEmailTaken, http.StatusConflict},
		{core.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: 1", core.ErrInvalidInstallments), http.StatusBadRequest},
		{services.ErrNoInvoiceContent, http.StatusBadRequest},
		{auth.ErrPasswordTooShort, http.StatusBadRequest},
		{FieldErrors{"x": "bad"}, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func ptr[T any](v T) *T { return &v }

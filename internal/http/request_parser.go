package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

const maxJSONBody = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a single JSON object from r into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return FieldErrors{"body": "request body too large or unreadable"}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return FieldErrors{"body": errEmptyBody.Error()}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return FieldErrors{"body": "malformed JSON"}
	}
	return nil
}

// MonthParams holds year/month query values; zero means "current".
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts optional year and month from query parameters.
func ParseMonthParams(query url.Values) (MonthParams, error) {
	var p MonthParams
	fe := FieldErrors{}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			fe.Add("year", "must be a four digit year")
		}
		p.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			fe.Add("month", "must be between 1 and 12")
		}
		p.Month = m
	}
	if !fe.Empty() {
		return MonthParams{}, fe
	}
	return p, nil
}

// LenientMonthParams reads year and month like ParseMonthParams but turns a
// malformed value into zero so it falls back to the current date.
func LenientMonthParams(query url.Values) MonthParams {
	var p MonthParams
	if y, err := strconv.Atoi(strings.TrimSpace(query.Get("year"))); err == nil && y >= 1 && y <= 9999 {
		p.Year = y
	}
	if m, err := strconv.Atoi(strings.TrimSpace(query.Get("month"))); err == nil && m >= 1 && m <= 12 {
		p.Month = m
	}
	return p
}

// parseLimit reads an optional positive limit query parameter.
func parseLimit(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, FieldErrors{"limit": "must be a positive integer"}
	}
	return n, nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, FieldErrors{"id": "must be a positive integer"}
	}
	return id, nil
}

// parseDate accepts YYYY-MM-DD (midnight in loc) or an RFC 3339 timestamp.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// sanitizeInput drops control characters other than tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

// amountField holds a money value sent either as a JSON string or number.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or number")
	}
	*a = amountField(n.String())
	return nil
}

// optionalID distinguishes an absent field from an explicit null.
type optionalID struct {
	Set   bool
	Value *int64
}

func (o *optionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *registerRequest) validate() error {
	fe := FieldErrors{}
	req.Username = sanitizeInput(req.Username)
	req.Email = sanitizeInput(req.Email)
	if req.Username == "" {
		fe.Add("username", "is required")
	} else if len(req.Username) > 50 {
		fe.Add("username", "must be at most 50 characters")
	}
	if !strings.Contains(req.Email, "@") {
		fe.Add("email", "must be a valid email address")
	}
	if len(req.Password) < 6 {
		fe.Add("password", "must be at least 6 characters")
	}
	if !fe.Empty() {
		return fe
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *loginRequest) validate() error {
	fe := FieldErrors{}
	req.Email = sanitizeInput(req.Email)
	if req.Email == "" {
		fe.Add("email", "is required")
	}
	if req.Password == "" {
		fe.Add("password", "is required")
	}
	if !fe.Empty() {
		return fe
	}
	return nil
}

type settingsRequest struct {
	InitialBalance       *amountField `json:"initialBalance"`
	OverdraftLimit       *amountField `json:"overdraftLimit"`
	NotificationsEnabled *bool        `json:"notificationsEnabled"`
}

func (req settingsRequest) patch() (services.SettingsPatch, error) {
	fe := FieldErrors{}
	var p services.SettingsPatch
	if req.InitialBalance != nil {
		d, err := core.ParseSignedAmount(string(*req.InitialBalance))
		if err != nil {
			fe.Add("initialBalance", "must be a valid number")
		}
		p.InitialBalance = &d
	}
	if req.OverdraftLimit != nil {
		d, err := core.ParseSignedAmount(string(*req.OverdraftLimit))
		if err != nil || d.IsNegative() {
			fe.Add("overdraftLimit", "must be a non-negative number")
		}
		p.OverdraftLimit = &d
	}
	p.NotificationsEnabled = req.NotificationsEnabled
	if !fe.Empty() {
		return services.SettingsPatch{}, fe
	}
	return p, nil
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (req *categoryRequest) validate() error {
	req.Name = sanitizeInput(req.Name)
	if err := (core.Category{Name: req.Name}).Validate(); err != nil {
		return FieldErrors{"name": err.Error()}
	}
	return nil
}

type transactionRequest struct {
	Type              string      `json:"type"`
	Amount            amountField `json:"amount"`
	Date              string      `json:"date"`
	CategoryID        int64       `json:"categoryId"`
	Description       string      `json:"description"`
	Notes             string      `json:"notes"`
	Status            string      `json:"status"`
	InvoiceID         *int64      `json:"invoiceId"`
	IsRecurring       bool        `json:"isRecurring"`
	RecurrenceType    string      `json:"recurrenceType"`
	TotalInstallments int         `json:"totalInstallments"`
}

// transaction validates the request and builds the template transaction.
func (req transactionRequest) transaction(loc *time.Location) (core.Transaction, error) {
	fe := FieldErrors{}
	t := core.Transaction{
		CategoryID:        req.CategoryID,
		Description:       sanitizeInput(req.Description),
		Notes:             sanitizeInput(req.Notes),
		InvoiceID:         req.InvoiceID,
		IsRecurring:       req.IsRecurring,
		TotalInstallments: req.TotalInstallments,
		Status:            core.StatusDue,
	}

	typ, err := core.ParseTransactionType(req.Type)
	if err != nil {
		fe.Add("type", "must be INCOME or EXPENSE")
	}
	t.Type = typ

	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		fe.Add("amount", "must be a positive amount")
	}
	t.Amount = amount

	date, err := parseDate(req.Date, loc)
	if err != nil {
		fe.Add("date", "must be YYYY-MM-DD or RFC 3339")
	}
	t.Date = date

	if req.CategoryID <= 0 {
		fe.Add("categoryId", "is required")
	}
	validateDescription(fe, t.Description)
	validateNotes(fe, t.Notes)

	if req.Status != "" {
		st, err := core.ParseStatus(req.Status)
		if err != nil {
			fe.Add("status", "must be DUE, TO_PAY or PAID")
		}
		t.Status = st
	}

	if req.IsRecurring {
		rt, err := core.ParseRecurrenceType(req.RecurrenceType)
		if err != nil {
			fe.Add("recurrenceType", "must be INSTALLMENTS, MONTHLY or YEARLY")
		}
		t.RecurrenceType = rt
		if rt == core.Installments && (req.TotalInstallments < core.MinInstallments || req.TotalInstallments > core.MaxInstallments) {
			fe.Add("totalInstallments", fmt.Sprintf("must be between %d and %d", core.MinInstallments, core.MaxInstallments))
		}
	}

	if !fe.Empty() {
		return core.Transaction{}, fe
	}
	return t, nil
}

func validateDescription(fe FieldErrors, description string) {
	if description == "" {
		fe.Add("description", "is required")
	} else if len(description) > core.MaxDescriptionLen {
		fe.Add("description", fmt.Sprintf("must be at most %d characters", core.MaxDescriptionLen))
	}
}

func validateNotes(fe FieldErrors, notes string) {
	if len(notes) > core.MaxNotesLen {
		fe.Add("notes", fmt.Sprintf("must be at most %d characters", core.MaxNotesLen))
	}
}

type transactionPatchRequest struct {
	Type        *string      `json:"type"`
	Amount      *amountField `json:"amount"`
	Date        *string      `json:"date"`
	CategoryID  *int64       `json:"categoryId"`
	Description *string      `json:"description"`
	Notes       *string      `json:"notes"`
	Status      *string      `json:"status"`
	InvoiceID   optionalID   `json:"invoiceId"`
}

func (req transactionPatchRequest) patch(loc *time.Location) (services.TransactionPatch, error) {
	fe := FieldErrors{}
	var p services.TransactionPatch

	if req.Type != nil {
		typ, err := core.ParseTransactionType(*req.Type)
		if err != nil {
			fe.Add("type", "must be INCOME or EXPENSE")
		}
		p.Type = &typ
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(string(*req.Amount))
		if err != nil {
			fe.Add("amount", "must be a positive amount")
		}
		p.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date, loc)
		if err != nil {
			fe.Add("date", "must be YYYY-MM-DD or RFC 3339")
		}
		p.Date = &date
	}
	if req.CategoryID != nil {
		if *req.CategoryID <= 0 {
			fe.Add("categoryId", "must be a positive id")
		}
		p.CategoryID = req.CategoryID
	}
	if req.Description != nil {
		d := sanitizeInput(*req.Description)
		p.Description = &d
	}
	if req.Notes != nil {
		n := sanitizeInput(*req.Notes)
		p.Notes = &n
	}
	if p.Description != nil {
		validateDescription(fe, *p.Description)
	}
	if p.Notes != nil {
		validateNotes(fe, *p.Notes)
	}
	if req.Status != nil {
		st, err := core.ParseStatus(*req.Status)
		if err != nil {
			fe.Add("status", "must be DUE, TO_PAY or PAID")
		}
		p.Status = &st
	}
	if req.InvoiceID.Set {
		if req.InvoiceID.Value == nil {
			p.ClearInvoice = true
		} else {
			p.InvoiceID = req.InvoiceID.Value
		}
	}

	if !fe.Empty() {
		return services.TransactionPatch{}, fe
	}
	return p, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

func (req statusRequest) status() (core.Status, error) {
	st, err := core.ParseStatus(req.Status)
	if err != nil {
		return "", FieldErrors{"status": "must be DUE, TO_PAY or PAID"}
	}
	return st, nil
}

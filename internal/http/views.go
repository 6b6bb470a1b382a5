package http

import (
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// JSON shapes returned by the API. Money is always a string with two decimals.

type userView struct {
	ID                   int64     `json:"id"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	InitialBalance       string    `json:"initialBalance"`
	OverdraftLimit       string    `json:"overdraftLimit"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	CreatedAt            time.Time `json:"createdAt"`
}

func newUserView(u core.User) userView {
	return userView{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		InitialBalance:       core.FormatAmount(u.InitialBalance),
		OverdraftLimit:       core.FormatAmount(u.OverdraftLimit),
		NotificationsEnabled: u.NotificationsEnabled,
		CreatedAt:            u.CreatedAt,
	}
}

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newCategoryViews(cs []core.Category) []categoryView {
	out := make([]categoryView, 0, len(cs))
	for _, c := range cs {
		out = append(out, categoryView{ID: c.ID, Name: c.Name})
	}
	return out
}

type transactionView struct {
	ID                 int64     `json:"id"`
	Type               string    `json:"type"`
	Amount             string    `json:"amount"`
	Date               time.Time `json:"date"`
	CategoryID         int64     `json:"categoryId"`
	Description        string    `json:"description"`
	Notes              string    `json:"notes,omitempty"`
	Status             string    `json:"status"`
	InvoiceID          *int64    `json:"invoiceId"`
	IsRecurring        bool      `json:"isRecurring"`
	RecurrenceType     string    `json:"recurrenceType,omitempty"`
	TotalInstallments  int       `json:"totalInstallments,omitempty"`
	CurrentInstallment int       `json:"currentInstallment,omitempty"`
	RecurringGroupID   string    `json:"recurringGroupId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

func newTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:                 t.ID,
		Type:               string(t.Type),
		Amount:             core.FormatAmount(t.Amount),
		Date:               t.Date,
		CategoryID:         t.CategoryID,
		Description:        t.Description,
		Notes:              t.Notes,
		Status:             string(t.Status),
		InvoiceID:          t.InvoiceID,
		IsRecurring:        t.IsRecurring,
		RecurrenceType:     string(t.RecurrenceType),
		TotalInstallments:  t.TotalInstallments,
		CurrentInstallment: t.CurrentInstallment,
		RecurringGroupID:   t.RecurringGroupID,
		CreatedAt:          t.CreatedAt,
	}
}

func newTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionView(t))
	}
	return out
}

// createdView answers a create. Single transactions come back bare; series
// and installment plans come back with their group id.
type createdView struct {
	Message          string            `json:"message"`
	Transactions     []transactionView `json:"transactions"`
	RecurringGroupID string            `json:"recurringGroupId"`
	Reminders        int               `json:"reminders"`
}

func newCreatedView(res services.CreateResult) any {
	if res.GroupID == "" && len(res.Transactions) == 1 {
		return newTransactionView(res.Transactions[0])
	}
	msg := "recurring series started"
	if len(res.Transactions) > 1 {
		msg = "installments created"
	}
	return createdView{
		Message:          msg,
		Transactions:     newTransactionViews(res.Transactions),
		RecurringGroupID: res.GroupID,
		Reminders:        res.Reminders,
	}
}

type invoiceView struct {
	ID            int64     `json:"id"`
	Filename      string    `json:"filename"`
	ContentType   string    `json:"contentType"`
	Size          int       `json:"size"`
	ProcessedText string    `json:"processedText"`
	Barcode       *string   `json:"barcode"`
	CreatedAt     time.Time `json:"createdAt"`
	// Content is only sent for a single invoice, base64 encoded.
	Content []byte `json:"content,omitempty"`
}

func newInvoiceView(inv core.Invoice, withContent bool) invoiceView {
	v := invoiceView{
		ID:            inv.ID,
		Filename:      inv.Filename,
		ContentType:   inv.ContentType,
		Size:          len(inv.Content),
		ProcessedText: inv.ProcessedText,
		CreatedAt:     inv.CreatedAt,
	}
	if inv.Barcode != "" {
		b := inv.Barcode
		v.Barcode = &b
	}
	if withContent {
		v.Content = inv.Content
	}
	return v
}

type reminderView struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transactionId"`
	ReminderDate  time.Time `json:"reminderDate"`
	Sent          bool      `json:"sent"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newReminderViews(rs []core.Reminder) []reminderView {
	out := make([]reminderView, 0, len(rs))
	for _, r := range rs {
		out = append(out, reminderView{
			ID:            r.ID,
			TransactionID: r.TransactionID,
			ReminderDate:  r.ReminderDate,
			Sent:          r.Sent,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out
}

type balanceView struct {
	Balance        string `json:"balance"`
	InitialBalance string `json:"initialBalance"`
	OverdraftLimit string `json:"overdraftLimit"`
	Available      string `json:"available"`
	OverLimit      bool   `json:"overLimit"`
	Policy         string `json:"policy"`
}

func newBalanceView(b core.BalanceView, policy core.BalancePolicy) balanceView {
	return balanceView{
		Balance:        core.FormatAmount(b.Balance),
		InitialBalance: core.FormatAmount(b.InitialBalance),
		OverdraftLimit: core.FormatAmount(b.OverdraftLimit),
		Available:      core.FormatAmount(b.Available),
		OverLimit:      b.OverLimit,
		Policy:         string(policy),
	}
}

type categoryAmountView struct {
	CategoryID int64  `json:"categoryId"`
	Amount     string `json:"amount"`
}

type summaryView struct {
	Year         int                  `json:"year"`
	Month        int                  `json:"month"`
	TotalIncome  string               `json:"totalIncome"`
	TotalExpense string               `json:"totalExpense"`
	Net          string               `json:"net"`
	ByCategory   []categoryAmountView `json:"byCategory"`
}

func newSummaryView(s core.MonthlySummary) summaryView {
	v := summaryView{
		Year:         s.Year,
		Month:        s.Month,
		TotalIncome:  core.FormatAmount(s.TotalIncome),
		TotalExpense: core.FormatAmount(s.TotalExpense),
		Net:          core.FormatAmount(s.Net),
		ByCategory:   make([]categoryAmountView, 0, len(s.ByCategory)),
	}
	for _, c := range s.ByCategory {
		v.ByCategory = append(v.ByCategory, categoryAmountView{CategoryID: c.CategoryID, Amount: core.FormatAmount(c.Amount)})
	}
	return v
}

type historyView struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"monthName"`
	Income    string `json:"income"`
	Expense   string `json:"expense"`
}

func newHistoryViews(ss []core.MonthlySummary) []historyView {
	out := make([]historyView, 0, len(ss))
	for _, s := range ss {
		out = append(out, historyView{
			Year:      s.Year,
			Month:     s.Month,
			MonthName: time.Month(s.Month).String(),
			Income:    core.FormatAmount(s.TotalIncome),
			Expense:   core.FormatAmount(s.TotalExpense),
		})
	}
	return out
}

type messageView struct {
	Message string `json:"message"`
}

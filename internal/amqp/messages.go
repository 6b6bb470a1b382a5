package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// ReminderNotice is published once per due reminder. It carries enough of the
// transaction for a consumer to render a notification without a database hit.
type ReminderNotice struct {
	ReminderID    int64     `json:"reminder_id"`
	UserID        int64     `json:"user_id"`
	TransactionID int64     `json:"transaction_id"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	Type          string    `json:"type"`
	DueDate       time.Time `json:"due_date"`
	RemindAt      time.Time `json:"remind_at"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewReminderNotice builds a notice from a due reminder.
func NewReminderNotice(d core.DueReminder) *ReminderNotice {
	return &ReminderNotice{
		ReminderID:    d.Reminder.ID,
		UserID:        d.Reminder.UserID,
		TransactionID: d.Transaction.ID,
		Description:   d.Transaction.Description,
		Amount:        core.FormatAmount(d.Transaction.Amount),
		Type:          string(d.Transaction.Type),
		DueDate:       d.Transaction.Date.UTC(),
		RemindAt:      d.Reminder.ReminderDate.UTC(),
		Email:         d.Email,
		Username:      d.Username,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *ReminderNotice) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderNoticeFromJSON decodes a notice and rejects bodies without ids.
func ReminderNoticeFromJSON(data []byte) (*ReminderNotice, error) {
	var msg ReminderNotice
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ReminderID <= 0 || msg.UserID <= 0 {
		return nil, fmt.Errorf("reminder notice missing ids")
	}
	return &msg, nil
}

// DueReminder rebuilds the reminder a notice was published for.
func (m *ReminderNotice) DueReminder() (core.DueReminder, error) {
	amount, err := core.ParseAmount(m.Amount)
	if err != nil {
		return core.DueReminder{}, fmt.Errorf("notice %d amount: %w", m.ReminderID, err)
	}
	return core.DueReminder{
		Reminder: core.Reminder{
			ID:            m.ReminderID,
			UserID:        m.UserID,
			TransactionID: m.TransactionID,
			ReminderDate:  m.RemindAt,
		},
		Transaction: core.Transaction{
			ID:          m.TransactionID,
			UserID:      m.UserID,
			Type:        core.TransactionType(m.Type),
			Amount:      amount,
			Date:        m.DueDate,
			Description: m.Description,
		},
		Username: m.Username,
		Email:    m.Email,
	}, nil
}

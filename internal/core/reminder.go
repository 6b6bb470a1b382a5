package core

import "time"

// PlanReminders returns the reminder dates for a transaction: the day before
// and the due date itself. Only DUE transactions dated after now get reminders,
// and the day-before reminder is dropped once it is already in the past.
func PlanReminders(t Transaction, now time.Time) []time.Time {
	if t.Status != StatusDue || !t.Date.After(now) {
		return nil
	}
	var dates []time.Time
	if before := t.Date.AddDate(0, 0, -1); before.After(now) {
		dates = append(dates, before)
	}
	return append(dates, t.Date)
}

// RemindersFor expands PlanReminders into unsaved Reminder rows for a stored transaction.
func RemindersFor(t Transaction, now time.Time) []Reminder {
	dates := PlanReminders(t, now)
	out := make([]Reminder, 0, len(dates))
	for _, d := range dates {
		out = append(out, Reminder{
			UserID:        t.UserID,
			TransactionID: t.ID,
			ReminderDate:  d,
		})
	}
	return out
}

// DueReminder is a reminder ready to be delivered, with the context a notice needs.
type DueReminder struct {
	Reminder    Reminder
	Transaction Transaction
	Username    string
	Email       string
}

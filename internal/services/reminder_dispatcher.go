package services

import (
	"context"
	"fmt"
	"time"

	applog "fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/ports"
)

const DefaultDispatchBatch = 100

// ReminderDispatcher delivers due reminders and marks them sent.
type ReminderDispatcher struct {
	store    ports.ReminderStore
	notifier notify.Notifier
	batch    int
}

func NewReminderDispatcher(store ports.ReminderStore, notifier notify.Notifier, batch int) *ReminderDispatcher {
	if batch <= 0 {
		batch = DefaultDispatchBatch
	}
	return &ReminderDispatcher{store: store, notifier: notifier, batch: batch}
}

// DispatchResult counts one dispatch run.
type DispatchResult struct {
	Sent   int
	Failed int
}

// DispatchDue notifies up to one batch of reminders dated at or before now.
// A reminder whose delivery fails stays unsent and is retried on the next run.
func (d *ReminderDispatcher) DispatchDue(ctx context.Context, now time.Time) (DispatchResult, error) {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentNotify)

	due, err := d.store.ListDueReminders(ctx, now, d.batch)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("list due reminders: %w", err)
	}

	var res DispatchResult
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := d.notifier.Notify(ctx, r); err != nil {
			res.Failed++
			logger.WarnContext(ctx, "Reminder delivery failed",
				applog.FieldReminderID, r.Reminder.ID,
				applog.FieldUserID, r.Reminder.UserID,
				applog.FieldError, err)
			continue
		}
		if err := d.store.MarkReminderSent(ctx, r.Reminder.UserID, r.Reminder.ID); err != nil {
			res.Failed++
			logger.ErrorContext(ctx, "Failed to mark reminder sent",
				applog.FieldReminderID, r.Reminder.ID,
				applog.FieldError, err)
			continue
		}
		res.Sent++
	}

	if len(due) > 0 {
		logger.InfoContext(ctx, "Reminder dispatch complete",
			"sent", res.Sent,
			"failed", res.Failed)
	}
	return res, nil
}

package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	applog "fintrack/internal/log"
	"fintrack/internal/notify"
)

// NoticeWorker delivers reminder notices consumed from the message queue.
type NoticeWorker struct {
	notifier notify.Notifier
}

func NewNoticeWorker(n notify.Notifier) *NoticeWorker {
	return &NoticeWorker{notifier: n}
}

// HandleNotice delivers one notice. A returned error makes the consumer requeue it.
func (w *NoticeWorker) HandleNotice(ctx context.Context, msg *amqp.ReminderNotice) error {
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentNotify)
	logger.InfoContext(ctx, "Processing reminder notice",
		applog.FieldReminderID, msg.ReminderID,
		applog.FieldUserID, msg.UserID)

	due, err := msg.DueReminder()
	if err != nil {
		// Malformed notices are acked and dropped.
		logger.ErrorContext(ctx, "Discarding malformed reminder notice",
			applog.FieldReminderID, msg.ReminderID,
			applog.FieldError, err)
		return nil
	}

	if err := w.notifier.Notify(ctx, due); err != nil {
		return fmt.Errorf("deliver reminder %d: %w", msg.ReminderID, err)
	}
	return nil
}

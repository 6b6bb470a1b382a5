package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

type ReminderService struct {
	store ports.ReminderStore
	now   Clock
}

func NewReminderService(store ports.ReminderStore) *ReminderService {
	return &ReminderService{store: store, now: time.Now}
}

func (s *ReminderService) WithClock(now Clock) *ReminderService {
	s.now = now
	return s
}

func (s *ReminderService) List(ctx context.Context, userID int64) ([]core.Reminder, error) {
	return s.store.ListReminders(ctx, userID)
}

// Upcoming returns unsent reminders dated from now on.
func (s *ReminderService) Upcoming(ctx context.Context, userID int64) ([]core.Reminder, error) {
	return s.store.ListUpcomingReminders(ctx, userID, s.now())
}

// MarkSent flags a reminder the user owns as delivered.
func (s *ReminderService) MarkSent(ctx context.Context, userID, id int64) error {
	return s.store.MarkReminderSent(ctx, userID, id)
}

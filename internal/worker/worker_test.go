package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"

	"github.com/shopspring/decimal"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler(time.UTC, quietLogger())
	noop := func(context.Context) error { return nil }

	if err := s.Add("reminders", "*/5 * * * *", noop); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add("reminders", "0 * * * *", noop); err == nil {
		t.Error("duplicate job name accepted")
	}
	if err := s.Add("broken", "every tuesday", noop); err == nil {
		t.Error("invalid cron spec accepted")
	}
	if err := s.Add("recurring", "@hourly", noop); err != nil {
		t.Errorf("descriptor spec rejected: %v", err)
	}
}

func TestScheduler_RunAll(t *testing.T) {
	s := NewScheduler(nil, quietLogger())

	var mu sync.Mutex
	ran := map[string]int{}
	record := func(name string, err error) Job {
		return func(context.Context) error {
			mu.Lock()
			ran[name]++
			mu.Unlock()
			return err
		}
	}
	if err := s.Add("ok", "@daily", record("ok", nil)); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("fails", "@daily", record("fails", errors.New("boom"))); err != nil {
		t.Fatal(err)
	}

	s.RunAll(context.Background())
	if ran["ok"] != 1 || ran["fails"] != 1 {
		t.Errorf("ran = %v, want each job once", ran)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(time.UTC, quietLogger())
	if err := s.Add("idle", "@yearly", func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

type fakeNotifier struct {
	got []core.DueReminder
	err error
}

func (f *fakeNotifier) Notify(_ context.Context, r core.DueReminder) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, r)
	return nil
}

func TestNoticeWorker_HandleNotice(t *testing.T) {
	due := core.DueReminder{
		Reminder: core.Reminder{ID: 3, UserID: 1, TransactionID: 9,
			ReminderDate: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)},
		Transaction: core.Transaction{ID: 9, UserID: 1, Type: core.Expense,
			Amount: decimal.RequireFromString("80.25"), Description: "Electricity",
			Date: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)},
		Username: "ana",
		Email:    "ana@example.com",
	}

	t.Run("delivers", func(t *testing.T) {
		n := &fakeNotifier{}
		w := NewNoticeWorker(n)
		if err := w.HandleNotice(context.Background(), amqp.NewReminderNotice(due)); err != nil {
			t.Fatalf("HandleNotice() error = %v", err)
		}
		if len(n.got) != 1 {
			t.Fatalf("delivered %d reminders, want 1", len(n.got))
		}
		got := n.got[0]
		if got.Reminder.ID != 3 || got.Transaction.Description != "Electricity" || !got.Transaction.Amount.Equal(due.Transaction.Amount) {
			t.Errorf("delivered %+v", got)
		}
	})

	t.Run("notifier failure requeues", func(t *testing.T) {
		w := NewNoticeWorker(&fakeNotifier{err: errors.New("discord down")})
		if err := w.HandleNotice(context.Background(), amqp.NewReminderNotice(due)); err == nil {
			t.Error("expected error so the notice is requeued")
		}
	})

	t.Run("malformed notice dropped", func(t *testing.T) {
		n := &fakeNotifier{}
		notice := amqp.NewReminderNotice(due)
		notice.Amount = "lots"
		if err := NewNoticeWorker(n).HandleNotice(context.Background(), notice); err != nil {
			t.Errorf("HandleNotice() error = %v, want nil", err)
		}
		if len(n.got) != 0 {
			t.Error("malformed notice was delivered")
		}
	})
}

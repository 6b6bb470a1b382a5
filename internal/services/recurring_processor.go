package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"
)

// maxCatchUp bounds how many missed occurrences of one series are created in a single run.
const maxCatchUp = core.MaxInstallments

// RecurringProcessor materializes the next occurrence of MONTHLY and YEARLY series.
type RecurringProcessor struct {
	repo ports.Repository
}

func NewRecurringProcessor(repo ports.Repository) *RecurringProcessor {
	return &RecurringProcessor{repo: repo}
}

// ProcessDue creates occurrences for every series whose latest occurrence is
// dated at or before now, catching up until the newest one is in the future or
// the series is complete. Each occurrence and its reminders are written in one
// transaction. A failing series is logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.repo == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWorker)

	series, err := p.repo.ListDueSeries(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due series: %w", err)
	}

	logger.InfoContext(ctx, "Processing recurring series",
		"total_due", len(series),
		"processing_date", now.Format("2006-01-02"))

	created := 0
	for _, s := range series {
		n, err := p.rollForward(ctx, s, now)
		created += n
		if err != nil {
			logger.ErrorContext(ctx, "Failed to roll recurring series forward",
				applog.FieldGroupID, s.First.RecurringGroupID,
				applog.FieldUserID, s.First.UserID,
				applog.FieldError, err)
			continue
		}
		if n > 0 {
			logger.InfoContext(ctx, "Created recurring occurrences",
				applog.FieldGroupID, s.First.RecurringGroupID,
				applog.FieldUserID, s.First.UserID,
				applog.FieldCount, n)
		}
	}

	logger.InfoContext(ctx, "Recurring processing complete",
		"created", created,
		"total_checked", len(series))
	return created, nil
}

func (p *RecurringProcessor) rollForward(ctx context.Context, s core.Series, now time.Time) (int, error) {
	latest := s.Latest
	n := 0
	for n < maxCatchUp && !latest.Date.After(now) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		next, ok, err := core.NextOccurrence(s.First, latest)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		err = p.repo.WithTx(ctx, func(st ports.Store) error {
			saved, err := st.CreateTransaction(ctx, next)
			if err != nil {
				return fmt.Errorf("create occurrence %d: %w", next.CurrentInstallment, err)
			}
			if _, err := createReminders(ctx, st, saved, now); err != nil {
				return err
			}
			latest = saved
			return nil
		})
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

const HistoryMonths = 6

// DashboardService reads balances and monthly summaries. The balance policy
// and timezone are fixed per process.
type DashboardService struct {
	store  ports.Store
	policy core.BalancePolicy
	loc    *time.Location
	now    Clock
}

func NewDashboardService(store ports.Store, policy core.BalancePolicy, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	if policy == "" {
		policy = core.BalanceAllTransactions
	}
	return &DashboardService{store: store, policy: policy, loc: loc, now: time.Now}
}

func (s *DashboardService) WithClock(now Clock) *DashboardService {
	s.now = now
	return s
}

func (s *DashboardService) Policy() core.BalancePolicy { return s.policy }

func (s *DashboardService) Balance(ctx context.Context, userID int64) (core.BalanceView, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return core.BalanceView{}, fmt.Errorf("get user: %w", err)
	}
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return core.BalanceView{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.NewBalanceView(u, txs, s.policy), nil
}

// MonthlySummary summarizes one month. Out-of-range year or month fall back to
// the current month.
func (s *DashboardService) MonthlySummary(ctx context.Context, userID int64, year, month int) (core.MonthlySummary, error) {
	year, month = core.ResolveMonth(year, month, s.now().In(s.loc))
	start, end := core.MonthBounds(year, month, s.loc)
	txs, err := s.store.ListTransactionsByDateRange(ctx, userID, start, end)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.ComputeMonthlySummary(userID, year, month, txs, s.loc), nil
}

// History summarizes the last HistoryMonths months, oldest first.
func (s *DashboardService) History(ctx context.Context, userID int64) ([]core.MonthlySummary, error) {
	now := s.now().In(s.loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc).AddDate(0, -(HistoryMonths - 1), 0)
	start, _ := core.MonthBounds(first.Year(), int(first.Month()), s.loc)
	_, end := core.MonthBounds(now.Year(), int(now.Month()), s.loc)

	txs, err := s.store.ListTransactionsByDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.LastMonths(userID, now, HistoryMonths, txs, s.loc), nil
}

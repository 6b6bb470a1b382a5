package seed

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func TestSeeder_Run(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	defer repo.Close()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	users := services.NewUserService(repo, auth.NewSessions(cache.NewLRUCache[auth.Session](10, time.Hour)))
	txs := services.NewTransactionService(repo, time.UTC).WithClock(func() time.Time { return now })
	s := New(users, services.NewCategoryService(repo), txs)

	ctx := context.Background()
	opts := Options{Email: "Demo@Example.com", Password: "secret123", Months: 2, ExpensesPerMonth: 3, Seed: 42}
	res, err := s.Run(ctx, opts, now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.User.Email != "demo@example.com" || res.User.Username == "" {
		t.Errorf("user = %+v", res.User)
	}
	if !res.User.InitialBalance.IsPositive() || res.User.OverdraftLimit.IsNegative() {
		t.Errorf("settings = %s / %s", res.User.InitialBalance, res.User.OverdraftLimit)
	}
	// salary + rent + at least two installments + 3 months of 3 expenses
	if res.Transactions < 2+core.MinInstallments+9 {
		t.Errorf("created %d transactions", res.Transactions)
	}

	all, err := txs.List(ctx, res.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != res.Transactions {
		t.Errorf("stored %d transactions, Run reported %d", len(all), res.Transactions)
	}
	for _, tx := range all {
		if !tx.Amount.IsPositive() {
			t.Errorf("%q has amount %s", tx.Description, tx.Amount)
		}
		if tx.RecurringGroupID == "" && !tx.Date.After(now) && tx.Status != core.StatusPaid {
			t.Errorf("past expense %q is %s, want PAID", tx.Description, tx.Status)
		}
	}

	if _, err := s.Run(ctx, opts, now); !errors.Is(err, core.ErrEmailTaken) {
		t.Errorf("second run error = %v, want ErrEmailTaken", err)
	}
}

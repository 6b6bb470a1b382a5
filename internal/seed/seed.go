// Package seed fills a database with a demo user and plausible fake activity.
package seed

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

type Options struct {
	Username string
	Email    string
	Password string
	// Months of history generated before the current month.
	Months int
	// ExpensesPerMonth is the number of one-off expenses per month.
	ExpensesPerMonth int
	// Seed makes the generated data reproducible. Zero picks a random seed.
	Seed int64
}

type Result struct {
	User         core.User
	Password     string
	Transactions int
	Reminders    int
}

type Seeder struct {
	users        *services.UserService
	categories   *services.CategoryService
	transactions *services.TransactionService
}

func New(users *services.UserService, categories *services.CategoryService, txs *services.TransactionService) *Seeder {
	return &Seeder{users: users, categories: categories, transactions: txs}
}

// Run registers the demo user and creates a monthly salary, a rent
// subscription, one installment purchase and random one-off expenses.
// Transactions dated before now are PAID, the rest stay DUE.
func (s *Seeder) Run(ctx context.Context, opts Options, now time.Time) (Result, error) {
	if opts.Months <= 0 {
		opts.Months = 3
	}
	if opts.ExpensesPerMonth <= 0 {
		opts.ExpensesPerMonth = 8
	}
	faker := gofakeit.New(opts.Seed)

	if opts.Username == "" {
		opts.Username = faker.Username()
	}
	if opts.Email == "" {
		opts.Email = faker.Email()
	}
	if opts.Password == "" {
		opts.Password = faker.Password(true, true, true, false, false, 12)
	}

	user, err := s.users.Register(ctx, opts.Username, opts.Email, opts.Password)
	if err != nil {
		return Result{}, fmt.Errorf("register demo user: %w", err)
	}
	initial := decimal.NewFromFloat(faker.Price(500, 5000)).Round(core.AmountScale)
	overdraft := decimal.NewFromInt(int64(faker.Number(1, 10)) * 100)
	if user, err = s.users.UpdateSettings(ctx, user.ID, services.SettingsPatch{
		InitialBalance: &initial,
		OverdraftLimit: &overdraft,
	}); err != nil {
		return Result{}, fmt.Errorf("demo settings: %w", err)
	}

	cats, err := s.categories.List(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	if len(cats) == 0 {
		return Result{}, fmt.Errorf("demo user has no categories")
	}
	res := Result{User: user, Password: opts.Password}
	create := func(t core.Transaction) error {
		if !t.Date.After(now) {
			t.Status = core.StatusPaid
		} else if t.Status == "" {
			t.Status = core.StatusDue
		}
		out, err := s.transactions.Create(ctx, user.ID, t)
		if err != nil {
			return fmt.Errorf("create %q: %w", t.Description, err)
		}
		res.Transactions += len(out.Transactions)
		res.Reminders += out.Reminders
		return nil
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -opts.Months, 0)

	// Recurring series are anchored at the start; the recurring worker rolls them forward.
	if err := create(core.Transaction{
		Type:           core.Income,
		Amount:         decimal.NewFromFloat(faker.Price(2500, 6000)).Round(core.AmountScale),
		Date:           start.AddDate(0, 0, 4),
		CategoryID:     cats[len(cats)-1].ID,
		Description:    "Salary " + faker.Company(),
		IsRecurring:    true,
		RecurrenceType: core.Monthly,
	}); err != nil {
		return res, err
	}
	if err := create(core.Transaction{
		Type:           core.Expense,
		Amount:         decimal.NewFromFloat(faker.Price(700, 1800)).Round(core.AmountScale),
		Date:           start.AddDate(0, 0, 9),
		CategoryID:     cats[1%len(cats)].ID,
		Description:    "Rent " + faker.Street(),
		IsRecurring:    true,
		RecurrenceType: core.Monthly,
	}); err != nil {
		return res, err
	}
	if err := create(core.Transaction{
		Type:              core.Expense,
		Amount:            decimal.NewFromFloat(faker.Price(80, 400)).Round(core.AmountScale),
		Date:              start.AddDate(0, 0, 14),
		CategoryID:        cats[faker.Number(0, len(cats)-1)].ID,
		Description:       faker.ProductName(),
		IsRecurring:       true,
		RecurrenceType:    core.Installments,
		TotalInstallments: faker.Number(core.MinInstallments, 12),
	}); err != nil {
		return res, err
	}

	for m := 0; m <= opts.Months; m++ {
		month := start.AddDate(0, m, 0)
		days := month.AddDate(0, 1, -1).Day()
		for i := 0; i < opts.ExpensesPerMonth; i++ {
			if err := create(core.Transaction{
				Type:        core.Expense,
				Amount:      decimal.NewFromFloat(faker.Price(5, 250)).Round(core.AmountScale),
				Date:        month.AddDate(0, 0, faker.Number(0, days-1)),
				CategoryID:  cats[faker.Number(0, len(cats)-1)].ID,
				Description: faker.Company(),
				Notes:       faker.Sentence(5),
			}); err != nil {
				return res, err
			}
		}
	}

	applog.FromContext(ctx).InfoContext(ctx, "Demo data created",
		applog.FieldUserID, user.ID,
		applog.FieldCount, res.Transactions)
	return res, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/seed"
	"fintrack/internal/services"
)

func main() {
	var opts seed.Options
	flag.StringVar(&opts.Username, "username", "", "demo username (random when empty)")
	flag.StringVar(&opts.Email, "email", "demo@fintrack.local", "demo user email")
	flag.StringVar(&opts.Password, "password", "", "demo password (random when empty)")
	flag.IntVar(&opts.Months, "months", 3, "months of history before the current one")
	flag.IntVar(&opts.ExpensesPerMonth, "per-month", 8, "one-off expenses per month")
	flag.Int64Var(&opts.Seed, "seed", 0, "random seed for reproducible data (0 = random)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	loc := cfg.Location()
	sessions := auth.NewSessions(cache.NewLRUCache[auth.Session](1, time.Minute))
	s := seed.New(
		services.NewUserService(repo, sessions),
		services.NewCategoryService(repo),
		services.NewTransactionService(repo, loc),
	)

	ctx := applog.IntoContext(context.Background(), logger)
	res, err := s.Run(ctx, opts, time.Now().In(loc))
	if err != nil {
		cli.Fatal(logger, "Seeding failed", err)
	}

	fmt.Printf("user:         %s <%s>\n", res.User.Username, res.User.Email)
	fmt.Printf("password:     %s\n", res.Password)
	fmt.Printf("transactions: %d\n", res.Transactions)
	fmt.Printf("reminders:    %d\n", res.Reminders)
}
